package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"dealscope/internal/alerting"
	"dealscope/internal/deal"
	"dealscope/internal/storage"
)

// Sweeper evaluates every enabled alert against current prices and
// dispatches email notifications for the ones that qualify.
type Sweeper struct {
	alerts    storage.AlertStore
	history   storage.PriceHistoryStore
	notifier  alerting.Notifier
	evaluator *alerting.Evaluator
	logger    zerolog.Logger

	historyDepth int
	publicURL    string
	dryRun       bool
	locker       storage.AdvisoryLocker
	lockKey      int64
	now          func() time.Time
}

// SweeperOptions configure a sweep run.
type SweeperOptions struct {
	HistoryDepth int
	PublicURL    string
	DryRun       bool
	LockKey      int64
}

// SweepResult summarises one pass over the alert table.
type SweepResult struct {
	Checked  int
	Notified int
	Skipped  int
	Failed   int
}

// NewSweeper constructs the alert sweep service.
func NewSweeper(alerts storage.AlertStore, history storage.PriceHistoryStore, notifier alerting.Notifier, evaluator *alerting.Evaluator, locker storage.AdvisoryLocker, opts SweeperOptions, logger zerolog.Logger) *Sweeper {
	depth := opts.HistoryDepth
	if depth <= 0 {
		depth = 30
	}
	return &Sweeper{
		alerts:       alerts,
		history:      history,
		notifier:     notifier,
		evaluator:    evaluator,
		logger:       logger.With().Str("component", "sweeper").Logger(),
		historyDepth: depth,
		publicURL:    opts.PublicURL,
		dryRun:       opts.DryRun,
		locker:       locker,
		lockKey:      opts.LockKey,
		now:          time.Now,
	}
}

// Sweep runs one pass. Each alert is independent: bad price data or a
// failed delivery is logged and skipped, never aborting the batch. The
// cooldown marker is stamped only after the notifier confirms delivery,
// so a failed send retries on the next sweep.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	unlock, proceed, err := acquireLock(ctx, s.locker, s.lockKey)
	if err != nil {
		return result, err
	}
	if !proceed {
		s.logger.Debug().Msg("skip sweep because advisory lock held elsewhere")
		return result, nil
	}
	if unlock != nil {
		defer unlock()
	}

	targets, err := s.alerts.ListEnabledAlertTargets(ctx)
	if err != nil {
		return result, fmt.Errorf("list enabled alerts: %w", err)
	}

	for _, target := range targets {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		result.Checked++
		if s.evaluate(ctx, target, &result) {
			result.Notified++
		}
	}

	s.logger.Info().
		Int("checked", result.Checked).
		Int("notified", result.Notified).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Bool("dry_run", s.dryRun).
		Msg("alert sweep finished")
	return result, nil
}

func (s *Sweeper) evaluate(ctx context.Context, target storage.AlertTarget, result *SweepResult) bool {
	log := s.logger.With().
		Str("product", target.ProductSlug).
		Stringer("user", target.Alert.UserID).
		Logger()

	samples, err := s.history.ListRecentSamples(ctx, target.Alert.ProductID, s.historyDepth)
	if err != nil {
		result.Failed++
		log.Error().Err(err).Msg("failed to load price history")
		return false
	}

	currentPrice := deal.BestCurrentPrice(samples)
	if !currentPrice.IsPositive() {
		result.Skipped++
		log.Debug().Msg("no current price; skipping alert")
		return false
	}

	allTimeLow, found, err := s.history.AllTimeLowPrice(ctx, target.Alert.ProductID)
	if err != nil {
		result.Failed++
		log.Error().Err(err).Msg("failed to load all-time low")
		return false
	}
	if !found {
		result.Skipped++
		log.Debug().Msg("no positive observation on record; skipping alert")
		return false
	}

	now := s.now().UTC()
	if !s.evaluator.ShouldNotify(target.Alert, currentPrice, allTimeLow, now) {
		result.Skipped++
		return false
	}

	if s.dryRun || s.notifier == nil {
		log.Info().Str("current_price", currentPrice.StringFixed(2)).Msg("alert qualifies (dry run)")
		return true
	}

	note := alerting.Notification{
		Email:        target.Email,
		ProductName:  target.ProductName,
		ProductURL:   fmt.Sprintf("%s/product/%s", s.publicURL, target.ProductSlug),
		CurrentPrice: currentPrice,
		TargetPrice:  target.Alert.TargetPrice,
		AllTimeLow:   allTimeLow,
	}
	if err := s.notifier.Notify(ctx, note); err != nil {
		result.Failed++
		log.Error().Err(err).Msg("failed to dispatch alert email")
		return false
	}

	if err := s.alerts.MarkAlertNotified(ctx, target.Alert.UserID, target.Alert.ProductID, now); err != nil {
		// Delivery already happened; a stale marker only risks one
		// duplicate email on the next sweep.
		log.Error().Err(err).Msg("failed to stamp cooldown marker")
	}
	return true
}
