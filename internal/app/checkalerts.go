package app

import (
	"context"
	"errors"

	"dealscope/internal/service"
)

// CheckAlerts runs one sweep over every enabled price alert.
func (a *App) CheckAlerts(ctx context.Context, opts CheckAlertsOptions) error {
	if !a.Config.Alerting.Enabled {
		return errors.New("alerting is not enabled")
	}

	notifier := a.newNotifier()
	if notifier == nil && !opts.DryRun {
		return errors.New("no notification channel configured")
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot check alerts")
	}
	defer closeStore()

	sweeper := service.NewSweeper(store, store, notifier, a.newEvaluator(), store, service.SweeperOptions{
		HistoryDepth: a.Config.Alerting.HistoryDepth,
		PublicURL:    a.Config.Server.PublicURL,
		DryRun:       opts.DryRun,
		LockKey:      a.Config.Scheduler.AdvisoryLockKey + 1,
	}, a.Logger)

	result, err := sweeper.Sweep(ctx)
	if err != nil {
		return err
	}

	a.Logger.Info().
		Int("checked", result.Checked).
		Int("notified", result.Notified).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Bool("dry_run", opts.DryRun).
		Msg("alert sweep finished")
	return nil
}
