package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"dealscope/internal/alerting"
	"dealscope/internal/storage"
)

// SimulateAlertOptions feed a synthetic alert through the evaluator and,
// when it qualifies, the configured email channel.
type SimulateAlertOptions struct {
	Email        string
	ProductName  string
	CurrentPrice decimal.Decimal
	TargetPrice  decimal.Decimal
	AllTimeLow   decimal.Decimal
}

// SimulateAlert evaluates a synthetic price alert end to end.
func (a *App) SimulateAlert(ctx context.Context, opts SimulateAlertOptions) error {
	if !a.Config.Alerting.Enabled {
		return errors.New("alerting is not enabled")
	}

	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("no notification channel configured")
	}

	alert := storage.TargetPriceAlert{
		TargetPrice: opts.TargetPrice,
		Enabled:     true,
	}

	if !a.newEvaluator().ShouldNotify(alert, opts.CurrentPrice, opts.AllTimeLow, time.Now().UTC()) {
		a.Logger.Info().
			Str("current", opts.CurrentPrice.String()).
			Str("target", opts.TargetPrice.String()).
			Str("all_time_low", opts.AllTimeLow.String()).
			Msg("simulated alert did not qualify; nothing sent")
		return nil
	}

	slug := strings.ToLower(strings.ReplaceAll(opts.ProductName, " ", "-"))
	notification := alerting.Notification{
		Email:        opts.Email,
		ProductName:  opts.ProductName,
		ProductURL:   strings.TrimRight(a.Config.Server.PublicURL, "/") + "/product/" + slug,
		CurrentPrice: opts.CurrentPrice,
		TargetPrice:  opts.TargetPrice,
		AllTimeLow:   opts.AllTimeLow,
	}

	if err := notifier.Notify(ctx, notification); err != nil {
		return err
	}

	a.Logger.Info().Str("email", opts.Email).Msg("simulated alert delivered")
	return nil
}
