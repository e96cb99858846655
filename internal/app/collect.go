package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"dealscope/internal/scheduler"
	"dealscope/internal/service"
)

// Collect samples current retailer prices for every tracked product. With
// Once set it records a single sample per product and exits; otherwise it
// keeps collecting on the configured interval until interrupted.
func (a *App) Collect(ctx context.Context, opts CollectOptions) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot collect prices")
	}
	defer closeStore()

	amazon, flipkart := a.newFetchers()
	collector := service.NewCollector(store, store, amazon, flipkart, store, a.Config.Scheduler.AdvisoryLockKey, a.Logger)

	if opts.Once {
		return collector.ProcessTick(ctx, time.Now().UTC())
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Scheduler.Interval,
		AlignToStart: a.Config.Scheduler.AlignToBucket,
		StartupDelay: a.Config.Scheduler.StartupDelay,
	}, a.Logger)

	a.Logger.Info().Dur("interval", a.Config.Scheduler.Interval).Msg("starting price collection")
	err = sched.Run(ctx, collector.ProcessTick)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("collection loop terminated with error")
		return err
	}

	a.Logger.Info().Msg("price collection stopped")
	return nil
}
