package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"dealscope/internal/httpapi"
)

// Serve runs the HTTP API and static article server.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot serve")
	}
	defer closeStore()

	server := httpapi.New(a.Config.Server, httpapi.Stores{
		Products: store,
		History:  store,
		Alerts:   store,
		Wishlist: store,
		Articles: store,
	}, a.newScorer(), a.newSitemapBuilder(), a.Logger)

	a.Logger.Info().Str("addr", a.Config.Server.Addr).Msg("starting http server")
	err = server.Run(ctx)
	if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("http server terminated with error")
		return err
	}

	a.Logger.Info().Msg("http server stopped")
	return nil
}
