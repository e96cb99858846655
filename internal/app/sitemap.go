package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// WriteSitemap renders the sitemap for published articles to a file or
// stdout and optionally pings the configured search engines.
func (a *App) WriteSitemap(ctx context.Context, opts SitemapOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot build sitemap")
	}
	defer closeStore()

	articles, err := store.ListPublishedArticles(ctx)
	if err != nil {
		return err
	}

	builder := a.newSitemapBuilder()
	document, err := builder.Build(articles)
	if err != nil {
		return err
	}

	if opts.OutputPath == "" {
		fmt.Fprintln(os.Stdout, string(document))
	} else {
		if err := ensureDir(opts.OutputPath); err != nil {
			return err
		}
		if err := os.WriteFile(opts.OutputPath, document, 0o644); err != nil {
			return fmt.Errorf("write sitemap: %w", err)
		}
		a.Logger.Info().Str("path", opts.OutputPath).Int("urls", len(articles)+1).Msg("sitemap written")
	}

	if opts.Ping {
		sitemapURL := strings.TrimRight(a.Config.Server.PublicURL, "/") + "/sitemap.xml"
		builder.Ping(ctx, sitemapURL)
	}

	return nil
}
