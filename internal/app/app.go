package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"dealscope/internal/alerting"
	"dealscope/internal/config"
	"dealscope/internal/deal"
	"dealscope/internal/fetcher"
	"dealscope/internal/sitemap"
	"dealscope/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newFetchers() (amazon, flipkart fetcher.PriceFetcher) {
	amazon = fetcher.NewClient(fetcher.Options{
		Retailer:  string(deal.RetailerAmazon),
		BaseURL:   a.Config.Retailers.Amazon.BaseURL,
		APIKey:    a.Config.Retailers.Amazon.APIKey,
		Timeout:   a.Config.Retailers.Amazon.RequestTimeout,
		UserAgent: a.Config.Retailers.Amazon.UserAgent,
	}, a.Logger)

	flipkart = fetcher.NewClient(fetcher.Options{
		Retailer:  string(deal.RetailerFlipkart),
		BaseURL:   a.Config.Retailers.Flipkart.BaseURL,
		APIKey:    a.Config.Retailers.Flipkart.APIKey,
		Timeout:   a.Config.Retailers.Flipkart.RequestTimeout,
		UserAgent: a.Config.Retailers.Flipkart.UserAgent,
	}, a.Logger)

	return amazon, flipkart
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Email.Enabled {
		cfg := a.Config.Alerting.Email
		return alerting.NewEmailNotifier(cfg.APIKey, cfg.FromAddress, cfg.FromName, cfg.APIBase, cfg.RequestTimeout, a.Logger)
	}
	return nil
}

func (a *App) newEvaluator() *alerting.Evaluator {
	return alerting.NewEvaluator(a.Config.Alerting.Cooldown, a.Config.Alerting.DropBelowLowPct)
}

func (a *App) newScorer() *deal.Scorer {
	return deal.NewScorer(deal.Thresholds{
		GreatAbove:  a.Config.Deal.GreatAbove,
		GoodAbove:   a.Config.Deal.GoodAbove,
		MirageBelow: a.Config.Deal.MirageBelow,
	})
}

func (a *App) newSitemapBuilder() *sitemap.Builder {
	return sitemap.NewBuilder(sitemap.Options{
		PublicURL:     a.Config.Server.PublicURL,
		ChangeFreq:    a.Config.Sitemap.ChangeFreq,
		Priority:      a.Config.Sitemap.Priority,
		PingEndpoints: a.Config.Sitemap.PingEndpoints,
	}, a.Logger)
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// CollectOptions configure the collection loop.
type CollectOptions struct {
	Once bool
}

// CheckAlertsOptions configure a one-shot alert sweep.
type CheckAlertsOptions struct {
	DryRun bool
}

// SitemapOptions configure sitemap generation.
type SitemapOptions struct {
	OutputPath string
	Ping       bool
}

// ExportOptions hold parameters for exporting a product's price history.
type ExportOptions struct {
	Slug      string
	From      *time.Time
	To        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Slug  string
	Limit int
}
