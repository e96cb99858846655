package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"dealscope/internal/fetcher"
	"dealscope/internal/storage"
)

// Collector records one price observation per tracked product per tick.
type Collector struct {
	products storage.ProductStore
	history  storage.PriceHistoryStore
	amazon   fetcher.PriceFetcher
	flipkart fetcher.PriceFetcher
	logger   zerolog.Logger
	locker   storage.AdvisoryLocker
	lockKey  int64
}

// NewCollector constructs the collection service.
func NewCollector(products storage.ProductStore, history storage.PriceHistoryStore, amazon, flipkart fetcher.PriceFetcher, locker storage.AdvisoryLocker, lockKey int64, logger zerolog.Logger) *Collector {
	return &Collector{
		products: products,
		history:  history,
		amazon:   amazon,
		flipkart: flipkart,
		logger:   logger.With().Str("component", "collector").Logger(),
		locker:   locker,
		lockKey:  lockKey,
	}
}

// ProcessTick observes both retailers for every tracked product and
// appends one history row each. A failing product does not abort the
// rest of the batch.
func (c *Collector) ProcessTick(ctx context.Context, at time.Time) error {
	unlock, proceed, err := acquireLock(ctx, c.locker, c.lockKey)
	if err != nil {
		return err
	}
	if !proceed {
		c.logger.Debug().Time("tick", at).Msg("skip tick because advisory lock held elsewhere")
		return nil
	}
	if unlock != nil {
		defer unlock()
	}

	products, err := c.products.ListTrackedProducts(ctx)
	if err != nil {
		return fmt.Errorf("list tracked products: %w", err)
	}

	recorded := 0
	skipped := 0
	failed := 0
	for _, product := range products {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		sample := c.observe(ctx, product, at)
		if sample.AmazonPrice == nil && sample.FlipkartPrice == nil {
			skipped++
			c.logger.Debug().Str("product", product.Slug).Msg("no offer at either retailer")
			continue
		}

		if err := c.history.InsertPriceSample(ctx, sample); err != nil {
			failed++
			c.logger.Error().Err(err).Str("product", product.Slug).Msg("failed to insert price sample")
			continue
		}
		recorded++
	}

	c.logger.Info().
		Time("tick", at).
		Int("recorded", recorded).
		Int("skipped", skipped).
		Int("failed", failed).
		Msg("price collection finished")

	if failed > 0 {
		return fmt.Errorf("%d of %d products failed to record", failed, len(products))
	}
	return nil
}

func (c *Collector) observe(ctx context.Context, product storage.Product, at time.Time) storage.PriceSample {
	sample := storage.PriceSample{
		ProductID:     product.ID,
		ObservedAt:    at,
		OriginalPrice: product.OriginalPrice,
	}

	if product.AmazonRef != nil && *product.AmazonRef != "" {
		if quote, ok := c.fetchOffer(ctx, c.amazon, product.Slug, *product.AmazonRef); ok {
			price := quote.Price
			sample.AmazonPrice = &price
			sample.AmazonDiscountPct = quote.DiscountPct
			if quote.OriginalPrice != nil {
				sample.OriginalPrice = quote.OriginalPrice
			}
		}
	}

	if product.FlipkartRef != nil && *product.FlipkartRef != "" {
		if quote, ok := c.fetchOffer(ctx, c.flipkart, product.Slug, *product.FlipkartRef); ok {
			price := quote.Price
			sample.FlipkartPrice = &price
			sample.FlipkartDiscountPct = quote.DiscountPct
			if sample.OriginalPrice == nil && quote.OriginalPrice != nil {
				sample.OriginalPrice = quote.OriginalPrice
			}
		}
	}

	return sample
}

func (c *Collector) fetchOffer(ctx context.Context, client fetcher.PriceFetcher, slug, ref string) (fetcher.Quote, bool) {
	if client == nil {
		return fetcher.Quote{}, false
	}

	quote, err := client.FetchOffer(ctx, ref)
	if err != nil {
		if errors.Is(err, fetcher.ErrNotListed) {
			return fetcher.Quote{}, false
		}
		c.logger.Warn().Err(err).Str("product", slug).Str("ref", ref).Msg("offer lookup failed")
		return fetcher.Quote{}, false
	}
	if !quote.InStock {
		return fetcher.Quote{}, false
	}
	return quote, true
}

func acquireLock(ctx context.Context, locker storage.AdvisoryLocker, key int64) (func(), bool, error) {
	if key == 0 || locker == nil {
		return nil, true, nil
	}
	unlock, acquired, err := locker.TryAdvisoryLock(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}
	return unlock, true, nil
}
