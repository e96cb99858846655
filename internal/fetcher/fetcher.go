package fetcher

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNotListed indicates the retailer does not carry the requested
// listing; callers record the observation with no price for that side.
var ErrNotListed = errors.New("fetcher: listing not found")

// Quote is one observed storefront offer.
type Quote struct {
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	DiscountPct   *decimal.Decimal
	InStock       bool
}

// PriceFetcher retrieves the current offer for one retailer listing.
type PriceFetcher interface {
	FetchOffer(ctx context.Context, ref string) (Quote, error)
}
