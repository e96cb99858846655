package deal

import (
	"github.com/shopspring/decimal"

	"dealscope/internal/storage"
)

// Retailer identifies one of the two tracked storefronts.
type Retailer string

const (
	RetailerAmazon   Retailer = "amazon"
	RetailerFlipkart Retailer = "flipkart"
)

// BestPrice returns the lower of the prices that are present and
// positive, or zero when neither retailer offers the product.
func BestPrice(amazon, flipkart *decimal.Decimal) decimal.Decimal {
	if price := minPositive(amazon, flipkart); price != nil {
		return *price
	}
	return decimal.Zero
}

// CheapestRetailer names the retailer with the lower present price.
// Ties favour amazon, as does an amazon-only listing.
func CheapestRetailer(amazon, flipkart *decimal.Decimal) Retailer {
	if isPositive(amazon) {
		if !isPositive(flipkart) || amazon.LessThanOrEqual(*flipkart) {
			return RetailerAmazon
		}
		return RetailerFlipkart
	}
	if isPositive(flipkart) {
		return RetailerFlipkart
	}
	return RetailerAmazon
}

// CurrentRetailerPrice finds a retailer's current price: the most recent
// sample in which that retailer's price is positive. This is not
// necessarily the newest row, since either retailer may be absent from
// the latest observation.
func CurrentRetailerPrice(history []storage.PriceSample, retailer Retailer) *decimal.Decimal {
	var best *storage.PriceSample
	for i := range history {
		price := retailerPrice(&history[i], retailer)
		if !isPositive(price) {
			continue
		}
		if best == nil || history[i].ObservedAt.After(best.ObservedAt) {
			best = &history[i]
		}
	}
	if best == nil {
		return nil
	}
	return retailerPrice(best, retailer)
}

// BestCurrentPrice is the lower of the two per-retailer current prices,
// or zero when no retailer has a positive observation.
func BestCurrentPrice(history []storage.PriceSample) decimal.Decimal {
	amazon := CurrentRetailerPrice(history, RetailerAmazon)
	flipkart := CurrentRetailerPrice(history, RetailerFlipkart)
	return BestPrice(amazon, flipkart)
}

func retailerPrice(sample *storage.PriceSample, retailer Retailer) *decimal.Decimal {
	if retailer == RetailerFlipkart {
		return sample.FlipkartPrice
	}
	return sample.AmazonPrice
}
