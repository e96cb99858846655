package storage

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is one catalog entry tracked across both retailers.
type Product struct {
	ID            uuid.UUID
	Name          string
	Slug          string
	Category      string
	ImageURL      string
	AmazonRef     *string
	FlipkartRef   *string
	AmazonURL     *string
	FlipkartURL   *string
	OriginalPrice *decimal.Decimal
	Archived      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PriceSample is one timestamped price observation for a product.
// A nil retailer price means the product was not offered or not
// observed at that retailer at that time.
type PriceSample struct {
	ProductID           uuid.UUID
	ObservedAt          time.Time
	AmazonPrice         *decimal.Decimal
	FlipkartPrice       *decimal.Decimal
	AmazonDiscountPct   *decimal.Decimal
	FlipkartDiscountPct *decimal.Decimal
	OriginalPrice       *decimal.Decimal
	CreatedAt           time.Time
}

// TargetPriceAlert is the single alert a user holds on a product.
type TargetPriceAlert struct {
	UserID         uuid.UUID
	ProductID      uuid.UUID
	TargetPrice    decimal.Decimal
	Enabled        bool
	LastNotifiedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AlertTarget joins an enabled alert with the recipient and product
// context the sweep needs to evaluate and notify in one pass.
type AlertTarget struct {
	Alert       TargetPriceAlert
	Email       string
	ProductName string
	ProductSlug string
}

// WishlistEntry is a product on a user's wishlist.
type WishlistEntry struct {
	Product Product
	AddedAt time.Time
}

// Article is a published (or draft) content page backing the sitemap
// and the static article routes.
type Article struct {
	ID          uuid.UUID
	Slug        string
	Title       string
	HTMLPath    string
	Published   bool
	PublishedAt *time.Time
	UpdatedAt   time.Time
}
