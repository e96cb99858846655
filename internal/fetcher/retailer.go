package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Options parameterise one storefront price client.
type Options struct {
	Retailer  string
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	UserAgent string
}

// Client fetches current offers from a retailer's price endpoint.
type Client struct {
	opts Options
	http *resty.Client
	log  zerolog.Logger
}

// NewClient constructs a storefront price client.
func NewClient(opts Options, logger zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = "dealscope/1.0"
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent)
	if opts.APIKey != "" {
		httpClient.SetAuthToken(opts.APIKey)
	}

	return &Client{
		opts: opts,
		http: httpClient,
		log:  logger.With().Str("component", "fetcher").Str("retailer", opts.Retailer).Logger(),
	}
}

type offerResponse struct {
	Price           string   `json:"price"`
	MRP             string   `json:"mrp"`
	DiscountPercent *float64 `json:"discount_percent"`
	InStock         bool     `json:"in_stock"`
}

type offerError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// FetchOffer retrieves the current offer for one listing reference.
func (c *Client) FetchOffer(ctx context.Context, ref string) (Quote, error) {
	if c.opts.BaseURL == "" {
		return Quote{}, errors.New("retailer base url not configured")
	}
	if ref == "" {
		return Quote{}, errors.New("listing reference required")
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("ref", ref).
		Get("/offers/{ref}")
	if err != nil {
		return Quote{}, fmt.Errorf("fetch offer: %w", err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return Quote{}, ErrNotListed
	}
	if resp.IsError() {
		return Quote{}, parseOfferError(resp.StatusCode(), resp.Body())
	}

	var offer offerResponse
	if err := json.Unmarshal(resp.Body(), &offer); err != nil {
		return Quote{}, fmt.Errorf("decode offer: %w", err)
	}

	price, err := decimal.NewFromString(offer.Price)
	if err != nil {
		return Quote{}, fmt.Errorf("parse offer price: %w", err)
	}
	if !price.IsPositive() {
		return Quote{}, fmt.Errorf("offer price not positive: %s", offer.Price)
	}

	quote := Quote{Price: price, InStock: offer.InStock}

	if offer.MRP != "" {
		mrp, convErr := decimal.NewFromString(offer.MRP)
		if convErr != nil {
			return Quote{}, fmt.Errorf("parse offer mrp: %w", convErr)
		}
		quote.OriginalPrice = &mrp
	}
	if offer.DiscountPercent != nil {
		pct := decimal.NewFromFloat(*offer.DiscountPercent)
		quote.DiscountPct = &pct
	}

	return quote, nil
}

func parseOfferError(status int, payload []byte) error {
	var apiErr offerError
	if err := json.Unmarshal(payload, &apiErr); err == nil {
		if apiErr.Message != "" {
			return fmt.Errorf("retailer api error (%d): %s", status, apiErr.Message)
		}
		if apiErr.Error != "" {
			return fmt.Errorf("retailer api error (%d): %s", status, apiErr.Error)
		}
	}
	if len(payload) > 0 {
		return fmt.Errorf("retailer api error (%d): %s", status, strings.TrimSpace(string(payload)))
	}
	return fmt.Errorf("retailer api error (%d)", status)
}

var _ PriceFetcher = (*Client)(nil)
