package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func TestFetchOfferSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/offers/B0TEST123" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		discount := 37.5
		_ = json.NewEncoder(w).Encode(map[string]any{
			"price":            "4999.00",
			"mrp":              "7999.00",
			"discount_percent": discount,
			"in_stock":         true,
		})
	}))
	defer srv.Close()

	client := NewClient(Options{
		Retailer:  "amazon",
		BaseURL:   srv.URL,
		Timeout:   time.Second,
		UserAgent: "test",
	}, zerolog.Nop())

	quote, err := client.FetchOffer(context.Background(), "B0TEST123")
	if err != nil {
		t.Fatalf("FetchOffer should succeed: %v", err)
	}
	if !quote.Price.Equal(decimal.NewFromInt(4999)) {
		t.Fatalf("expected price 4999, got %s", quote.Price)
	}
	if quote.OriginalPrice == nil || !quote.OriginalPrice.Equal(decimal.NewFromInt(7999)) {
		t.Fatalf("expected mrp 7999, got %v", quote.OriginalPrice)
	}
	if quote.DiscountPct == nil {
		t.Fatal("expected discount percent")
	}
	if !quote.InStock {
		t.Fatal("expected in-stock offer")
	}
}

func TestFetchOfferNotListed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(Options{Retailer: "flipkart", BaseURL: srv.URL, Timeout: time.Second}, zerolog.Nop())
	if _, err := client.FetchOffer(context.Background(), "FK123"); !errors.Is(err, ErrNotListed) {
		t.Fatalf("404 should map to ErrNotListed, got %v", err)
	}
}

func TestFetchOfferAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "rate limited"})
	}))
	defer srv.Close()

	client := NewClient(Options{Retailer: "amazon", BaseURL: srv.URL, Timeout: time.Second}, zerolog.Nop())
	if _, err := client.FetchOffer(context.Background(), "B0TEST123"); err == nil {
		t.Fatal("429 should surface an error")
	}
}

func TestFetchOfferRejectsBadPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"price": "0", "in_stock": true})
	}))
	defer srv.Close()

	client := NewClient(Options{Retailer: "amazon", BaseURL: srv.URL, Timeout: time.Second}, zerolog.Nop())
	if _, err := client.FetchOffer(context.Background(), "B0TEST123"); err == nil {
		t.Fatal("non-positive price should surface an error")
	}
}

func TestFetchOfferMissingConfig(t *testing.T) {
	client := NewClient(Options{Retailer: "amazon"}, zerolog.Nop())
	if _, err := client.FetchOffer(context.Background(), "B0TEST123"); err == nil {
		t.Fatal("missing base url should surface an error")
	}
	client = NewClient(Options{Retailer: "amazon", BaseURL: "http://localhost"}, zerolog.Nop())
	if _, err := client.FetchOffer(context.Background(), ""); err == nil {
		t.Fatal("missing ref should surface an error")
	}
}
