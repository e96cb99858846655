package alerting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func testNotification() Notification {
	return Notification{
		Email:        "shopper@example.com",
		ProductName:  "Noise-cancelling headphones",
		ProductURL:   "https://dealscope.app/product/headphones",
		CurrentPrice: decimal.NewFromInt(4999),
		TargetPrice:  decimal.NewFromInt(5500),
		AllTimeLow:   decimal.NewFromInt(4799),
	}
}

func TestEmailNotifierSuccess(t *testing.T) {
	var received emailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/emails") {
			t.Fatalf("path should end in /emails, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "msg_1"})
	}))
	defer srv.Close()

	notifier := NewEmailNotifier("key", "alerts@dealscope.app", "Dealscope", srv.URL, time.Second, zerolog.Nop())
	if err := notifier.Notify(context.Background(), testNotification()); err != nil {
		t.Fatalf("Notify should succeed: %v", err)
	}

	if len(received.To) != 1 || received.To[0] != "shopper@example.com" {
		t.Fatalf("recipient not forwarded: %#v", received.To)
	}
	if !strings.Contains(received.Subject, "Noise-cancelling headphones") {
		t.Fatalf("subject should name the product: %q", received.Subject)
	}
	if !strings.Contains(received.HTML, "4999.00") {
		t.Fatalf("body should carry the current price: %q", received.HTML)
	}
	if !strings.Contains(received.HTML, "https://dealscope.app/product/headphones") {
		t.Fatalf("body should link the product page: %q", received.HTML)
	}
}

func TestEmailNotifierHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	notifier := NewEmailNotifier("key", "alerts@dealscope.app", "Dealscope", srv.URL, time.Second, zerolog.Nop())
	if err := notifier.Notify(context.Background(), testNotification()); err == nil {
		t.Fatal("4xx response should surface an error")
	}
}

func TestEmailNotifierMissingMessageID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	notifier := NewEmailNotifier("key", "alerts@dealscope.app", "Dealscope", srv.URL, time.Second, zerolog.Nop())
	if err := notifier.Notify(context.Background(), testNotification()); err == nil {
		t.Fatal("missing message id should surface an error")
	}
}
