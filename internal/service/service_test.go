package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"dealscope/internal/alerting"
	"dealscope/internal/fetcher"
	"dealscope/internal/storage"
)

var svcNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type fakeAlertStore struct {
	targets    []storage.AlertTarget
	notifiedAt map[uuid.UUID]time.Time
	markErr    error
}

func (f *fakeAlertStore) UpsertAlert(ctx context.Context, alert storage.TargetPriceAlert) (storage.TargetPriceAlert, error) {
	return alert, nil
}

func (f *fakeAlertStore) GetAlert(ctx context.Context, userID, productID uuid.UUID) (storage.TargetPriceAlert, error) {
	return storage.TargetPriceAlert{}, errors.New("not implemented")
}

func (f *fakeAlertStore) DeleteAlert(ctx context.Context, userID, productID uuid.UUID) error {
	return nil
}

func (f *fakeAlertStore) ListEnabledAlertTargets(ctx context.Context) ([]storage.AlertTarget, error) {
	return f.targets, nil
}

func (f *fakeAlertStore) MarkAlertNotified(ctx context.Context, userID, productID uuid.UUID, at time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	if f.notifiedAt == nil {
		f.notifiedAt = make(map[uuid.UUID]time.Time)
	}
	f.notifiedAt[productID] = at
	return nil
}

type fakeHistoryStore struct {
	samples map[uuid.UUID][]storage.PriceSample
	lows    map[uuid.UUID]decimal.Decimal
	listErr error
	inserts []storage.PriceSample
}

func (f *fakeHistoryStore) InsertPriceSample(ctx context.Context, sample storage.PriceSample) error {
	f.inserts = append(f.inserts, sample)
	return nil
}

func (f *fakeHistoryStore) ListRecentSamples(ctx context.Context, productID uuid.UUID, limit int) ([]storage.PriceSample, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.samples[productID], nil
}

func (f *fakeHistoryStore) ListSamplesBetween(ctx context.Context, productID uuid.UUID, from, to time.Time) ([]storage.PriceSample, error) {
	return f.samples[productID], nil
}

func (f *fakeHistoryStore) AllTimeLowPrice(ctx context.Context, productID uuid.UUID) (decimal.Decimal, bool, error) {
	low, ok := f.lows[productID]
	return low, ok, nil
}

type fakeNotifier struct {
	sent []alerting.Notification
	err  error
}

func (f *fakeNotifier) Notify(ctx context.Context, note alerting.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, note)
	return nil
}

func decp(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func alertTarget(productID uuid.UUID, target int64, lastNotified *time.Time) storage.AlertTarget {
	return storage.AlertTarget{
		Alert: storage.TargetPriceAlert{
			UserID:         uuid.New(),
			ProductID:      productID,
			TargetPrice:    decimal.NewFromInt(target),
			Enabled:        true,
			LastNotifiedAt: lastNotified,
		},
		Email:       "shopper@example.com",
		ProductName: "Test product",
		ProductSlug: "test-product",
	}
}

func historyFor(productID uuid.UUID, current int64) *fakeHistoryStore {
	return &fakeHistoryStore{
		samples: map[uuid.UUID][]storage.PriceSample{
			productID: {
				{ProductID: productID, ObservedAt: svcNow, AmazonPrice: decp(current)},
				{ProductID: productID, ObservedAt: svcNow.Add(-time.Hour), AmazonPrice: decp(current + 200)},
			},
		},
		lows: map[uuid.UUID]decimal.Decimal{productID: decimal.NewFromInt(current)},
	}
}

func newTestSweeper(alerts *fakeAlertStore, history *fakeHistoryStore, notifier alerting.Notifier, dryRun bool) *Sweeper {
	sweeper := NewSweeper(
		alerts,
		history,
		notifier,
		alerting.NewEvaluator(alerting.DefaultCooldown, 10),
		nil,
		SweeperOptions{HistoryDepth: 10, PublicURL: "https://dealscope.app", DryRun: dryRun},
		zerolog.Nop(),
	)
	sweeper.now = func() time.Time { return svcNow }
	return sweeper
}

func TestSweepNotifiesAndStampsCooldown(t *testing.T) {
	productID := uuid.New()
	alerts := &fakeAlertStore{targets: []storage.AlertTarget{alertTarget(productID, 500, nil)}}
	notifier := &fakeNotifier{}

	result, err := newTestSweeper(alerts, historyFor(productID, 480), notifier, false).Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if result.Notified != 1 || result.Failed != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.sent))
	}
	if notifier.sent[0].ProductURL != "https://dealscope.app/product/test-product" {
		t.Fatalf("unexpected product url %q", notifier.sent[0].ProductURL)
	}
	if _, stamped := alerts.notifiedAt[productID]; !stamped {
		t.Fatal("cooldown marker should be stamped after delivery")
	}
}

func TestSweepDeliveryFailureLeavesCooldownUnstamped(t *testing.T) {
	productID := uuid.New()
	alerts := &fakeAlertStore{targets: []storage.AlertTarget{alertTarget(productID, 500, nil)}}
	notifier := &fakeNotifier{err: errors.New("smtp down")}

	result, err := newTestSweeper(alerts, historyFor(productID, 480), notifier, false).Sweep(context.Background())
	if err != nil {
		t.Fatalf("a failing delivery must not abort the sweep: %v", err)
	}
	if result.Failed != 1 || result.Notified != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(alerts.notifiedAt) != 0 {
		t.Fatal("failed delivery must not stamp the cooldown marker")
	}
}

func TestSweepRespectsCooldown(t *testing.T) {
	productID := uuid.New()
	oneHourAgo := svcNow.Add(-time.Hour)
	alerts := &fakeAlertStore{targets: []storage.AlertTarget{alertTarget(productID, 500, &oneHourAgo)}}
	notifier := &fakeNotifier{}

	result, err := newTestSweeper(alerts, historyFor(productID, 480), notifier, false).Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if result.Skipped != 1 || len(notifier.sent) != 0 {
		t.Fatalf("cooldown should suppress the alert, got %+v", result)
	}
}

func TestSweepSkipsAlertsWithoutPrices(t *testing.T) {
	productID := uuid.New()
	alerts := &fakeAlertStore{targets: []storage.AlertTarget{alertTarget(productID, 500, nil)}}
	history := &fakeHistoryStore{samples: map[uuid.UUID][]storage.PriceSample{}, lows: map[uuid.UUID]decimal.Decimal{}}
	notifier := &fakeNotifier{}

	result, err := newTestSweeper(alerts, history, notifier, false).Sweep(context.Background())
	if err != nil {
		t.Fatalf("missing price data must not fail the batch: %v", err)
	}
	if result.Skipped != 1 || result.Failed != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestSweepDryRunSendsNothing(t *testing.T) {
	productID := uuid.New()
	alerts := &fakeAlertStore{targets: []storage.AlertTarget{alertTarget(productID, 500, nil)}}
	notifier := &fakeNotifier{}

	result, err := newTestSweeper(alerts, historyFor(productID, 480), notifier, true).Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if result.Notified != 1 {
		t.Fatalf("dry run should still count qualifying alerts, got %+v", result)
	}
	if len(notifier.sent) != 0 {
		t.Fatal("dry run must not send email")
	}
	if len(alerts.notifiedAt) != 0 {
		t.Fatal("dry run must not stamp cooldown markers")
	}
}

type fakeProductStore struct {
	products []storage.Product
}

func (f *fakeProductStore) UpsertProduct(ctx context.Context, product storage.Product) (storage.Product, error) {
	return product, nil
}

func (f *fakeProductStore) GetProductBySlug(ctx context.Context, slug string) (storage.Product, error) {
	return storage.Product{}, errors.New("not implemented")
}

func (f *fakeProductStore) GetProductByID(ctx context.Context, id uuid.UUID) (storage.Product, error) {
	return storage.Product{}, errors.New("not implemented")
}

func (f *fakeProductStore) ListProducts(ctx context.Context, search string, limit, offset int) ([]storage.Product, error) {
	return f.products, nil
}

func (f *fakeProductStore) ListTrackedProducts(ctx context.Context) ([]storage.Product, error) {
	return f.products, nil
}

func (f *fakeProductStore) ArchiveProduct(ctx context.Context, id uuid.UUID) error {
	return nil
}

type fakeFetcher struct {
	quotes map[string]fetcher.Quote
	err    error
}

func (f *fakeFetcher) FetchOffer(ctx context.Context, ref string) (fetcher.Quote, error) {
	if f.err != nil {
		return fetcher.Quote{}, f.err
	}
	quote, ok := f.quotes[ref]
	if !ok {
		return fetcher.Quote{}, fetcher.ErrNotListed
	}
	return quote, nil
}

func strp(s string) *string { return &s }

func TestCollectorRecordsSamples(t *testing.T) {
	products := &fakeProductStore{products: []storage.Product{
		{ID: uuid.New(), Slug: "phone", AmazonRef: strp("AMZ1"), FlipkartRef: strp("FK1")},
		{ID: uuid.New(), Slug: "untracked", AmazonRef: strp("AMZ404")},
	}}
	history := &fakeHistoryStore{}
	amazon := &fakeFetcher{quotes: map[string]fetcher.Quote{
		"AMZ1": {Price: decimal.NewFromInt(999), InStock: true},
	}}
	flipkart := &fakeFetcher{quotes: map[string]fetcher.Quote{
		"FK1": {Price: decimal.NewFromInt(949), InStock: true},
	}}

	collector := NewCollector(products, history, amazon, flipkart, nil, 0, zerolog.Nop())
	if err := collector.ProcessTick(context.Background(), svcNow); err != nil {
		t.Fatalf("collection failed: %v", err)
	}

	if len(history.inserts) != 1 {
		t.Fatalf("expected one recorded sample, got %d", len(history.inserts))
	}
	sample := history.inserts[0]
	if sample.AmazonPrice == nil || !sample.AmazonPrice.Equal(decimal.NewFromInt(999)) {
		t.Fatalf("amazon price not recorded: %v", sample.AmazonPrice)
	}
	if sample.FlipkartPrice == nil || !sample.FlipkartPrice.Equal(decimal.NewFromInt(949)) {
		t.Fatalf("flipkart price not recorded: %v", sample.FlipkartPrice)
	}
	if !sample.ObservedAt.Equal(svcNow) {
		t.Fatalf("observation timestamp should be the tick time, got %s", sample.ObservedAt)
	}
}

func TestCollectorSkipsOutOfStockOffers(t *testing.T) {
	productID := uuid.New()
	products := &fakeProductStore{products: []storage.Product{
		{ID: productID, Slug: "tv", AmazonRef: strp("AMZ2")},
	}}
	history := &fakeHistoryStore{}
	amazon := &fakeFetcher{quotes: map[string]fetcher.Quote{
		"AMZ2": {Price: decimal.NewFromInt(30000), InStock: false},
	}}

	collector := NewCollector(products, history, amazon, &fakeFetcher{}, nil, 0, zerolog.Nop())
	if err := collector.ProcessTick(context.Background(), svcNow); err != nil {
		t.Fatalf("collection failed: %v", err)
	}
	if len(history.inserts) != 0 {
		t.Fatalf("out-of-stock offers must not be recorded, got %d rows", len(history.inserts))
	}
}
