package alerting

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"dealscope/internal/storage"
)

var evalNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func testAlert(target int64, lastNotified *time.Time) storage.TargetPriceAlert {
	return storage.TargetPriceAlert{
		TargetPrice:    decimal.NewFromInt(target),
		Enabled:        true,
		LastNotifiedAt: lastNotified,
	}
}

func TestShouldNotifyTargetPriceMet(t *testing.T) {
	eval := NewEvaluator(DefaultCooldown, 10)

	alert := testAlert(500, nil)
	if !eval.ShouldNotify(alert, decimal.NewFromInt(500), decimal.NewFromInt(450), evalNow) {
		t.Fatal("current price equal to target should notify")
	}
	if eval.ShouldNotify(alert, decimal.NewFromInt(501), decimal.NewFromInt(450), evalNow) {
		t.Fatal("current price above target without a qualifying drop should not notify")
	}
}

func TestShouldNotifyDropBelowLowestEver(t *testing.T) {
	eval := NewEvaluator(DefaultCooldown, 10)

	// No target set, but price fell to 90% of the all-time low.
	alert := storage.TargetPriceAlert{Enabled: true}
	if !eval.ShouldNotify(alert, decimal.NewFromInt(900), decimal.NewFromInt(1000), evalNow) {
		t.Fatal("10% under the all-time low should notify")
	}
	if eval.ShouldNotify(alert, decimal.NewFromInt(901), decimal.NewFromInt(1000), evalNow) {
		t.Fatal("a smaller drop should not notify without a target")
	}
}

func TestShouldNotifyCooldown(t *testing.T) {
	eval := NewEvaluator(DefaultCooldown, 10)

	oneHourAgo := evalNow.Add(-time.Hour)
	if eval.ShouldNotify(testAlert(500, &oneHourAgo), decimal.NewFromInt(400), decimal.NewFromInt(450), evalNow) {
		t.Fatal("notification one hour ago should suppress a qualifying alert")
	}

	dayAndHourAgo := evalNow.Add(-25 * time.Hour)
	if !eval.ShouldNotify(testAlert(500, &dayAndHourAgo), decimal.NewFromInt(400), decimal.NewFromInt(450), evalNow) {
		t.Fatal("notification 25 hours ago should allow a qualifying alert")
	}
}

func TestShouldNotifyDisabledOrMissingPrice(t *testing.T) {
	eval := NewEvaluator(DefaultCooldown, 10)

	disabled := testAlert(500, nil)
	disabled.Enabled = false
	if eval.ShouldNotify(disabled, decimal.NewFromInt(100), decimal.NewFromInt(450), evalNow) {
		t.Fatal("disabled alerts must never notify")
	}

	if eval.ShouldNotify(testAlert(500, nil), decimal.Zero, decimal.NewFromInt(450), evalNow) {
		t.Fatal("missing current price must never notify")
	}
}

func TestShouldNotifyCustomCooldown(t *testing.T) {
	eval := NewEvaluator(2*time.Hour, 10)

	threeHoursAgo := evalNow.Add(-3 * time.Hour)
	if !eval.ShouldNotify(testAlert(500, &threeHoursAgo), decimal.NewFromInt(400), decimal.NewFromInt(450), evalNow) {
		t.Fatal("custom cooldown already elapsed should allow the alert")
	}
}
