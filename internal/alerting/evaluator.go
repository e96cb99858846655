package alerting

import (
	"time"

	"github.com/shopspring/decimal"

	"dealscope/internal/storage"
)

// DefaultCooldown is the minimum gap between two notifications for the
// same alert.
const DefaultCooldown = 24 * time.Hour

// Evaluator decides whether a target-price alert fires right now.
type Evaluator struct {
	cooldown   time.Duration
	dropFactor decimal.Decimal
}

// NewEvaluator builds an evaluator. dropBelowLowPct is the percentage
// under the all-time low that qualifies on its own (10 means "current
// price at or below 90% of the lowest ever seen").
func NewEvaluator(cooldown time.Duration, dropBelowLowPct float64) *Evaluator {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(dropBelowLowPct).Div(decimal.NewFromInt(100)))
	return &Evaluator{cooldown: cooldown, dropFactor: factor}
}

// ShouldNotify reports whether the alert qualifies at the current price.
// The caller must have resolved currentPrice as the best positive price
// across retailers and must skip evaluation when none exists. On true,
// the caller sends the notification and stamps LastNotifiedAt only
// after delivery succeeds.
func (e *Evaluator) ShouldNotify(alert storage.TargetPriceAlert, currentPrice, allTimeLow decimal.Decimal, now time.Time) bool {
	if !alert.Enabled {
		return false
	}
	if !currentPrice.IsPositive() {
		return false
	}
	if alert.LastNotifiedAt != nil && now.Sub(*alert.LastNotifiedAt) < e.cooldown {
		return false
	}

	if allTimeLow.IsPositive() && currentPrice.LessThanOrEqual(allTimeLow.Mul(e.dropFactor)) {
		return true
	}
	if alert.TargetPrice.IsPositive() && currentPrice.LessThanOrEqual(alert.TargetPrice) {
		return true
	}
	return false
}
