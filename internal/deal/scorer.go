package deal

import (
	"sort"

	"github.com/shopspring/decimal"

	"dealscope/internal/storage"
)

// Verdict labels a score band.
type Verdict string

const (
	VerdictGreat   Verdict = "Great Deal"
	VerdictGood    Verdict = "Good Deal"
	VerdictAverage Verdict = "Average Deal"
	VerdictMirage  Verdict = "Deal Mirage"
)

// Tone qualifies a reason line.
type Tone string

const (
	ToneGood    Tone = "good"
	ToneBad     Tone = "bad"
	ToneNeutral Tone = "neutral"
)

// Reason is one line of the analysis explanation, in evaluation order.
type Reason struct {
	Label string
	Value string
	Tone  Tone
}

// Stats aggregates the flattened price history.
type Stats struct {
	Highest decimal.Decimal
	Lowest  decimal.Decimal
	Average decimal.Decimal
	Current decimal.Decimal
}

// Analysis is the derived deal quality for one product. It is computed
// fresh on every read and never persisted.
type Analysis struct {
	Score   int
	Verdict Verdict
	Reasons []Reason
	Stats   Stats
}

// Thresholds are the score-to-verdict band boundaries. The bands in the
// upstream data are not contiguous, so matching is by priority: above
// GreatAbove first, then above GoodAbove, then below MirageBelow, and
// everything left is average.
type Thresholds struct {
	GreatAbove  int
	GoodAbove   int
	MirageBelow int
}

// DefaultThresholds mirror the production site's bands.
var DefaultThresholds = Thresholds{GreatAbove: 70, GoodAbove: 50, MirageBelow: 30}

const (
	baseScore       = 50
	lastSaleBonus   = 20
	allTimeLowBonus = 30
	aboveLowPenalty = 10
	averageAdjust   = 10
	scoreFloor      = 0
	scoreCeiling    = 100
)

// Scorer computes deal analyses with a fixed set of verdict bands.
type Scorer struct {
	bands Thresholds
}

// NewScorer builds a scorer; zero-value bands fall back to the defaults.
func NewScorer(bands Thresholds) *Scorer {
	if bands == (Thresholds{}) {
		bands = DefaultThresholds
	}
	return &Scorer{bands: bands}
}

// Analyze scores the current price against a product's price history.
// The history may arrive in any order. Returns nil when the current
// price is not positive or the history holds no positive price, in
// which case callers omit the analysis entirely.
func (s *Scorer) Analyze(history []storage.PriceSample, currentPrice decimal.Decimal) *Analysis {
	if !currentPrice.IsPositive() || len(history) == 0 {
		return nil
	}

	sorted := make([]storage.PriceSample, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ObservedAt.After(sorted[j].ObservedAt)
	})

	flattened := flattenPositive(sorted)
	if len(flattened) == 0 {
		return nil
	}

	lowest, highest, average := summarize(flattened)

	score := baseScore
	reasons := make([]Reason, 0, 3)

	lastSale := lastSaleReference(sorted, average)
	switch currentPrice.Cmp(lastSale) {
	case 1:
		score -= lastSaleBonus
		reasons = append(reasons, Reason{
			Label: "Above last sale price",
			Value: lastSale.StringFixed(2),
			Tone:  ToneBad,
		})
	case -1:
		score += lastSaleBonus
		reasons = append(reasons, Reason{
			Label: "Below last sale price",
			Value: lastSale.StringFixed(2),
			Tone:  ToneGood,
		})
	default:
		reasons = append(reasons, Reason{
			Label: "Same as last sale price",
			Value: lastSale.StringFixed(2),
			Tone:  ToneNeutral,
		})
	}

	if currentPrice.GreaterThan(lowest) {
		score -= aboveLowPenalty
		reasons = append(reasons, Reason{
			Label: "Above all-time low",
			Value: lowest.StringFixed(2),
			Tone:  ToneBad,
		})
	} else {
		score += allTimeLowBonus
		reasons = append(reasons, Reason{
			Label: "At all-time low",
			Value: lowest.StringFixed(2),
			Tone:  ToneGood,
		})
	}

	if currentPrice.GreaterThan(average) {
		score -= averageAdjust
		reasons = append(reasons, Reason{
			Label: "Above average price",
			Value: average.StringFixed(2),
			Tone:  ToneBad,
		})
	} else {
		score += averageAdjust
		reasons = append(reasons, Reason{
			Label: "At or below average price",
			Value: average.StringFixed(2),
			Tone:  ToneGood,
		})
	}

	score = clamp(score)

	return &Analysis{
		Score:   score,
		Verdict: s.verdict(score),
		Reasons: reasons,
		Stats: Stats{
			Highest: highest,
			Lowest:  lowest,
			Average: average,
			Current: currentPrice,
		},
	}
}

func (s *Scorer) verdict(score int) Verdict {
	switch {
	case score > s.bands.GreatAbove:
		return VerdictGreat
	case score > s.bands.GoodAbove:
		return VerdictGood
	case score < s.bands.MirageBelow:
		return VerdictMirage
	default:
		return VerdictAverage
	}
}

// flattenPositive collects every positive retailer price across the history.
func flattenPositive(samples []storage.PriceSample) []decimal.Decimal {
	prices := make([]decimal.Decimal, 0, len(samples)*2)
	for _, sample := range samples {
		if isPositive(sample.AmazonPrice) {
			prices = append(prices, *sample.AmazonPrice)
		}
		if isPositive(sample.FlipkartPrice) {
			prices = append(prices, *sample.FlipkartPrice)
		}
	}
	return prices
}

func summarize(prices []decimal.Decimal) (lowest, highest, average decimal.Decimal) {
	lowest = prices[0]
	highest = prices[0]
	sum := decimal.Zero
	for _, price := range prices {
		if price.LessThan(lowest) {
			lowest = price
		}
		if price.GreaterThan(highest) {
			highest = price
		}
		sum = sum.Add(price)
	}
	average = sum.Div(decimal.NewFromInt(int64(len(prices)))).RoundDown(0)
	return lowest, highest, average
}

// lastSaleReference is the minimum positive price of the second-most-recent
// sample; when no such price exists the average stands in.
func lastSaleReference(sortedDesc []storage.PriceSample, average decimal.Decimal) decimal.Decimal {
	if len(sortedDesc) < 2 {
		return average
	}
	previous := sortedDesc[1]
	if price := minPositive(previous.AmazonPrice, previous.FlipkartPrice); price != nil {
		return *price
	}
	return average
}

func minPositive(a, b *decimal.Decimal) *decimal.Decimal {
	switch {
	case isPositive(a) && isPositive(b):
		if a.LessThanOrEqual(*b) {
			return a
		}
		return b
	case isPositive(a):
		return a
	case isPositive(b):
		return b
	default:
		return nil
	}
}

func isPositive(d *decimal.Decimal) bool {
	return d != nil && d.IsPositive()
}

func clamp(score int) int {
	if score < scoreFloor {
		return scoreFloor
	}
	if score > scoreCeiling {
		return scoreCeiling
	}
	return score
}
