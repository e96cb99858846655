package deal

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"dealscope/internal/storage"
)

var testBase = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func price(v float64) *decimal.Decimal {
	if v <= 0 {
		return nil
	}
	d := decimal.NewFromFloat(v)
	return &d
}

func sample(hoursAgo int, amazon, flipkart float64) storage.PriceSample {
	return storage.PriceSample{
		ObservedAt:    testBase.Add(-time.Duration(hoursAgo) * time.Hour),
		AmazonPrice:   price(amazon),
		FlipkartPrice: price(flipkart),
	}
}

func TestAnalyzeAllTimeLowIsGreatDeal(t *testing.T) {
	history := []storage.PriceSample{
		sample(0, 900, 950),
		sample(24, 1000, 1000),
	}

	analysis := NewScorer(DefaultThresholds).Analyze(history, decimal.NewFromInt(900))
	if analysis == nil {
		t.Fatal("expected an analysis")
	}
	if analysis.Score != 100 {
		t.Fatalf("expected score 100, got %d", analysis.Score)
	}
	if analysis.Verdict != VerdictGreat {
		t.Fatalf("expected %q, got %q", VerdictGreat, analysis.Verdict)
	}
	if !analysis.Stats.Lowest.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("expected lowest 900, got %s", analysis.Stats.Lowest)
	}
	if !analysis.Stats.Average.Equal(decimal.NewFromInt(962)) {
		t.Fatalf("expected average 962, got %s", analysis.Stats.Average)
	}
	if !analysis.Stats.Highest.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected highest 1000, got %s", analysis.Stats.Highest)
	}
}

func TestAnalyzeAtLastSalePriceIsAverage(t *testing.T) {
	history := []storage.PriceSample{
		sample(0, 900, 950),
		sample(24, 1000, 1000),
	}

	analysis := NewScorer(DefaultThresholds).Analyze(history, decimal.NewFromInt(1000))
	if analysis == nil {
		t.Fatal("expected an analysis")
	}
	if analysis.Score != 30 {
		t.Fatalf("expected score 30, got %d", analysis.Score)
	}
	if analysis.Verdict != VerdictAverage {
		t.Fatalf("expected %q, got %q", VerdictAverage, analysis.Verdict)
	}
	if analysis.Reasons[0].Tone != ToneNeutral {
		t.Fatalf("equal last-sale comparison should be neutral, got %q", analysis.Reasons[0].Tone)
	}
}

func TestAnalyzeReasonOrderIsFixed(t *testing.T) {
	history := []storage.PriceSample{
		sample(0, 900, 950),
		sample(24, 1000, 1000),
	}

	analysis := NewScorer(DefaultThresholds).Analyze(history, decimal.NewFromInt(920))
	if analysis == nil {
		t.Fatal("expected an analysis")
	}
	if len(analysis.Reasons) != 3 {
		t.Fatalf("expected 3 reasons, got %d", len(analysis.Reasons))
	}
	if analysis.Reasons[0].Label != "Below last sale price" {
		t.Fatalf("first reason should compare against last sale, got %q", analysis.Reasons[0].Label)
	}
	if analysis.Reasons[1].Label != "Above all-time low" {
		t.Fatalf("second reason should compare against all-time low, got %q", analysis.Reasons[1].Label)
	}
	if analysis.Reasons[2].Label != "At or below average price" {
		t.Fatalf("third reason should compare against average, got %q", analysis.Reasons[2].Label)
	}
}

func TestAnalyzeScoreStaysClamped(t *testing.T) {
	history := []storage.PriceSample{
		sample(0, 10, 10),
		sample(24, 10, 10),
	}

	// Far above every reference: 50-20-10-10 = 10, well inside range,
	// so push both directions with extreme inputs.
	high := NewScorer(DefaultThresholds).Analyze(history, decimal.NewFromInt(100000))
	if high == nil {
		t.Fatal("expected an analysis")
	}
	if high.Score < 0 || high.Score > 100 {
		t.Fatalf("score out of range: %d", high.Score)
	}

	low := NewScorer(DefaultThresholds).Analyze(history, decimal.NewFromInt(1))
	if low == nil {
		t.Fatal("expected an analysis")
	}
	if low.Score != 100 {
		t.Fatalf("expected clamped 100, got %d", low.Score)
	}
}

func TestAnalyzeAtOrBelowLowGetsBonusNeverMirage(t *testing.T) {
	history := []storage.PriceSample{
		sample(0, 500, 520),
		sample(24, 480, 0),
		sample(48, 510, 530),
	}

	analysis := NewScorer(DefaultThresholds).Analyze(history, decimal.NewFromInt(480))
	if analysis == nil {
		t.Fatal("expected an analysis")
	}
	if analysis.Verdict == VerdictMirage {
		t.Fatalf("all-time low should never score as %q", VerdictMirage)
	}
	found := false
	for _, reason := range analysis.Reasons {
		if reason.Label == "At all-time low" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected the all-time low reason")
	}
}

func TestAnalyzeIdenticalPricesFlatHistory(t *testing.T) {
	history := []storage.PriceSample{
		sample(0, 750, 750),
		sample(24, 750, 750),
		sample(48, 750, 750),
	}

	// Flat history: neutral last-sale, but the price still counts as the
	// all-time low and sits at the average, so 50+30+10.
	analysis := NewScorer(DefaultThresholds).Analyze(history, decimal.NewFromInt(750))
	if analysis == nil {
		t.Fatal("expected an analysis")
	}
	if analysis.Score != 90 {
		t.Fatalf("expected score 90, got %d", analysis.Score)
	}
	if analysis.Reasons[0].Tone != ToneNeutral {
		t.Fatalf("expected neutral last-sale reason, got %q", analysis.Reasons[0].Tone)
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	history := []storage.PriceSample{
		sample(0, 900, 950),
		sample(24, 1000, 1000),
	}

	scorer := NewScorer(DefaultThresholds)
	first := scorer.Analyze(history, decimal.NewFromInt(930))
	second := scorer.Analyze(history, decimal.NewFromInt(930))
	if first == nil || second == nil {
		t.Fatal("expected analyses")
	}
	if first.Score != second.Score || first.Verdict != second.Verdict {
		t.Fatalf("analysis not deterministic: %v vs %v", first, second)
	}
	if len(first.Reasons) != len(second.Reasons) {
		t.Fatalf("reason count differs: %d vs %d", len(first.Reasons), len(second.Reasons))
	}
}

func TestAnalyzeHistoryOrderDoesNotMatter(t *testing.T) {
	newestFirst := []storage.PriceSample{
		sample(0, 900, 950),
		sample(24, 1000, 1000),
	}
	oldestFirst := []storage.PriceSample{
		sample(24, 1000, 1000),
		sample(0, 900, 950),
	}

	scorer := NewScorer(DefaultThresholds)
	a := scorer.Analyze(newestFirst, decimal.NewFromInt(900))
	b := scorer.Analyze(oldestFirst, decimal.NewFromInt(900))
	if a == nil || b == nil {
		t.Fatal("expected analyses")
	}
	if a.Score != b.Score {
		t.Fatalf("input order changed the score: %d vs %d", a.Score, b.Score)
	}
}

func TestAnalyzeNilCases(t *testing.T) {
	scorer := NewScorer(DefaultThresholds)

	if scorer.Analyze(nil, decimal.NewFromInt(100)) != nil {
		t.Fatal("empty history should yield no analysis")
	}
	if scorer.Analyze([]storage.PriceSample{sample(0, 100, 100)}, decimal.Zero) != nil {
		t.Fatal("non-positive current price should yield no analysis")
	}
	if scorer.Analyze([]storage.PriceSample{sample(0, 0, 0)}, decimal.NewFromInt(100)) != nil {
		t.Fatal("history without positive prices should yield no analysis")
	}
}

func TestAnalyzeSingleSampleFallsBackToAverage(t *testing.T) {
	history := []storage.PriceSample{
		sample(0, 1000, 0),
	}

	// One sample only: last-sale reference falls back to the average
	// (1000), so an equal current price is neutral on that axis.
	analysis := NewScorer(DefaultThresholds).Analyze(history, decimal.NewFromInt(1000))
	if analysis == nil {
		t.Fatal("expected an analysis")
	}
	if analysis.Reasons[0].Tone != ToneNeutral {
		t.Fatalf("expected neutral last-sale reason, got %q", analysis.Reasons[0].Tone)
	}
	// 50 + 0 + 30 (at low) + 10 (at average) = 90.
	if analysis.Score != 90 {
		t.Fatalf("expected score 90, got %d", analysis.Score)
	}
}

func TestVerdictBandPriority(t *testing.T) {
	scorer := NewScorer(DefaultThresholds)
	cases := []struct {
		score int
		want  Verdict
	}{
		{100, VerdictGreat},
		{71, VerdictGreat},
		{70, VerdictGood},
		{51, VerdictGood},
		{50, VerdictAverage},
		{30, VerdictAverage},
		{29, VerdictMirage},
		{0, VerdictMirage},
	}
	for _, tc := range cases {
		if got := scorer.verdict(tc.score); got != tc.want {
			t.Fatalf("verdict(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
