package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	chart "github.com/wcharczuk/go-chart/v2"

	"dealscope/internal/storage"
)

// Export renders one product's price history as CSV and/or PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot export")
	}
	defer closeStore()

	product, err := store.GetProductBySlug(ctx, opts.Slug)
	if err != nil {
		return fmt.Errorf("load product %q: %w", opts.Slug, err)
	}

	to := time.Now().UTC()
	if opts.To != nil {
		to = opts.To.UTC()
	}

	from := to.Add(-time.Duration(opts.MaxPoints) * a.Config.Scheduler.Interval)
	if opts.From != nil {
		from = opts.From.UTC()
	}

	if !from.Before(to) {
		return errors.New("from must be before to")
	}

	samples, err := store.ListSamplesBetween(ctx, product.ID, from, to)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		a.Logger.Info().Str("product", product.Slug).Msg("no samples found for export window")
		return nil
	}

	downsampled := downsampleSamples(samples, opts.MaxPoints)
	a.Logger.Info().
		Str("product", product.Slug).
		Int("total", len(samples)).
		Int("exported", len(downsampled)).
		Msg("exporting samples")

	if opts.CSVPath != "" {
		if err := writeSamplesCSV(opts.CSVPath, downsampled); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeSamplesPNG(opts.PNGPath, product.Name, downsampled); err != nil {
			return err
		}
	}

	return nil
}

func downsampleSamples(samples []storage.PriceSample, max int) []storage.PriceSample {
	if max <= 0 || len(samples) <= max {
		return samples
	}

	result := make([]storage.PriceSample, 0, max)
	step := float64(len(samples)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(samples) {
			idx = len(samples) - 1
		}
		result = append(result, samples[idx])
	}
	return result
}

func writeSamplesCSV(path string, samples []storage.PriceSample) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"observed_at", "amazon_price", "flipkart_price", "amazon_discount_pct", "flipkart_discount_pct"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, sample := range samples {
		record := []string{
			sample.ObservedAt.UTC().Format(time.RFC3339),
			optionalString(sample.AmazonPrice),
			optionalString(sample.FlipkartPrice),
			optionalString(sample.AmazonDiscountPct),
			optionalString(sample.FlipkartDiscountPct),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeSamplesPNG(path, title string, samples []storage.PriceSample) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	amazonX, amazonY := retailerSeries(samples, func(s storage.PriceSample) *float64 {
		if s.AmazonPrice == nil {
			return nil
		}
		v := s.AmazonPrice.InexactFloat64()
		return &v
	})
	flipkartX, flipkartY := retailerSeries(samples, func(s storage.PriceSample) *float64 {
		if s.FlipkartPrice == nil {
			return nil
		}
		v := s.FlipkartPrice.InexactFloat64()
		return &v
	})

	series := make([]chart.Series, 0, 2)
	if len(amazonX) > 1 {
		series = append(series, chart.TimeSeries{Name: "Amazon", XValues: amazonX, YValues: amazonY})
	}
	if len(flipkartX) > 1 {
		series = append(series, chart.TimeSeries{Name: "Flipkart", XValues: flipkartX, YValues: flipkartY})
	}
	if len(series) == 0 {
		return errors.New("not enough data points to render a chart")
	}

	priceFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.0f")
	}
	graph := chart.Chart{
		Title:  title,
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Price",
			ValueFormatter: priceFormatter,
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

// retailerSeries flattens a retailer's price column, skipping samples
// where that retailer had no listing.
func retailerSeries(samples []storage.PriceSample, pick func(storage.PriceSample) *float64) ([]time.Time, []float64) {
	x := make([]time.Time, 0, len(samples))
	y := make([]float64, 0, len(samples))
	for _, sample := range samples {
		value := pick(sample)
		if value == nil {
			continue
		}
		x = append(x, sample.ObservedAt)
		y = append(y, *value)
	}
	return x, y
}

func optionalString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
