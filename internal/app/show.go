package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
)

// Show prints recent price samples for one product.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show samples")
	}
	defer closeStore()

	product, err := store.GetProductBySlug(ctx, opts.Slug)
	if err != nil {
		return fmt.Errorf("load product %q: %w", opts.Slug, err)
	}

	samples, err := store.ListRecentSamples(ctx, product.ID, opts.Limit)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		fmt.Fprintln(os.Stdout, "no samples found")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%s (%s)\n", product.Name, product.Slug)

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time (UTC)\tAmazon\tFlipkart\tAmazon Disc%\tFlipkart Disc%")

	for _, sample := range samples {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\n",
			sample.ObservedAt.UTC().Format(time.RFC3339),
			formatOptional(sample.AmazonPrice),
			formatOptional(sample.FlipkartPrice),
			formatOptional(sample.AmazonDiscountPct),
			formatOptional(sample.FlipkartDiscountPct),
		)
	}

	writer.Flush()
	return nil
}

func formatOptional(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.StringFixed(2)
}
