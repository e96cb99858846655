package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"dealscope/internal/app"
)

var showLimit int

var showCmd = &cobra.Command{
	Use:   "show <product-slug>",
	Short: "Display recent price samples for a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if showLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}

		opts := app.ShowOptions{
			Slug:  args[0],
			Limit: showLimit,
		}

		return getApp().Show(cmd.Context(), opts)
	},
}

func init() {
	showCmd.Flags().IntVar(&showLimit, "limit", 20, "Number of samples to display")
}
