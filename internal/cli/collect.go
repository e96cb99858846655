package cli

import (
	"github.com/spf13/cobra"

	"dealscope/internal/app"
)

var collectOnce bool

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Sample retailer prices for every tracked product",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Collect(cmd.Context(), app.CollectOptions{Once: collectOnce})
	},
}

func init() {
	collectCmd.Flags().BoolVar(&collectOnce, "once", false, "Record a single sample per product and exit")
}
