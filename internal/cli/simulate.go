package cli

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"dealscope/internal/app"
)

var (
	simulateEmail   string
	simulateProduct string
	simulateCurrent float64
	simulateTarget  float64
	simulateLow     float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "Run a synthetic price alert through evaluation and delivery",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateEmail == "" {
			return errors.New("--email is required")
		}
		if simulateCurrent <= 0 || simulateTarget <= 0 || simulateLow <= 0 {
			return errors.New("--current, --target, and --low must be greater than 0")
		}

		return getApp().SimulateAlert(cmd.Context(), app.SimulateAlertOptions{
			Email:        simulateEmail,
			ProductName:  simulateProduct,
			CurrentPrice: decimal.NewFromFloat(simulateCurrent),
			TargetPrice:  decimal.NewFromFloat(simulateTarget),
			AllTimeLow:   decimal.NewFromFloat(simulateLow),
		})
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateEmail, "email", "", "Recipient address")
	simulateCmd.Flags().StringVar(&simulateProduct, "product", "Test Product", "Product name used in the email")
	simulateCmd.Flags().Float64Var(&simulateCurrent, "current", 0, "Simulated current price")
	simulateCmd.Flags().Float64Var(&simulateTarget, "target", 0, "Alert target price")
	simulateCmd.Flags().Float64Var(&simulateLow, "low", 0, "Simulated all-time low price")
}
