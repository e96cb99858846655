package cli

import (
	"github.com/spf13/cobra"

	"dealscope/internal/app"
)

var checkAlertsDryRun bool

var checkAlertsCmd = &cobra.Command{
	Use:   "check-alerts",
	Short: "Evaluate every enabled price alert and send notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().CheckAlerts(cmd.Context(), app.CheckAlertsOptions{DryRun: checkAlertsDryRun})
	},
}

func init() {
	checkAlertsCmd.Flags().BoolVar(&checkAlertsDryRun, "dry-run", false, "Evaluate alerts without sending emails or stamping cooldowns")
}
