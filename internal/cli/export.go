package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"blocc-dashboard/internal/app"
	"blocc-dashboard/internal/blocc"
)

var (
	exportContainer      int
	exportWindow         time.Duration
	exportPNGPath        string
	exportCSVPath        string
	exportTxCSVPath      string
	exportTxContainer    int
	exportFrom           string
	exportTo             string
	exportApprovalWindow int
	exportMaxPoints      int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Fetch readings and transactions once and write CSV and/or PNG",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ExportOptions{
			Container: exportContainer,
			Window:    exportWindow,
			PNGPath:   exportPNGPath,
			CSVPath:   exportCSVPath,
			TxCSVPath: exportTxCSVPath,
			MaxPoints: exportMaxPoints,
		}

		if exportTxContainer > 0 {
			opts.TxFilter.ContainerNum = blocc.Some(exportTxContainer)
		}
		if exportFrom != "" {
			from, err := time.Parse(time.RFC3339, exportFrom)
			if err != nil {
				return fmt.Errorf("invalid --from value: %w", err)
			}
			opts.TxFilter = opts.TxFilter.WithStart(from)
		}
		if exportTo != "" {
			to, err := time.Parse(time.RFC3339, exportTo)
			if err != nil {
				return fmt.Errorf("invalid --to value: %w", err)
			}
			opts.TxFilter = opts.TxFilter.WithEnd(to)
		}
		if cmd.Flags().Changed("approval-window") {
			if exportApprovalWindow < 0 {
				return fmt.Errorf("--approval-window must not be negative")
			}
			opts.TxFilter.ApprovalWindow = blocc.Some(exportApprovalWindow)
		}

		return getApp().Export(cmd.Context(), opts)
	},
}

func init() {
	exportCmd.Flags().IntVar(&exportContainer, "container", 0, "Container of the readings series (defaults to dashboard.series_container)")
	exportCmd.Flags().DurationVar(&exportWindow, "window", 0, "Readings window ending now (defaults to dashboard.series_window)")
	exportCmd.Flags().StringVar(&exportPNGPath, "png", "", "Path to write the readings PNG chart")
	exportCmd.Flags().StringVar(&exportCSVPath, "csv", "", "Path to write the readings CSV")
	exportCmd.Flags().StringVar(&exportTxCSVPath, "tx-csv", "", "Path to write the transactions CSV")
	exportCmd.Flags().IntVar(&exportTxContainer, "tx-container", 0, "Only export transactions of this container")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "Transactions created at or after (RFC3339)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Transactions created at or before (RFC3339)")
	exportCmd.Flags().IntVar(&exportApprovalWindow, "approval-window", 0, "Only count approvals within this many seconds")
	exportCmd.Flags().IntVar(&exportMaxPoints, "max-points", 0, "Maximum readings to export (defaults to config)")
}
