package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"blocc-dashboard/internal/app"
)

var (
	watchEvery  time.Duration
	watchRounds int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the pollers and print a status table periodically",
	RunE: func(cmd *cobra.Command, args []string) error {
		if watchRounds < 0 {
			return fmt.Errorf("--rounds must not be negative")
		}

		opts := app.WatchOptions{
			Every:  watchEvery,
			Rounds: watchRounds,
		}
		return getApp().Watch(cmd.Context(), cmd.OutOrStdout(), opts)
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchEvery, "every", 0, "Print period (defaults to poll.interval)")
	watchCmd.Flags().IntVar(&watchRounds, "rounds", 0, "Stop after this many tables (0 watches until interrupted)")
}
