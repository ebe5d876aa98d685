package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"blocc-dashboard/internal/app"
	"blocc-dashboard/internal/config"
	"blocc-dashboard/internal/logging"
)

var (
	cfgFile   string
	logLevel  string
	apiRoot   string
	appHandle *app.App
)

var rootCmd = &cobra.Command{
	Use:   "blocc-dashboard",
	Short: "Poll a BLOCC backend and display fork status, readings and transactions",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if appHandle != nil {
			return nil
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if apiRoot != "" {
			cfg.API.Root = apiRoot
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		logger := logging.NewLogger(cfg.Logging)
		appHandle = app.NewApp(cfg, logger)
		return nil
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level defined in config")
	rootCmd.PersistentFlags().StringVar(&apiRoot, "api-root", "", "Override the BLOCC API root defined in config")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(versionCmd)
}

func getApp() *app.App {
	if appHandle == nil {
		panic("application not initialized; PersistentPreRunE not executed")
	}
	return appHandle
}
