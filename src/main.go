package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "welfare-committee-backend/docs"
	"welfare-committee-backend/src/config"
	"welfare-committee-backend/src/utils"
)

// @title                       Welfare Committee API
// @version                     1.0
// @description                 Employee welfare form submissions, admin listing and spreadsheet export.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization

var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "welfare-committee",
	Short: "Welfare committee data collection backend",
	Long: `Serves the welfare form API, stores submissions in MongoDB (or the
relational fallback) and exports them as a spreadsheet.

Run without arguments to start the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		if logger, err = utils.NewLogger(cfg.LogLevel, cfg.IsProduction()); err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, hashPasswordCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
