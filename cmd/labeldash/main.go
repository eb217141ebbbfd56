// Command labeldash serves and queries the Salsoul Records release dashboard.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type cli struct {
	cfg    config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	var dataFile string

	root := &cobra.Command{
		Use:           "labeldash",
		Short:         "Salsoul Records release dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loadEnvFiles()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if dataFile != "" {
				cfg.DataFile = dataFile
			}
			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			c.cfg, c.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&dataFile, "data", "", "release CSV file (default $DATA_FILE or salsoul_releases_updated_5.csv)")

	root.AddCommand(newServeCmd(c), newExportCmd(c), newTopCmd(c))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
