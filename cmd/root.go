package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/mailclean/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "mailclean",
	Short: "Deterministic email hygiene for tabular datasets",
	Long:  "Validates, normalizes, and deduplicates email addresses in CSV and XLSX files, producing a cleaned copy plus an audit report. No network validation; every decision is reproducible.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
