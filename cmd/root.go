package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/launchsignal/tge-radar/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "tge-radar",
	Short: "TGE signal radar for Chinese social platforms",
	Long:  "Crawls social platforms for token generation event chatter, deduplicates and classifies postings, and enriches candidates with model-driven entity, investment and sentiment analysis.",
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
