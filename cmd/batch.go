package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/launchsignal/tge-radar/internal/model"
)

var (
	batchPlatforms []string
	batchKeywords  []string
	batchMax       int
	batchEnrich    bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run a multi-platform crawl batch",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		platforms := make([]model.Platform, 0, len(batchPlatforms))
		for _, p := range batchPlatforms {
			platforms = append(platforms, model.Platform(p))
		}

		maxCount := batchMax
		if maxCount <= 0 {
			maxCount = cfg.Crawl.MaxCountPerPlatform
		}

		b, err := env.Orchestrator.CreateBatch(ctx, platforms, batchKeywords, maxCount, batchEnrich)
		if err != nil {
			return eris.Wrap(err, "create batch")
		}

		if err := env.Orchestrator.Run(ctx, b.ID); err != nil {
			return eris.Wrap(err, "run batch")
		}

		snap, err := env.Orchestrator.Status(b.ID)
		if err != nil {
			return eris.Wrap(err, "batch status")
		}

		zap.L().Info("batch complete",
			zap.String("batch_id", snap.ID),
			zap.String("status", string(snap.Status)),
			zap.Int("content_found", snap.TotalContentFound),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	},
}

func init() {
	batchCmd.Flags().StringSliceVar(&batchPlatforms, "platforms", nil, "platforms to crawl (default all available)")
	batchCmd.Flags().StringSliceVar(&batchKeywords, "keywords", nil, "search keywords (default core TGE set)")
	batchCmd.Flags().IntVar(&batchMax, "max", 0, "max postings per platform (default from config)")
	batchCmd.Flags().BoolVar(&batchEnrich, "enrich", false, "run enrichment after the crawl")
	rootCmd.AddCommand(batchCmd)
}
