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
	crawlPlatform string
	crawlKeywords []string
	crawlMax      int
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run a single-platform crawl task",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		maxCount := crawlMax
		if maxCount <= 0 {
			maxCount = cfg.Crawl.MaxCountPerPlatform
		}

		t, err := env.Registry.Submit(model.Platform(crawlPlatform), crawlKeywords, maxCount)
		if err != nil {
			return eris.Wrap(err, "submit task")
		}

		result, err := env.Registry.Execute(ctx, t.ID)
		if err != nil {
			return eris.Wrap(err, "execute task")
		}

		zap.L().Info("crawl complete",
			zap.String("task_id", result.TaskID),
			zap.String("platform", string(result.Platform)),
			zap.Int("found", result.TotalFound),
			zap.Int("accepted", result.AcceptedCount),
			zap.Int("duplicates", result.DuplicateCount),
			zap.Int("filtered", result.FilteredCount),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	crawlCmd.Flags().StringVar(&crawlPlatform, "platform", "xhs", "platform to crawl")
	crawlCmd.Flags().StringSliceVar(&crawlKeywords, "keywords", nil, "search keywords (default core TGE set)")
	crawlCmd.Flags().IntVar(&crawlMax, "max", 0, "max postings to fetch (default from config)")
	rootCmd.AddCommand(crawlCmd)
}
