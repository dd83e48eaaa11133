package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var processForce bool

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Enrich pending records with model analysis",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		stats, err := env.Scheduler.ProcessPending(ctx, processForce)
		if err != nil {
			return eris.Wrap(err, "process pending")
		}

		zap.L().Info("enrichment complete",
			zap.Int("processed", stats.Processed),
			zap.Int("succeeded", stats.Succeeded),
			zap.Int("failed", stats.Failed),
			zap.Duration("elapsed", stats.Elapsed),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}

func init() {
	processCmd.Flags().BoolVar(&processForce, "force", false, "re-enrich records that already have analysis")
	rootCmd.AddCommand(processCmd)
}
