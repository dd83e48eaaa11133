package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/launchsignal/tge-radar/internal/model"
)

var (
	tasksStatus   string
	tasksPlatform string
	tasksLimit    int
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List crawl tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		tasks := env.Registry.List(
			model.TaskStatus(tasksStatus),
			model.Platform(tasksPlatform),
			tasksLimit,
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tasks)
	},
}

func init() {
	tasksCmd.Flags().StringVar(&tasksStatus, "status", "", "filter by status")
	tasksCmd.Flags().StringVar(&tasksPlatform, "platform", "", "filter by platform")
	tasksCmd.Flags().IntVar(&tasksLimit, "limit", 50, "max tasks to list")
	rootCmd.AddCommand(tasksCmd)
}
