package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/launchsignal/tge-radar/internal/db"
	"github.com/launchsignal/tge-radar/internal/model"
	"github.com/launchsignal/tge-radar/internal/store"
)

var importFilePath string

// recordColumns mirrors the records table layout for bulk import.
var recordColumns = []string{
	"id", "fingerprint", "project_name", "token_symbol", "tge_date",
	"category", "raw_text", "platform", "source_url", "author_id",
	"author_name", "publish_time", "engagement_score", "matched_keywords",
	"enriched", "created_at", "updated_at",
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk import candidate records from a JSON export",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		ps, ok := st.(*store.PostgresStore)
		if !ok {
			return eris.New("import requires the postgres store driver")
		}
		pool, ok := ps.Pool().(*pgxpool.Pool)
		if !ok {
			return eris.New("import requires a live database pool")
		}

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		data, err := os.ReadFile(importFilePath)
		if err != nil {
			return eris.Wrap(err, "read import file")
		}

		var records []model.CandidateRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return eris.Wrap(err, "parse import file")
		}

		now := time.Now().UTC()
		rows := make([][]any, 0, len(records))
		for _, r := range records {
			if r.Fingerprint == "" {
				continue
			}
			id := r.ID
			if id == "" {
				id = uuid.New().String()
			}
			created := r.CreatedAt
			if created.IsZero() {
				created = now
			}
			rows = append(rows, []any{
				id, r.Fingerprint, r.ProjectName, r.TokenSymbol, r.TGEDate,
				string(r.Category), r.RawText, string(r.Platform), r.SourceURL,
				r.AuthorID, r.AuthorName, r.PublishTime.UTC(), r.EngagementScore,
				r.MatchedKeywords, r.Enriched, created, now,
			})
		}

		n, err := db.BulkUpsert(ctx, pool, db.UpsertConfig{
			Table:        "records",
			Columns:      recordColumns,
			ConflictKeys: []string{"fingerprint"},
		}, rows)
		if err != nil {
			return eris.Wrap(err, "bulk upsert records")
		}

		zap.L().Info("import complete",
			zap.Int64("upserted", n),
			zap.Int("skipped", len(records)-len(rows)),
			zap.String("file", importFilePath),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importFilePath, "file", "", "path to JSON export (required)")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
