package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/launchsignal/tge-radar/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS records (
	id               TEXT PRIMARY KEY,
	fingerprint      TEXT NOT NULL UNIQUE,
	project_name     TEXT NOT NULL,
	token_symbol     TEXT,
	tge_date         TEXT,
	category         TEXT NOT NULL DEFAULT 'Other',
	raw_text         TEXT NOT NULL,
	platform         TEXT NOT NULL,
	source_url       TEXT,
	author_id        TEXT,
	author_name      TEXT,
	publish_time     DATETIME,
	engagement_score REAL NOT NULL DEFAULT 0,
	matched_keywords TEXT,
	enriched         INTEGER NOT NULL DEFAULT 0,
	enrichment       TEXT,
	overall_score    REAL,
	created_at       DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_records_fingerprint ON records(fingerprint);
CREATE INDEX IF NOT EXISTS idx_records_enriched ON records(enriched);
CREATE INDEX IF NOT EXISTS idx_records_platform ON records(platform);
CREATE INDEX IF NOT EXISTS idx_records_category ON records(category);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Insert(ctx context.Context, record *model.CandidateRecord) (string, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records (
			id, fingerprint, project_name, token_symbol, tge_date, category,
			raw_text, platform, source_url, author_id, author_name, publish_time,
			engagement_score, matched_keywords, enriched, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		id, record.Fingerprint, record.ProjectName, record.TokenSymbol,
		record.TGEDate, string(record.Category), record.RawText,
		string(record.Platform), record.SourceURL, record.AuthorID,
		record.AuthorName, record.PublishTime.UTC(), record.EngagementScore,
		record.MatchedKeywords, now, now,
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return "", ErrDuplicate
		}
		return "", eris.Wrap(err, "sqlite: insert record")
	}
	return id, nil
}

func (s *SQLiteStore) GetByFingerprint(ctx context.Context, fingerprint string) (*model.CandidateRecord, error) {
	row := s.db.QueryRowContext(ctx,
		selectRecordColumns+` FROM records WHERE fingerprint = ?`, fingerprint)
	return scanRecord(row)
}

func (s *SQLiteStore) GetByID(ctx context.Context, id string) (*model.CandidateRecord, error) {
	row := s.db.QueryRowContext(ctx,
		selectRecordColumns+` FROM records WHERE id = ?`, id)
	return scanRecord(row)
}

func (s *SQLiteStore) FetchUnenriched(ctx context.Context, limit int) ([]model.CandidateRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		selectRecordColumns+` FROM records WHERE enriched = 0 ORDER BY created_at ASC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: fetch unenriched")
	}
	defer rows.Close()

	var records []model.CandidateRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: fetch unenriched iterate")
}

func (s *SQLiteStore) FetchAll(ctx context.Context, limit, offset int) ([]model.CandidateRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx,
		selectRecordColumns+` FROM records ORDER BY created_at ASC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: fetch all")
	}
	defer rows.Close()

	var records []model.CandidateRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: fetch all iterate")
}

func (s *SQLiteStore) UpdateEnrichment(ctx context.Context, id string, enriched *model.EnrichedRecord) error {
	enrichedJSON, err := json.Marshal(enriched)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal enrichment")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE records SET enriched = 1, enrichment = ?, overall_score = ?, updated_at = ? WHERE id = ?`,
		string(enrichedJSON), enriched.OverallScore, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update enrichment %s", id)
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) GetEnrichment(ctx context.Context, id string) (*model.EnrichedRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT enrichment FROM records WHERE id = ? AND enrichment IS NOT NULL`, id)

	var enrichedJSON string
	err := row.Scan(&enrichedJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get enrichment %s", id)
	}

	var enriched model.EnrichedRecord
	if err := json.Unmarshal([]byte(enrichedJSON), &enriched); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal enrichment")
	}
	return &enriched, nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, int, error) {
	var total, enriched int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(enriched), 0) FROM records`,
	).Scan(&total, &enriched)
	if err != nil {
		return 0, 0, eris.Wrap(err, "sqlite: count records")
	}
	return total, enriched, nil
}

// helpers

const selectRecordColumns = `SELECT id, fingerprint, project_name, token_symbol, tge_date, category,
	raw_text, platform, source_url, author_id, author_name, publish_time,
	engagement_score, matched_keywords, enriched, created_at, updated_at`

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (*model.CandidateRecord, error) {
	var r model.CandidateRecord
	var tokenSymbol, tgeDate, sourceURL, authorID, authorName, keywords sql.NullString
	var publishTime sql.NullTime

	err := row.Scan(
		&r.ID, &r.Fingerprint, &r.ProjectName, &tokenSymbol, &tgeDate,
		&r.Category, &r.RawText, &r.Platform, &sourceURL, &authorID,
		&authorName, &publishTime, &r.EngagementScore, &keywords,
		&r.Enriched, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan record")
	}

	r.TokenSymbol = tokenSymbol.String
	r.TGEDate = tgeDate.String
	r.SourceURL = sourceURL.String
	r.AuthorID = authorID.String
	r.AuthorName = authorName.String
	r.MatchedKeywords = keywords.String
	if publishTime.Valid {
		r.PublishTime = publishTime.Time
	}
	return &r, nil
}

func checkRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isSQLiteUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
