package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/launchsignal/tge-radar/internal/db"
	"github.com/launchsignal/tge-radar/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hot-path store operations.
var preparedStatements = map[string]string{
	"get_by_fingerprint": pgSelectRecordColumns + ` FROM records WHERE fingerprint = $1`,
	"get_by_id":          pgSelectRecordColumns + ` FROM records WHERE id = $1`,
	"fetch_unenriched":   pgSelectRecordColumns + ` FROM records WHERE enriched = FALSE ORDER BY created_at ASC LIMIT $1`,
	"fetch_all":          pgSelectRecordColumns + ` FROM records ORDER BY created_at ASC LIMIT $1 OFFSET $2`,
	"update_enrichment":  `UPDATE records SET enriched = TRUE, enrichment = $1, overall_score = $2, updated_at = $3 WHERE id = $4`,
	"get_enrichment":     `SELECT enrichment FROM records WHERE id = $1 AND enrichment IS NOT NULL`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, query := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, query); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool. Tests use it with pgxmock.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: func() {}}
}

// Pool returns the underlying database pool for subsystems that need
// direct query access (e.g., bulk import).
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
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
	publish_time     TIMESTAMPTZ,
	engagement_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	matched_keywords TEXT,
	enriched         BOOLEAN NOT NULL DEFAULT FALSE,
	enrichment       JSONB,
	overall_score    DOUBLE PRECISION,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_records_enriched ON records(enriched);
CREATE INDEX IF NOT EXISTS idx_records_platform ON records(platform);
CREATE INDEX IF NOT EXISTS idx_records_category ON records(category);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.closeFn()
	return nil
}

func (s *PostgresStore) Insert(ctx context.Context, record *model.CandidateRecord) (string, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO records (
			id, fingerprint, project_name, token_symbol, tge_date, category,
			raw_text, platform, source_url, author_id, author_name, publish_time,
			engagement_score, matched_keywords, enriched, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, FALSE, $15, $16)`,
		id, record.Fingerprint, record.ProjectName, record.TokenSymbol,
		record.TGEDate, string(record.Category), record.RawText,
		string(record.Platform), record.SourceURL, record.AuthorID,
		record.AuthorName, record.PublishTime.UTC(), record.EngagementScore,
		record.MatchedKeywords, now, now,
	)
	if err != nil {
		if isPGUniqueViolation(err) {
			return "", ErrDuplicate
		}
		return "", eris.Wrap(err, "postgres: insert record")
	}
	return id, nil
}

func (s *PostgresStore) GetByFingerprint(ctx context.Context, fingerprint string) (*model.CandidateRecord, error) {
	row := s.pool.QueryRow(ctx,
		pgSelectRecordColumns+` FROM records WHERE fingerprint = $1`, fingerprint)
	return scanPGRecord(row)
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*model.CandidateRecord, error) {
	row := s.pool.QueryRow(ctx,
		pgSelectRecordColumns+` FROM records WHERE id = $1`, id)
	return scanPGRecord(row)
}

func (s *PostgresStore) FetchUnenriched(ctx context.Context, limit int) ([]model.CandidateRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		pgSelectRecordColumns+` FROM records WHERE enriched = FALSE ORDER BY created_at ASC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: fetch unenriched")
	}
	defer rows.Close()

	var records []model.CandidateRecord
	for rows.Next() {
		r, err := scanPGRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, eris.Wrap(rows.Err(), "postgres: fetch unenriched iterate")
}

func (s *PostgresStore) FetchAll(ctx context.Context, limit, offset int) ([]model.CandidateRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.pool.Query(ctx,
		pgSelectRecordColumns+` FROM records ORDER BY created_at ASC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: fetch all")
	}
	defer rows.Close()

	var records []model.CandidateRecord
	for rows.Next() {
		r, err := scanPGRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, eris.Wrap(rows.Err(), "postgres: fetch all iterate")
}

func (s *PostgresStore) UpdateEnrichment(ctx context.Context, id string, enriched *model.EnrichedRecord) error {
	enrichedJSON, err := json.Marshal(enriched)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal enrichment")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE records SET enriched = TRUE, enrichment = $1, overall_score = $2, updated_at = $3 WHERE id = $4`,
		enrichedJSON, enriched.OverallScore, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update enrichment %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) GetEnrichment(ctx context.Context, id string) (*model.EnrichedRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT enrichment FROM records WHERE id = $1 AND enrichment IS NOT NULL`, id)

	var enrichedJSON []byte
	err := row.Scan(&enrichedJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get enrichment %s", id)
	}

	var enriched model.EnrichedRecord
	if err := json.Unmarshal(enrichedJSON, &enriched); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal enrichment")
	}
	return &enriched, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, int, error) {
	var total, enriched int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE enriched) FROM records`,
	).Scan(&total, &enriched)
	if err != nil {
		return 0, 0, eris.Wrap(err, "postgres: count records")
	}
	return total, enriched, nil
}

// helpers

const pgSelectRecordColumns = `SELECT id, fingerprint, project_name, token_symbol, tge_date, category,
	raw_text, platform, source_url, author_id, author_name, publish_time,
	engagement_score, matched_keywords, enriched, created_at, updated_at`

func scanPGRecord(row pgx.Row) (*model.CandidateRecord, error) {
	var r model.CandidateRecord
	var tokenSymbol, tgeDate, sourceURL, authorID, authorName, keywords sql.NullString
	var publishTime sql.NullTime

	err := row.Scan(
		&r.ID, &r.Fingerprint, &r.ProjectName, &tokenSymbol, &tgeDate,
		&r.Category, &r.RawText, &r.Platform, &sourceURL, &authorID,
		&authorName, &publishTime, &r.EngagementScore, &keywords,
		&r.Enriched, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan record")
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

// isPGUniqueViolation reports whether err is a unique-constraint
// violation (SQLSTATE 23505).
func isPGUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
