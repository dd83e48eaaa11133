package store

import (
	"context"
	"errors"

	"github.com/launchsignal/tge-radar/internal/model"
)

// ErrDuplicate is returned by Insert when the fingerprint already exists.
// Callers treat it as "duplicate, not an error" and do not retry.
var ErrDuplicate = errors.New("store: duplicate fingerprint")

// ErrNotFound is returned by lookups that match no record.
var ErrNotFound = errors.New("store: record not found")

// Stats summarizes enrichment progress across the store.
type Stats struct {
	TotalRecords    int     `json:"total_records"`
	EnrichedRecords int     `json:"enriched_records"`
	PendingRecords  int     `json:"pending_records"`
	ProcessingRate  float64 `json:"processing_rate"`
}

// Store defines the persistence contract for candidate records and their
// enrichment results. The unique index on fingerprint is the authoritative
// cross-process deduplication mechanism.
type Store interface {
	Insert(ctx context.Context, record *model.CandidateRecord) (string, error)
	GetByFingerprint(ctx context.Context, fingerprint string) (*model.CandidateRecord, error)
	GetByID(ctx context.Context, id string) (*model.CandidateRecord, error)
	FetchUnenriched(ctx context.Context, limit int) ([]model.CandidateRecord, error)
	// FetchAll pages through every record regardless of enrichment state,
	// ordered by creation time. Force reprocessing uses it to revisit
	// records that already carry a result.
	FetchAll(ctx context.Context, limit, offset int) ([]model.CandidateRecord, error)
	UpdateEnrichment(ctx context.Context, id string, enriched *model.EnrichedRecord) error
	GetEnrichment(ctx context.Context, id string) (*model.EnrichedRecord, error)
	Count(ctx context.Context) (total, enriched int, err error)

	Migrate(ctx context.Context) error
	Close() error
}
