package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchsignal/tge-radar/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testRecord(fingerprint string) *model.CandidateRecord {
	now := time.Now().UTC()
	return &model.CandidateRecord{
		Fingerprint:     fingerprint,
		ProjectName:     "ExampleCoin",
		TokenSymbol:     "EXC",
		TGEDate:         "2026-03-01",
		Category:        model.CategoryDeFi,
		RawText:         "TGE launch for ExampleCoin $EXC, 2026-03-01",
		Platform:        model.PlatformXHS,
		SourceURL:       "https://example.com/post/1",
		AuthorID:        "author-1",
		AuthorName:      "alice",
		PublishTime:     now,
		EngagementScore: 0.42,
		MatchedKeywords: "TGE,DeFi",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestSQLite_InsertAndGetByID(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := st.Insert(ctx, testRecord("fp-1"))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := st.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ExampleCoin", got.ProjectName)
	assert.Equal(t, "EXC", got.TokenSymbol)
	assert.Equal(t, model.CategoryDeFi, got.Category)
	assert.Equal(t, 0.42, got.EngagementScore)
	assert.False(t, got.Enriched)
}

func TestSQLite_InsertDuplicateFingerprint(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.Insert(ctx, testRecord("fp-dup"))
	require.NoError(t, err)

	_, err = st.Insert(ctx, testRecord("fp-dup"))
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestSQLite_GetByFingerprint(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := st.Insert(ctx, testRecord("fp-lookup"))
	require.NoError(t, err)

	got, err := st.GetByFingerprint(ctx, "fp-lookup")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)

	_, err = st.GetByFingerprint(ctx, "fp-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_FetchUnenriched_Limit(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for _, fp := range []string{"fp-1", "fp-2", "fp-3"} {
		_, err := st.Insert(ctx, testRecord(fp))
		require.NoError(t, err)
	}

	records, err := st.FetchUnenriched(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	all, err := st.FetchUnenriched(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSQLite_FetchAll_IncludesEnriched(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	var ids []string
	for _, fp := range []string{"fp-1", "fp-2", "fp-3"} {
		id, err := st.Insert(ctx, testRecord(fp))
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.NoError(t, st.UpdateEnrichment(ctx, ids[0], &model.EnrichedRecord{OverallScore: 3.0}))

	// Unlike the pending queue, FetchAll still returns the enriched row.
	all, err := st.FetchAll(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := st.FetchAll(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	empty, err := st.FetchAll(ctx, 2, 3)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSQLite_UpdateEnrichment_RoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := st.Insert(ctx, testRecord("fp-enrich"))
	require.NoError(t, err)

	enriched := &model.EnrichedRecord{
		ProjectName:       "ExampleCoin",
		OverallScore:      3.75,
		OverallConfidence: 0.8,
		AnalyzedAt:        time.Now().UTC(),
	}
	require.NoError(t, st.UpdateEnrichment(ctx, id, enriched))

	got, err := st.GetEnrichment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3.75, got.OverallScore)
	assert.Equal(t, 0.8, got.OverallConfidence)

	rec, err := st.GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, rec.Enriched)

	// Enriched records no longer show up in the pending queue.
	pending, err := st.FetchUnenriched(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSQLite_UpdateEnrichment_MissingRecord(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.UpdateEnrichment(context.Background(), "no-such-id", &model.EnrichedRecord{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_GetEnrichment_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := st.Insert(ctx, testRecord("fp-no-enrich"))
	require.NoError(t, err)

	_, err = st.GetEnrichment(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_Count(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	total, enriched, err := st.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Equal(t, 0, enriched)

	id1, err := st.Insert(ctx, testRecord("fp-c1"))
	require.NoError(t, err)
	_, err = st.Insert(ctx, testRecord("fp-c2"))
	require.NoError(t, err)

	require.NoError(t, st.UpdateEnrichment(ctx, id1, &model.EnrichedRecord{OverallScore: 3.0}))

	total, enriched, err = st.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, enriched)
}
