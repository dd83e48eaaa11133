package enrich

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/launchsignal/tge-radar/internal/model"
)

func pendingRecords(n int) []model.CandidateRecord {
	out := make([]model.CandidateRecord, n)
	for i := range out {
		out[i] = model.CandidateRecord{
			ID:          fmt.Sprintf("rec-%d", i),
			ProjectName: fmt.Sprintf("Project%d", i),
			RawText:     "TGE launch content",
		}
	}
	return out
}

func TestScheduler_ProcessPending_DrainsBacklog(t *testing.T) {
	client := &mockLLM{}
	client.On("Complete", mock.Anything, mock.Anything).Return(`{"confidence": 0.8}`, nil)

	st := newFakeStore(pendingRecords(7)...)
	s := NewScheduler(st, NewPipeline(client), 3, 2)

	stats, err := s.ProcessPending(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 7, stats.Processed)
	assert.Equal(t, 7, stats.Succeeded)
	assert.Equal(t, 0, stats.Failed)
	assert.Len(t, st.enriched, 7)
}

func TestScheduler_ProcessPending_EmptyBacklog(t *testing.T) {
	st := newFakeStore()
	s := NewScheduler(st, NewPipeline(&mockLLM{}), 10, 3)

	stats, err := s.ProcessPending(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Processed)
}

func TestScheduler_ProcessPending_FailureIsolated(t *testing.T) {
	// An enricher that errors on one record; the rest still process and
	// the failed record gets a placeholder so it leaves the backlog.
	st := newFakeStore(pendingRecords(3)...)
	s := NewScheduler(st, enricherFunc(func(ctx context.Context, r *model.CandidateRecord) (*model.EnrichedRecord, error) {
		if r.ID == "rec-1" {
			return nil, assert.AnError
		}
		return integrate(defaultEntity(r.ProjectName), defaultAdvice(), nil), nil
	}), 10, 2)

	stats, err := s.ProcessPending(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Processed)
	assert.Equal(t, 2, stats.Succeeded)
	assert.Equal(t, 1, stats.Failed)

	failed, err := st.GetEnrichment(context.Background(), "rec-1")
	require.NoError(t, err)
	assert.Equal(t, model.AnalysisFailed, failed.Entity.Status)
	assert.Equal(t, 0.0, failed.OverallConfidence)
}

func TestScheduler_ProcessPending_SecondRunIsNoOp(t *testing.T) {
	client := &mockLLM{}
	client.On("Complete", mock.Anything, mock.Anything).Return(`{"confidence": 0.8}`, nil)

	st := newFakeStore(pendingRecords(3)...)
	s := NewScheduler(st, NewPipeline(client), 10, 2)

	first, err := s.ProcessPending(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Processed)

	second, err := s.ProcessPending(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Processed)
}

func TestScheduler_ProcessPending_ForceReprocessesEnriched(t *testing.T) {
	client := &mockLLM{}
	client.On("Complete", mock.Anything, mock.Anything).Return(`{"confidence": 0.8}`, nil)

	st := newFakeStore(pendingRecords(5)...)
	s := NewScheduler(st, NewPipeline(client), 2, 2)

	_, err := s.ProcessPending(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, st.enriched, 5)

	// Everything already carries a result; force walks all of it again.
	stats, err := s.ProcessPending(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Processed)
	assert.Equal(t, 5, stats.Succeeded)
	assert.Len(t, st.enriched, 5)
}

func TestScheduler_ProcessPending_StopsWhenNothingPersists(t *testing.T) {
	// With persistence broken, a full batch leaves the backlog untouched
	// and the run must stop after one pass instead of refetching forever.
	client := &mockLLM{}
	client.On("Complete", mock.Anything, mock.Anything).Return(`{"confidence": 0.8}`, nil)

	st := newFakeStore(pendingRecords(4)...)
	st.updateErr = assert.AnError
	s := NewScheduler(st, NewPipeline(client), 2, 2)

	stats, err := s.ProcessPending(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 2, stats.Failed)
	assert.Empty(t, st.enriched)
}

func TestScheduler_ProcessingStats(t *testing.T) {
	st := newFakeStore(pendingRecords(4)...)
	require.NoError(t, st.UpdateEnrichment(context.Background(), "rec-0",
		integrate(defaultEntity("P"), defaultAdvice(), nil)))

	s := NewScheduler(st, NewPipeline(&mockLLM{}), 10, 3)
	stats, err := s.ProcessingStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalRecords)
	assert.Equal(t, 1, stats.EnrichedRecords)
	assert.Equal(t, 3, stats.PendingRecords)
	assert.Equal(t, 25.0, stats.ProcessingRate)
}

// enricherFunc adapts a function to the Enricher interface.
type enricherFunc func(ctx context.Context, record *model.CandidateRecord) (*model.EnrichedRecord, error)

func (f enricherFunc) Enrich(ctx context.Context, record *model.CandidateRecord) (*model.EnrichedRecord, error) {
	return f(ctx, record)
}
