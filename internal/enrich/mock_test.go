package enrich

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/launchsignal/tge-radar/internal/model"
	"github.com/launchsignal/tge-radar/internal/store"
)

// mockLLM is a testify mock over llm.Client.
type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// fakeStore is an in-memory store for scheduler tests.
type fakeStore struct {
	mu       sync.Mutex
	pending  []model.CandidateRecord
	enriched map[string]*model.EnrichedRecord
	// updateErr, when set, makes every UpdateEnrichment call fail.
	updateErr error
}

func newFakeStore(records ...model.CandidateRecord) *fakeStore {
	return &fakeStore{
		pending:  records,
		enriched: make(map[string]*model.EnrichedRecord),
	}
}

func (s *fakeStore) Insert(_ context.Context, record *model.CandidateRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, *record)
	return record.ID, nil
}

func (s *fakeStore) GetByFingerprint(context.Context, string) (*model.CandidateRecord, error) {
	return nil, store.ErrNotFound
}

func (s *fakeStore) GetByID(context.Context, string) (*model.CandidateRecord, error) {
	return nil, store.ErrNotFound
}

func (s *fakeStore) FetchUnenriched(_ context.Context, limit int) ([]model.CandidateRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.CandidateRecord
	for _, r := range s.pending {
		if _, done := s.enriched[r.ID]; done {
			continue
		}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeStore) FetchAll(_ context.Context, limit, offset int) ([]model.CandidateRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if offset >= len(s.pending) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.pending) {
		end = len(s.pending)
	}
	return append([]model.CandidateRecord(nil), s.pending[offset:end]...), nil
}

func (s *fakeStore) UpdateEnrichment(_ context.Context, id string, enriched *model.EnrichedRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	s.enriched[id] = enriched
	return nil
}

func (s *fakeStore) GetEnrichment(_ context.Context, id string) (*model.EnrichedRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.enriched[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return e, nil
}

func (s *fakeStore) Count(context.Context) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending), len(s.enriched), nil
}

func (s *fakeStore) Migrate(context.Context) error { return nil }
func (s *fakeStore) Close() error                  { return nil }
