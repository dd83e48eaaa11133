package task

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/launchsignal/tge-radar/internal/model"
)

// mockAdapter is a testify mock over platform.Adapter.
type mockAdapter struct {
	mock.Mock
	name model.Platform
}

func (m *mockAdapter) Name() model.Platform { return m.name }

func (m *mockAdapter) IsAvailable(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

func (m *mockAdapter) Crawl(ctx context.Context, keywords []string, maxCount int) ([]model.RawPosting, error) {
	args := m.Called(ctx, keywords, maxCount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RawPosting), args.Error(1)
}

// memStore is a minimal in-memory store for classifier wiring in tests.
type memStore struct {
	inserted []*model.CandidateRecord
}

func (s *memStore) Insert(_ context.Context, record *model.CandidateRecord) (string, error) {
	s.inserted = append(s.inserted, record)
	return record.Fingerprint, nil
}

func (s *memStore) GetByFingerprint(context.Context, string) (*model.CandidateRecord, error) {
	return nil, nil
}

func (s *memStore) GetByID(context.Context, string) (*model.CandidateRecord, error) {
	return nil, nil
}

func (s *memStore) FetchUnenriched(context.Context, int) ([]model.CandidateRecord, error) {
	return nil, nil
}

func (s *memStore) FetchAll(context.Context, int, int) ([]model.CandidateRecord, error) {
	return nil, nil
}

func (s *memStore) UpdateEnrichment(context.Context, string, *model.EnrichedRecord) error {
	return nil
}

func (s *memStore) GetEnrichment(context.Context, string) (*model.EnrichedRecord, error) {
	return nil, nil
}

func (s *memStore) Count(context.Context) (int, int, error) { return len(s.inserted), 0, nil }
func (s *memStore) Migrate(context.Context) error           { return nil }
func (s *memStore) Close() error                            { return nil }
