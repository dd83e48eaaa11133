package ingest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/launchsignal/tge-radar/internal/model"
)

// mockStore is a testify mock over store.Store.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) Insert(ctx context.Context, record *model.CandidateRecord) (string, error) {
	args := m.Called(ctx, record)
	return args.String(0), args.Error(1)
}

func (m *mockStore) GetByFingerprint(ctx context.Context, fingerprint string) (*model.CandidateRecord, error) {
	args := m.Called(ctx, fingerprint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CandidateRecord), args.Error(1)
}

func (m *mockStore) GetByID(ctx context.Context, id string) (*model.CandidateRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CandidateRecord), args.Error(1)
}

func (m *mockStore) FetchUnenriched(ctx context.Context, limit int) ([]model.CandidateRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CandidateRecord), args.Error(1)
}

func (m *mockStore) FetchAll(ctx context.Context, limit, offset int) ([]model.CandidateRecord, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CandidateRecord), args.Error(1)
}

func (m *mockStore) UpdateEnrichment(ctx context.Context, id string, enriched *model.EnrichedRecord) error {
	args := m.Called(ctx, id, enriched)
	return args.Error(0)
}

func (m *mockStore) GetEnrichment(ctx context.Context, id string) (*model.EnrichedRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EnrichedRecord), args.Error(1)
}

func (m *mockStore) Count(ctx context.Context) (int, int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
