package enrich

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/launchsignal/tge-radar/internal/model"
	"github.com/launchsignal/tge-radar/internal/store"
)

// Enricher is the per-record analysis capability the scheduler drives.
type Enricher interface {
	Enrich(ctx context.Context, record *model.CandidateRecord) (*model.EnrichedRecord, error)
}

// Stats summarizes one ProcessPending run.
type Stats struct {
	Processed int           `json:"processed"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Scheduler pulls unenriched records from the store and drives the
// pipeline over them with bounded concurrency.
type Scheduler struct {
	store         store.Store
	pipeline      Enricher
	batchSize     int
	maxConcurrent int
}

// NewScheduler creates a scheduler. batchSize defaults to 10 and
// maxConcurrent to 3 when non-positive.
func NewScheduler(st store.Store, pipeline Enricher, batchSize, maxConcurrent int) *Scheduler {
	if batchSize <= 0 {
		batchSize = 10
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 3
	}
	return &Scheduler{
		store:         st,
		pipeline:      pipeline,
		batchSize:     batchSize,
		maxConcurrent: maxConcurrent,
	}
}

// ProcessPending loops over the unenriched backlog in batches until a
// pull comes back short. Per-record failures are recorded as failed
// enrichments and never abort the run. force walks every record,
// enriched or not, and overwrites prior results.
func (s *Scheduler) ProcessPending(ctx context.Context, force bool) (*Stats, error) {
	start := time.Now()
	stats := &Stats{}

	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			stats.Elapsed = time.Since(start)
			return stats, eris.Wrap(err, "enrich: process pending")
		}

		var records []model.CandidateRecord
		var err error
		if force {
			// Reprocessed records stay in the table, so page by offset
			// instead of draining the unenriched backlog.
			records, err = s.store.FetchAll(ctx, s.batchSize, offset)
			offset += len(records)
		} else {
			records, err = s.store.FetchUnenriched(ctx, s.batchSize)
		}
		if err != nil {
			stats.Elapsed = time.Since(start)
			return stats, eris.Wrap(err, "enrich: fetch records")
		}
		if len(records) == 0 {
			break
		}

		persisted := s.processBatch(ctx, records, stats)

		if len(records) < s.batchSize {
			break
		}
		if !force && persisted == 0 {
			// Nothing left the backlog, so the next pull would return
			// the same records. Stop instead of spinning.
			zap.L().Error("enrich: full batch persisted nothing, stopping",
				zap.Int("batch", len(records)),
			)
			break
		}
	}

	stats.Elapsed = time.Since(start)
	zap.L().Info("enrich: backlog processed",
		zap.Int("processed", stats.Processed),
		zap.Int("succeeded", stats.Succeeded),
		zap.Int("failed", stats.Failed),
		zap.Duration("elapsed", stats.Elapsed),
	)
	return stats, nil
}

// processBatch enriches one pull of records with bounded concurrency
// and returns how many results were persisted.
func (s *Scheduler) processBatch(ctx context.Context, records []model.CandidateRecord, stats *Stats) int {
	sem := semaphore.NewWeighted(int64(s.maxConcurrent))
	var mu sync.Mutex
	var wg sync.WaitGroup
	persisted := 0

	for i := range records {
		record := records[i]
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			stored, ok := s.processOne(ctx, &record)

			mu.Lock()
			stats.Processed++
			if ok {
				stats.Succeeded++
			} else {
				stats.Failed++
			}
			if stored {
				persisted++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()
	return persisted
}

// processOne enriches a single record; on analysis error it persists a
// failed placeholder result so the record leaves the backlog.
func (s *Scheduler) processOne(ctx context.Context, record *model.CandidateRecord) (persisted, ok bool) {
	enriched, err := s.pipeline.Enrich(ctx, record)
	if err != nil {
		zap.L().Warn("enrich: record failed",
			zap.String("record_id", record.ID),
			zap.Error(err),
		)
		enriched = failedEnrichment(record)
	}

	if updateErr := s.store.UpdateEnrichment(ctx, record.ID, enriched); updateErr != nil {
		zap.L().Error("enrich: persist failed",
			zap.String("record_id", record.ID),
			zap.Error(updateErr),
		)
		return false, false
	}
	return true, err == nil
}

// failedEnrichment is the placeholder stored when analysis errors out,
// carrying the record's own extraction hints and zero confidence.
func failedEnrichment(record *model.CandidateRecord) *model.EnrichedRecord {
	entity := defaultEntity(record.ProjectName)
	entity.TokenSymbol = record.TokenSymbol
	entity.Category = record.Category
	entity.Confidence = 0
	entity.Status = model.AnalysisFailed

	advice := defaultAdvice()
	advice.Confidence = 0
	advice.Status = model.AnalysisFailed
	advice.OverallScore = OverallScore(advice.Rating, advice.PotentialScore, advice.RiskAssessment)

	return integrate(entity, advice, nil)
}

// ProcessingStats reports store-wide enrichment progress.
func (s *Scheduler) ProcessingStats(ctx context.Context) (*store.Stats, error) {
	total, enriched, err := s.store.Count(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "enrich: stats")
	}

	rate := 0.0
	if total > 0 {
		rate = math.Round(float64(enriched)/float64(total)*100*100) / 100
	}
	return &store.Stats{
		TotalRecords:    total,
		EnrichedRecords: enriched,
		PendingRecords:  total - enriched,
		ProcessingRate:  rate,
	}, nil
}
