// Package batch coordinates multi-platform crawl batches and the
// optional enrichment stage that follows them.
package batch

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/launchsignal/tge-radar/internal/enrich"
	"github.com/launchsignal/tge-radar/internal/model"
	"github.com/launchsignal/tge-radar/internal/platform"
	"github.com/launchsignal/tge-radar/internal/task"
)

// ErrNotFound is returned when a batch id is unknown.
var ErrNotFound = eris.New("batch: not found")

// EnrichmentRunner is the enrichment stage the orchestrator hands off to
// after a crawl.
type EnrichmentRunner interface {
	ProcessPending(ctx context.Context, force bool) (*enrich.Stats, error)
}

// Orchestrator owns batch lifecycles. Batches live in memory; the store
// holds the durable output.
type Orchestrator struct {
	mu       sync.Mutex
	batches  map[string]*model.BatchCrawl
	registry *task.Registry
	adapters *platform.Set
	enricher EnrichmentRunner
}

// NewOrchestrator creates an orchestrator. enricher may be nil when
// enrichment is globally disabled.
func NewOrchestrator(registry *task.Registry, adapters *platform.Set, enricher EnrichmentRunner) *Orchestrator {
	return &Orchestrator{
		batches:  make(map[string]*model.BatchCrawl),
		registry: registry,
		adapters: adapters,
		enricher: enricher,
	}
}

// CreateBatch registers a new batch. An empty platform list expands to
// every platform whose adapter reports availability.
func (o *Orchestrator) CreateBatch(ctx context.Context, platforms []model.Platform, keywords []string, maxPerPlatform int, enableEnrichment bool) (*model.BatchCrawl, error) {
	if len(platforms) == 0 {
		platforms = o.adapters.Available(ctx)
	}
	if len(platforms) == 0 {
		return nil, eris.New("batch: no available platforms")
	}
	if maxPerPlatform <= 0 {
		maxPerPlatform = 20
	}

	enrichStatus := model.EnrichmentDisabled
	if enableEnrichment {
		enrichStatus = model.EnrichmentPending
	}

	b := &model.BatchCrawl{
		ID:                uuid.New().String(),
		Platforms:         platforms,
		Keywords:          keywords,
		MaxPerPlatform:    maxPerPlatform,
		EnrichmentEnabled: enableEnrichment,
		PlatformRuns:      make(map[model.Platform]*model.PlatformRun, len(platforms)),
		Status:            model.BatchPending,
		EnrichmentStatus:  enrichStatus,
		TotalTasks:        len(platforms),
		CreatedAt:         time.Now().UTC(),
	}
	for _, p := range platforms {
		b.PlatformRuns[p] = &model.PlatformRun{Status: model.TaskPending}
	}

	o.mu.Lock()
	o.batches[b.ID] = b
	o.mu.Unlock()

	zap.L().Info("batch: created",
		zap.String("batch_id", b.ID),
		zap.Int("platforms", len(platforms)),
		zap.Bool("enrichment", enableEnrichment),
	)
	return o.snapshotBatch(b.ID)
}

// Run executes a pending batch to completion: one crawl task per
// platform, submitted and executed concurrently, then the enrichment
// stage when enabled. Per-platform failures never abort the batch.
func (o *Orchestrator) Run(ctx context.Context, batchID string) error {
	o.mu.Lock()
	b, ok := o.batches[batchID]
	if !ok {
		o.mu.Unlock()
		return ErrNotFound
	}
	if b.Status != model.BatchPending {
		status := b.Status
		o.mu.Unlock()
		return eris.Errorf("batch: %s is %s, not pending", batchID, status)
	}
	now := time.Now().UTC()
	b.Status = model.BatchRunning
	b.StartedAt = &now
	platforms := append([]model.Platform(nil), b.Platforms...)
	keywords := append([]string(nil), b.Keywords...)
	maxCount := b.MaxPerPlatform
	o.mu.Unlock()

	// Submit one task per platform. A submission failure marks that
	// platform's run failed and the batch continues.
	taskIDs := make(map[model.Platform]string, len(platforms))
	for _, p := range platforms {
		t, err := o.registry.Submit(p, keywords, maxCount)
		if err != nil {
			zap.L().Error("batch: task submission failed",
				zap.String("batch_id", batchID),
				zap.String("platform", string(p)),
				zap.Error(err),
			)
			o.updateRun(batchID, p, func(run *model.PlatformRun, b *model.BatchCrawl) {
				run.Status = model.TaskFailed
				run.ErrorMessage = err.Error()
				b.FailedTasks++
			})
			continue
		}
		taskIDs[p] = t.ID
		o.updateRun(batchID, p, func(run *model.PlatformRun, _ *model.BatchCrawl) {
			run.TaskID = t.ID
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for p, taskID := range taskIDs {
		g.Go(func() error {
			result, err := o.registry.Execute(gctx, taskID)
			if err != nil {
				o.updateRun(batchID, p, func(run *model.PlatformRun, b *model.BatchCrawl) {
					run.Status = model.TaskFailed
					run.ErrorMessage = err.Error()
					b.FailedTasks++
				})
				return nil
			}
			o.updateRun(batchID, p, func(run *model.PlatformRun, b *model.BatchCrawl) {
				run.Status = model.TaskCompleted
				run.ContentCount = result.AcceptedCount
				b.CompletedTasks++
				b.TotalContentFound += result.AcceptedCount
			})
			return nil
		})
	}
	_ = g.Wait()

	o.mu.Lock()
	switch {
	case b.FailedTasks == 0:
		b.Status = model.BatchCompleted
	case b.CompletedTasks > 0:
		b.Status = model.BatchPartialSuccess
	default:
		b.Status = model.BatchFailed
	}
	runEnrichment := b.EnrichmentEnabled && b.TotalContentFound > 0 && o.enricher != nil
	if runEnrichment {
		b.EnrichmentStatus = model.EnrichmentRunning
	}
	o.mu.Unlock()

	if runEnrichment {
		stats, err := o.enricher.ProcessPending(ctx, false)
		o.mu.Lock()
		if err != nil {
			b.EnrichmentStatus = model.EnrichmentFailed
			b.ErrorMessage = err.Error()
		} else {
			b.EnrichmentStatus = model.EnrichmentCompleted
		}
		o.mu.Unlock()
		if err != nil {
			zap.L().Error("batch: enrichment stage failed",
				zap.String("batch_id", batchID),
				zap.Error(err),
			)
		} else {
			zap.L().Info("batch: enrichment stage completed",
				zap.String("batch_id", batchID),
				zap.Int("processed", stats.Processed),
				zap.Int("failed", stats.Failed),
			)
		}
	}

	o.mu.Lock()
	done := time.Now().UTC()
	b.CompletedAt = &done
	status := b.Status
	completed := b.CompletedTasks
	failed := b.FailedTasks
	found := b.TotalContentFound
	o.mu.Unlock()

	zap.L().Info("batch: finished",
		zap.String("batch_id", batchID),
		zap.String("status", string(status)),
		zap.Int("completed_tasks", completed),
		zap.Int("failed_tasks", failed),
		zap.Int("content_found", found),
	)
	return nil
}

// Status returns a snapshot with computed overall progress. The crawl
// stage contributes up to 80 points proportionally to finished tasks;
// the enrichment stage adds 10 while running and 20 once done.
func (o *Orchestrator) Status(batchID string) (*model.BatchSnapshot, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	b, ok := o.batches[batchID]
	if !ok {
		return nil, ErrNotFound
	}
	return snapshotWithProgress(b), nil
}

// ListBatches returns up to limit batches, newest first.
func (o *Orchestrator) ListBatches(limit int) []*model.BatchSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]*model.BatchSnapshot, 0, len(o.batches))
	for _, b := range o.batches {
		out = append(out, snapshotWithProgress(b))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// CleanupOld removes batches created before maxAge ago.
func (o *Orchestrator) CleanupOld(maxAge time.Duration) int {
	o.mu.Lock()
	defer o.mu.Unlock()

	cutoff := time.Now().UTC().Add(-maxAge)
	removed := 0
	for id, b := range o.batches {
		if b.CreatedAt.Before(cutoff) {
			delete(o.batches, id)
			removed++
		}
	}
	if removed > 0 {
		zap.L().Info("batch: cleanup", zap.Int("removed", removed))
	}
	return removed
}

func (o *Orchestrator) updateRun(batchID string, p model.Platform, fn func(*model.PlatformRun, *model.BatchCrawl)) {
	o.mu.Lock()
	defer o.mu.Unlock()

	b, ok := o.batches[batchID]
	if !ok {
		return
	}
	run, ok := b.PlatformRuns[p]
	if !ok {
		return
	}
	fn(run, b)
}

func (o *Orchestrator) snapshotBatch(batchID string) (*model.BatchCrawl, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	b, ok := o.batches[batchID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := copyBatch(b)
	return &cp, nil
}

func snapshotWithProgress(b *model.BatchCrawl) *model.BatchSnapshot {
	progress := 0
	if b.TotalTasks > 0 {
		// Crawling earns 80 points for completed tasks only; failed tasks
		// contribute nothing. Enrichment adds 10 while running and the
		// final 20 only once it completes.
		progress = b.CompletedTasks * 80 / b.TotalTasks

		switch b.EnrichmentStatus {
		case model.EnrichmentCompleted:
			progress += 20
		case model.EnrichmentRunning:
			progress += 10
		}
		if progress > 100 {
			progress = 100
		}
	}
	return &model.BatchSnapshot{BatchCrawl: copyBatch(b), OverallProgress: progress}
}

func copyBatch(b *model.BatchCrawl) model.BatchCrawl {
	cp := *b
	cp.Platforms = append([]model.Platform(nil), b.Platforms...)
	cp.Keywords = append([]string(nil), b.Keywords...)
	cp.PlatformRuns = make(map[model.Platform]*model.PlatformRun, len(b.PlatformRuns))
	for p, run := range b.PlatformRuns {
		rc := *run
		cp.PlatformRuns[p] = &rc
	}
	return cp
}
