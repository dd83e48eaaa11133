// Package task tracks crawl tasks through their lifecycle and executes
// them against platform adapters.
package task

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/launchsignal/tge-radar/internal/ingest"
	"github.com/launchsignal/tge-radar/internal/model"
	"github.com/launchsignal/tge-radar/internal/platform"
)

// ErrNotFound is returned when a task id is unknown to the registry.
var ErrNotFound = eris.New("task: not found")

// defaultKeywordCount is how many core keywords a task gets when
// submitted without any.
const defaultKeywordCount = 5

// Registry owns every crawl task in the process. Tasks live in memory
// only; accepted records are the durable output.
type Registry struct {
	mu         sync.Mutex
	tasks      map[string]*model.CrawlTask
	results    map[string]*model.CrawlResult
	cancels    map[string]context.CancelFunc
	adapters   *platform.Set
	classifier *ingest.Classifier
	timeout    time.Duration
}

// NewRegistry creates a registry over the adapter set and classifier.
// timeout bounds each adapter Crawl call; zero means 5 minutes.
func NewRegistry(adapters *platform.Set, classifier *ingest.Classifier, timeout time.Duration) *Registry {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Registry{
		tasks:      make(map[string]*model.CrawlTask),
		results:    make(map[string]*model.CrawlResult),
		cancels:    make(map[string]context.CancelFunc),
		adapters:   adapters,
		classifier: classifier,
		timeout:    timeout,
	}
}

// Submit registers a new pending task. Empty keywords default to the
// core keyword set. The platform must have a registered adapter.
func (r *Registry) Submit(p model.Platform, keywords []string, maxCount int) (*model.CrawlTask, error) {
	if _, err := r.adapters.Get(p); err != nil {
		return nil, eris.Wrap(err, "task: submit")
	}
	if len(keywords) == 0 {
		keywords = ingest.DefaultKeywords(defaultKeywordCount)
	}
	if maxCount <= 0 {
		maxCount = 20
	}

	t := &model.CrawlTask{
		ID:        uuid.New().String(),
		Platform:  p,
		Keywords:  keywords,
		MaxCount:  maxCount,
		Status:    model.TaskPending,
		CreatedAt: time.Now().UTC(),
	}

	r.mu.Lock()
	r.tasks[t.ID] = t
	r.mu.Unlock()

	zap.L().Info("task: submitted",
		zap.String("task_id", t.ID),
		zap.String("platform", string(p)),
		zap.Strings("keywords", keywords),
	)
	return snapshot(t), nil
}

// Execute runs a pending task to completion: crawl the platform, then
// classify every posting. Per-posting classification errors increment
// the error counter but never abort the task.
func (r *Registry) Execute(ctx context.Context, id string) (*model.CrawlResult, error) {
	r.mu.Lock()
	t, ok := r.tasks[id]
	if !ok {
		r.mu.Unlock()
		return nil, ErrNotFound
	}
	if t.Status != model.TaskPending {
		status := t.Status
		r.mu.Unlock()
		return nil, eris.Errorf("task: %s is %s, not pending", id, status)
	}
	now := time.Now().UTC()
	t.Status = model.TaskRunning
	t.StartedAt = &now

	crawlCtx, cancel := context.WithTimeout(ctx, r.timeout)
	r.cancels[id] = cancel
	platformName := t.Platform
	keywords := append([]string(nil), t.Keywords...)
	maxCount := t.MaxCount
	r.mu.Unlock()
	defer cancel()

	start := time.Now()
	adapter, err := r.adapters.Get(platformName)
	if err != nil {
		r.fail(id, err)
		return nil, eris.Wrap(err, "task: execute")
	}

	postings, err := adapter.Crawl(crawlCtx, keywords, maxCount)
	if err != nil {
		// Cancelled tasks keep their cancelled status.
		if r.status(id) == model.TaskCancelled {
			return nil, eris.Wrapf(err, "task: %s cancelled", id)
		}
		r.fail(id, err)
		return nil, eris.Wrapf(err, "task: crawl %s", platformName)
	}

	result := &model.CrawlResult{
		TaskID:       id,
		Platform:     platformName,
		TotalFound:   len(postings),
		KeywordsUsed: keywords,
	}
	for _, posting := range postings {
		if crawlCtx.Err() != nil {
			break
		}
		_, outcome, err := r.classifier.Classify(crawlCtx, posting)
		if err != nil {
			result.ErrorCount++
			zap.L().Warn("task: classify failed",
				zap.String("task_id", id),
				zap.String("content_id", posting.ContentID),
				zap.Error(err),
			)
			continue
		}
		switch outcome {
		case ingest.OutcomeAccepted:
			result.AcceptedCount++
		case ingest.OutcomeDuplicate:
			result.DuplicateCount++
		case ingest.OutcomeFiltered:
			result.FilteredCount++
		}
	}
	result.Elapsed = time.Since(start)

	r.mu.Lock()
	delete(r.cancels, id)
	if t.Status == model.TaskRunning {
		done := time.Now().UTC()
		t.Status = model.TaskCompleted
		t.CompletedAt = &done
		t.ResultCount = result.AcceptedCount
		r.results[id] = result
	}
	r.mu.Unlock()

	zap.L().Info("task: completed",
		zap.String("task_id", id),
		zap.Int("found", result.TotalFound),
		zap.Int("accepted", result.AcceptedCount),
		zap.Int("duplicates", result.DuplicateCount),
		zap.Int("filtered", result.FilteredCount),
		zap.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

// Cancel requests cooperative cancellation of a pending or running task.
func (r *Registry) Cancel(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return ErrNotFound
	}
	if t.Status.Terminal() {
		return eris.Errorf("task: %s already %s", id, t.Status)
	}

	now := time.Now().UTC()
	t.Status = model.TaskCancelled
	t.CompletedAt = &now
	if cancel, ok := r.cancels[id]; ok {
		cancel()
		delete(r.cancels, id)
	}
	zap.L().Info("task: cancelled", zap.String("task_id", id))
	return nil
}

// Get returns a copy of the task.
func (r *Registry) Get(id string) (*model.CrawlTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return snapshot(t), nil
}

// Result returns the crawl result for a completed task.
func (r *Registry) Result(id string) (*model.CrawlResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return nil, ErrNotFound
	}
	res, ok := r.results[id]
	if !ok {
		return nil, eris.Errorf("task: %s has no result", id)
	}
	cp := *res
	return &cp, nil
}

// List returns tasks filtered by status and platform, newest first.
// Zero-value filters match everything; limit <= 0 means no limit.
func (r *Registry) List(status model.TaskStatus, p model.Platform, limit int) []*model.CrawlTask {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.CrawlTask
	for _, t := range r.tasks {
		if status != "" && t.Status != status {
			continue
		}
		if p != "" && t.Platform != p {
			continue
		}
		out = append(out, snapshot(t))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// CleanupOld removes terminal tasks older than maxAge and returns how
// many were removed.
func (r *Registry) CleanupOld(maxAge time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().UTC().Add(-maxAge)
	removed := 0
	for id, t := range r.tasks {
		if t.Status.Terminal() && t.CreatedAt.Before(cutoff) {
			delete(r.tasks, id)
			delete(r.results, id)
			removed++
		}
	}
	if removed > 0 {
		zap.L().Info("task: cleanup", zap.Int("removed", removed))
	}
	return removed
}

func (r *Registry) status(id string) model.TaskStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tasks[id]; ok {
		return t.Status
	}
	return ""
}

func (r *Registry) fail(id string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.Status.Terminal() {
		return
	}
	now := time.Now().UTC()
	t.Status = model.TaskFailed
	t.ErrorMessage = err.Error()
	t.CompletedAt = &now
}

func snapshot(t *model.CrawlTask) *model.CrawlTask {
	cp := *t
	cp.Keywords = append([]string(nil), t.Keywords...)
	return &cp
}
