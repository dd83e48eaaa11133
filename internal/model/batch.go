package model

import "time"

// BatchStatus is the crawl-stage state of a batch.
type BatchStatus string

const (
	BatchPending        BatchStatus = "pending"
	BatchRunning        BatchStatus = "running"
	BatchCompleted      BatchStatus = "completed"
	BatchPartialSuccess BatchStatus = "partial_success"
	BatchFailed         BatchStatus = "failed"
)

// EnrichmentStatus is the enrichment-stage state of a batch, tracked
// separately from the crawl stage.
type EnrichmentStatus string

const (
	EnrichmentDisabled  EnrichmentStatus = "disabled"
	EnrichmentPending   EnrichmentStatus = "pending"
	EnrichmentRunning   EnrichmentStatus = "running"
	EnrichmentCompleted EnrichmentStatus = "completed"
	EnrichmentFailed    EnrichmentStatus = "failed"
)

// PlatformRun tracks one platform's task within a batch.
type PlatformRun struct {
	TaskID       string     `json:"task_id,omitempty"`
	Status       TaskStatus `json:"status"`
	ContentCount int        `json:"content_count"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// BatchCrawl groups a set of per-platform crawl tasks under one id.
// Mutable fields are guarded by the orchestrator's per-batch mutex.
type BatchCrawl struct {
	ID                string                   `json:"batch_id"`
	Platforms         []Platform               `json:"platforms"`
	Keywords          []string                 `json:"keywords"`
	MaxPerPlatform    int                      `json:"max_count_per_platform"`
	EnrichmentEnabled bool                     `json:"enrichment_enabled"`
	PlatformRuns      map[Platform]*PlatformRun `json:"platform_status"`
	Status            BatchStatus              `json:"overall_status"`
	EnrichmentStatus  EnrichmentStatus         `json:"enrichment_status"`
	TotalTasks        int                      `json:"total_tasks"`
	CompletedTasks    int                      `json:"completed_tasks"`
	FailedTasks       int                      `json:"failed_tasks"`
	TotalContentFound int                      `json:"total_content_found"`
	ErrorMessage      string                   `json:"error_message,omitempty"`
	CreatedAt         time.Time                `json:"created_at"`
	StartedAt         *time.Time               `json:"started_at,omitempty"`
	CompletedAt       *time.Time               `json:"completed_at,omitempty"`
}

// BatchSnapshot is a read-only view of a batch plus computed progress.
// The crawl stage contributes 80% of overall progress and the enrichment
// stage the remaining 20%.
type BatchSnapshot struct {
	BatchCrawl
	OverallProgress int `json:"overall_progress"`
}
