package model

import "time"

// Platform identifies a content source. The set is closed; adapters are
// registered in a compile-time table rather than at runtime.
type Platform string

const (
	PlatformXHS      Platform = "xhs"
	PlatformDouyin   Platform = "douyin"
	PlatformWeibo    Platform = "weibo"
	PlatformBilibili Platform = "bilibili"
	PlatformZhihu    Platform = "zhihu"
)

// TaskStatus is the lifecycle state of a crawl task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
	TaskCancelled TaskStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskCompleted, TaskFailed, TaskCancelled:
		return true
	}
	return false
}

// CrawlTask is one platform-scoped crawl job. It is mutated only by the
// task registry.
type CrawlTask struct {
	ID           string     `json:"task_id"`
	Platform     Platform   `json:"platform"`
	Keywords     []string   `json:"keywords"`
	MaxCount     int        `json:"max_count"`
	Status       TaskStatus `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	ResultCount  int        `json:"result_count"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// CrawlResult is the immutable outcome of one completed crawl task.
type CrawlResult struct {
	TaskID         string        `json:"task_id"`
	Platform       Platform      `json:"platform"`
	TotalFound     int           `json:"total_found"`
	AcceptedCount  int           `json:"accepted_count"`
	DuplicateCount int           `json:"duplicate_count"`
	FilteredCount  int           `json:"filtered_count"`
	ErrorCount     int           `json:"error_count"`
	Elapsed        time.Duration `json:"elapsed"`
	KeywordsUsed   []string      `json:"keywords_used"`
}
