package platform

import (
	"context"
	"fmt"
	"sort"

	"github.com/launchsignal/tge-radar/internal/model"
)

// Adapter is the per-platform content-fetching capability. Implementations
// own network access, login flows and anti-bot handling; the core only
// calls Crawl and filters the output.
type Adapter interface {
	Name() model.Platform
	IsAvailable(ctx context.Context) bool
	Crawl(ctx context.Context, keywords []string, maxCount int) ([]model.RawPosting, error)
}

// ErrorKind classifies adapter failures so callers can log cause without
// matching on error text.
type ErrorKind string

const (
	KindUnavailable ErrorKind = "unavailable"
	KindAuth        ErrorKind = "auth"
	KindRateLimited ErrorKind = "rate_limited"
	KindParse       ErrorKind = "parse"
)

// Error is a typed adapter error.
type Error struct {
	Platform model.Platform
	Kind     ErrorKind
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Platform, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err as a typed adapter error.
func NewError(p model.Platform, kind ErrorKind, err error) *Error {
	return &Error{Platform: p, Kind: kind, Err: err}
}

// ErrNotRegistered is returned when a platform has no adapter in the set.
type ErrNotRegistered struct {
	Platform model.Platform
}

func (e *ErrNotRegistered) Error() string {
	return fmt.Sprintf("platform %s is not registered", e.Platform)
}

// Set holds the closed adapter table, built once at process start.
type Set struct {
	adapters map[model.Platform]Adapter
}

// NewSet builds an adapter set from a compile-time table.
func NewSet(adapters map[model.Platform]Adapter) *Set {
	cp := make(map[model.Platform]Adapter, len(adapters))
	for p, a := range adapters {
		cp[p] = a
	}
	return &Set{adapters: cp}
}

// Get returns the adapter for a platform, or ErrNotRegistered.
func (s *Set) Get(p model.Platform) (Adapter, error) {
	a, ok := s.adapters[p]
	if !ok {
		return nil, &ErrNotRegistered{Platform: p}
	}
	return a, nil
}

// Platforms returns every registered platform in stable order.
func (s *Set) Platforms() []model.Platform {
	out := make([]model.Platform, 0, len(s.adapters))
	for p := range s.adapters {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Available returns the platforms whose adapters report availability.
func (s *Set) Available(ctx context.Context) []model.Platform {
	var out []model.Platform
	for _, p := range s.Platforms() {
		if s.adapters[p].IsAvailable(ctx) {
			out = append(out, p)
		}
	}
	return out
}
