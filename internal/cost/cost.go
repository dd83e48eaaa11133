// Package cost estimates model API spend for enrichment runs.
package cost

import "sync"

// ModelRate holds per-model token pricing in USD per million tokens.
type ModelRate struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// DefaultRates returns the default Anthropic pricing table.
func DefaultRates() map[string]ModelRate {
	return map[string]ModelRate{
		"claude-haiku-4-5-20251001":  {Input: 0.80, Output: 4.00},
		"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00},
		"claude-opus-4-6":            {Input: 15.00, Output: 75.00},
	}
}

// Summary is a point-in-time view of accumulated usage.
type Summary struct {
	Calls        int     `json:"calls"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	TotalUSD     float64 `json:"total_usd"`
}

// Tracker accumulates token usage and estimated spend across completion
// calls. Safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	rates   map[string]ModelRate
	summary Summary
}

// NewTracker creates a tracker. nil rates selects DefaultRates.
func NewTracker(rates map[string]ModelRate) *Tracker {
	if rates == nil {
		rates = DefaultRates()
	}
	return &Tracker{rates: rates}
}

// Estimate computes the cost of one call without recording it. Unknown
// models cost zero.
func (t *Tracker) Estimate(model string, input, output int64) float64 {
	rate, ok := t.rates[model]
	if !ok {
		return 0
	}
	return (float64(input)/1e6)*rate.Input + (float64(output)/1e6)*rate.Output
}

// Record adds one call's usage and returns its estimated cost.
func (t *Tracker) Record(model string, input, output int64) float64 {
	usd := t.Estimate(model, input, output)

	t.mu.Lock()
	t.summary.Calls++
	t.summary.InputTokens += input
	t.summary.OutputTokens += output
	t.summary.TotalUSD += usd
	t.mu.Unlock()

	return usd
}

// Snapshot returns the accumulated usage so far.
func (t *Tracker) Snapshot() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.summary
}
