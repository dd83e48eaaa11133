// Package llm wraps the Anthropic API behind the single completion call
// the analyzers need.
package llm

import (
	"context"
	"errors"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/launchsignal/tge-radar/internal/cost"
	"github.com/launchsignal/tge-radar/internal/resilience"
)

// Client is the completion capability the enrichment analyzers consume.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config tunes the SDK-backed client.
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int64
	Temperature float64
	Timeout     time.Duration
	// RequestsPerMinute caps the call rate; zero disables the limiter.
	RequestsPerMinute int
}

// sdkClient implements Client using the official anthropic-sdk-go.
type sdkClient struct {
	client  sdk.Client
	cfg     Config
	limiter *rate.Limiter
	retry   resilience.Config
	spend   *cost.Tracker
}

// NewClient creates an Anthropic-backed completion client.
func NewClient(cfg Config) Client {
	if cfg.Model == "" {
		cfg.Model = "claude-haiku-4-5-20251001"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1)
	}

	retry := resilience.DefaultConfig()
	retry.ShouldRetry = isRetryableAPIErr
	retry.OnRetry = resilience.Logger("anthropic", "complete")

	return &sdkClient{
		client:  sdk.NewClient(option.WithAPIKey(cfg.APIKey)),
		cfg:     cfg,
		limiter: limiter,
		retry:   retry,
		spend:   cost.NewTracker(nil),
	}
}

func (c *sdkClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", eris.Wrap(err, "llm: rate limit wait")
		}
	}

	msg, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*sdk.Message, error) {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()

		return c.client.Messages.New(callCtx, sdk.MessageNewParams{
			Model:       sdk.Model(c.cfg.Model),
			MaxTokens:   c.cfg.MaxTokens,
			Temperature: sdk.Float(c.cfg.Temperature),
			Messages: []sdk.MessageParam{
				sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
			},
		})
	})
	if err != nil {
		return "", eris.Wrap(err, "llm: create message")
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	callUSD := c.spend.Record(c.cfg.Model, msg.Usage.InputTokens, msg.Usage.OutputTokens)
	total := c.spend.Snapshot()

	zap.L().Debug("llm: completion",
		zap.String("model", c.cfg.Model),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
		zap.Float64("call_usd", callUSD),
		zap.Float64("total_usd", total.TotalUSD),
	)
	return text, nil
}

// isRetryableAPIErr retries rate limits, overload and transport faults.
func isRetryableAPIErr(err error) bool {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return resilience.IsTransientStatus(apiErr.StatusCode)
	}
	return resilience.IsTransient(err)
}
