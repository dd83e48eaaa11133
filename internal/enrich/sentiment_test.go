package enrich

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/launchsignal/tge-radar/internal/model"
)

func TestSentimentAnalyze_StructuredResponse(t *testing.T) {
	client := &mockLLM{}
	client.On("Complete", mock.Anything, mock.Anything).Return(`{
		"sentiment_score": 0.6,
		"sentiment_label": "Positive",
		"confidence": 0.85,
		"market_sentiment": "Bullish",
		"explanation": "upbeat launch chatter"
	}`, nil)

	got := NewSentimentAnalyzer(client).Analyze(context.Background(), "neutral wording content")

	assert.Equal(t, 0.6, got.Score)
	assert.Equal(t, model.SentimentPositive, got.Label)
	assert.Equal(t, model.MarketBullish, got.MarketSentiment)
	assert.Equal(t, 0.85, got.Confidence)
	assert.Equal(t, 0.0, got.LocalAdjustment)
}

func TestSentimentAnalyze_ScoreClamped(t *testing.T) {
	client := &mockLLM{}
	client.On("Complete", mock.Anything, mock.Anything).
		Return(`{"sentiment_score": 3.5}`, nil)

	got := NewSentimentAnalyzer(client).Analyze(context.Background(), "plain content")
	assert.Equal(t, 1.0, got.Score)
}

func TestSentimentAnalyze_LocalAdjustmentApplied(t *testing.T) {
	client := &mockLLM{}
	client.On("Complete", mock.Anything, mock.Anything).
		Return(`{"sentiment_score": 0.0, "sentiment_label": "Neutral"}`, nil)

	// "看涨" (+0.4) and "突破" (+0.3) give net 0.7, adjustment clamps to 0.3.
	got := NewSentimentAnalyzer(client).Analyze(context.Background(), "这个项目看涨，即将突破")
	assert.InDelta(t, 0.3, got.Score, 0.0001)
	assert.InDelta(t, 0.3, got.LocalAdjustment, 0.0001)
}

func TestSentimentAnalyze_FallbackPositive(t *testing.T) {
	client := &mockLLM{}
	client.On("Complete", mock.Anything, mock.Anything).Return("", assert.AnError)

	got := NewSentimentAnalyzer(client).Analyze(context.Background(), "this gem is going to moon")

	assert.Equal(t, model.SentimentPositive, got.Label)
	// net = 0.3 + 0.5 = 0.8, capped at 0.7.
	assert.InDelta(t, 0.7, got.Score, 0.0001)
	assert.Equal(t, 0.3, got.Confidence)
	assert.Equal(t, model.AnalysisFallback, got.Status)
}

func TestSentimentAnalyze_FallbackNegative(t *testing.T) {
	client := &mockLLM{}
	client.On("Complete", mock.Anything, mock.Anything).Return("", assert.AnError)

	got := NewSentimentAnalyzer(client).Analyze(context.Background(), "obvious scam, total crash incoming")

	assert.Equal(t, model.SentimentNegative, got.Label)
	// net = -(0.5 + 0.5) = -1.0, floored at -0.7.
	assert.InDelta(t, -0.7, got.Score, 0.0001)
	assert.Equal(t, 0.3, got.Confidence)
}

func TestSentimentAnalyze_FallbackNeutral(t *testing.T) {
	client := &mockLLM{}
	client.On("Complete", mock.Anything, mock.Anything).Return("", assert.AnError)

	got := NewSentimentAnalyzer(client).Analyze(context.Background(), "a perfectly ordinary update")

	assert.Equal(t, model.SentimentNeutral, got.Label)
	assert.Equal(t, 0.0, got.Score)
	assert.Equal(t, 0.3, got.Confidence)
}

func TestAnalyzeKeywords_Bilingual(t *testing.T) {
	ks := analyzeKeywords("看好这个项目但是有风险")
	assert.InDelta(t, 0.3, ks.positive, 0.0001)
	assert.InDelta(t, 0.2, ks.negative, 0.0001)
	assert.InDelta(t, 0.1, ks.net, 0.0001)
	assert.Len(t, ks.matched, 2)
}
