package enrich

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/launchsignal/tge-radar/internal/model"
	"github.com/launchsignal/tge-radar/pkg/llm"
)

// Pipeline runs the full three-analyzer enrichment for one record and
// integrates the results.
type Pipeline struct {
	entity     *EntityAnalyzer
	investment *InvestmentAnalyzer
	sentiment  *SentimentAnalyzer
	// IncludeSentiment toggles the optional third analyzer.
	IncludeSentiment bool
}

// NewPipeline wires the three analyzers over one LLM client.
func NewPipeline(client llm.Client) *Pipeline {
	return &Pipeline{
		entity:           NewEntityAnalyzer(client),
		investment:       NewInvestmentAnalyzer(client),
		sentiment:        NewSentimentAnalyzer(client),
		IncludeSentiment: true,
	}
}

// Enrich analyzes one candidate record. Analyzer failures degrade to
// defaults rather than aborting; the method itself only fails on context
// cancellation.
func (p *Pipeline) Enrich(ctx context.Context, record *model.CandidateRecord) (*model.EnrichedRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entity := p.entity.Analyze(ctx, record.RawText, record.ProjectName)
	advice := p.investment.Analyze(ctx, entity)

	var sentiment *model.SentimentAnalysis
	if p.IncludeSentiment {
		sentiment = p.sentiment.Analyze(ctx, record.RawText)
	}

	enriched := integrate(entity, advice, sentiment)

	zap.L().Info("enrich: record analyzed",
		zap.String("record_id", record.ID),
		zap.String("project", enriched.ProjectName),
		zap.Float64("overall_score", enriched.OverallScore),
		zap.Float64("confidence", enriched.OverallConfidence),
	)
	return enriched, nil
}

// integrate merges the analyzer outputs into the unified record view.
// Overall confidence is the mean of the available analyzer confidences,
// rounded to 3 decimals.
func integrate(entity *model.EntityAnalysis, advice *model.InvestmentAdvice, sentiment *model.SentimentAnalysis) *model.EnrichedRecord {
	enriched := &model.EnrichedRecord{
		ProjectName:    entity.ProjectName,
		TokenSymbol:    entity.TokenSymbol,
		Category:       entity.Category,
		TGEDate:        entity.TGEDate,
		Summary:        entity.Summary,
		RiskLevel:      entity.RiskLevel,
		Rating:         advice.Rating,
		Recommendation: advice.Recommendation,
		PotentialScore: advice.PotentialScore,
		OverallScore:   advice.OverallScore,
		AnalyzedAt:     time.Now().UTC(),
		Entity:         *entity,
		Investment:     *advice,
	}

	confidences := []float64{entity.Confidence, advice.Confidence}
	if sentiment != nil {
		enriched.SentimentScore = sentiment.Score
		enriched.SentimentLabel = sentiment.Label
		enriched.MarketSentiment = sentiment.MarketSentiment
		enriched.Sentiment = sentiment
		confidences = append(confidences, sentiment.Confidence)
	}

	var sum float64
	for _, c := range confidences {
		sum += c
	}
	enriched.OverallConfidence = math.Round(sum/float64(len(confidences))*1000) / 1000

	return enriched
}
