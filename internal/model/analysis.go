package model

import "time"

// RiskLevel is the closed risk enum shared by the entity and investment
// analyzers.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Recommendation is the canonical 3-value investment recommendation.
// Model output may arrive in English or Chinese; it is always mapped onto
// this set.
type Recommendation string

const (
	RecommendWatch   Recommendation = "关注"
	RecommendCaution Recommendation = "谨慎"
	RecommendAvoid   Recommendation = "避免"
)

// SentimentLabel is the 3-value sentiment classification.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "Positive"
	SentimentNeutral  SentimentLabel = "Neutral"
	SentimentNegative SentimentLabel = "Negative"
)

// MarketSentiment is the model's read of broader market mood.
type MarketSentiment string

const (
	MarketBullish MarketSentiment = "Bullish"
	MarketNeutral MarketSentiment = "Neutral"
	MarketBearish MarketSentiment = "Bearish"
)

// AnalysisStatus marks whether an analyzer produced a real result or
// degraded to its defaults.
type AnalysisStatus string

const (
	AnalysisOK       AnalysisStatus = "ok"
	AnalysisFailed   AnalysisStatus = "failed"
	AnalysisFallback AnalysisStatus = "local_fallback"
)

// EntityAnalysis is the standardized output of the entity/topic analyzer.
type EntityAnalysis struct {
	ProjectName string         `json:"project_name"`
	TokenSymbol string         `json:"token_symbol,omitempty"`
	TGEDate     string         `json:"tge_date,omitempty"`
	Category    Category       `json:"project_category"`
	KeyFeatures []string       `json:"key_features,omitempty"`
	FundingInfo string         `json:"funding_info,omitempty"`
	RiskLevel   RiskLevel      `json:"risk_level"`
	Summary     string         `json:"summary"`
	Confidence  float64        `json:"confidence"`
	Status      AnalysisStatus `json:"status"`
}

// InvestmentAdvice is the standardized output of the investment analyzer.
type InvestmentAdvice struct {
	Rating           int            `json:"investment_rating"`
	RiskAssessment   RiskLevel      `json:"risk_assessment"`
	PotentialScore   int            `json:"potential_score"`
	KeyAdvantages    []string       `json:"key_advantages,omitempty"`
	KeyRisks         []string       `json:"key_risks,omitempty"`
	ShortTermOutlook string         `json:"short_term_outlook"`
	Recommendation   Recommendation `json:"recommendation"`
	Reason           string         `json:"reason"`
	CategoryRiskNote string         `json:"category_risk_note,omitempty"`
	TimingNote       string         `json:"timing_note,omitempty"`
	OverallScore     float64        `json:"overall_score"`
	Confidence       float64        `json:"confidence"`
	Status           AnalysisStatus `json:"status"`
}

// SentimentAnalysis is the standardized output of the sentiment analyzer.
type SentimentAnalysis struct {
	Score           float64         `json:"sentiment_score"`
	Label           SentimentLabel  `json:"sentiment_label"`
	MarketSentiment MarketSentiment `json:"market_sentiment"`
	KeyEmotions     []string        `json:"key_emotions,omitempty"`
	Explanation     string          `json:"explanation"`
	LocalAdjustment float64         `json:"local_adjustment,omitempty"`
	Confidence      float64         `json:"confidence"`
	Status          AnalysisStatus  `json:"status"`
}

// EnrichedRecord merges the three analyzer outputs for one candidate record.
// The raw sub-results are retained for auditability.
type EnrichedRecord struct {
	ProjectName       string          `json:"project_name"`
	TokenSymbol       string          `json:"token_symbol,omitempty"`
	Category          Category        `json:"project_category"`
	TGEDate           string          `json:"tge_date,omitempty"`
	Summary           string          `json:"summary"`
	RiskLevel         RiskLevel       `json:"risk_level"`
	Rating            int             `json:"investment_rating"`
	Recommendation    Recommendation  `json:"investment_recommendation"`
	PotentialScore    int             `json:"potential_score"`
	OverallScore      float64         `json:"overall_score"`
	SentimentScore    float64         `json:"sentiment_score"`
	SentimentLabel    SentimentLabel  `json:"sentiment_label"`
	MarketSentiment   MarketSentiment `json:"market_sentiment"`
	OverallConfidence float64         `json:"overall_confidence"`
	AnalyzedAt        time.Time       `json:"analyzed_at"`

	Entity     EntityAnalysis     `json:"entity_analysis"`
	Investment InvestmentAdvice   `json:"investment_advice"`
	Sentiment  *SentimentAnalysis `json:"sentiment_analysis,omitempty"`
}
