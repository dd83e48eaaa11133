package enrich

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/launchsignal/tge-radar/internal/model"
	"github.com/launchsignal/tge-radar/pkg/llm"
)

const investPromptTemplate = `请基于以下Web3项目信息，提供简洁的投资分析建议。

项目信息：
%s

请以JSON格式返回投资建议，包含以下字段：
{
    "investment_rating": "投资评级（1-5分）",
    "risk_assessment": "风险评估（Low/Medium/High）",
    "potential_score": "潜力评分（1-5分）",
    "key_advantages": ["主要优势"],
    "key_risks": ["主要风险"],
    "short_term_outlook": "短期前景（30字以内）",
    "recommendation": "投资建议（关注/谨慎/避免）",
    "reason": "建议理由（50字以内）",
    "confidence": "置信度（0-1之间）"
}

请保持客观分析，基于公开信息进行评估。`

// riskMultipliers scale the overall score: lower risk rewards, higher
// risk discounts.
var riskMultipliers = map[model.RiskLevel]float64{
	model.RiskLow:    1.1,
	model.RiskMedium: 1.0,
	model.RiskHigh:   0.8,
}

// recommendationAliases maps English model output onto the canonical
// Chinese 3-value set.
var recommendationAliases = map[string]model.Recommendation{
	"Watch":   model.RecommendWatch,
	"关注":      model.RecommendWatch,
	"Caution": model.RecommendCaution,
	"谨慎":      model.RecommendCaution,
	"Avoid":   model.RecommendAvoid,
	"避免":      model.RecommendAvoid,
}

// categoryRiskNotes supplements advice with a per-category caveat.
var categoryRiskNotes = map[model.Category]string{
	model.CategoryDeFi:   "DeFi项目通常具有较高的智能合约风险",
	model.CategoryGameFi: "GameFi项目依赖游戏采用率和玩家留存",
	model.CategoryLayer2: "Layer2项目需要关注技术成熟度和生态发展",
}

// InvestmentAnalyzer produces rating, risk and recommendation from the
// entity analyzer's output.
type InvestmentAnalyzer struct {
	client llm.Client
	now    func() time.Time
}

// NewInvestmentAnalyzer creates the investment analyzer.
func NewInvestmentAnalyzer(client llm.Client) *InvestmentAnalyzer {
	return &InvestmentAnalyzer{client: client, now: time.Now}
}

// Analyze consumes the entity analysis as model context. LLM failure
// degrades to the default advice with zero confidence.
func (a *InvestmentAnalyzer) Analyze(ctx context.Context, entity *model.EntityAnalysis) *model.InvestmentAdvice {
	advice := defaultAdvice()

	raw, err := a.client.Complete(ctx, fmt.Sprintf(investPromptTemplate, buildEntityContext(entity)))
	if err != nil {
		zap.L().Warn("enrich: investment analysis failed", zap.Error(err))
		advice.KeyRisks = []string{"信息不足，需要进一步研究"}
		advice.Confidence = 0
		advice.Status = model.AnalysisFailed
		a.finish(advice, entity)
		return advice
	}

	parsed := parseLenient(raw)
	if text, ok := freeText(parsed); ok {
		advice.Reason = truncate(text, 100)
		a.finish(advice, entity)
		return advice
	}

	if v, ok := intField(parsed, "investment_rating", 1, 5); ok {
		advice.Rating = v
	}
	if r := model.RiskLevel(strField(parsed, "risk_assessment", 10)); validRisk(r) {
		advice.RiskAssessment = r
	}
	if v, ok := intField(parsed, "potential_score", 1, 5); ok {
		advice.PotentialScore = v
	}
	if list := strListField(parsed, "key_advantages", 5, 100); list != nil {
		advice.KeyAdvantages = list
	}
	if list := strListField(parsed, "key_risks", 5, 100); list != nil {
		advice.KeyRisks = list
	}
	if v := strField(parsed, "short_term_outlook", 200); v != "" {
		advice.ShortTermOutlook = v
	}
	if rec, ok := recommendationAliases[strings.TrimSpace(strField(parsed, "recommendation", 20))]; ok {
		advice.Recommendation = rec
	}
	if v := strField(parsed, "reason", 200); v != "" {
		advice.Reason = v
	}
	if c, ok := floatField(parsed, "confidence", 0, 1); ok {
		advice.Confidence = c
	}

	a.finish(advice, entity)
	return advice
}

// finish attaches the category and timing notes and the overall score.
func (a *InvestmentAnalyzer) finish(advice *model.InvestmentAdvice, entity *model.EntityAnalysis) {
	if entity == nil {
		advice.OverallScore = OverallScore(advice.Rating, advice.PotentialScore, advice.RiskAssessment)
		return
	}
	advice.CategoryRiskNote = categoryRiskNotes[entity.Category]
	advice.TimingNote = timingNote(entity.TGEDate, a.now())
	advice.OverallScore = OverallScore(advice.Rating, advice.PotentialScore, advice.RiskAssessment)
}

// OverallScore computes ((rating + potential) / 2) * risk multiplier,
// clamped to [1, 5] and rounded to 2 decimals.
func OverallScore(rating, potential int, risk model.RiskLevel) float64 {
	base := float64(rating+potential) / 2
	multiplier, ok := riskMultipliers[risk]
	if !ok {
		multiplier = 1.0
	}
	return math.Round(clamp(base*multiplier, 1.0, 5.0)*100) / 100
}

func timingNote(tgeDate string, now time.Time) string {
	if tgeDate == "" {
		return ""
	}
	parsed, err := time.Parse("2006-01-02", tgeDate)
	if err != nil {
		return ""
	}
	days := int(parsed.Sub(now).Hours() / 24)
	switch {
	case days > 30:
		return "TGE还有较长时间，可以持续关注项目进展"
	case days > 0:
		return "TGE即将到来，需要特别关注市场反应"
	default:
		return "TGE已经进行，需要关注代币表现和项目执行"
	}
}

func buildEntityContext(entity *model.EntityAnalysis) string {
	if entity == nil {
		return "项目名称：Unknown"
	}
	var parts []string
	parts = append(parts, "项目名称："+entity.ProjectName)
	if entity.TokenSymbol != "" {
		parts = append(parts, "代币符号："+entity.TokenSymbol)
	}
	parts = append(parts, "项目类别："+string(entity.Category))
	if entity.TGEDate != "" {
		parts = append(parts, "TGE日期："+entity.TGEDate)
	}
	if len(entity.KeyFeatures) > 0 {
		parts = append(parts, "关键特性："+strings.Join(entity.KeyFeatures, ", "))
	}
	if entity.FundingInfo != "" {
		parts = append(parts, "融资信息："+entity.FundingInfo)
	}
	if entity.Summary != "" {
		parts = append(parts, "项目简介："+entity.Summary)
	}
	return strings.Join(parts, "\n")
}

func defaultAdvice() *model.InvestmentAdvice {
	return &model.InvestmentAdvice{
		Rating:           3,
		RiskAssessment:   model.RiskMedium,
		PotentialScore:   3,
		ShortTermOutlook: "中性观望，需要持续关注",
		Recommendation:   model.RecommendCaution,
		Reason:           "基于当前信息的初步判断",
		Confidence:       0.5,
		Status:           model.AnalysisOK,
	}
}
