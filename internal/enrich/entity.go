package enrich

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/launchsignal/tge-radar/internal/model"
	"github.com/launchsignal/tge-radar/pkg/llm"
)

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

const entityPromptTemplate = `请分析以下Web3/区块链项目内容，提取TGE相关信息。

内容：
%s

请以JSON格式返回分析结果，包含以下字段：
{
    "project_name": "项目名称",
    "token_symbol": "代币符号",
    "tge_date": "TGE日期（YYYY-MM-DD格式，如果有）",
    "project_category": "项目类别（DeFi/GameFi/NFT/Layer2/DAO/Other）",
    "key_features": ["关键特性列表"],
    "funding_info": "融资信息",
    "risk_level": "风险等级（Low/Medium/High）",
    "summary": "项目简要总结（50字以内）",
    "confidence": "置信度（0-1之间）"
}

如果某些信息无法从内容中提取，请设置为null。`

// EntityAnalyzer extracts structured project facts from posting text.
type EntityAnalyzer struct {
	client llm.Client
}

// NewEntityAnalyzer creates the entity analyzer over an LLM client.
func NewEntityAnalyzer(client llm.Client) *EntityAnalyzer {
	return &EntityAnalyzer{client: client}
}

// Analyze never fails hard: an LLM error degrades to the default result
// with zero confidence and status failed.
func (a *EntityAnalyzer) Analyze(ctx context.Context, content, fallbackName string) *model.EntityAnalysis {
	result := defaultEntity(fallbackName)

	raw, err := a.client.Complete(ctx, fmt.Sprintf(entityPromptTemplate, content))
	if err != nil {
		zap.L().Warn("enrich: entity analysis failed", zap.Error(err))
		result.Confidence = 0
		result.Status = model.AnalysisFailed
		return result
	}

	parsed := parseLenient(raw)
	if text, ok := freeText(parsed); ok {
		result.Summary = truncate(text, 100)
		return result
	}

	if v := strField(parsed, "project_name", 100); v != "" {
		result.ProjectName = v
	}
	if v := strField(parsed, "token_symbol", 20); v != "" {
		result.TokenSymbol = v
	}
	result.TGEDate = validateDate(strField(parsed, "tge_date", 32))
	if c := model.Category(strField(parsed, "project_category", 20)); validCategory(c) {
		result.Category = c
	}
	if features := strListField(parsed, "key_features", 5, 50); features != nil {
		result.KeyFeatures = features
	}
	if v := strField(parsed, "funding_info", 200); v != "" {
		result.FundingInfo = v
	}
	if r := model.RiskLevel(strField(parsed, "risk_level", 10)); validRisk(r) {
		result.RiskLevel = r
	}
	if v := strField(parsed, "summary", 200); v != "" {
		result.Summary = v
	}
	if c, ok := floatField(parsed, "confidence", 0, 1); ok {
		result.Confidence = c
	}
	return result
}

func defaultEntity(fallbackName string) *model.EntityAnalysis {
	if fallbackName == "" {
		fallbackName = "Unknown"
	}
	return &model.EntityAnalysis{
		ProjectName: fallbackName,
		Category:    model.CategoryOther,
		RiskLevel:   model.RiskMedium,
		Summary:     "项目信息需要进一步分析",
		Confidence:  0.5,
		Status:      model.AnalysisOK,
	}
}

// validateDate accepts only strict YYYY-MM-DD values; vague hints like
// "soon" come back empty.
func validateDate(date string) string {
	if date == "" || !isoDatePattern.MatchString(date) {
		return ""
	}
	if _, err := time.Parse("2006-01-02", date[:10]); err != nil {
		return ""
	}
	return date[:10]
}

func validCategory(c model.Category) bool {
	for _, known := range model.AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

func validRisk(r model.RiskLevel) bool {
	switch r {
	case model.RiskLow, model.RiskMedium, model.RiskHigh:
		return true
	}
	return false
}
