package enrich

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/launchsignal/tge-radar/internal/model"
	"github.com/launchsignal/tge-radar/pkg/llm"
)

const sentimentPromptTemplate = `请分析以下内容的情感倾向和市场情绪。

内容：
%s

请以JSON格式返回情感分析结果：
{
    "sentiment_score": "情感评分（-1到1之间，-1最负面，1最正面）",
    "sentiment_label": "情感标签（Positive/Neutral/Negative）",
    "confidence": "置信度（0-1之间）",
    "key_emotions": ["检测到的关键情绪"],
    "market_sentiment": "市场情绪（Bullish/Neutral/Bearish）",
    "explanation": "情感分析说明（30字以内）"
}

请基于文本的语言表达和情感词汇进行客观分析。`

// Bilingual sentiment lexicons with per-keyword weights.
var positiveLexicon = map[string]float64{
	"看好": 0.3, "看涨": 0.4, "乐观": 0.3,
	"潜力": 0.2, "突破": 0.3, "上涨": 0.4, "爆发": 0.5,
	"优质": 0.2, "顶级": 0.3, "新高": 0.4,
	"bullish": 0.4, "moon": 0.5, "pump": 0.4, "gem": 0.3,
}

var negativeLexicon = map[string]float64{
	"看跌": -0.4, "悲观": -0.3, "风险": -0.2, "警告": -0.3,
	"跌落": -0.4, "崩盘": -0.5, "退出": -0.3,
	"骗局": -0.5, "跑路": -0.5, "失败": -0.4, "危险": -0.3,
	"bearish": -0.4, "dump": -0.4, "crash": -0.5, "scam": -0.5,
}

// keywordSentiment is the local lexicon read of one text.
type keywordSentiment struct {
	positive float64
	negative float64
	net      float64
	matched  []string
}

// SentimentAnalyzer scores sentiment via the model and blends in a local
// keyword lexicon.
type SentimentAnalyzer struct {
	client llm.Client
}

// NewSentimentAnalyzer creates the sentiment analyzer.
func NewSentimentAnalyzer(client llm.Client) *SentimentAnalyzer {
	return &SentimentAnalyzer{client: client}
}

// Analyze scores content. LLM failure falls back to the keyword lexicon
// alone with reduced confidence.
func (a *SentimentAnalyzer) Analyze(ctx context.Context, content string) *model.SentimentAnalysis {
	local := analyzeKeywords(content)

	raw, err := a.client.Complete(ctx, fmt.Sprintf(sentimentPromptTemplate, content))
	if err != nil {
		zap.L().Warn("enrich: sentiment analysis failed, using keyword fallback", zap.Error(err))
		return fallbackSentiment(local)
	}

	result := defaultSentiment()
	parsed := parseLenient(raw)
	if text, ok := freeText(parsed); ok {
		result.Explanation = truncate(text, 100)
	} else {
		if score, ok := floatField(parsed, "sentiment_score", -1, 1); ok {
			result.Score = score
		}
		if l := model.SentimentLabel(strField(parsed, "sentiment_label", 10)); validSentimentLabel(l) {
			result.Label = l
		}
		if c, ok := floatField(parsed, "confidence", 0, 1); ok {
			result.Confidence = c
		}
		if emotions := strListField(parsed, "key_emotions", 5, 50); emotions != nil {
			result.KeyEmotions = emotions
		}
		if m := model.MarketSentiment(strField(parsed, "market_sentiment", 10)); validMarketSentiment(m) {
			result.MarketSentiment = m
		}
		if v := strField(parsed, "explanation", 200); v != "" {
			result.Explanation = v
		}
	}

	// Blend the model score with the local lexicon read.
	adjustment := clamp(local.net*0.5, -0.3, 0.3)
	if adjustment != 0 {
		result.Score = clamp(result.Score+adjustment, -1, 1)
		result.LocalAdjustment = adjustment
	}
	return result
}

func analyzeKeywords(content string) keywordSentiment {
	lower := strings.ToLower(content)
	var ks keywordSentiment
	for kw, weight := range positiveLexicon {
		if strings.Contains(lower, kw) {
			ks.positive += weight
			ks.matched = append(ks.matched, "+"+kw)
		}
	}
	for kw, weight := range negativeLexicon {
		if strings.Contains(lower, kw) {
			ks.negative += -weight
			ks.matched = append(ks.matched, "-"+kw)
		}
	}
	ks.net = ks.positive - ks.negative
	return ks
}

// fallbackSentiment derives a keyword-only result when the model is
// unavailable.
func fallbackSentiment(local keywordSentiment) *model.SentimentAnalysis {
	result := defaultSentiment()
	result.Confidence = 0.3
	result.Status = model.AnalysisFallback
	result.Explanation = fmt.Sprintf("基于关键词的本地分析，净得分: %.2f", local.net)

	switch {
	case local.net > 0.1:
		result.Label = model.SentimentPositive
		result.Score = clamp(local.net, -1, 0.7)
	case local.net < -0.1:
		result.Label = model.SentimentNegative
		result.Score = clamp(local.net, -0.7, 1)
	}
	if len(local.matched) > 3 {
		result.KeyEmotions = local.matched[:3]
	} else {
		result.KeyEmotions = local.matched
	}
	return result
}

func defaultSentiment() *model.SentimentAnalysis {
	return &model.SentimentAnalysis{
		Label:           model.SentimentNeutral,
		MarketSentiment: model.MarketNeutral,
		Explanation:     "情感分析结果",
		Confidence:      0.5,
		Status:          model.AnalysisOK,
	}
}

func validSentimentLabel(l model.SentimentLabel) bool {
	switch l {
	case model.SentimentPositive, model.SentimentNeutral, model.SentimentNegative:
		return true
	}
	return false
}

func validMarketSentiment(m model.MarketSentiment) bool {
	switch m {
	case model.MarketBullish, model.MarketNeutral, model.MarketBearish:
		return true
	}
	return false
}
