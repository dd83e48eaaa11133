package ingest

import (
	"strings"

	"github.com/launchsignal/tge-radar/internal/model"
)

// CoreKeywords are the primary TGE search terms. Postings matching none of
// the domain keywords are filtered out before storage.
var CoreKeywords = []string{
	"TGE",
	"代币发行",
	"空投",
	"IDO",
	"新币上线",
	"DeFi",
	"Web3项目",
	"撸毛",
	"开启测试网",
	"速撸",
}

// ExtendedKeywords widen the net beyond the core set.
var ExtendedKeywords = []string{
	"代币经济",
	"白名单",
	"公募",
	"私募",
	"预售",
	"IEO",
	"ICO",
	"GameFi",
	"NFT项目",
	"Layer2",
	"跨链",
	"挖矿",
	"质押",
	"流动性挖矿",
	"DEX",
	"CEX上币",
	"主网上线",
	"测试网",
	"空投猎手",
	"薅羊毛",
	"币圈",
	"链游",
	"元宇宙",
	"DAO",
}

// AllKeywords returns the full domain keyword set.
func AllKeywords() []string {
	out := make([]string, 0, len(CoreKeywords)+len(ExtendedKeywords))
	out = append(out, CoreKeywords...)
	out = append(out, ExtendedKeywords...)
	return out
}

// DefaultKeywords returns the first n core keywords, used when a task is
// submitted without any.
func DefaultKeywords(n int) []string {
	if n <= 0 || n > len(CoreKeywords) {
		n = len(CoreKeywords)
	}
	return append([]string(nil), CoreKeywords[:n]...)
}

// categoryRule pairs a category with the keywords that imply it.
type categoryRule struct {
	category model.Category
	keywords []string
}

// categoryRules are checked in priority order; the first match wins, so a
// posting mentioning both DeFi and NFT classifies as DeFi.
var categoryRules = []categoryRule{
	{model.CategoryDeFi, []string{"defi", "去中心化金融", "借贷", "流动性"}},
	{model.CategoryGameFi, []string{"gamefi", "链游", "游戏", "game"}},
	{model.CategoryNFT, []string{"nft", "非同质化", "收藏品"}},
	{model.CategoryLayer2, []string{"layer2", "l2", "二层", "扩容"}},
	{model.CategoryDAO, []string{"dao", "治理", "governance"}},
}

// ClassifyCategory infers a project category from text. Returns
// CategoryOther when nothing matches.
func ClassifyCategory(text string) model.Category {
	lower := strings.ToLower(text)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return model.CategoryOther
}

// MatchKeywords returns the domain keywords present in text,
// case-insensitively, in declaration order.
func MatchKeywords(text string) []string {
	lower := strings.ToLower(text)
	var matched []string
	for _, kw := range AllKeywords() {
		if strings.Contains(lower, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	return matched
}
