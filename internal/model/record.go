package model

import "time"

// ContentType describes the media shape of a posting.
type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeVideo ContentType = "video"
	ContentTypeImage ContentType = "image"
	ContentTypeMixed ContentType = "mixed"
)

// RawPosting is one item fetched from a platform adapter. It is immutable
// and consumed exactly once by the ingestion classifier.
type RawPosting struct {
	Platform     Platform    `json:"platform"`
	ContentID    string      `json:"content_id"`
	ContentType  ContentType `json:"content_type"`
	Title        string      `json:"title"`
	Content      string      `json:"content"`
	AuthorID     string      `json:"author_id"`
	AuthorName   string      `json:"author_name"`
	PublishTime  time.Time   `json:"publish_time"`
	LikeCount    int         `json:"like_count"`
	CommentCount int         `json:"comment_count"`
	ShareCount   int         `json:"share_count"`
	CollectCount int         `json:"collect_count"`
	SourceURL    string      `json:"source_url"`
	Keyword      string      `json:"keyword"`
}

// Category is the inferred project category of a posting.
type Category string

const (
	CategoryDeFi   Category = "DeFi"
	CategoryGameFi Category = "GameFi"
	CategoryNFT    Category = "NFT"
	CategoryLayer2 Category = "Layer2"
	CategoryDAO    Category = "DAO"
	CategoryOther  Category = "Other"
)

// AllCategories returns the closed category enum in classification
// priority order.
func AllCategories() []Category {
	return []Category{
		CategoryDeFi, CategoryGameFi, CategoryNFT,
		CategoryLayer2, CategoryDAO, CategoryOther,
	}
}

// CandidateRecord is a RawPosting that passed the deduplication gate and
// keyword filter. The fingerprint is unique across the store.
type CandidateRecord struct {
	ID              string    `json:"id"`
	Fingerprint     string    `json:"fingerprint"`
	ProjectName     string    `json:"project_name"`
	TokenSymbol     string    `json:"token_symbol,omitempty"`
	TGEDate         string    `json:"tge_date,omitempty"`
	Category        Category  `json:"category"`
	RawText         string    `json:"raw_text"`
	Platform        Platform  `json:"platform"`
	SourceURL       string    `json:"source_url"`
	AuthorID        string    `json:"author_id"`
	AuthorName      string    `json:"author_name"`
	PublishTime     time.Time `json:"publish_time"`
	EngagementScore float64   `json:"engagement_score"`
	MatchedKeywords string    `json:"matched_keywords"`
	Enriched        bool      `json:"enriched"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
