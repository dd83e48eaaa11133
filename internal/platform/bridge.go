package platform

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/launchsignal/tge-radar/internal/model"
	"github.com/launchsignal/tge-radar/pkg/crawler"
)

// Bridge adapts one platform of the crawl sidecar to the Adapter
// interface. One Bridge per platform, all sharing a sidecar client.
type Bridge struct {
	platform model.Platform
	client   crawler.Client
}

// NewBridge creates a sidecar-backed adapter for a platform.
func NewBridge(p model.Platform, c crawler.Client) *Bridge {
	return &Bridge{platform: p, client: c}
}

func (b *Bridge) Name() model.Platform {
	return b.platform
}

// IsAvailable probes the sidecar session for this platform.
func (b *Bridge) IsAvailable(ctx context.Context) bool {
	if err := b.client.Health(ctx, string(b.platform)); err != nil {
		zap.L().Debug("platform: health probe failed",
			zap.String("platform", string(b.platform)),
			zap.Error(err),
		)
		return false
	}
	return true
}

// Crawl fetches postings via the sidecar and maps them into the model.
func (b *Bridge) Crawl(ctx context.Context, keywords []string, maxCount int) ([]model.RawPosting, error) {
	postings, err := b.client.Crawl(ctx, crawler.CrawlRequest{
		Platform: string(b.platform),
		Keywords: keywords,
		MaxCount: maxCount,
	})
	if err != nil {
		return nil, NewError(b.platform, classifyBridgeErr(err), err)
	}

	out := make([]model.RawPosting, 0, len(postings))
	for _, p := range postings {
		out = append(out, model.RawPosting{
			Platform:     b.platform,
			ContentID:    p.ContentID,
			ContentType:  contentType(p.ContentType),
			Title:        p.Title,
			Content:      p.Content,
			AuthorID:     p.AuthorID,
			AuthorName:   p.AuthorName,
			PublishTime:  time.UnixMilli(p.PublishTime).UTC(),
			LikeCount:    p.LikedCount,
			CommentCount: p.CommentCount,
			ShareCount:   p.ShareCount,
			CollectCount: p.CollectCount,
			SourceURL:    p.SourceURL,
			Keyword:      p.Keyword,
		})
	}
	return out, nil
}

func classifyBridgeErr(err error) ErrorKind {
	var se *crawler.StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return KindAuth
		case http.StatusTooManyRequests:
			return KindRateLimited
		}
		return KindUnavailable
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return KindParse
	}
	return KindUnavailable
}

func contentType(s string) model.ContentType {
	switch model.ContentType(s) {
	case model.ContentTypeVideo, model.ContentTypeImage, model.ContentTypeMixed:
		return model.ContentType(s)
	}
	return model.ContentTypeText
}
