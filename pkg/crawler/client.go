// Package crawler provides a client for a crawl-sidecar HTTP API. The
// sidecar owns browser automation, login state and anti-bot handling;
// this client only submits keyword crawls and maps the responses.
package crawler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the crawl sidecar operations.
type Client interface {
	// Health probes the sidecar for one platform. A nil return means the
	// platform session is logged in and ready.
	Health(ctx context.Context, platform string) error
	// Crawl runs a keyword search crawl and returns the raw postings.
	Crawl(ctx context.Context, req CrawlRequest) ([]Posting, error)
}

// CrawlRequest is the sidecar crawl payload.
type CrawlRequest struct {
	Platform string   `json:"platform"`
	Keywords []string `json:"keywords"`
	MaxCount int      `json:"max_count"`
}

// Posting is one raw item as the sidecar reports it. Counts come back as
// plain ints; timestamps are unix milliseconds.
type Posting struct {
	ContentID    string `json:"content_id"`
	ContentType  string `json:"content_type"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	AuthorID     string `json:"author_id"`
	AuthorName   string `json:"author_name"`
	PublishTime  int64  `json:"publish_time"`
	LikedCount   int    `json:"liked_count"`
	CommentCount int    `json:"comment_count"`
	ShareCount   int    `json:"share_count"`
	CollectCount int    `json:"collected_count"`
	SourceURL    string `json:"source_url"`
	Keyword      string `json:"keyword"`
}

// StatusError is a non-2xx sidecar response. Callers inspect Code to
// classify the failure.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("crawler: status %d: %s", e.Code, e.Body)
}

// Option configures the sidecar client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a sidecar client.
func NewClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL: baseURL,
		http: &http.Client{
			// Crawls hold the connection while the sidecar pages through
			// search results.
			Timeout: 5 * time.Minute,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Health(ctx context.Context, platform string) error {
	reqURL := fmt.Sprintf("%s/health?platform=%s", c.baseURL, platform)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrap(err, "crawler: create health request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "crawler: health request failed")
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return nil
}

func (c *httpClient) Crawl(ctx context.Context, crawlReq CrawlRequest) ([]Posting, error) {
	payload, err := json.Marshal(crawlReq)
	if err != nil {
		return nil, eris.Wrap(err, "crawler: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/crawl", bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "crawler: create crawl request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "crawler: crawl request failed")
	}
	body, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, eris.Wrap(readErr, "crawler: read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var result struct {
		Postings []Posting `json:"postings"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "crawler: unmarshal response")
	}
	return result.Postings, nil
}
