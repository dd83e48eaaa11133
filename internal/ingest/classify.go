package ingest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/launchsignal/tge-radar/internal/dedup"
	"github.com/launchsignal/tge-radar/internal/model"
	"github.com/launchsignal/tge-radar/internal/store"
)

// Outcome is the classification result for one raw posting.
type Outcome string

const (
	OutcomeAccepted  Outcome = "accepted"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeFiltered  Outcome = "filtered"
)

// Engagement score weights. Comments weigh highest: they are the
// strongest engagement signal relative to passive likes.
const (
	likeWeight    = 1.0
	commentWeight = 3.0
	shareWeight   = 2.0
	collectWeight = 2.5
)

var (
	projectNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`([A-Za-z]+)\s+(?:Token|Protocol|Network|Finance|Swap)`),
		regexp.MustCompile(`([A-Z][a-z]+[A-Z][a-z]+)`), // CamelCase
	}
	tokenSymbolPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\$([A-Z]{2,10})`),
		regexp.MustCompile(`([A-Z]{2,10})\s*Token`),
	}
	tgeDatePattern = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`)
)

// Classifier turns raw postings into persistable candidate records. It is
// the only writer of new records into the store.
type Classifier struct {
	gate          *dedup.Gate
	store         store.Store
	projectWindow time.Duration
}

// NewClassifier creates a classifier over the given gate and store.
func NewClassifier(gate *dedup.Gate, st store.Store, projectWindow time.Duration) *Classifier {
	if projectWindow <= 0 {
		projectWindow = 24 * time.Hour
	}
	return &Classifier{gate: gate, store: st, projectWindow: projectWindow}
}

// Classify processes one raw posting: dedup check, keyword filter,
// category inference, engagement scoring, then store insert. A store
// duplicate-key violation is swallowed and reported as OutcomeDuplicate,
// not an error.
func (c *Classifier) Classify(ctx context.Context, posting model.RawPosting) (*model.CandidateRecord, Outcome, error) {
	text := strings.TrimSpace(posting.Title + " " + posting.Content)
	fp := dedup.Fingerprint(text)

	if c.gate.SeenFingerprint(fp) {
		return nil, OutcomeDuplicate, nil
	}

	matched := MatchKeywords(text)
	if len(matched) == 0 {
		zap.L().Debug("ingest: no domain keywords",
			zap.String("platform", string(posting.Platform)),
			zap.String("content_id", posting.ContentID),
		)
		return nil, OutcomeFiltered, nil
	}

	projectName := ExtractProjectName(text)
	if c.gate.SeenProject(projectName, c.projectWindow) {
		return nil, OutcomeDuplicate, nil
	}
	if projectName == "" {
		projectName = fmt.Sprintf("%s_%s", posting.Platform, posting.ContentID)
	}

	now := time.Now().UTC()
	record := &model.CandidateRecord{
		Fingerprint:     fp,
		ProjectName:     projectName,
		TokenSymbol:     ExtractTokenSymbol(text),
		TGEDate:         ExtractTGEDate(text),
		Category:        ClassifyCategory(text),
		RawText:         text,
		Platform:        posting.Platform,
		SourceURL:       posting.SourceURL,
		AuthorID:        posting.AuthorID,
		AuthorName:      posting.AuthorName,
		PublishTime:     posting.PublishTime,
		EngagementScore: EngagementScore(posting),
		MatchedKeywords: strings.Join(matched, ","),
		Enriched:        false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	id, err := c.store.Insert(ctx, record)
	if err != nil {
		// Another worker or a previous run won the race: the unique index
		// on fingerprint is the authoritative dedup mechanism.
		if errors.Is(err, store.ErrDuplicate) {
			return nil, OutcomeDuplicate, nil
		}
		return nil, "", eris.Wrap(err, "ingest: insert record")
	}
	record.ID = id

	zap.L().Info("ingest: record accepted",
		zap.String("record_id", id),
		zap.String("project", record.ProjectName),
		zap.String("category", string(record.Category)),
		zap.Float64("engagement", record.EngagementScore),
	)
	return record, OutcomeAccepted, nil
}

// EngagementScore computes the weighted, log-compressed engagement score
// in [0, 1].
func EngagementScore(p model.RawPosting) float64 {
	raw := float64(p.LikeCount)*likeWeight +
		float64(p.CommentCount)*commentWeight +
		float64(p.ShareCount)*shareWeight +
		float64(p.CollectCount)*collectWeight
	if raw <= 0 {
		return 0
	}
	return math.Min(1.0, math.Log10(raw+1)/6)
}

// ExtractProjectName pulls a likely project name out of posting text.
// Returns "" when nothing matches.
func ExtractProjectName(text string) string {
	for _, re := range projectNamePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

// ExtractTokenSymbol pulls a token ticker like $EXC out of posting text.
func ExtractTokenSymbol(text string) string {
	for _, re := range tokenSymbolPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

// ExtractTGEDate pulls a YYYY-MM-DD date hint out of posting text.
func ExtractTGEDate(text string) string {
	if m := tgeDatePattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}
