package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var (
	urlPattern        = regexp.MustCompile(`https?://[^\s]+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Normalize folds a posting's text into a canonical form before hashing.
// Postings mix full-width and half-width characters and re-posts often
// differ only in URLs and spacing, so those are stripped first.
func Normalize(text string) string {
	text = urlPattern.ReplaceAllString(text, "")
	text = width.Fold.String(text)
	text = norm.NFKC.String(text)
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.ToLower(strings.TrimSpace(text))
}

// Fingerprint returns the stable content hash used as the store's
// uniqueness key.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(Normalize(text)))
	return hex.EncodeToString(sum[:])
}

// Gate is the in-process deduplication fast path. The store's unique
// index on fingerprint remains the correctness guarantee across restarts
// and workers.
type Gate struct {
	mu           sync.Mutex
	fingerprints map[string]struct{}
	projectSeen  map[string]time.Time
	now          func() time.Time
}

// NewGate creates an empty gate.
func NewGate() *Gate {
	return &Gate{
		fingerprints: make(map[string]struct{}),
		projectSeen:  make(map[string]time.Time),
		now:          time.Now,
	}
}

// SeenFingerprint registers fp on first sight and returns true on every
// subsequent sight.
func (g *Gate) SeenFingerprint(fp string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.fingerprints[fp]; ok {
		zap.L().Debug("dedup: duplicate fingerprint", zap.String("fingerprint", fp))
		return true
	}
	g.fingerprints[fp] = struct{}{}
	return false
}

// SeenProject reports whether the same project name was accepted within
// the window. Handles re-posts and paraphrases of the same announcement
// that a fingerprint check would miss.
func (g *Gate) SeenProject(projectName string, window time.Duration) bool {
	if projectName == "" {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if last, ok := g.projectSeen[projectName]; ok && now.Sub(last) < window {
		zap.L().Debug("dedup: project seen within window",
			zap.String("project", projectName),
			zap.Duration("since", now.Sub(last)),
		)
		return true
	}
	g.projectSeen[projectName] = now
	return false
}

// Cleanup prunes project-window entries older than maxAge.
func (g *Gate) Cleanup(maxAge time.Duration) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	cutoff := g.now().Add(-maxAge)
	removed := 0
	for name, last := range g.projectSeen {
		if last.Before(cutoff) {
			delete(g.projectSeen, name)
			removed++
		}
	}
	if removed > 0 {
		zap.L().Info("dedup: pruned project entries", zap.Int("removed", removed))
	}
	return removed
}

// Jaccard computes token-set similarity between two texts. Used for
// offline auditing only; it is deliberately kept off the ingest hot path.
func Jaccard(a, b string) float64 {
	wordsA := tokenSet(a)
	wordsB := tokenSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	intersection := 0
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Similar reports whether two texts exceed the similarity threshold.
func Similar(a, b string, threshold float64) bool {
	return Jaccard(a, b) >= threshold
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = struct{}{}
	}
	return set
}
