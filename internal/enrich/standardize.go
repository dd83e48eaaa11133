// Package enrich runs the three-analyzer AI enrichment pipeline over
// accepted candidate records. Model output is untrusted: every analyzer
// passes it through a standardization layer before anything persists.
package enrich

import (
	"encoding/json"
	"strings"
)

// parseLenient extracts a JSON object from raw model output. Code fences
// are stripped first. A response that is not a JSON object is wrapped as
// free text under the "analysis" key so callers share one path.
func parseLenient(raw string) map[string]any {
	text := strings.TrimSpace(raw)
	text = stripCodeFence(text)

	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err == nil {
		return obj
	}

	// Models sometimes wrap the object in prose. Take the outermost braces.
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &obj); err == nil {
			return obj
		}
	}

	return map[string]any{"analysis": text}
}

func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// freeText returns the free-text payload when the model answered in prose
// instead of JSON.
func freeText(m map[string]any) (string, bool) {
	if len(m) == 1 {
		if s, ok := m["analysis"].(string); ok {
			return s, true
		}
	}
	return "", false
}

// strField returns m[key] as a string truncated to maxLen, or "" when
// absent or not a string.
func strField(m map[string]any, key string, maxLen int) string {
	s, ok := m[key].(string)
	if !ok {
		return ""
	}
	return truncate(s, maxLen)
}

// strListField returns m[key] as a string slice capped at maxItems
// entries of maxLen runes each. Non-string entries are skipped.
func strListField(m map[string]any, key string, maxItems, maxLen int) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, truncate(s, maxLen))
		}
		if len(out) == maxItems {
			break
		}
	}
	return out
}

// floatField returns m[key] clamped to [lo, hi]. ok is false when the
// value is absent or not numeric.
func floatField(m map[string]any, key string, lo, hi float64) (float64, bool) {
	raw, present := m[key]
	if !present {
		return 0, false
	}
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	return clamp(f, lo, hi), true
}

// intField returns m[key] as an int clamped to [lo, hi]. Non-numeric
// values are ignored.
func intField(m map[string]any, key string, lo, hi int) (int, bool) {
	f, ok := floatField(m, key, float64(lo), float64(hi))
	if !ok {
		return 0, false
	}
	return int(f), true
}

func clamp(f, lo, hi float64) float64 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
