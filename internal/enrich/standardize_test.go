package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLenient_PlainJSON(t *testing.T) {
	m := parseLenient(`{"project_name": "ExampleCoin"}`)
	assert.Equal(t, "ExampleCoin", m["project_name"])
}

func TestParseLenient_CodeFence(t *testing.T) {
	m := parseLenient("```json\n{\"project_name\": \"ExampleCoin\"}\n```")
	assert.Equal(t, "ExampleCoin", m["project_name"])
}

func TestParseLenient_ProseWrappedObject(t *testing.T) {
	m := parseLenient(`Here is my analysis: {"sentiment_score": 0.5} hope that helps`)
	assert.Equal(t, 0.5, m["sentiment_score"])
}

func TestParseLenient_FreeText(t *testing.T) {
	m := parseLenient("this project looks interesting but risky")
	text, ok := freeText(m)
	assert.True(t, ok)
	assert.Equal(t, "this project looks interesting but risky", text)
}

func TestStrField_Truncation(t *testing.T) {
	m := map[string]any{"name": "abcdefghij"}
	assert.Equal(t, "abcde", strField(m, "name", 5))
	assert.Equal(t, "", strField(m, "missing", 5))
	assert.Equal(t, "", strField(map[string]any{"name": 42}, "name", 5))
}

func TestStrField_MultibyteTruncation(t *testing.T) {
	m := map[string]any{"summary": "这是一个很长的项目简介"}
	assert.Equal(t, "这是一", strField(m, "summary", 3))
}

func TestStrListField_CapsItemsAndLength(t *testing.T) {
	m := map[string]any{"features": []any{"one", "two", "three", 4, "five", "six", "seven"}}
	got := strListField(m, "features", 5, 3)
	assert.Equal(t, []string{"one", "two", "thr", "fiv", "six"}, got)

	assert.Nil(t, strListField(m, "missing", 5, 10))
	assert.Nil(t, strListField(map[string]any{"features": "not a list"}, "features", 5, 10))
}

func TestFloatField_Clamping(t *testing.T) {
	m := map[string]any{"score": 2.5}
	got, ok := floatField(m, "score", -1, 1)
	assert.True(t, ok)
	assert.Equal(t, 1.0, got)

	_, ok = floatField(m, "missing", -1, 1)
	assert.False(t, ok)

	_, ok = floatField(map[string]any{"score": "high"}, "score", -1, 1)
	assert.False(t, ok)
}

func TestIntField_Clamping(t *testing.T) {
	got, ok := intField(map[string]any{"rating": 9.0}, "rating", 1, 5)
	assert.True(t, ok)
	assert.Equal(t, 5, got)

	got, ok = intField(map[string]any{"rating": 0.0}, "rating", 1, 5)
	assert.True(t, ok)
	assert.Equal(t, 1, got)

	_, ok = intField(map[string]any{"rating": "three"}, "rating", 1, 5)
	assert.False(t, ok)
}
