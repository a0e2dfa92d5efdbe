package hcc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeEntities(t *testing.T) {
	text := "Patient has type 2 diabetes today"
	labels := []string{"O", "B-DISEASE", "I-DISEASE"}
	offsets := [][]int{{0, 0}, {0, 7}, {8, 11}, {12, 16}, {17, 18}, {19, 27}, {28, 33}, {0, 0}}
	special := []int{1, 0, 0, 0, 0, 0, 0, 1}
	predicted := []int{0, 0, 0, 1, 2, 2, 0, 0}

	got := decodeEntities(text, labels, predicted, offsets, special)
	assert.Equal(t, []Entity{{Text: "type 2 diabetes", Label: "DISEASE"}}, got)
}

func TestDecodeEntitiesSplitsSpans(t *testing.T) {
	text := "asthma copd"
	labels := []string{"O", "B-DISEASE", "I-DISEASE", "B-DRUG"}
	offsets := [][]int{{0, 6}, {7, 11}}

	got := decodeEntities(text, labels, []int{1, 1}, offsets, nil)
	assert.Equal(t, []Entity{{Text: "asthma", Label: "DISEASE"}, {Text: "copd", Label: "DISEASE"}}, got)

	// An inside tag without a begin tag still opens a span.
	got = decodeEntities(text, labels, []int{2, 3}, offsets, nil)
	assert.Equal(t, []Entity{{Text: "asthma", Label: "DISEASE"}, {Text: "copd", Label: "DRUG"}}, got)

	got = decodeEntities(text, labels, []int{0, 0}, offsets, nil)
	assert.Empty(t, got)
}

func TestArgmaxRows(t *testing.T) {
	logits := []float32{0.1, 0.9, 0.0, 2.0, 1.0, 3.0}
	assert.Equal(t, []int{1, 2}, argmaxRows(logits, 2, 3))
	assert.Equal(t, []int{0, 0}, argmaxRows(nil, 2, 3))
}

func TestEntityCacheEvictsOldest(t *testing.T) {
	c := newEntityCache(2)
	c.put("a", []Entity{{Text: "asthma"}})
	c.put("b", nil)
	c.put("c", nil)
	assert.Equal(t, 2, c.len())

	_, ok := c.get("a")
	assert.False(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)

	var disabled *entityCache
	disabled.put("x", nil)
	_, ok = disabled.get("x")
	assert.False(t, ok)

	assert.NotEqual(t, cacheKey("text", "model-a"), cacheKey("text", "model-b"))
}

func TestSplitTag(t *testing.T) {
	p, e := splitTag("B-Disease")
	assert.Equal(t, "B", p)
	assert.Equal(t, "DISEASE", e)

	p, _ = splitTag("o")
	assert.Equal(t, "O", p)

	p, e = splitTag("DISEASE")
	assert.Equal(t, "B", p)
	assert.Equal(t, "DISEASE", e)
}
