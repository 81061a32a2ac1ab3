package rlm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseJSON_FirstParseableItemWins(t *testing.T) {
	result := &ToolResult{Content: []ContentItem{
		{Type: "text", Text: "not json"},
		{Type: "text", Text: `{"chunk_count": 3}`},
		{Type: "text", Text: `{"chunk_count": 99}`},
	}}

	data := ParseJSON(result)
	assert.Equal(t, 3, IntField(data, "chunk_count", 1))
}

func TestParseJSON_FailsClosed(t *testing.T) {
	assert.Nil(t, ParseJSON(nil))
	assert.Nil(t, ParseJSON(&ToolResult{}))
	assert.Nil(t, ParseJSON(&ToolResult{Content: []ContentItem{{Type: "text", Text: "garbage"}}}))
	assert.Nil(t, ParseJSON(&ToolResult{Content: []ContentItem{{Type: "image"}}}))
}

func TestIntField(t *testing.T) {
	data := map[string]interface{}{
		"count":  float64(7),
		"label":  "five",
		"absent": nil,
	}

	assert.Equal(t, 7, IntField(data, "count", 1))
	assert.Equal(t, 1, IntField(data, "label", 1))
	assert.Equal(t, 1, IntField(data, "missing", 1))
	assert.Equal(t, 1, IntField(nil, "count", 1))
}
