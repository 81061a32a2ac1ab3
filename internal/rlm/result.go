package rlm

import (
	"github.com/goccy/go-json"
)

// ToolResult is the raw structured result of a backend tool call: a list
// of content items, at most one of which carries a JSON text payload.
type ToolResult struct {
	Content []ContentItem `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// ContentItem is one item of a tool result.
type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ParseJSON scans the content items of a tool result for the first text
// payload that parses as a JSON object. It fails closed: a nil result, no
// parseable item, or a non-object payload all yield nil ("no data"), never
// an error.
func ParseJSON(result *ToolResult) map[string]interface{} {
	if result == nil {
		return nil
	}
	for _, item := range result.Content {
		if item.Text == "" {
			continue
		}
		var data map[string]interface{}
		if err := json.Unmarshal([]byte(item.Text), &data); err != nil {
			continue
		}
		return data
	}
	return nil
}

// IntField reads an integer field from a parsed payload, tolerating JSON's
// float64 numbers. Returns fallback when the field is absent or not numeric.
func IntField(data map[string]interface{}, key string, fallback int) int {
	if data == nil {
		return fallback
	}
	switch v := data[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return fallback
}
