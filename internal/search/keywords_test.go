package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords(t *testing.T) {
	keywords := ExtractKeywords("How did I fix the authentication bug?")

	assert.Contains(t, keywords, "fix")
	assert.Contains(t, keywords, "authentication")
	assert.Contains(t, keywords, "bug")
	assert.NotContains(t, keywords, "how")
	assert.NotContains(t, keywords, "the")
	assert.NotContains(t, keywords, "i")
	assert.NotContains(t, keywords, "did")
}

func TestExtractKeywords_Lowercases(t *testing.T) {
	keywords := ExtractKeywords("AUTHENTICATION Bug")
	assert.Equal(t, []string{"authentication", "bug"}, keywords)
}

func TestExtractKeywords_Empty(t *testing.T) {
	assert.Empty(t, ExtractKeywords(""))
}

func TestExtractKeywords_OnlyStopWords(t *testing.T) {
	assert.Empty(t, ExtractKeywords("how did the it was"))
}

func TestExtractKeywords_DropsShortTokens(t *testing.T) {
	keywords := ExtractKeywords("go db fix")
	assert.NotContains(t, keywords, "go")
	assert.NotContains(t, keywords, "db")
	assert.Contains(t, keywords, "fix")
}

func TestExtractKeywords_NonASCII(t *testing.T) {
	keywords := ExtractKeywords("настройка базы данных")
	assert.Equal(t, []string{"настройка", "базы", "данных"}, keywords)

	// Character count governs the length floor, not byte count
	assert.Empty(t, ExtractKeywords("дб"))
}
