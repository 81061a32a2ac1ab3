// Package search narrows the corpus to candidate sessions worth loading
// into the RLM backend: keyword extraction, summary matching, recency
// ordering, and capping.
package search

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// stopWords are query tokens with no filtering value.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "a", "an", "is", "are", "was", "were", "be", "been", "being",
		"have", "has", "had", "do", "does", "did", "will", "would", "could",
		"should", "may", "might", "must", "shall", "can", "need", "dare",
		"ought", "used", "to", "of", "in", "for", "on", "with", "at", "by",
		"from", "as", "into", "through", "during", "before", "after", "above",
		"below", "between", "under", "again", "further", "then", "once", "here",
		"there", "when", "where", "why", "how", "all", "each", "few", "more",
		"most", "other", "some", "such", "no", "nor", "not", "only", "own",
		"same", "so", "than", "too", "very", "just", "and", "but", "if", "or",
		"because", "until", "while", "what", "which", "who", "this", "that",
		"these", "those", "am", "i", "my", "me", "you", "your", "it",
	} {
		stopWords[w] = struct{}{}
	}
}

// wordRegex matches word runs in any script, not just ASCII.
var wordRegex = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// ExtractKeywords extracts meaningful lowercase keywords from a query.
// Stop words and tokens shorter than three characters are dropped; the
// result may be empty.
func ExtractKeywords(query string) []string {
	words := wordRegex.FindAllString(strings.ToLower(query), -1)

	keywords := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) < 3 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		keywords = append(keywords, w)
	}
	return keywords
}
