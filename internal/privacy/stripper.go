// Package privacy scrubs transcript content before it leaves the process.
package privacy

import (
	"regexp"
	"strings"
)

var (
	// privateTagRegex matches <private>...</private> tags
	privateTagRegex = regexp.MustCompile(`(?s)<private>.*?</private>`)

	// recallTagRegex matches <ccrecall-context>...</ccrecall-context> tags
	// injected by earlier recall results, so recalled content is never
	// re-fed to the backend.
	recallTagRegex = regexp.MustCompile(`(?s)<ccrecall-context>.*?</ccrecall-context>`)
)

// StripPrivateTags removes all <private>...</private> content from text.
func StripPrivateTags(text string) string {
	return privateTagRegex.ReplaceAllString(text, "")
}

// StripRecallTags removes all <ccrecall-context>...</ccrecall-context>
// content from text.
func StripRecallTags(text string) string {
	return recallTagRegex.ReplaceAllString(text, "")
}

// IsEntirelyPrivate checks if the text is entirely within <private> tags.
func IsEntirelyPrivate(text string) bool {
	stripped := StripPrivateTags(text)
	return strings.TrimSpace(stripped) == ""
}

// Clean removes private and recall-context tags. Applied to transcript
// content before it is shipped to the RLM backend and to excerpts before
// they are surfaced.
func Clean(text string) string {
	text = StripPrivateTags(text)
	text = StripRecallTags(text)
	return strings.TrimSpace(text)
}
