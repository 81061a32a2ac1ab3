// Package corpus scans the Claude Code projects directory: it enumerates
// project directories and session transcripts, extracts lightweight
// per-session metadata without a full-file parse, and reads (possibly
// truncated) transcript content for the recall pipeline.
package corpus

import "strings"

// SessionExt is the transcript file extension.
const SessionExt = ".jsonl"

// DecodePath converts Claude's encoded directory name back to a filesystem
// path. Total over all inputs: strings without the leading marker pass
// through unchanged.
//
// Example: -Users-richard-projects-foo -> /Users/richard/projects/foo
//
// Path segments that natively contain '-' are irreversibly conflated with
// segment boundaries; the encoding carries no way to tell them apart, so
// the ambiguity is preserved as-is.
func DecodePath(encoded string) string {
	if !strings.HasPrefix(encoded, "-") {
		return encoded
	}
	return "/" + strings.ReplaceAll(encoded[1:], "-", "/")
}
