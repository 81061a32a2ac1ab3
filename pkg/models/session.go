// Package models contains domain models for ccrecall.
package models

// Session is the lightweight metadata extracted from one transcript file.
// Extraction never requires a full-file parse; see internal/corpus.
type Session struct {
	// ID is the file stem of the transcript (the Claude session UUID).
	ID string `json:"session_id"`
	// Project is the decoded filesystem path of the owning project.
	Project string `json:"project"`
	// Summary is the free-text summary from the first summary record,
	// or "No summary available" when the transcript carries none.
	Summary string `json:"summary"`
	// Timestamp is the timestamp of the first user record, if any.
	Timestamp string `json:"timestamp,omitempty"`
	// Model is the model identifier from the first assistant record, if any.
	Model string `json:"model,omitempty"`

	// FilePath is the absolute path of the transcript on disk.
	FilePath string `json:"-"`
	// SizeBytes is the transcript size at scan time.
	SizeBytes int64 `json:"-"`
	// ModTimeUnix is the transcript mtime at scan time.
	ModTimeUnix int64 `json:"-"`
}

// NoSummary is the placeholder summary for transcripts without a summary record.
const NoSummary = "No summary available"

// Record is one line of a transcript file. Only the fields ccrecall
// consumes are modeled; unknown types and fields are ignored.
type Record struct {
	Type      string        `json:"type"`
	Summary   string        `json:"summary,omitempty"`
	Timestamp string        `json:"timestamp,omitempty"`
	Message   RecordMessage `json:"message,omitempty"`
}

// RecordMessage is the nested message payload of an assistant record.
type RecordMessage struct {
	Model string `json:"model,omitempty"`
}

// TimelineResponse is the payload of the memory_timeline tool.
type TimelineResponse struct {
	Sessions      []Session `json:"sessions"`
	TotalSessions int       `json:"total_sessions"`
	DateRange     string    `json:"date_range"`
}
