package models

// Relevance classifies how a recall result was produced.
type Relevance string

const (
	// RelevanceSemantic marks a result scored by the RLM backend.
	RelevanceSemantic Relevance = "semantic_match"
	// RelevanceKeyword marks a keyword-only result, used both for degraded
	// mode and for per-session error stubs.
	RelevanceKeyword Relevance = "keyword_match"
)

// ResultEntry is one recall result referencing a session.
type ResultEntry struct {
	SessionID string    `json:"session_id"`
	Project   string    `json:"project"`
	Summary   string    `json:"summary"`
	Timestamp string    `json:"timestamp,omitempty"`
	Relevance Relevance `json:"relevance"`
	Excerpt   string    `json:"excerpt"`
}

// NewResultEntry builds a ResultEntry for a session.
func NewResultEntry(s Session, relevance Relevance, excerpt string) ResultEntry {
	return ResultEntry{
		SessionID: s.ID,
		Project:   s.Project,
		Summary:   s.Summary,
		Timestamp: s.Timestamp,
		Relevance: relevance,
		Excerpt:   excerpt,
	}
}

// RecallResponse is the payload of the memory_recall tool.
type RecallResponse struct {
	Results               []ResultEntry `json:"results"`
	TotalSessionsSearched int           `json:"total_sessions_searched"`
	// Note flags degraded (keyword-only) operation.
	Note string `json:"note,omitempty"`
	// Suggestion is set when no candidates matched the query keywords.
	Suggestion string `json:"suggestion,omitempty"`
}

// ErrorResponse is a structured tool-level error, returned for user-input
// problems instead of a protocol error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ErrCodeMissingQuery identifies a recall call without query text.
const ErrCodeMissingQuery = "MISSING_QUERY"
