package models

// Project is one top-level grouping of sessions, derived fresh on every
// scan from an encoded directory under the corpus root.
type Project struct {
	// Path is the decoded filesystem path the directory name encodes.
	Path string `json:"path"`
	// SessionCount is the number of transcript files in the directory.
	SessionCount int `json:"session_count"`
	// LastUsed is the most recent transcript mtime, RFC 3339, empty when
	// the project has no sessions.
	LastUsed string `json:"last_used,omitempty"`
	// TotalSizeMB is the aggregate on-disk size of the directory.
	TotalSizeMB float64 `json:"total_size_mb"`
}

// ProjectListing is the payload of the memory_projects tool.
type ProjectListing struct {
	Projects      []Project `json:"projects"`
	TotalProjects int       `json:"total_projects"`
	TotalSessions int       `json:"total_sessions"`
	TotalSizeGB   float64   `json:"total_size_gb"`
}
