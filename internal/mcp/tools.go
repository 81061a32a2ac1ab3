package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/richardwhiteii/ccrecall/internal/recall"
	"github.com/richardwhiteii/ccrecall/pkg/models"
)

// Tool describes one tool exposed via tools/list.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// toolHandler handles one tool call and returns the JSON payload.
type toolHandler func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// toolDefinitions returns the definitions of all exposed tools.
func toolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "memory_projects",
			Description: "List all Claude Code projects with session counts and sizes",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "memory_timeline",
			Description: "View recent Claude Code sessions with summaries",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"days": map[string]interface{}{
						"type":        "integer",
						"description": "Number of days to look back (default: 7)",
						"default":     7,
					},
					"project": map[string]interface{}{
						"type":        "string",
						"description": "Optional: Limit to specific project path",
					},
				},
			},
		},
		{
			Name:        "memory_recall",
			Description: "Semantic search across Claude Code conversation history",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "Natural language question about past conversations",
					},
					"project": map[string]interface{}{
						"type":        "string",
						"description": "Optional: Limit search to specific project path",
					},
				},
				"required": []string{"query"},
			},
		},
	}
}

// registerTools wires the tool handlers.
func (s *Server) registerTools() {
	s.tools = map[string]toolHandler{
		"memory_projects": s.handleMemoryProjects,
		"memory_timeline": s.handleMemoryTimeline,
		"memory_recall":   s.handleMemoryRecall,
	}
}

func (s *Server) handleMemoryProjects(_ context.Context, _ map[string]interface{}) (interface{}, error) {
	listing, err := s.corpus.ListProjects()
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return listing, nil
}

func (s *Server) handleMemoryTimeline(_ context.Context, args map[string]interface{}) (interface{}, error) {
	days := intArg(args, "days", 7)
	projectFilter := stringArg(args, "project")

	sessions, err := s.corpus.RecentSessions(days, projectFilter)
	if err != nil {
		return nil, fmt.Errorf("list recent sessions: %w", err)
	}
	if sessions == nil {
		sessions = []models.Session{}
	}

	return models.TimelineResponse{
		Sessions:      sessions,
		TotalSessions: len(sessions),
		DateRange:     fmt.Sprintf("Last %d days", days),
	}, nil
}

func (s *Server) handleMemoryRecall(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	query := stringArg(args, "query")
	projectFilter := stringArg(args, "project")

	response, err := s.engine.Recall(ctx, query, projectFilter)
	if errors.Is(err, recall.ErrMissingQuery) {
		// User-input error: a structured result, not a protocol failure.
		return models.ErrorResponse{
			Error:   models.ErrCodeMissingQuery,
			Message: "Query parameter is required",
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return response, nil
}

func stringArg(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

func intArg(args map[string]interface{}, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}
