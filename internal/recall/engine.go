// Package recall orchestrates a semantic recall query: candidate
// narrowing, per-session backend dispatch, and result aggregation with a
// keyword-only degraded path when the backend is unreachable.
package recall

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/richardwhiteii/ccrecall/internal/config"
	"github.com/richardwhiteii/ccrecall/internal/corpus"
	"github.com/richardwhiteii/ccrecall/internal/privacy"
	"github.com/richardwhiteii/ccrecall/internal/rlm"
	"github.com/richardwhiteii/ccrecall/internal/search"
	"github.com/richardwhiteii/ccrecall/pkg/models"
)

// ErrMissingQuery reports a recall call without query text. Handlers
// translate it to a structured error result, not a protocol failure.
var ErrMissingQuery = errors.New("query parameter is required")

// Backend is the connection-manager surface the engine drives. Satisfied
// by *rlm.Client; test doubles implement it in package tests.
type Backend interface {
	Connect(ctx context.Context) error
	Connected() bool
	CallTool(ctx context.Context, name string, arguments map[string]interface{}) (*rlm.ToolResult, error)
}

// Backend tool names.
const (
	toolLoadContext   = "rlm_load_context"
	toolChunkContext  = "rlm_chunk_context"
	toolInspect       = "rlm_inspect_context"
	toolSubQueryBatch = "rlm_sub_query_batch"
	toolClearContext  = "rlm_clear_context"
)

// degradedExcerpt fills result entries on the keyword-only path.
const degradedExcerpt = "RLM unavailable - showing keyword matches only"

// degradedNote distinguishes a degraded response from a semantic one.
const degradedNote = "Semantic search unavailable - showing keyword matches"

// Engine runs recall queries against the corpus and the RLM backend.
type Engine struct {
	scanner *corpus.Scanner
	backend Backend
	cfg     *config.Config
}

// NewEngine creates a recall engine.
func NewEngine(scanner *corpus.Scanner, backend Backend, cfg *config.Config) *Engine {
	return &Engine{scanner: scanner, backend: backend, cfg: cfg}
}

// Recall answers a natural-language query with a small ranked set of
// excerpts. Candidates are processed strictly sequentially: the backend
// session is single-owner stateful, so fan-out is delegated to the backend
// via the batch concurrency hint, never performed here.
func (e *Engine) Recall(ctx context.Context, query, projectFilter string) (*models.RecallResponse, error) {
	if query == "" {
		return nil, ErrMissingQuery
	}

	queryID := uuid.NewString()[:8]
	logger := log.With().Str("query_id", queryID).Logger()

	if _, err := os.Stat(e.scanner.Root()); err != nil {
		return &models.RecallResponse{
			Results:    []models.ResultEntry{},
			Suggestion: "No Claude projects directory found",
		}, nil
	}

	sessions, err := e.scanner.Sessions(projectFilter)
	if err != nil {
		return nil, fmt.Errorf("scan corpus: %w", err)
	}

	keywords := search.ExtractKeywords(query)
	candidates := search.FindCandidates(sessions, keywords, e.cfg.MaxCandidates)
	if len(candidates) == 0 {
		return &models.RecallResponse{
			Results:    []models.ResultEntry{},
			Suggestion: fmt.Sprintf("No sessions found matching keywords: %v. Try broader terms.", keywords),
		}, nil
	}

	logger.Info().
		Int("candidates", len(candidates)).
		Strs("keywords", keywords).
		Msg("Recall candidates selected")

	if !e.backend.Connected() {
		if err := e.backend.Connect(ctx); err != nil {
			logger.Warn().Err(err).Msg("Could not connect to RLM, degrading to keyword matches")
			return e.degraded(candidates), nil
		}
	}

	var results []models.ResultEntry
	for _, candidate := range candidates {
		entries, err := e.searchSession(ctx, candidate, query)
		if err != nil {
			logger.Warn().Err(err).Str("session", candidate.ID).Msg("Error processing session")
			results = append(results, models.NewResultEntry(
				candidate,
				models.RelevanceKeyword,
				"Error during semantic search: "+truncate(err.Error(), 100),
			))
			continue
		}
		results = append(results, entries...)
	}

	return &models.RecallResponse{
		Results:               Deduplicate(results, e.cfg.MaxResults),
		TotalSessionsSearched: len(candidates),
	}, nil
}

// degraded synthesizes one keyword-relevance entry per candidate, up to
// the result cap.
func (e *Engine) degraded(candidates []models.Session) *models.RecallResponse {
	n := len(candidates)
	if n > e.cfg.MaxResults {
		n = e.cfg.MaxResults
	}

	results := make([]models.ResultEntry, 0, n)
	for _, candidate := range candidates[:n] {
		results = append(results, models.NewResultEntry(candidate, models.RelevanceKeyword, degradedExcerpt))
	}

	return &models.RecallResponse{
		Results:               results,
		TotalSessionsSearched: len(candidates),
		Note:                  degradedNote,
	}
}

// searchSession loads one candidate into the backend, chunks it, and runs
// the batched sub-query. The loaded context is cleared on every exit path;
// cleanup failures are logged, never surfaced.
func (e *Engine) searchSession(ctx context.Context, session models.Session, query string) ([]models.ResultEntry, error) {
	contextName := "session_" + session.ID

	content, err := e.scanner.SessionContent(session)
	if err != nil {
		return nil, fmt.Errorf("read session content: %w", err)
	}
	content = privacy.Clean(content)

	if _, err := e.backend.CallTool(ctx, toolLoadContext, map[string]interface{}{
		"name":    contextName,
		"content": content,
	}); err != nil {
		return nil, err
	}
	defer func() {
		cleanupCtx := context.WithoutCancel(ctx)
		if _, err := e.backend.CallTool(cleanupCtx, toolClearContext, map[string]interface{}{
			"name": contextName,
		}); err != nil {
			log.Warn().Err(err).Str("context", contextName).Msg("Failed to clear RLM context")
		}
	}()

	if _, err := e.backend.CallTool(ctx, toolChunkContext, map[string]interface{}{
		"name":     contextName,
		"strategy": "lines",
		"size":     e.cfg.ChunkSize,
	}); err != nil {
		return nil, err
	}

	inspectResult, err := e.backend.CallTool(ctx, toolInspect, map[string]interface{}{
		"name": contextName,
	})
	if err != nil {
		return nil, err
	}
	chunkCount := rlm.IntField(rlm.ParseJSON(inspectResult), "chunk_count", 1)

	// Query only a bounded prefix of chunks. A cost and latency bound, not
	// a completeness guarantee. A nonsense count from the backend yields an
	// empty prefix rather than a failed session.
	n := chunkCount
	if n > e.cfg.MaxChunks {
		n = e.cfg.MaxChunks
	}
	if n < 0 {
		n = 0
	}
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	batchResult, err := e.backend.CallTool(ctx, toolSubQueryBatch, map[string]interface{}{
		"query":         "Find information relevant to: " + query,
		"context_name":  contextName,
		"chunk_indices": indices,
		"provider":      e.cfg.Provider,
		"model":         e.cfg.Model,
		"concurrency":   e.cfg.Concurrency,
	})
	if err != nil {
		return nil, err
	}

	var entries []models.ResultEntry
	data := rlm.ParseJSON(batchResult)
	if data == nil {
		return entries, nil
	}

	rawResults, _ := data["results"].([]interface{})
	for _, raw := range rawResults {
		item, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		response, _ := item["response"].(string)
		if response == "" {
			continue
		}
		excerpt := truncate(privacy.Clean(response), e.cfg.ExcerptLength)
		entries = append(entries, models.NewResultEntry(session, models.RelevanceSemantic, excerpt))
	}
	return entries, nil
}

// truncate caps a string at maxLen characters, never splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
