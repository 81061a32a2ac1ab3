package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richardwhiteii/ccrecall/pkg/models"
)

func session(id, summary, timestamp string) models.Session {
	return models.Session{ID: id, Project: "/home/dev/app", Summary: summary, Timestamp: timestamp}
}

func TestFindCandidates_EmptyKeywordsMatchNothing(t *testing.T) {
	sessions := []models.Session{
		session("a", "Fixed authentication login bug in user service", "2026-01-01T00:00:00Z"),
		session("b", "Refactored billing", "2026-01-02T00:00:00Z"),
	}

	// A stop-word-only query must never match the whole corpus
	assert.Empty(t, FindCandidates(sessions, nil, 10))
	assert.Empty(t, FindCandidates(sessions, []string{}, 10))
}

func TestFindCandidates_AnyKeywordSubstring(t *testing.T) {
	sessions := []models.Session{
		session("a", "Fixed authentication login bug in user service", "2026-01-01T00:00:00Z"),
		session("b", "Refactored billing pipeline", "2026-01-02T00:00:00Z"),
	}

	candidates := FindCandidates(sessions, []string{"authentication", "bug"}, 10)
	require.Len(t, candidates, 1)
	assert.Equal(t, "a", candidates[0].ID)
}

func TestFindCandidates_CaseInsensitiveSummary(t *testing.T) {
	sessions := []models.Session{
		session("a", "FIXED AUTHENTICATION", "2026-01-01T00:00:00Z"),
	}

	candidates := FindCandidates(sessions, []string{"authentication"}, 10)
	assert.Len(t, candidates, 1)
}

func TestFindCandidates_SortedNewestFirstMissingTimestampLast(t *testing.T) {
	sessions := []models.Session{
		session("untimed", "auth work", ""),
		session("old", "auth work", "2026-01-01T00:00:00Z"),
		session("new", "auth work", "2026-06-01T00:00:00Z"),
	}

	candidates := FindCandidates(sessions, []string{"auth"}, 10)
	require.Len(t, candidates, 3)
	assert.Equal(t, "new", candidates[0].ID)
	assert.Equal(t, "old", candidates[1].ID)
	assert.Equal(t, "untimed", candidates[2].ID)
}

func TestFindCandidates_CapsAtMax(t *testing.T) {
	var sessions []models.Session
	for i := 0; i < 25; i++ {
		sessions = append(sessions, session(
			fmt.Sprintf("s%02d", i),
			"authentication session",
			fmt.Sprintf("2026-01-%02dT00:00:00Z", i+1),
		))
	}

	candidates := FindCandidates(sessions, []string{"authentication"}, 10)
	require.Len(t, candidates, 10)
	// Newest first after capping
	assert.Equal(t, "s24", candidates[0].ID)
}
