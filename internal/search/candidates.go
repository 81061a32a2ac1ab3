package search

import (
	"strings"

	"github.com/richardwhiteii/ccrecall/internal/corpus"
	"github.com/richardwhiteii/ccrecall/pkg/models"
)

// FindCandidates selects sessions whose summary contains any keyword as a
// substring, newest-first, capped at max. An empty keyword set matches
// nothing: a query made only of stop words must not select the whole
// corpus.
func FindCandidates(sessions []models.Session, keywords []string, max int) []models.Session {
	if len(keywords) == 0 {
		return nil
	}

	var matching []models.Session
	for _, session := range sessions {
		summary := strings.ToLower(session.Summary)
		for _, kw := range keywords {
			if strings.Contains(summary, kw) {
				matching = append(matching, session)
				break
			}
		}
	}

	corpus.SortByTimestamp(matching)
	if len(matching) > max {
		matching = matching[:max]
	}
	return matching
}
