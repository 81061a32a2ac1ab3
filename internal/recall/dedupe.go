package recall

import "github.com/richardwhiteii/ccrecall/pkg/models"

// Deduplicate keeps the first entry per session ID in arrival order,
// stopping once max entries are kept. Result order therefore follows
// candidate processing order, not backend-assigned relevance.
func Deduplicate(entries []models.ResultEntry, max int) []models.ResultEntry {
	seen := make(map[string]struct{}, len(entries))
	unique := make([]models.ResultEntry, 0, max)

	for _, entry := range entries {
		if _, dup := seen[entry.SessionID]; dup {
			continue
		}
		seen[entry.SessionID] = struct{}{}
		unique = append(unique, entry)
		if len(unique) >= max {
			break
		}
	}
	return unique
}
