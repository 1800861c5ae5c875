package parser

import (
	"sort"

	"github.com/anomredux/claude-bar/internal/domain"
)

// Dedup removes duplicate events based on MessageID:RequestID.
// Keeps the first occurrence (earliest timestamp).
// Note: sorts the input slice in place.
func Dedup(events []domain.UsageEvent) []domain.UsageEvent {
	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	seen := make(map[string]struct{}, len(events))
	result := make([]domain.UsageEvent, 0, len(events))

	for _, e := range events {
		key := e.DedupKey()
		if key == ":" {
			// Both IDs empty (estimated or legacy events) -- keep as-is
			result = append(result, e)
			continue
		}
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, e)
	}

	return result
}
