// Package ranking implements the aggregation and ranking rules behind the
// leaderboard: windowed point sums, the two rank assigners, and the
// search-first merge.
package ranking

import "github.com/okian/leaderboard/internal/domain/model"

// Aggregate sums event points per actor. Events outside the optional window
// are skipped; actors with no qualifying events are absent from the result.
func Aggregate(events []model.Event, window *model.Window) map[string]int64 {
	sums := make(map[string]int64)
	for _, e := range events {
		if !model.Includes(window, e.OccurredAt) {
			continue
		}
		sums[e.ActorID] += e.Points
	}
	return sums
}
