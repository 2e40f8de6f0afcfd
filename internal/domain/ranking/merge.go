package ranking

import (
	"sort"
	"strings"

	"github.com/okian/leaderboard/internal/domain/model"
)

// Predicate selects actors for the matched partition.
type Predicate func(model.Actor) bool

// MatchAny returns a case-insensitive substring predicate over the actor's
// id, display name and contact. An empty term matches nothing.
func MatchAny(term string) Predicate {
	needle := strings.ToLower(strings.TrimSpace(term))
	return func(a model.Actor) bool {
		if needle == "" {
			return false
		}
		for _, field := range []string{a.ID, a.DisplayName, a.Contact} {
			if strings.Contains(strings.ToLower(field), needle) {
				return true
			}
		}
		return false
	}
}

// Entries builds unranked entries for actors, defaulting absent scores to 0.
func Entries(actors []model.Actor, scores map[string]int64) []model.RankedEntry {
	entries := make([]model.RankedEntry, len(actors))
	for i, a := range actors {
		entries[i] = model.RankedEntry{Actor: a, Score: scores[a.ID]}
	}
	return entries
}

// SortByScore orders entries by score descending, then actor id ascending.
func SortByScore(entries []model.RankedEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return less(entries[i], entries[j])
	})
}

// less reports whether a ranks ahead of b.
func less(a, b model.RankedEntry) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Actor.ID < b.Actor.ID
}

// Merge partitions actors by match, sorts each partition by score and returns
// matched entries ahead of unmatched ones. When nothing matches the result is
// the plain score ordering.
func Merge(actors []model.Actor, scores map[string]int64, match Predicate) []model.RankedEntry {
	var matched, unmatched []model.RankedEntry
	for _, e := range Entries(actors, scores) {
		if match != nil && match(e.Actor) {
			e.Matched = true
			matched = append(matched, e)
			continue
		}
		unmatched = append(unmatched, e)
	}
	SortByScore(matched)
	SortByScore(unmatched)

	out := make([]model.RankedEntry, 0, len(actors))
	out = append(out, matched...)
	return append(out, unmatched...)
}

// Apply runs assign over the entries' scores in their current order and
// stores the result in Position.
func Apply(entries []model.RankedEntry, assign Assigner) {
	scores := make([]int64, len(entries))
	for i, e := range entries {
		scores[i] = e.Score
	}
	for i, p := range assign(scores) {
		entries[i].Position = p
	}
}
