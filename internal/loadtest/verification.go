package loadtest

import (
	"fmt"

	"github.com/okian/leaderboard/internal/domain/types"
)

// verifyTotals checks that every actor gained exactly the acknowledged points,
// both in the aggregated score and in the cached running total.
func verifyTotals(before, after []types.Entry, added map[string]int64) error {
	prev := make(map[string]types.Entry, len(before))
	for _, e := range before {
		prev[e.ActorID] = e
	}
	if len(after) != len(before) {
		return fmt.Errorf("%w: actor count changed from %d to %d", ErrInconsistent, len(before), len(after))
	}
	for _, e := range after {
		p, ok := prev[e.ActorID]
		if !ok {
			return fmt.Errorf("%w: unexpected actor %s", ErrInconsistent, e.ActorID)
		}
		want := added[e.ActorID]
		if got := e.Score - p.Score; got != want {
			return fmt.Errorf("%w: actor %s score grew by %d, expected %d", ErrInconsistent, e.ActorID, got, want)
		}
		if got := e.TotalPoints - p.TotalPoints; got != want {
			return fmt.Errorf("%w: actor %s total grew by %d, expected %d", ErrInconsistent, e.ActorID, got, want)
		}
	}
	return nil
}

// verifyOrder checks descending score order with actor id breaking ties and
// sequential positions.
func verifyOrder(entries []types.Entry) error {
	for i, e := range entries {
		if e.Position != i+1 {
			return fmt.Errorf("%w: entry %d has position %d", ErrInconsistent, i, e.Position)
		}
		if i == 0 {
			continue
		}
		p := entries[i-1]
		if e.Score > p.Score || (e.Score == p.Score && e.ActorID < p.ActorID) {
			return fmt.Errorf("%w: %s is ordered after %s", ErrInconsistent, e.ActorID, p.ActorID)
		}
	}
	return nil
}

// verifyRanks checks persisted ranks follow competition ranking over totals.
func verifyRanks(entries []types.Entry) error {
	for i, e := range entries {
		if e.Rank == nil {
			return fmt.Errorf("%w: %s has no rank after recalculation", ErrInconsistent, e.ActorID)
		}
		want := i + 1
		if i > 0 && e.TotalPoints == entries[i-1].TotalPoints {
			want = *entries[i-1].Rank
		}
		if *e.Rank != want {
			return fmt.Errorf("%w: %s has rank %d, expected %d", ErrInconsistent, e.ActorID, *e.Rank, want)
		}
	}
	return nil
}
