package model

import "time"

// Actor is a participant accumulating points.
//
// TotalPoints and Rank are denormalized caches derived from the event log;
// Rebuild can always recompute them from events.
type Actor struct {
	ID          string
	DisplayName string
	Contact     string
	TotalPoints int64
	Rank        *int      // nil until the first recalculation
	LastUpdated time.Time // zero until the first recalculation
}

// RankedEntry is a transient, per-query view of an actor.
type RankedEntry struct {
	Actor    Actor
	Score    int64
	Position int
	Matched  bool
}

// Recalculation marks a recompute cycle. CompletedAt is zero while the cycle
// is still running or if it failed part way through.
type Recalculation struct {
	StartedAt      time.Time
	CompletedAt    time.Time
	EventsAppended int
	ActorsUpdated  int
}

// InProgress reports whether the cycle has started but not completed.
func (r Recalculation) InProgress() bool {
	return !r.StartedAt.IsZero() && r.CompletedAt.IsZero()
}
