// Package repository defines the event and actor store contracts and an
// in-memory implementation.
package repository

import (
	"context"
	"time"

	"github.com/okian/leaderboard/internal/domain/model"
)

// EventStore is the append-only activity log.
type EventStore interface {
	// AppendEvents stores events in one call. Events are never modified afterwards.
	AppendEvents(ctx context.Context, events []model.Event) error

	// ScanEvents returns the events whose OccurredAt falls in w (all events when w is nil).
	ScanEvents(ctx context.Context, w *model.Window) ([]model.Event, error)

	// SumByActor returns per-actor point sums over w. Actors without events are omitted.
	SumByActor(ctx context.Context, w *model.Window) (map[string]int64, error)

	// CountEvents returns the number of stored events.
	CountEvents(ctx context.Context) (int, error)
}

// ActorStore holds actor profiles and their cached totals and ranks.
type ActorStore interface {
	// ListActors returns every actor ordered by ID.
	ListActors(ctx context.Context) ([]model.Actor, error)

	// GetActor returns ErrNotFound when id is unknown.
	GetActor(ctx context.Context, id string) (model.Actor, error)

	// UpsertActor creates the actor or updates its profile fields. Totals and
	// ranks of an existing actor are left untouched.
	UpsertActor(ctx context.Context, a model.Actor) error

	// IncrementTotal atomically adds delta and returns the new total.
	IncrementTotal(ctx context.Context, id string, delta int64) (int64, error)

	// SetTotal overwrites the cached total.
	SetTotal(ctx context.Context, id string, total int64, at time.Time) error

	// SetRank overwrites the cached rank.
	SetRank(ctx context.Context, id string, rank int, at time.Time) error

	// CountActors returns the number of actors.
	CountActors(ctx context.Context) (int, error)
}

// RecalculationStore persists the marker of the latest recompute cycle.
type RecalculationStore interface {
	// RecordRecalculation replaces the stored marker.
	RecordRecalculation(ctx context.Context, r model.Recalculation) error

	// LastRecalculation returns the marker; ok is false when none was recorded.
	LastRecalculation(ctx context.Context) (r model.Recalculation, ok bool, err error)
}

// Store is everything the leaderboard service needs from persistence.
type Store interface {
	EventStore
	ActorStore
	RecalculationStore

	Close() error
}
