package repository

import (
	"time"

	"github.com/okian/leaderboard/internal/domain/model"
)

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}

// WithActors preloads actor profiles.
func WithActors(actors ...model.Actor) Option {
	return func(s *MemoryStore) {
		for _, a := range actors {
			s.actors[a.ID] = cloneActor(a)
		}
	}
}
