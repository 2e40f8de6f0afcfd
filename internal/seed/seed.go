// Package seed populates a store with demo actors and activity.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/okian/leaderboard/internal/adapters/repository"
	service "github.com/okian/leaderboard/internal/app"
	"github.com/okian/leaderboard/internal/domain/model"
	"github.com/okian/leaderboard/internal/domain/synthetic"
	"github.com/okian/leaderboard/pkg/logger"
)

const (
	defaultMaxEvents = 10
	defaultSpread    = 30 * 24 * time.Hour
)

// DemoActors returns the five demo participants.
func DemoActors() []model.Actor {
	return []model.Actor{
		{ID: "USER001", DisplayName: "John Doe", Contact: "john.doe@example.com"},
		{ID: "USER002", DisplayName: "Jane Smith", Contact: "jane.smith@example.com"},
		{ID: "USER003", DisplayName: "Bob Johnson", Contact: "bob.johnson@example.com"},
		{ID: "USER004", DisplayName: "Alice Brown", Contact: "alice.brown@example.com"},
		{ID: "USER005", DisplayName: "Charlie Wilson", Contact: "charlie.wilson@example.com"},
	}
}

// Rebuilder recomputes totals and ranks after seeding.
type Rebuilder interface {
	Rebuild(ctx context.Context) (service.RecalcResult, error)
}

// Result summarises a seeding run.
type Result struct {
	Actors  int
	Events  int
	Skipped bool // store already had actors and Force was not set
}

// Seeder writes demo data.
type Seeder struct {
	store     repository.Store
	rebuilder Rebuilder
	actors    []model.Actor
	generator synthetic.Generator
	now       func() time.Time
	force     bool
	log       logger.Logger
}

// Option applies a configuration option to the Seeder.
type Option func(*Seeder)

// WithActors replaces the demo actors.
func WithActors(actors ...model.Actor) Option {
	return func(s *Seeder) {
		s.actors = actors
	}
}

// WithGenerator replaces the catalog generator.
func WithGenerator(g synthetic.Generator) Option {
	return func(s *Seeder) {
		if g != nil {
			s.generator = g
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Seeder) {
		if now != nil {
			s.now = now
		}
	}
}

// WithForce seeds even when the store already has actors.
func WithForce(force bool) Option {
	return func(s *Seeder) {
		s.force = force
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Seeder) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a Seeder. By default each actor receives 1 to 10 activities
// drawn from synthetic.DefaultCatalog, dated within the last 30 days.
func New(store repository.Store, rebuilder Rebuilder, opts ...Option) *Seeder {
	s := &Seeder{
		store:     store,
		rebuilder: rebuilder,
		actors:    DemoActors(),
		generator: synthetic.NewCatalog(
			rand.NewSource(time.Now().UnixNano()),
			synthetic.DefaultCatalog(),
			defaultMaxEvents,
			defaultSpread,
		),
		now: time.Now,
		log: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run upserts the actors, appends their generated activity and rebuilds
// totals and ranks. A store that already holds actors is left alone unless
// the seeder was built WithForce.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	existing, err := s.store.CountActors(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("count actors: %w", err)
	}
	if existing > 0 && !s.force {
		s.log.Info(ctx, "store already populated, skipping seed", logger.Int("actors", existing))
		return Result{Skipped: true}, nil
	}

	now := s.now()
	var events []model.Event
	for _, a := range s.actors {
		if err := s.store.UpsertActor(ctx, a); err != nil {
			return Result{}, fmt.Errorf("upsert actor %s: %w", a.ID, err)
		}
		events = append(events, s.generator.Generate(a, now)...)
	}
	if err := s.store.AppendEvents(ctx, events); err != nil {
		return Result{}, fmt.Errorf("append events: %w", err)
	}

	if _, err := s.rebuilder.Rebuild(ctx); err != nil {
		return Result{}, fmt.Errorf("rebuild: %w", err)
	}

	res := Result{Actors: len(s.actors), Events: len(events)}
	s.log.Info(ctx, "seeded demo data",
		logger.Int("actors", res.Actors),
		logger.Int("events", res.Events))
	return res, nil
}
