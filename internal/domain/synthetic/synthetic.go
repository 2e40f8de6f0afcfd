// Package synthetic produces demo activity events used to populate the
// leaderboard during recalculation and seeding.
package synthetic

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/leaderboard/internal/domain/model"
)

// Default generator configuration constants.
const (
	defaultMinEvents  = 1
	defaultMaxEvents  = 5
	defaultPoints     = model.DefaultPoints
	defaultCategory   = "login"
	defaultSpread     = 30 * 24 * time.Hour
	defaultRandomSeed = 42
)

// Generator produces new events for an actor relative to now.
type Generator interface {
	Generate(actor model.Actor, now time.Time) []model.Event
}

// Func adapts a plain function to Generator.
type Func func(actor model.Actor, now time.Time) []model.Event

// Generate calls f.
func (f Func) Generate(actor model.Actor, now time.Time) []model.Event { return f(actor, now) }

// Option applies a configuration option to the RandomGenerator.
type Option func(*RandomGenerator)

// WithEventRange sets the inclusive bounds on events generated per actor.
func WithEventRange(minEvents, maxEvents int) Option {
	return func(g *RandomGenerator) {
		if minEvents > 0 && maxEvents >= minEvents {
			g.minEvents = minEvents
			g.maxEvents = maxEvents
		}
	}
}

// WithPoints sets the point value of each generated event.
func WithPoints(points int64) Option {
	return func(g *RandomGenerator) {
		if points > 0 {
			g.points = points
		}
	}
}

// WithCategory sets the category label of generated events.
func WithCategory(category string) Option {
	return func(g *RandomGenerator) {
		if category != "" {
			g.category = category
		}
	}
}

// WithSpread sets how far back in time generated events may be dated.
func WithSpread(spread time.Duration) Option {
	return func(g *RandomGenerator) {
		if spread > 0 {
			g.spread = spread
		}
	}
}

// WithSource replaces the random source.
func WithSource(src rand.Source) Option {
	return func(g *RandomGenerator) {
		if src != nil {
			g.rng = rand.New(src) //nolint:gosec // demo data, not security sensitive
		}
	}
}

// RandomGenerator emits between minEvents and maxEvents events per actor,
// each worth a fixed number of points and dated uniformly within spread
// before now.
type RandomGenerator struct {
	mu        sync.Mutex
	rng       *rand.Rand
	minEvents int
	maxEvents int
	points    int64
	category  string
	spread    time.Duration
}

// NewRandom creates a generator with configuration options.
func NewRandom(opts ...Option) *RandomGenerator {
	g := &RandomGenerator{
		rng:       rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // demo data
		minEvents: defaultMinEvents,
		maxEvents: defaultMaxEvents,
		points:    defaultPoints,
		category:  defaultCategory,
		spread:    defaultSpread,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate implements Generator.
func (g *RandomGenerator) Generate(actor model.Actor, now time.Time) []model.Event {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.minEvents + g.rng.Intn(g.maxEvents-g.minEvents+1)
	events := make([]model.Event, n)
	for i := range events {
		offset := time.Duration(g.rng.Int63n(int64(g.spread)))
		events[i] = model.Event{
			ID:         uuid.NewString(),
			ActorID:    actor.ID,
			Category:   g.category,
			Points:     g.points,
			OccurredAt: now.Add(-offset),
		}
	}
	return events
}

// Fixed returns a deterministic generator emitting perActor events of the
// given points, all dated at now.
func Fixed(perActor int, points int64, category string) Generator {
	return Func(func(actor model.Actor, now time.Time) []model.Event {
		events := make([]model.Event, perActor)
		for i := range events {
			events[i] = model.Event{
				ID:         uuid.NewString(),
				ActorID:    actor.ID,
				Category:   category,
				Points:     points,
				OccurredAt: now,
			}
		}
		return events
	})
}
