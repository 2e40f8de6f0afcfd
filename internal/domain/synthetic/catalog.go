package synthetic

import (
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/okian/leaderboard/internal/domain/model"
)

// Catalog maps activity categories to their point value.
type Catalog map[string]int64

// DefaultCatalog is the demo activity mix used when seeding.
func DefaultCatalog() Catalog {
	return Catalog{
		"login":   10,
		"post":    20,
		"comment": 15,
		"share":   25,
		"like":    5,
	}
}

// categories returns the catalog keys in a stable order so a seeded source
// yields the same sequence on every run.
func (c Catalog) categories() []string {
	out := make([]string, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// CatalogGenerator draws 1..maxEvents events per actor with categories
// picked uniformly from the catalog.
type CatalogGenerator struct {
	rng       *rand.Rand
	catalog   Catalog
	maxEvents int
	spread    time.Duration
}

// NewCatalog creates a generator over catalog.
func NewCatalog(src rand.Source, catalog Catalog, maxEvents int, spread time.Duration) *CatalogGenerator {
	if maxEvents < 1 {
		maxEvents = 1
	}
	if spread <= 0 {
		spread = defaultSpread
	}
	return &CatalogGenerator{
		rng:       rand.New(src), //nolint:gosec // demo data
		catalog:   catalog,
		maxEvents: maxEvents,
		spread:    spread,
	}
}

// Generate implements Generator.
func (g *CatalogGenerator) Generate(actor model.Actor, now time.Time) []model.Event {
	cats := g.catalog.categories()
	if len(cats) == 0 {
		return nil
	}
	n := 1 + g.rng.Intn(g.maxEvents)
	events := make([]model.Event, n)
	for i := range events {
		cat := cats[g.rng.Intn(len(cats))]
		events[i] = model.Event{
			ID:         uuid.NewString(),
			ActorID:    actor.ID,
			Category:   cat,
			Points:     g.catalog[cat],
			OccurredAt: now.Add(-time.Duration(g.rng.Int63n(int64(g.spread)))),
		}
	}
	return events
}
