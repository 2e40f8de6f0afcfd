package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/leaderboard/internal/domain/model"
	"github.com/okian/leaderboard/pkg/metrics"
)

// MemoryStore keeps events and actors in process memory. All methods are
// safe for concurrent use; IncrementTotal is atomic under the store mutex.
type MemoryStore struct {
	mu     sync.RWMutex
	actors map[string]model.Actor
	events []model.Event
	recalc *model.Recalculation

	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty store and starts its metrics updater.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		actors:                make(map[string]model.Actor),
		metricsUpdateInterval: 5 * time.Second,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.startMetricsUpdater(ctx)
	return s
}

// startMetricsUpdater periodically publishes the actor count gauge.
func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.mu.RLock()
				n := len(s.actors)
				s.mu.RUnlock()
				metrics.UpdateTotalActors(n)
			}
		}
	}()
}

// Close stops the metrics goroutine. It is safe to call more than once.
func (s *MemoryStore) Close() error {
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// AppendEvents implements EventStore.
func (s *MemoryStore) AppendEvents(ctx context.Context, events []model.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.events = append(s.events, events...)
	s.mu.Unlock()
	return nil
}

// ScanEvents implements EventStore.
func (s *MemoryStore) ScanEvents(ctx context.Context, w *model.Window) ([]model.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Event, 0, len(s.events))
	for _, e := range s.events {
		if model.Includes(w, e.OccurredAt) {
			out = append(out, e)
		}
	}
	return out, nil
}

// SumByActor implements EventStore.
func (s *MemoryStore) SumByActor(ctx context.Context, w *model.Window) (map[string]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	sums := make(map[string]int64)
	for _, e := range s.events {
		if model.Includes(w, e.OccurredAt) {
			sums[e.ActorID] += e.Points
		}
	}
	return sums, nil
}

// CountEvents implements EventStore.
func (s *MemoryStore) CountEvents(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events), nil
}

// ListActors implements ActorStore.
func (s *MemoryStore) ListActors(ctx context.Context) ([]model.Actor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]model.Actor, 0, len(s.actors))
	for _, a := range s.actors {
		out = append(out, cloneActor(a))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetActor implements ActorStore.
func (s *MemoryStore) GetActor(ctx context.Context, id string) (model.Actor, error) {
	if err := ctx.Err(); err != nil {
		return model.Actor{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.actors[id]
	if !ok {
		return model.Actor{}, ErrNotFound
	}
	return cloneActor(a), nil
}

// UpsertActor implements ActorStore.
func (s *MemoryStore) UpsertActor(ctx context.Context, a model.Actor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.ID == "" {
		return ErrInvalidActor
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.actors[a.ID]; ok {
		cur.DisplayName = a.DisplayName
		cur.Contact = a.Contact
		s.actors[a.ID] = cur
		return nil
	}
	s.actors[a.ID] = cloneActor(a)
	return nil
}

// IncrementTotal implements ActorStore.
func (s *MemoryStore) IncrementTotal(ctx context.Context, id string, delta int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.actors[id]
	if !ok {
		return 0, ErrNotFound
	}
	a.TotalPoints += delta
	s.actors[id] = a
	return a.TotalPoints, nil
}

// SetTotal implements ActorStore.
func (s *MemoryStore) SetTotal(ctx context.Context, id string, total int64, at time.Time) error {
	return s.update(ctx, id, func(a *model.Actor) {
		a.TotalPoints = total
		a.LastUpdated = at
	})
}

// SetRank implements ActorStore.
func (s *MemoryStore) SetRank(ctx context.Context, id string, rank int, at time.Time) error {
	return s.update(ctx, id, func(a *model.Actor) {
		r := rank
		a.Rank = &r
		a.LastUpdated = at
	})
}

func (s *MemoryStore) update(ctx context.Context, id string, fn func(*model.Actor)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.actors[id]
	if !ok {
		return ErrNotFound
	}
	fn(&a)
	s.actors[id] = a
	return nil
}

// CountActors implements ActorStore.
func (s *MemoryStore) CountActors(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.actors), nil
}

// RecordRecalculation implements RecalculationStore.
func (s *MemoryStore) RecordRecalculation(ctx context.Context, r model.Recalculation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.recalc = &r
	s.mu.Unlock()
	return nil
}

// LastRecalculation implements RecalculationStore.
func (s *MemoryStore) LastRecalculation(ctx context.Context) (model.Recalculation, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.Recalculation{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.recalc == nil {
		return model.Recalculation{}, false, nil
	}
	return *s.recalc, true, nil
}

// cloneActor copies the rank pointer so callers never alias store state.
func cloneActor(a model.Actor) model.Actor {
	if a.Rank != nil {
		r := *a.Rank
		a.Rank = &r
	}
	return a
}
