// Package service orchestrates aggregation, search merging and ranking over
// the event and actor stores. It implements the dependencies required by the
// HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/leaderboard/internal/adapters/repository"
	"github.com/okian/leaderboard/internal/domain/apperr"
	"github.com/okian/leaderboard/internal/domain/model"
	"github.com/okian/leaderboard/internal/domain/ranking"
	"github.com/okian/leaderboard/internal/domain/synthetic"
	"github.com/okian/leaderboard/internal/domain/window"
	"github.com/okian/leaderboard/pkg/logger"
	"github.com/okian/leaderboard/pkg/metrics"
)

// RankMirror receives persisted standings after every rebuild.
type RankMirror interface {
	Publish(ctx context.Context, actors []model.Actor) error
}

// QueryOptions selects the scoring window and the optional search term.
type QueryOptions struct {
	Window *model.Window // nil means all events
	Search string        // blank means no search partition
}

// RecalcResult reports what a recalculation changed.
type RecalcResult struct {
	EventsAppended int
	ActorsUpdated  int
}

// ActivityResult is the outcome of RecordActivity.
type ActivityResult struct {
	Event    model.Event
	NewTotal int64
}

// Stats is a point-in-time summary of the service state.
type Stats struct {
	Actors            int
	Events            int
	LastRecalculation *model.Recalculation
}

// Recalculating reports whether the last recorded cycle has not completed.
func (s Stats) Recalculating() bool {
	return s.LastRecalculation != nil && s.LastRecalculation.InProgress()
}

// Service answers leaderboard queries and maintains cached totals and ranks.
type Service struct {
	store           repository.Store
	generator       synthetic.Generator
	mirror          RankMirror
	now             func() time.Time
	location        *time.Location
	queryAssigner   ranking.Assigner
	persistAssigner ranking.Assigner
	defaultPoints   int64
	logger          logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithGenerator sets the synthetic event source used by Recalculate. A nil
// generator makes Recalculate a plain Rebuild.
func WithGenerator(g synthetic.Generator) Option {
	return func(s *Service) {
		s.generator = g
	}
}

// WithMirror publishes standings to m after each rebuild.
func WithMirror(m RankMirror) Option {
	return func(s *Service) {
		s.mirror = m
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the zone used to resolve calendar windows.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithQueryAssigner sets how display positions are assigned to query results.
func WithQueryAssigner(a ranking.Assigner) Option {
	return func(s *Service) {
		if a != nil {
			s.queryAssigner = a
		}
	}
}

// WithPersistAssigner sets how persisted ranks are assigned on rebuild.
func WithPersistAssigner(a ranking.Assigner) Option {
	return func(s *Service) {
		if a != nil {
			s.persistAssigner = a
		}
	}
}

// WithDefaultPoints sets the points granted when an activity omits them.
func WithDefaultPoints(points int64) Option {
	return func(s *Service) {
		if points > 0 {
			s.defaultPoints = points
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service over store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:           store,
		generator:       synthetic.NewRandom(),
		now:             time.Now,
		location:        time.Local,
		queryAssigner:   ranking.SequentialPositions,
		persistAssigner: ranking.CompetitionRanks,
		defaultPoints:   model.DefaultPoints,
		logger:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultPoints returns the points granted when an activity omits them.
func (s *Service) DefaultPoints() int64 {
	return s.defaultPoints
}

// Window resolves a calendar filter against the service clock and location.
func (s *Service) Window(f window.Filter) *model.Window {
	return window.Resolve(f, s.now(), s.location)
}

// Query returns every actor ordered by score within opts.Window, with search
// matches first when opts.Search is set. Positions are assigned over the
// final order. Query never writes to the store.
func (s *Service) Query(ctx context.Context, opts QueryOptions) ([]model.RankedEntry, error) {
	const op = "query"

	actors, err := s.store.ListActors(ctx)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.ErrStorage, err)
	}
	events, err := s.store.ScanEvents(ctx, opts.Window)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.ErrAggregation, err)
	}
	scores := ranking.Aggregate(events, opts.Window)

	var match ranking.Predicate
	if strings.TrimSpace(opts.Search) != "" {
		match = ranking.MatchAny(opts.Search)
	}
	entries := ranking.Merge(actors, scores, match)
	ranking.Apply(entries, s.queryAssigner)

	if match != nil {
		n := 0
		for _, e := range entries {
			if e.Matched {
				n++
			}
		}
		metrics.RecordSearchMatches(n)
	}
	return entries, nil
}

// Recalculate appends synthetic events for every actor, then rebuilds totals
// and ranks from the full event log. It is not idempotent unless the
// generator is deterministic.
func (s *Service) Recalculate(ctx context.Context) (RecalcResult, error) {
	const op = "recalculate"

	actors, err := s.store.ListActors(ctx)
	if err != nil {
		return RecalcResult{}, apperr.Wrap(op, apperr.ErrStorage, err)
	}

	appended := 0
	if s.generator != nil {
		now := s.now()
		var batch []model.Event
		for _, a := range actors {
			batch = append(batch, s.generator.Generate(a, now)...)
		}
		if err := s.store.AppendEvents(ctx, batch); err != nil {
			return RecalcResult{}, apperr.Wrap(op, apperr.ErrStorage, err)
		}
		appended = len(batch)
	}

	return s.rebuild(ctx, op, actors, appended)
}

// Rebuild recomputes every actor's total and rank from the event log without
// adding events.
func (s *Service) Rebuild(ctx context.Context) (RecalcResult, error) {
	const op = "rebuild"

	actors, err := s.store.ListActors(ctx)
	if err != nil {
		return RecalcResult{}, apperr.Wrap(op, apperr.ErrStorage, err)
	}
	return s.rebuild(ctx, op, actors, 0)
}

// rebuild writes totals and ranks one actor at a time. A failure part way
// leaves earlier actors updated and the marker without CompletedAt.
func (s *Service) rebuild(ctx context.Context, op string, actors []model.Actor, appended int) (res RecalcResult, err error) {
	started := s.now()
	res.EventsAppended = appended
	metrics.RecordRecalculationStart()
	defer func() {
		metrics.RecordRecalculation(err == nil, s.now().Sub(started), res.ActorsUpdated)
		if err != nil {
			s.logger.Error(ctx, "recalculation failed",
				logger.String("op", op),
				logger.Int("actorsUpdated", res.ActorsUpdated),
				logger.Error(err))
		}
	}()

	marker := model.Recalculation{StartedAt: started, EventsAppended: appended}
	if err := s.store.RecordRecalculation(ctx, marker); err != nil {
		return res, apperr.Wrap(op, apperr.ErrStorage, err)
	}

	totals, err := s.store.SumByActor(ctx, nil)
	if err != nil {
		return res, apperr.Wrap(op, apperr.ErrAggregation, err)
	}

	entries := ranking.Entries(actors, totals)
	ranking.SortByScore(entries)
	ranking.Apply(entries, s.persistAssigner)

	standings := make([]model.Actor, 0, len(entries))
	for _, e := range entries {
		at := s.now()
		if err := s.store.SetTotal(ctx, e.Actor.ID, e.Score, at); err != nil {
			return res, apperr.Wrap(op, apperr.ErrStorage, fmt.Errorf("actor %s: %w", e.Actor.ID, err))
		}
		if err := s.store.SetRank(ctx, e.Actor.ID, e.Position, at); err != nil {
			return res, apperr.Wrap(op, apperr.ErrStorage, fmt.Errorf("actor %s: %w", e.Actor.ID, err))
		}
		res.ActorsUpdated++

		a := e.Actor
		rank := e.Position
		a.TotalPoints = e.Score
		a.Rank = &rank
		a.LastUpdated = at
		standings = append(standings, a)
	}

	marker.CompletedAt = s.now()
	marker.ActorsUpdated = res.ActorsUpdated
	if err := s.store.RecordRecalculation(ctx, marker); err != nil {
		return res, apperr.Wrap(op, apperr.ErrStorage, err)
	}

	s.publish(ctx, standings)
	s.logger.Info(ctx, "recalculation completed",
		logger.String("op", op),
		logger.Int("eventsAppended", res.EventsAppended),
		logger.Int("actorsUpdated", res.ActorsUpdated),
		logger.Duration("took", marker.CompletedAt.Sub(started)))
	return res, nil
}

// publish pushes standings to the mirror. Mirror failures never fail a rebuild.
func (s *Service) publish(ctx context.Context, standings []model.Actor) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.Publish(ctx, standings); err != nil {
		metrics.RecordMirrorError()
		s.logger.Warn(ctx, "rank mirror publish failed", logger.Error(err))
	}
}

// RecordActivity appends one event for actorID and atomically adds points to
// its cached total. The cached rank is left as is until the next rebuild.
func (s *Service) RecordActivity(ctx context.Context, actorID, category string, points int64) (ActivityResult, error) {
	const op = "record activity"

	actorID = strings.TrimSpace(actorID)
	category = strings.TrimSpace(category)
	switch {
	case actorID == "":
		return ActivityResult{}, apperr.New(op, apperr.ErrValidation, "actor id is required")
	case category == "":
		return ActivityResult{}, apperr.New(op, apperr.ErrValidation, "category is required")
	case points <= 0:
		return ActivityResult{}, apperr.New(op, apperr.ErrValidation, "points must be positive")
	}

	if _, err := s.store.GetActor(ctx, actorID); err != nil {
		return ActivityResult{}, s.actorErr(op, actorID, err)
	}

	event := model.Event{
		ID:         uuid.NewString(),
		ActorID:    actorID,
		Category:   category,
		Points:     points,
		OccurredAt: s.now(),
	}
	if err := s.store.AppendEvents(ctx, []model.Event{event}); err != nil {
		return ActivityResult{}, apperr.Wrap(op, apperr.ErrStorage, err)
	}
	total, err := s.store.IncrementTotal(ctx, actorID, points)
	if err != nil {
		return ActivityResult{}, s.actorErr(op, actorID, err)
	}

	metrics.RecordActivity(category)
	s.logger.Debug(ctx, "activity recorded",
		logger.String("actorId", actorID),
		logger.String("category", category),
		logger.Int64("points", points),
		logger.Int64("newTotal", total))
	return ActivityResult{Event: event, NewTotal: total}, nil
}

func (s *Service) actorErr(op, actorID string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.New(op, apperr.ErrNotFound, fmt.Sprintf("actor %q not found", actorID))
	}
	return apperr.Wrap(op, apperr.ErrStorage, err)
}

// Stats returns actor and event counts plus the last recalculation marker.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	const op = "stats"

	actors, err := s.store.CountActors(ctx)
	if err != nil {
		return Stats{}, apperr.Wrap(op, apperr.ErrStorage, err)
	}
	events, err := s.store.CountEvents(ctx)
	if err != nil {
		return Stats{}, apperr.Wrap(op, apperr.ErrStorage, err)
	}
	st := Stats{Actors: actors, Events: events}

	last, ok, err := s.store.LastRecalculation(ctx)
	if err != nil {
		return Stats{}, apperr.Wrap(op, apperr.ErrStorage, err)
	}
	if ok {
		st.LastRecalculation = &last
	}
	metrics.UpdateTotalActors(actors)
	return st, nil
}
