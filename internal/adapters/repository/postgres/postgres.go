// Package postgres implements repository.Store on PostgreSQL via pgxpool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/leaderboard/internal/adapters/repository"
	"github.com/okian/leaderboard/internal/domain/model"
)

// Store persists events, actors and the recalculation marker in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ repository.Store = (*Store)(nil)

// Option tunes the connection pool before it is created.
type Option func(*pgxpool.Config)

// WithMaxConns caps the pool size.
func WithMaxConns(n int32) Option {
	return func(c *pgxpool.Config) {
		if n > 0 {
			c.MaxConns = n
		}
	}
}

// WithMaxConnIdleTime closes connections idle for longer than d.
func WithMaxConnIdleTime(d time.Duration) Option {
	return func(c *pgxpool.Config) {
		if d > 0 {
			c.MaxConnIdleTime = d
		}
	}
}

// Open connects to dsn, verifies the connection and applies the schema.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnIdleTime = 5 * time.Minute
	for _, opt := range opts {
		opt(cfg)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Truncate removes every row. Intended for tests against a shared database.
func (s *Store) Truncate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE events, actors, recalculations`)
	return err
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS actors (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL DEFAULT '',
		contact TEXT NOT NULL DEFAULT '',
		total_points BIGINT NOT NULL DEFAULT 0,
		rank INTEGER,
		last_updated TIMESTAMPTZ
	);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		actor_id TEXT NOT NULL,
		category TEXT NOT NULL,
		points BIGINT NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_occurred_at ON events(occurred_at);
	CREATE INDEX IF NOT EXISTS idx_events_actor_id ON events(actor_id);

	CREATE TABLE IF NOT EXISTS recalculations (
		id SMALLINT PRIMARY KEY CHECK (id = 1),
		started_at TIMESTAMPTZ NOT NULL,
		completed_at TIMESTAMPTZ,
		events_appended INTEGER NOT NULL DEFAULT 0,
		actors_updated INTEGER NOT NULL DEFAULT 0
	);
	`)
	return err
}

// AppendEvents sends every insert in one batch inside a transaction.
func (s *Store) AppendEvents(ctx context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, e := range events {
		batch.Queue(`INSERT INTO events (id, actor_id, category, points, occurred_at) VALUES ($1, $2, $3, $4, $5)`,
			e.ID, e.ActorID, e.Category, e.Points, e.OccurredAt)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert events: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func windowClause(w *model.Window) (string, []any) {
	if w == nil {
		return "", nil
	}
	return " WHERE occurred_at >= $1 AND occurred_at < $2", []any{w.Start, w.End}
}

// ScanEvents implements repository.EventStore.
func (s *Store) ScanEvents(ctx context.Context, w *model.Window) ([]model.Event, error) {
	where, args := windowClause(w)
	rows, err := s.pool.Query(ctx,
		`SELECT id, actor_id, category, points, occurred_at FROM events`+where+` ORDER BY occurred_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Event, error) {
		var e model.Event
		err := row.Scan(&e.ID, &e.ActorID, &e.Category, &e.Points, &e.OccurredAt)
		e.OccurredAt = e.OccurredAt.UTC()
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan events: %w", err)
	}
	return events, nil
}

// SumByActor implements repository.EventStore.
func (s *Store) SumByActor(ctx context.Context, w *model.Window) (map[string]int64, error) {
	where, args := windowClause(w)
	rows, err := s.pool.Query(ctx,
		`SELECT actor_id, SUM(points)::BIGINT FROM events`+where+` GROUP BY actor_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("sum events: %w", err)
	}
	defer rows.Close()

	sums := make(map[string]int64)
	for rows.Next() {
		var (
			id  string
			sum int64
		)
		if err := rows.Scan(&id, &sum); err != nil {
			return nil, fmt.Errorf("scan sum: %w", err)
		}
		sums[id] = sum
	}
	return sums, rows.Err()
}

// CountEvents implements repository.EventStore.
func (s *Store) CountEvents(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

const actorColumns = `id, display_name, contact, total_points, rank, last_updated`

func scanActor(row pgx.Row) (model.Actor, error) {
	var (
		a       model.Actor
		rank    *int32
		updated *time.Time
	)
	if err := row.Scan(&a.ID, &a.DisplayName, &a.Contact, &a.TotalPoints, &rank, &updated); err != nil {
		return model.Actor{}, err
	}
	if rank != nil {
		r := int(*rank)
		a.Rank = &r
	}
	if updated != nil {
		a.LastUpdated = updated.UTC()
	}
	return a, nil
}

// ListActors implements repository.ActorStore.
func (s *Store) ListActors(ctx context.Context) ([]model.Actor, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+actorColumns+` FROM actors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query actors: %w", err)
	}
	actors, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Actor, error) {
		return scanActor(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan actors: %w", err)
	}
	return actors, nil
}

// GetActor implements repository.ActorStore.
func (s *Store) GetActor(ctx context.Context, id string) (model.Actor, error) {
	a, err := scanActor(s.pool.QueryRow(ctx, `SELECT `+actorColumns+` FROM actors WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Actor{}, repository.ErrNotFound
	}
	if err != nil {
		return model.Actor{}, fmt.Errorf("get actor %s: %w", id, err)
	}
	return a, nil
}

// UpsertActor implements repository.ActorStore.
func (s *Store) UpsertActor(ctx context.Context, a model.Actor) error {
	if a.ID == "" {
		return repository.ErrInvalidActor
	}
	_, err := s.pool.Exec(ctx, `
	INSERT INTO actors (id, display_name, contact) VALUES ($1, $2, $3)
	ON CONFLICT (id) DO UPDATE SET
		display_name = EXCLUDED.display_name,
		contact = EXCLUDED.contact
	`, a.ID, a.DisplayName, a.Contact)
	if err != nil {
		return fmt.Errorf("upsert actor %s: %w", a.ID, err)
	}
	return nil
}

// IncrementTotal implements repository.ActorStore in a single statement.
func (s *Store) IncrementTotal(ctx context.Context, id string, delta int64) (int64, error) {
	var total int64
	err := s.pool.QueryRow(ctx,
		`UPDATE actors SET total_points = total_points + $1 WHERE id = $2 RETURNING total_points`,
		delta, id).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, repository.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("increment actor %s: %w", id, err)
	}
	return total, nil
}

// SetTotal implements repository.ActorStore.
func (s *Store) SetTotal(ctx context.Context, id string, total int64, at time.Time) error {
	return s.execActor(ctx, id,
		`UPDATE actors SET total_points = $1, last_updated = $2 WHERE id = $3`, total, at, id)
}

// SetRank implements repository.ActorStore.
func (s *Store) SetRank(ctx context.Context, id string, rank int, at time.Time) error {
	return s.execActor(ctx, id,
		`UPDATE actors SET rank = $1, last_updated = $2 WHERE id = $3`, rank, at, id)
}

func (s *Store) execActor(ctx context.Context, id, query string, args ...any) error {
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update actor %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CountActors implements repository.ActorStore.
func (s *Store) CountActors(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM actors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count actors: %w", err)
	}
	return n, nil
}

// RecordRecalculation implements repository.RecalculationStore.
func (s *Store) RecordRecalculation(ctx context.Context, r model.Recalculation) error {
	var completed *time.Time
	if !r.CompletedAt.IsZero() {
		completed = &r.CompletedAt
	}
	_, err := s.pool.Exec(ctx, `
	INSERT INTO recalculations (id, started_at, completed_at, events_appended, actors_updated)
	VALUES (1, $1, $2, $3, $4)
	ON CONFLICT (id) DO UPDATE SET
		started_at = EXCLUDED.started_at,
		completed_at = EXCLUDED.completed_at,
		events_appended = EXCLUDED.events_appended,
		actors_updated = EXCLUDED.actors_updated
	`, r.StartedAt, completed, r.EventsAppended, r.ActorsUpdated)
	if err != nil {
		return fmt.Errorf("record recalculation: %w", err)
	}
	return nil
}

// LastRecalculation implements repository.RecalculationStore.
func (s *Store) LastRecalculation(ctx context.Context) (model.Recalculation, bool, error) {
	var (
		r         model.Recalculation
		completed *time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT started_at, completed_at, events_appended, actors_updated FROM recalculations WHERE id = 1`).
		Scan(&r.StartedAt, &completed, &r.EventsAppended, &r.ActorsUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Recalculation{}, false, nil
	}
	if err != nil {
		return model.Recalculation{}, false, fmt.Errorf("last recalculation: %w", err)
	}
	r.StartedAt = r.StartedAt.UTC()
	if completed != nil {
		r.CompletedAt = completed.UTC()
	}
	return r, true, nil
}
