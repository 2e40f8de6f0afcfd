// Package sqlite implements repository.Store on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/okian/leaderboard/internal/adapters/repository"
	"github.com/okian/leaderboard/internal/domain/model"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Store persists events, actors and the recalculation marker in SQLite.
// Timestamps are stored as INTEGER unix nanoseconds; 0 means unset.
type Store struct {
	db *sql.DB
}

var _ repository.Store = (*Store)(nil)

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" for a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection serialises writers and keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	schema := `
	PRAGMA busy_timeout = 5000;

	CREATE TABLE IF NOT EXISTS actors (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL DEFAULT '',
		contact TEXT NOT NULL DEFAULT '',
		total_points INTEGER NOT NULL DEFAULT 0,
		rank INTEGER,
		last_updated INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		actor_id TEXT NOT NULL,
		category TEXT NOT NULL,
		points INTEGER NOT NULL,
		occurred_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_occurred_at ON events(occurred_at);
	CREATE INDEX IF NOT EXISTS idx_events_actor_id ON events(actor_id);

	CREATE TABLE IF NOT EXISTS recalculations (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		started_at INTEGER NOT NULL,
		completed_at INTEGER NOT NULL DEFAULT 0,
		events_appended INTEGER NOT NULL DEFAULT 0,
		actors_updated INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// AppendEvents inserts all events in one transaction.
func (s *Store) AppendEvents(ctx context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO events (id, actor_id, category, points, occurred_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert event: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range events {
		if _, err := stmt.ExecContext(ctx, e.ID, e.ActorID, e.Category, e.Points, toNanos(e.OccurredAt)); err != nil {
			return fmt.Errorf("insert event %s: %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// windowClause returns a WHERE clause and its args for an optional window.
func windowClause(w *model.Window) (string, []any) {
	if w == nil {
		return "", nil
	}
	return " WHERE occurred_at >= ? AND occurred_at < ?", []any{toNanos(w.Start), toNanos(w.End)}
}

// ScanEvents implements repository.EventStore.
func (s *Store) ScanEvents(ctx context.Context, w *model.Window) ([]model.Event, error) {
	where, args := windowClause(w)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, actor_id, category, points, occurred_at FROM events`+where+` ORDER BY occurred_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Event
	for rows.Next() {
		var (
			e  model.Event
			at int64
		)
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Category, &e.Points, &at); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.OccurredAt = fromNanos(at)
		out = append(out, e)
	}
	return out, rows.Err()
}

// SumByActor implements repository.EventStore.
func (s *Store) SumByActor(ctx context.Context, w *model.Window) (map[string]int64, error) {
	where, args := windowClause(w)
	rows, err := s.db.QueryContext(ctx,
		`SELECT actor_id, SUM(points) FROM events`+where+` GROUP BY actor_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("sum events: %w", err)
	}
	defer func() { _ = rows.Close() }()

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
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

const actorColumns = `id, display_name, contact, total_points, rank, last_updated`

func scanActor(row interface{ Scan(...any) error }) (model.Actor, error) {
	var (
		a       model.Actor
		rank    sql.NullInt64
		updated int64
	)
	if err := row.Scan(&a.ID, &a.DisplayName, &a.Contact, &a.TotalPoints, &rank, &updated); err != nil {
		return model.Actor{}, err
	}
	if rank.Valid {
		r := int(rank.Int64)
		a.Rank = &r
	}
	a.LastUpdated = fromNanos(updated)
	return a, nil
}

// ListActors implements repository.ActorStore.
func (s *Store) ListActors(ctx context.Context) ([]model.Actor, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+actorColumns+` FROM actors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query actors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Actor
	for rows.Next() {
		a, err := scanActor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan actor: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetActor implements repository.ActorStore.
func (s *Store) GetActor(ctx context.Context, id string) (model.Actor, error) {
	a, err := scanActor(s.db.QueryRowContext(ctx, `SELECT `+actorColumns+` FROM actors WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
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
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO actors (id, display_name, contact) VALUES (?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		display_name = excluded.display_name,
		contact = excluded.contact
	`, a.ID, a.DisplayName, a.Contact)
	if err != nil {
		return fmt.Errorf("upsert actor %s: %w", a.ID, err)
	}
	return nil
}

// IncrementTotal implements repository.ActorStore in a single statement.
func (s *Store) IncrementTotal(ctx context.Context, id string, delta int64) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx,
		`UPDATE actors SET total_points = total_points + ? WHERE id = ? RETURNING total_points`,
		delta, id).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
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
		`UPDATE actors SET total_points = ?, last_updated = ? WHERE id = ?`, total, toNanos(at), id)
}

// SetRank implements repository.ActorStore.
func (s *Store) SetRank(ctx context.Context, id string, rank int, at time.Time) error {
	return s.execActor(ctx, id,
		`UPDATE actors SET rank = ?, last_updated = ? WHERE id = ?`, rank, toNanos(at), id)
}

func (s *Store) execActor(ctx context.Context, id, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update actor %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update actor %s: %w", id, err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CountActors implements repository.ActorStore.
func (s *Store) CountActors(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM actors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count actors: %w", err)
	}
	return n, nil
}

// RecordRecalculation implements repository.RecalculationStore.
func (s *Store) RecordRecalculation(ctx context.Context, r model.Recalculation) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO recalculations (id, started_at, completed_at, events_appended, actors_updated)
	VALUES (1, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		started_at = excluded.started_at,
		completed_at = excluded.completed_at,
		events_appended = excluded.events_appended,
		actors_updated = excluded.actors_updated
	`, toNanos(r.StartedAt), toNanos(r.CompletedAt), r.EventsAppended, r.ActorsUpdated)
	if err != nil {
		return fmt.Errorf("record recalculation: %w", err)
	}
	return nil
}

// LastRecalculation implements repository.RecalculationStore.
func (s *Store) LastRecalculation(ctx context.Context) (model.Recalculation, bool, error) {
	var (
		r                  model.Recalculation
		started, completed int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT started_at, completed_at, events_appended, actors_updated FROM recalculations WHERE id = 1`).
		Scan(&started, &completed, &r.EventsAppended, &r.ActorsUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Recalculation{}, false, nil
	}
	if err != nil {
		return model.Recalculation{}, false, fmt.Errorf("last recalculation: %w", err)
	}
	r.StartedAt = fromNanos(started)
	r.CompletedAt = fromNanos(completed)
	return r, true, nil
}

func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
