package repository

import (
	"context"
	"time"

	"github.com/okian/leaderboard/internal/domain/model"
	"github.com/okian/leaderboard/pkg/metrics"
)

// Instrumented records latency and failures of every call to the wrapped store.
type Instrumented struct {
	next Store
}

var _ Store = (*Instrumented)(nil)

// Instrument wraps s with store metrics.
func Instrument(s Store) *Instrumented {
	return &Instrumented{next: s}
}

func (i *Instrumented) AppendEvents(ctx context.Context, events []model.Event) (err error) {
	defer observe("append_events", time.Now(), &err)
	err = i.next.AppendEvents(ctx, events)
	if err == nil {
		metrics.AddEventsAppended(len(events))
	}
	return err
}

func (i *Instrumented) ScanEvents(ctx context.Context, w *model.Window) (events []model.Event, err error) {
	defer observe("scan_events", time.Now(), &err)
	return i.next.ScanEvents(ctx, w)
}

func (i *Instrumented) SumByActor(ctx context.Context, w *model.Window) (sums map[string]int64, err error) {
	defer observe("sum_by_actor", time.Now(), &err)
	return i.next.SumByActor(ctx, w)
}

func (i *Instrumented) CountEvents(ctx context.Context) (n int, err error) {
	defer observe("count_events", time.Now(), &err)
	return i.next.CountEvents(ctx)
}

func (i *Instrumented) ListActors(ctx context.Context) (actors []model.Actor, err error) {
	defer observe("list_actors", time.Now(), &err)
	actors, err = i.next.ListActors(ctx)
	if err == nil {
		metrics.UpdateTotalActors(len(actors))
	}
	return actors, err
}

func (i *Instrumented) GetActor(ctx context.Context, id string) (a model.Actor, err error) {
	defer observe("get_actor", time.Now(), &err)
	return i.next.GetActor(ctx, id)
}

func (i *Instrumented) UpsertActor(ctx context.Context, a model.Actor) (err error) {
	defer observe("upsert_actor", time.Now(), &err)
	return i.next.UpsertActor(ctx, a)
}

func (i *Instrumented) IncrementTotal(ctx context.Context, id string, delta int64) (total int64, err error) {
	defer observe("increment_total", time.Now(), &err)
	return i.next.IncrementTotal(ctx, id, delta)
}

func (i *Instrumented) SetTotal(ctx context.Context, id string, total int64, at time.Time) (err error) {
	defer observe("set_total", time.Now(), &err)
	return i.next.SetTotal(ctx, id, total, at)
}

func (i *Instrumented) SetRank(ctx context.Context, id string, rank int, at time.Time) (err error) {
	defer observe("set_rank", time.Now(), &err)
	return i.next.SetRank(ctx, id, rank, at)
}

func (i *Instrumented) CountActors(ctx context.Context) (n int, err error) {
	defer observe("count_actors", time.Now(), &err)
	return i.next.CountActors(ctx)
}

func (i *Instrumented) RecordRecalculation(ctx context.Context, r model.Recalculation) (err error) {
	defer observe("record_recalculation", time.Now(), &err)
	return i.next.RecordRecalculation(ctx, r)
}

func (i *Instrumented) LastRecalculation(ctx context.Context) (r model.Recalculation, ok bool, err error) {
	defer observe("last_recalculation", time.Now(), &err)
	return i.next.LastRecalculation(ctx)
}

func (i *Instrumented) Close() error {
	return i.next.Close()
}

func observe(op string, started time.Time, err *error) {
	metrics.ObserveStore(op, started, *err)
}
