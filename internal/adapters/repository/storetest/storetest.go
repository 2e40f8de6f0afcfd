// Package storetest holds the behavioural contract every repository.Store
// implementation must satisfy. Store packages call Run from their tests.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/leaderboard/internal/adapters/repository"
	"github.com/okian/leaderboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// Factory returns a fresh, empty store. It is called once per Convey leaf.
type Factory func(t *testing.T) repository.Store

// base is a fixed instant with whole seconds so every backend round-trips it.
var base = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

// Run executes the contract suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) { //nolint:funlen // one contract
	t.Helper()
	ctx := context.Background()

	Convey("Given an empty store", t, func() {
		store := newStore(t)
		Reset(func() { _ = store.Close() })

		Convey("Then it has no actors, events or recalculation marker", func() {
			actors, err := store.ListActors(ctx)
			So(err, ShouldBeNil)
			So(actors, ShouldBeEmpty)

			n, err := store.CountEvents(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 0)

			_, ok, err := store.LastRecalculation(ctx)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)

			sums, err := store.SumByActor(ctx, nil)
			So(err, ShouldBeNil)
			So(sums, ShouldBeEmpty)
		})

		Convey("When looking up an unknown actor", func() {
			_, err := store.GetActor(ctx, "ghost")

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When upserting an actor without id", func() {
			err := store.UpsertActor(ctx, model.Actor{DisplayName: "nobody"})

			Convey("Then ErrInvalidActor is returned", func() {
				So(errors.Is(err, repository.ErrInvalidActor), ShouldBeTrue)
			})
		})

		Convey("When actors are upserted", func() {
			So(store.UpsertActor(ctx, model.Actor{ID: "USER002", DisplayName: "Jane Smith", Contact: "jane@example.com"}), ShouldBeNil)
			So(store.UpsertActor(ctx, model.Actor{ID: "USER001", DisplayName: "John Doe", Contact: "john@example.com"}), ShouldBeNil)

			Convey("Then they are listed by id with no total or rank", func() {
				actors, err := store.ListActors(ctx)
				So(err, ShouldBeNil)
				So(len(actors), ShouldEqual, 2)
				So(actors[0].ID, ShouldEqual, "USER001")
				So(actors[1].ID, ShouldEqual, "USER002")
				So(actors[0].TotalPoints, ShouldEqual, 0)
				So(actors[0].Rank, ShouldBeNil)
				So(actors[0].LastUpdated.IsZero(), ShouldBeTrue)

				n, err := store.CountActors(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 2)
			})

			Convey("And incrementing returns the running total", func() {
				total, err := store.IncrementTotal(ctx, "USER001", 20)
				So(err, ShouldBeNil)
				So(total, ShouldEqual, 20)

				total, err = store.IncrementTotal(ctx, "USER001", 15)
				So(err, ShouldBeNil)
				So(total, ShouldEqual, 35)

				a, err := store.GetActor(ctx, "USER001")
				So(err, ShouldBeNil)
				So(a.TotalPoints, ShouldEqual, 35)
				So(a.Rank, ShouldBeNil)
			})

			Convey("And incrementing an unknown actor fails with ErrNotFound", func() {
				_, err := store.IncrementTotal(ctx, "ghost", 20)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("And concurrent increments are not lost", func() {
				var wg sync.WaitGroup
				for i := 0; i < 20; i++ {
					wg.Add(1)
					go func() {
						defer wg.Done()
						_, _ = store.IncrementTotal(ctx, "USER002", 5)
					}()
				}
				wg.Wait()

				a, err := store.GetActor(ctx, "USER002")
				So(err, ShouldBeNil)
				So(a.TotalPoints, ShouldEqual, 100)
			})

			Convey("And re-upserting keeps the cached total and rank", func() {
				So(store.SetTotal(ctx, "USER001", 60, base), ShouldBeNil)
				So(store.SetRank(ctx, "USER001", 1, base), ShouldBeNil)
				So(store.UpsertActor(ctx, model.Actor{ID: "USER001", DisplayName: "Johnny"}), ShouldBeNil)

				a, err := store.GetActor(ctx, "USER001")
				So(err, ShouldBeNil)
				So(a.DisplayName, ShouldEqual, "Johnny")
				So(a.TotalPoints, ShouldEqual, 60)
				So(a.Rank, ShouldNotBeNil)
				So(*a.Rank, ShouldEqual, 1)
				So(a.LastUpdated.Equal(base), ShouldBeTrue)
			})

			Convey("And setting totals or ranks of unknown actors fails", func() {
				So(errors.Is(store.SetTotal(ctx, "ghost", 1, base), repository.ErrNotFound), ShouldBeTrue)
				So(errors.Is(store.SetRank(ctx, "ghost", 1, base), repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("And returned actors do not alias stored ranks", func() {
				So(store.SetRank(ctx, "USER002", 2, base), ShouldBeNil)
				a, err := store.GetActor(ctx, "USER002")
				So(err, ShouldBeNil)
				*a.Rank = 99

				again, err := store.GetActor(ctx, "USER002")
				So(err, ShouldBeNil)
				So(*again.Rank, ShouldEqual, 2)
			})
		})

		Convey("When events are appended", func() {
			events := []model.Event{
				{ID: "e1", ActorID: "A", Category: "login", Points: 10, OccurredAt: base.Add(-48 * time.Hour)},
				{ID: "e2", ActorID: "A", Category: "post", Points: 20, OccurredAt: base},
				{ID: "e3", ActorID: "B", Category: "like", Points: 5, OccurredAt: base.Add(time.Hour)},
				{ID: "e4", ActorID: "B", Category: "share", Points: 25, OccurredAt: base.Add(24 * time.Hour)},
			}
			So(store.AppendEvents(ctx, events), ShouldBeNil)

			Convey("Then the all-time sums cover every event", func() {
				sums, err := store.SumByActor(ctx, nil)
				So(err, ShouldBeNil)
				So(sums, ShouldResemble, map[string]int64{"A": 30, "B": 30})

				n, err := store.CountEvents(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 4)
			})

			Convey("Then a window includes its start and excludes its end", func() {
				w := &model.Window{Start: base, End: base.Add(24 * time.Hour)}
				sums, err := store.SumByActor(ctx, w)
				So(err, ShouldBeNil)
				So(sums, ShouldResemble, map[string]int64{"A": 20, "B": 5})

				scanned, err := store.ScanEvents(ctx, w)
				So(err, ShouldBeNil)
				So(len(scanned), ShouldEqual, 2)
				for _, e := range scanned {
					So(w.Contains(e.OccurredAt), ShouldBeTrue)
				}
			})

			Convey("Then a window with no events yields no sums", func() {
				w := &model.Window{Start: base.AddDate(1, 0, 0), End: base.AddDate(1, 0, 1)}
				sums, err := store.SumByActor(ctx, w)
				So(err, ShouldBeNil)
				So(sums, ShouldBeEmpty)
			})

			Convey("Then scanned events round-trip every field", func() {
				scanned, err := store.ScanEvents(ctx, nil)
				So(err, ShouldBeNil)
				So(len(scanned), ShouldEqual, 4)
				byID := map[string]model.Event{}
				for _, e := range scanned {
					byID[e.ID] = e
				}
				e2 := byID["e2"]
				So(e2.ActorID, ShouldEqual, "A")
				So(e2.Category, ShouldEqual, "post")
				So(e2.Points, ShouldEqual, 20)
				So(e2.OccurredAt.Equal(base), ShouldBeTrue)
			})
		})

		Convey("When recalculation markers are recorded", func() {
			started := model.Recalculation{StartedAt: base}
			So(store.RecordRecalculation(ctx, started), ShouldBeNil)

			got, ok, err := store.LastRecalculation(ctx)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(got.InProgress(), ShouldBeTrue)

			Convey("Then the completed marker replaces the started one", func() {
				done := model.Recalculation{
					StartedAt:      base,
					CompletedAt:    base.Add(time.Second),
					EventsAppended: 7,
					ActorsUpdated:  3,
				}
				So(store.RecordRecalculation(ctx, done), ShouldBeNil)

				got, ok, err := store.LastRecalculation(ctx)
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(got.InProgress(), ShouldBeFalse)
				So(got.EventsAppended, ShouldEqual, 7)
				So(got.ActorsUpdated, ShouldEqual, 3)
				So(got.CompletedAt.Equal(done.CompletedAt), ShouldBeTrue)
			})
		})
	})
}
