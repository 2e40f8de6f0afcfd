package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/leaderboard/internal/adapters/repository"
	"github.com/okian/leaderboard/internal/adapters/repository/storetest"
	"github.com/okian/leaderboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) repository.Store {
		return repository.NewMemoryStore(context.Background())
	})
}

func TestMemoryStoreOptions(t *testing.T) {
	Convey("Given a memory store with preloaded actors", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(ctx,
			repository.WithActors(model.Actor{ID: "USER001", DisplayName: "John Doe"}),
			repository.WithMetricsUpdateInterval(10*time.Millisecond),
		)
		defer func() { _ = store.Close() }()

		Convey("Then the actor is visible", func() {
			a, err := store.GetActor(ctx, "USER001")
			So(err, ShouldBeNil)
			So(a.DisplayName, ShouldEqual, "John Doe")
		})

		Convey("Then Close can be called twice", func() {
			So(store.Close(), ShouldBeNil)
			So(store.Close(), ShouldBeNil)
		})
	})

	Convey("Given a cancelled context", t, func() {
		store := repository.NewMemoryStore(context.Background())
		defer func() { _ = store.Close() }()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("Then store calls report the cancellation", func() {
			So(store.AppendEvents(ctx, nil), ShouldEqual, context.Canceled)
			_, err := store.ListActors(ctx)
			So(err, ShouldEqual, context.Canceled)
		})
	})
}
