package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/okian/leaderboard/internal/adapters/repository"
	"github.com/okian/leaderboard/internal/adapters/repository/sqlite"
	"github.com/okian/leaderboard/internal/adapters/repository/storetest"
	"github.com/okian/leaderboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSQLiteStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) repository.Store {
		s, err := sqlite.Open(context.Background(), ":memory:")
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		return s
	})
}

func TestSQLiteStorePersistence(t *testing.T) {
	Convey("Given a file-backed database", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "leaderboard.db")

		s, err := sqlite.Open(ctx, path)
		So(err, ShouldBeNil)
		So(s.UpsertActor(ctx, model.Actor{ID: "USER001", DisplayName: "John Doe"}), ShouldBeNil)
		_, err = s.IncrementTotal(ctx, "USER001", 25)
		So(err, ShouldBeNil)
		So(s.Close(), ShouldBeNil)

		Convey("When it is reopened", func() {
			s, err := sqlite.Open(ctx, path)
			So(err, ShouldBeNil)
			defer func() { _ = s.Close() }()

			Convey("Then the actor and total survive", func() {
				a, err := s.GetActor(ctx, "USER001")
				So(err, ShouldBeNil)
				So(a.TotalPoints, ShouldEqual, 25)
			})
		})
	})
}
