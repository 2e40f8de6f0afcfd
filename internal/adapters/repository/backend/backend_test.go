package backend_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/okian/leaderboard/internal/adapters/repository/backend"
	"github.com/okian/leaderboard/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestOpen(t *testing.T) {
	Convey("Given store configurations", t, func() {
		ctx := context.Background()
		cfg := config.New()

		Convey("When the memory store is selected", func() {
			s, err := backend.Open(ctx, cfg)
			So(err, ShouldBeNil)
			defer s.Close()

			Convey("Then it opens empty and is not durable", func() {
				n, err := s.CountActors(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 0)
				So(backend.Durable(cfg), ShouldBeFalse)
			})
		})

		Convey("When the sqlite store is selected", func() {
			cfg.Store = config.StoreSQLite
			cfg.SQLitePath = filepath.Join(t.TempDir(), "lb.db")
			s, err := backend.Open(ctx, cfg)
			So(err, ShouldBeNil)
			defer s.Close()

			Convey("Then it opens and is durable", func() {
				_, err := s.CountEvents(ctx)
				So(err, ShouldBeNil)
				So(backend.Durable(cfg), ShouldBeTrue)
			})
		})

		Convey("When the postgres DSN is malformed", func() {
			cfg.Store = config.StorePostgres
			cfg.PostgresDSN = "postgres://%zz"
			_, err := backend.Open(ctx, cfg)

			Convey("Then opening fails", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When the store is unknown", func() {
			cfg.Store = "mongo"
			_, err := backend.Open(ctx, cfg)

			Convey("Then ErrInvalidConfig is returned", func() {
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})
		})
	})
}
