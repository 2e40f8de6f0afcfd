package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/leaderboard/internal/config"
	"github.com/okian/leaderboard/internal/domain/model"
	"github.com/okian/leaderboard/internal/domain/types"
	"github.com/okian/leaderboard/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func testConfig() *config.Config {
	cfg := config.New()
	cfg.Addr = "127.0.0.1:0"
	cfg.Timezone = "UTC"
	return cfg
}

func TestBuild(t *testing.T) {
	convey.Convey("Given a memory-backed configuration with seeding", t, func() {
		cfg := testConfig()
		cfg.SeedOnStart = true
		cfg.RecalculateCron = "@every 1h"
		ctx := context.Background()

		a, err := build(ctx, cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		defer a.close(ctx)

		convey.Convey("When the application starts", func() {
			convey.So(a.start(ctx), convey.ShouldBeNil)

			convey.Convey("Then the demo actors are ranked", func() {
				rec := httptest.NewRecorder()
				a.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leaderboard", http.NoBody))
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)

				var entries []types.Entry
				convey.So(json.NewDecoder(rec.Body).Decode(&entries), convey.ShouldBeNil)
				convey.So(len(entries), convey.ShouldEqual, 5)
				for _, e := range entries {
					convey.So(e.Rank, convey.ShouldNotBeNil)
					convey.So(e.TotalPoints, convey.ShouldBeGreaterThan, 0)
				}
			})

			convey.Convey("And the recalculation is scheduled", func() {
				next, ok := a.scheduler.Next(recalculateJob)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(next.After(time.Now()), convey.ShouldBeTrue)
			})

			convey.Convey("And the docs are served", func() {
				rec := httptest.NewRecorder()
				a.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", http.NoBody))
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			})
		})
	})

	convey.Convey("Given a sqlite configuration", t, func() {
		cfg := testConfig()
		cfg.Store = config.StoreSQLite
		cfg.SQLitePath = filepath.Join(t.TempDir(), "lb.db")
		ctx := context.Background()

		convey.Convey("When the application is built", func() {
			a, err := build(ctx, cfg, logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			defer a.close(ctx)

			convey.Convey("Then stats are served from the empty store", func() {
				rec := httptest.NewRecorder()
				a.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", http.NoBody))
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)

				var st types.Stats
				convey.So(json.NewDecoder(rec.Body).Decode(&st), convey.ShouldBeNil)
				convey.So(st.Actors, convey.ShouldEqual, 0)
			})
		})
	})

	convey.Convey("Given invalid configurations", t, func() {
		ctx := context.Background()

		convey.Convey("When the store is unknown", func() {
			cfg := testConfig()
			cfg.Store = "mongo"
			_, err := build(ctx, cfg, logger.Nop())

			convey.Convey("Then build fails with ErrInvalidConfig", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the timezone is unknown", func() {
			cfg := testConfig()
			cfg.Timezone = "Mars/Olympus"
			_, err := build(ctx, cfg, logger.Nop())

			convey.Convey("Then build fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the cron spec is malformed", func() {
			cfg := testConfig()
			cfg.RecalculateCron = "every now and then"
			_, err := build(ctx, cfg, logger.Nop())

			convey.Convey("Then build fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestNewGenerator(t *testing.T) {
	convey.Convey("Given synthetic settings", t, func() {
		cfg := testConfig()

		convey.Convey("When synthetic events are disabled", func() {
			cfg.SyntheticEvents = false

			convey.Convey("Then no generator is built", func() {
				convey.So(newGenerator(cfg), convey.ShouldBeNil)
			})
		})

		convey.Convey("When synthetic events are enabled", func() {
			cfg.SyntheticEvents = true
			cfg.SyntheticMinEvents = 2
			cfg.SyntheticMaxEvents = 2
			cfg.SyntheticPoints = 7
			cfg.SyntheticCategory = "post"

			convey.Convey("Then the generator follows the configured shape", func() {
				g := newGenerator(cfg)
				convey.So(g, convey.ShouldNotBeNil)
				events := g.Generate(model.Actor{ID: "USER001"}, time.Now())
				convey.So(len(events), convey.ShouldEqual, 2)
				convey.So(events[0].Points, convey.ShouldEqual, 7)
				convey.So(events[0].Category, convey.ShouldEqual, "post")
			})
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		convey.Convey("When run is called", func() {
			err := run(ctx, testConfig(), logger.Nop())

			convey.Convey("Then it shuts down cleanly", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})
	})
}

func TestSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("When updating once", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("When the updater context expires", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			convey.Convey("Then the loop returns", func() {
				convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			})
		})
	})
}
