package loadtest_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/leaderboard/internal/adapters/http/api"
	"github.com/okian/leaderboard/internal/adapters/repository"
	service "github.com/okian/leaderboard/internal/app"
	"github.com/okian/leaderboard/internal/domain/model"
	"github.com/okian/leaderboard/internal/domain/synthetic"
	"github.com/okian/leaderboard/internal/loadtest"
	"github.com/okian/leaderboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func startServer(t *testing.T, actors ...model.Actor) *httptest.Server {
	t.Helper()
	store := repository.NewMemoryStore(context.Background(), repository.WithActors(actors...))
	t.Cleanup(func() { _ = store.Close() })

	svc := service.New(store, service.WithGenerator(synthetic.Fixed(1, 5, "login")))
	mux := http.NewServeMux()
	api.NewServer(svc).Register(context.Background(), mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func baseConfig(url string) *loadtest.Config {
	return &loadtest.Config{
		BaseURL:    url,
		Activities: 200,
		Workers:    8,
		Timeout:    5 * time.Second,
		Categories: []string{"login", "post"},
		MaxPoints:  25,
		Seed:       7,
	}
}

func TestRun(t *testing.T) {
	Convey("Given a leaderboard server with four actors", t, func() {
		srv := startServer(t,
			model.Actor{ID: "A"}, model.Actor{ID: "B"},
			model.Actor{ID: "C"}, model.Actor{ID: "D"},
		)
		cfg := baseConfig(srv.URL)

		Convey("When the load test runs", func() {
			stats, err := loadtest.Run(context.Background(), cfg, logger.Nop())

			Convey("Then every submission succeeds and totals reconcile", func() {
				So(err, ShouldBeNil)
				So(stats.Actors, ShouldEqual, 4)
				So(stats.Submitted, ShouldEqual, 200)
				So(stats.Successful, ShouldEqual, 200)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.PointsAdded, ShouldBeGreaterThanOrEqualTo, 200)
				So(stats.Recomputed, ShouldBeFalse)
			})
		})

		Convey("When the load test also recalculates", func() {
			cfg.Recalculate = true
			stats, err := loadtest.Run(context.Background(), cfg, logger.Nop())

			Convey("Then persisted ranks are verified", func() {
				So(err, ShouldBeNil)
				So(stats.Recomputed, ShouldBeTrue)
			})
		})
	})

	Convey("Given a server without actors", t, func() {
		srv := startServer(t)

		Convey("When the load test runs", func() {
			_, err := loadtest.Run(context.Background(), baseConfig(srv.URL), logger.Nop())

			Convey("Then it reports the empty leaderboard", func() {
				So(errors.Is(err, loadtest.ErrNoActors), ShouldBeTrue)
			})
		})
	})

	Convey("Given an unhealthy endpoint", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		Convey("When the load test runs", func() {
			_, err := loadtest.Run(context.Background(), baseConfig(srv.URL), logger.Nop())

			Convey("Then the health check fails", func() {
				So(errors.Is(err, loadtest.ErrUnhealthy), ShouldBeTrue)
			})
		})
	})
}

func TestConfigValidate(t *testing.T) {
	Convey("Given load test configs", t, func() {
		cases := []struct {
			name   string
			mutate func(*loadtest.Config)
		}{
			{"empty url", func(c *loadtest.Config) { c.BaseURL = "" }},
			{"no activities", func(c *loadtest.Config) { c.Activities = 0 }},
			{"no workers", func(c *loadtest.Config) { c.Workers = 0 }},
			{"no points", func(c *loadtest.Config) { c.MaxPoints = 0 }},
			{"no categories", func(c *loadtest.Config) { c.Categories = nil }},
		}

		for _, tc := range cases {
			Convey("When the config has "+tc.name, func() {
				cfg := baseConfig("http://localhost")
				tc.mutate(cfg)

				Convey("Then validation fails", func() {
					So(errors.Is(cfg.Validate(), loadtest.ErrInvalidInput), ShouldBeTrue)
				})
			})
		}

		Convey("When the config is complete", func() {
			Convey("Then validation passes", func() {
				So(baseConfig("http://localhost").Validate(), ShouldBeNil)
			})
		})
	})
}
