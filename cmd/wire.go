package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/okian/leaderboard/internal/adapters/http/api"
	"github.com/okian/leaderboard/internal/adapters/http/swagger"
	"github.com/okian/leaderboard/internal/adapters/redis"
	"github.com/okian/leaderboard/internal/adapters/repository"
	"github.com/okian/leaderboard/internal/adapters/repository/backend"
	service "github.com/okian/leaderboard/internal/app"
	"github.com/okian/leaderboard/internal/config"
	"github.com/okian/leaderboard/internal/domain/synthetic"
	"github.com/okian/leaderboard/internal/scheduler"
	"github.com/okian/leaderboard/internal/seed"
	"github.com/okian/leaderboard/pkg/logger"
)

const recalculateJob = "recalculate"

// application holds the wired components of one process.
type application struct {
	cfg       *config.Config
	log       logger.Logger
	store     repository.Store
	mirror    *redis.RankMirror
	svc       *service.Service
	scheduler *scheduler.Scheduler
	mux       *http.ServeMux
}

// build wires storage, the optional rank mirror, the service and HTTP routes.
func build(ctx context.Context, cfg *config.Config, log logger.Logger) (*application, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("resolve timezone: %w", err)
	}

	store, err := backend.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &application{cfg: cfg, log: log, store: store}

	opts := []service.Option{
		service.WithLogger(log.Named("service")),
		service.WithLocation(loc),
		service.WithDefaultPoints(cfg.DefaultPoints),
		service.WithGenerator(newGenerator(cfg)),
	}
	if cfg.RedisAddr != "" {
		a.mirror, err = redis.Dial(ctx, cfg.RedisAddr, redis.WithKeyPrefix(cfg.RedisKeyPrefix))
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("connect rank mirror: %w", err)
		}
		opts = append(opts, service.WithMirror(a.mirror))
	}
	a.svc = service.New(repository.Instrument(store), opts...)

	a.mux = http.NewServeMux()
	if err := swagger.Register(ctx, a.mux); err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("register docs: %w", err)
	}
	api.NewServer(a.svc).Register(ctx, a.mux)

	if cfg.RecalculateCron != "" {
		a.scheduler = scheduler.New(loc, log.Named("scheduler"))
		err := a.scheduler.Schedule(recalculateJob, cfg.RecalculateCron, func(ctx context.Context) error {
			_, err := a.svc.Recalculate(ctx)
			return err
		})
		if err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("schedule recalculation: %w", err)
		}
	}
	return a, nil
}

// newGenerator returns the synthetic generator used by Recalculate, or nil
// when synthetic events are disabled and Recalculate only rebuilds.
func newGenerator(cfg *config.Config) synthetic.Generator {
	if !cfg.SyntheticEvents {
		return nil
	}
	return synthetic.NewRandom(
		synthetic.WithSource(rand.NewSource(time.Now().UnixNano())),
		synthetic.WithEventRange(cfg.SyntheticMinEvents, cfg.SyntheticMaxEvents),
		synthetic.WithPoints(cfg.SyntheticPoints),
		synthetic.WithCategory(cfg.SyntheticCategory),
		synthetic.WithSpread(cfg.SyntheticSpread()),
	)
}

// start seeds demo data when configured and starts the scheduler.
func (a *application) start(ctx context.Context) error {
	if a.cfg.SeedOnStart {
		res, err := seed.New(a.store, a.svc, seed.WithLogger(a.log.Named("seed"))).Run(ctx)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		if !res.Skipped {
			a.log.Info(ctx, "demo data seeded", logger.Int("actors", res.Actors), logger.Int("events", res.Events))
		}
	}
	if a.scheduler != nil {
		a.scheduler.Start()
		if next, ok := a.scheduler.Next(recalculateJob); ok {
			a.log.Info(ctx, "recalculation scheduled", logger.String("spec", a.cfg.RecalculateCron), logger.Time("next", next))
		}
	}
	return nil
}

// close stops the scheduler and releases the mirror and store.
func (a *application) close(ctx context.Context) {
	if a.scheduler != nil {
		stopCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		if err := a.scheduler.Stop(stopCtx); err != nil {
			a.log.Warn(ctx, "scheduler stop timed out", logger.Error(err))
		}
		cancel()
	}
	if a.mirror != nil {
		if err := a.mirror.Close(); err != nil {
			a.log.Warn(ctx, "close rank mirror", logger.Error(err))
		}
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn(ctx, "close store", logger.Error(err))
	}
}
