// Command seed populates the configured store with demo actors and activity.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/leaderboard/internal/adapters/repository/backend"
	service "github.com/okian/leaderboard/internal/app"
	"github.com/okian/leaderboard/internal/config"
	"github.com/okian/leaderboard/internal/seed"
	"github.com/okian/leaderboard/pkg/logger"
)

func main() {
	force := flag.Bool("force", false, "Seed even when the store already has actors")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.InitWith(os.Stdout, logger.Format(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	_ = logger.SetLevelString(cfg.LogLevel)
	log := logger.Named("seed")

	if err := run(ctx, cfg, *force, log); err != nil {
		log.Error(ctx, "seeding failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, force bool, log logger.Logger) error {
	if !backend.Durable(cfg) {
		return fmt.Errorf("%w: seeding needs a durable store, got %q", config.ErrInvalidConfig, cfg.Store)
	}
	store, err := backend.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("resolve timezone: %w", err)
	}
	svc := service.New(store, service.WithLocation(loc), service.WithLogger(log))

	res, err := seed.New(store, svc, seed.WithForce(force), seed.WithLogger(log)).Run(ctx)
	if err != nil {
		return err
	}
	if res.Skipped {
		log.Info(ctx, "store already populated; use -force to seed anyway")
	}
	return nil
}
