package loadtest

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/leaderboard/internal/domain/types"
	"github.com/okian/leaderboard/pkg/logger"
)

// workerChannelMultiplier sizes the job channel relative to the worker count.
const workerChannelMultiplier = 2

// Run executes a complete load test against cfg.BaseURL.
func Run(ctx context.Context, cfg *Config, log logger.Logger) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	stats := &Stats{StartTime: time.Now()}
	c := newClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting leaderboard load test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("activities", cfg.Activities),
		logger.Int("workers", cfg.Workers))

	if err := c.health(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	before, err := c.leaderboard(ctx)
	if err != nil {
		return nil, fmt.Errorf("baseline leaderboard: %w", err)
	}
	if len(before) == 0 {
		return nil, ErrNoActors
	}
	stats.Actors = len(before)

	activities := generate(cfg, before)
	added := submit(ctx, c, cfg.Workers, activities, stats, log)
	if ctx.Err() != nil {
		return nil, fmt.Errorf("submission interrupted: %w", ctx.Err())
	}

	after, err := c.leaderboard(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaderboard after submission: %w", err)
	}
	if err := verifyTotals(before, after, added); err != nil {
		return nil, err
	}
	if err := verifyOrder(after); err != nil {
		return nil, err
	}

	if cfg.Recalculate {
		res, err := c.recalculate(ctx)
		if err != nil {
			return nil, fmt.Errorf("recalculate: %w", err)
		}
		ranked, err := c.leaderboard(ctx)
		if err != nil {
			return nil, fmt.Errorf("leaderboard after recalculation: %w", err)
		}
		if err := verifyRanks(ranked); err != nil {
			return nil, err
		}
		stats.Recomputed = true
		log.Info(ctx, "recalculation verified",
			logger.Int("activitiesAdded", res.ActivitiesAdded),
			logger.Int("usersUpdated", res.UsersUpdated))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)
	return stats, nil
}

// generate draws cfg.Activities activities over the known actors.
func generate(cfg *Config, entries []types.Entry) []Activity {
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // load data
	out := make([]Activity, cfg.Activities)
	for i := range out {
		out[i] = Activity{
			ActorID:  entries[rng.Intn(len(entries))].ActorID,
			Category: cfg.Categories[rng.Intn(len(cfg.Categories))],
			Points:   1 + rng.Int63n(cfg.MaxPoints),
		}
	}
	return out
}

// submit posts activities with a worker pool and returns the points that
// were acknowledged per actor.
func submit(ctx context.Context, c *client, workers int, activities []Activity, stats *Stats, log logger.Logger) map[string]int64 {
	var (
		mu    sync.Mutex
		added = make(map[string]int64)
		wg    sync.WaitGroup
	)
	jobs := make(chan Activity, workers*workerChannelMultiplier)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for a := range jobs {
				_, err := c.submit(ctx, a)

				mu.Lock()
				stats.Submitted++
				if err != nil {
					stats.Failed++
				} else {
					stats.Successful++
					stats.PointsAdded += a.Points
					added[a.ActorID] += a.Points
				}
				mu.Unlock()

				if err != nil {
					log.Debug(ctx, "activity submission failed", logger.String("actor", a.ActorID), logger.Error(err))
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, a := range activities {
			select {
			case <-ctx.Done():
				return
			case jobs <- a:
			}
		}
	}()

	wg.Wait()
	return added
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("actors", stats.Actors),
		logger.Int("submitted", stats.Submitted),
		logger.Int("successful", stats.Successful),
		logger.Int("failed", stats.Failed),
		logger.Int64("pointsAdded", stats.PointsAdded),
		logger.Bool("recomputed", stats.Recomputed),
		logger.Duration("duration", stats.Duration),
		logger.Any("activitiesPerSecond", perSecond))
}
