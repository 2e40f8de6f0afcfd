package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/okian/leaderboard/internal/loadtest"
	"github.com/okian/leaderboard/pkg/logger"
)

// Default configuration constants.
const (
	defaultActivities  = 1000
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultMaxPoints   = 25
	defaultCategories  = "login,post,comment,share,like"
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		activities  = flag.Int("activities", defaultActivities, "Number of activities to submit")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		maxPoints   = flag.Int64("max-points", defaultMaxPoints, "Upper bound of points per activity")
		categories  = flag.String("categories", defaultCategories, "Comma separated activity categories")
		recalculate = flag.Bool("recalculate", false, "Trigger a recalculation and verify persisted ranks")
		seed        = flag.Int64("seed", time.Now().UnixNano(), "Random seed")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile     = flag.String("log", "", "Log file (default: loadtest_TIMESTAMP.log)")
		verbose     = flag.Bool("verbose", false, "Enable debug logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadtest.ShowHelp()
		return
	}

	closer, err := loadtest.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	cfg := &loadtest.Config{
		BaseURL:     strings.TrimRight(*baseURL, "/"),
		Activities:  *activities,
		Workers:     *workers,
		Timeout:     *timeout,
		Categories:  strings.Split(*categories, ","),
		MaxPoints:   *maxPoints,
		Recalculate: *recalculate,
		Seed:        *seed,
	}

	if _, err := loadtest.Run(ctx, cfg, logger.Named("loadtest")); err != nil {
		logger.Get().Error(ctx, "load test failed", logger.Error(err))
		closer.Close()
		os.Exit(1)
	}
}
