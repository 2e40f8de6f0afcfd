package loadtest

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/leaderboard/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging initializes the global logger writing to stdout and a log file.
// If logFile is empty, a timestamped filename is generated. The returned
// closer releases the file.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	if logFile == "" {
		logFile = "loadtest_" + time.Now().Format("20060102_150405") + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.InitWith(io.MultiWriter(os.Stdout, file), logger.FormatText); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return file, nil
}

// ShowHelp prints usage information for the load test tool.
func ShowHelp() {
	os.Stdout.WriteString(`Leaderboard Load Test
=====================

Submits activities concurrently to a running leaderboard and verifies that
every acknowledged point shows up in the rankings.

Usage:
  go run ./cmd/loadtest [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -activities int
        Number of activities to submit (default 1000)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -max-points int
        Upper bound of points per activity (default 25)
  -categories string
        Comma separated activity categories (default "login,post,comment,share,like")
  -recalculate
        Trigger a recalculation afterwards and verify persisted ranks
  -seed int
        Random seed (default: current time)
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Log file (default: loadtest_TIMESTAMP.log)
  -verbose
        Enable debug logging
  -help
        Show this help message

Examples:
  # Seeded server, default load
  go run ./cmd/loadtest

  # Heavier run with a rank check
  go run ./cmd/loadtest -activities 20000 -workers 32 -recalculate
`)
}
