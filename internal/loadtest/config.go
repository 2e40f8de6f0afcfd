// Package loadtest drives a running leaderboard over HTTP and checks that
// concurrent activity submissions are reflected exactly in the rankings.
package loadtest

import (
	"errors"
	"time"
)

// Errors returned by Run.
var (
	ErrNoActors     = errors.New("leaderboard has no actors")
	ErrUnhealthy    = errors.New("service unhealthy")
	ErrInconsistent = errors.New("leaderboard inconsistent")
	ErrInvalidInput = errors.New("invalid load test config")
)

// Config holds configuration for a load test run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Activities  int           // Number of activities to submit
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	Categories  []string      // Activity categories picked at random
	MaxPoints   int64         // Points per activity are drawn from 1..MaxPoints
	Recalculate bool          // Trigger a recalculation after submitting
	Seed        int64         // Random seed for activity generation
}

// Validate checks the config for obviously unusable values.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return errors.Join(ErrInvalidInput, errors.New("base url is empty"))
	case c.Activities < 1:
		return errors.Join(ErrInvalidInput, errors.New("activities must be positive"))
	case c.Workers < 1:
		return errors.Join(ErrInvalidInput, errors.New("workers must be positive"))
	case c.MaxPoints < 1:
		return errors.Join(ErrInvalidInput, errors.New("max points must be positive"))
	case len(c.Categories) == 0:
		return errors.Join(ErrInvalidInput, errors.New("at least one category is required"))
	}
	return nil
}

// Activity is one submission.
type Activity struct {
	ActorID  string `json:"actorId"`
	Category string `json:"category"`
	Points   int64  `json:"points"`
}

// Stats holds run statistics.
type Stats struct {
	Actors      int
	Submitted   int
	Successful  int
	Failed      int
	PointsAdded int64
	Recomputed  bool
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
}
