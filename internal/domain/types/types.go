// Package types contains common types used across the application
package types

import "time"

// Entry is one leaderboard row as returned to clients.
type Entry struct {
	ActorID     string `json:"actorId"`
	DisplayName string `json:"displayName"`
	Contact     string `json:"contact,omitempty"`
	Score       int64  `json:"score"`
	Position    int    `json:"position"`
	Matched     bool   `json:"matched"`
	TotalPoints int64  `json:"totalPoints"`
	Rank        *int   `json:"rank"`
}

// Activity is the client view of a recorded event.
type Activity struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actorId"`
	Category   string    `json:"category"`
	Points     int64     `json:"points"`
	OccurredAt time.Time `json:"occurredAt"`
}

// ActivityResult is returned after recording an activity.
type ActivityResult struct {
	Event    Activity `json:"event"`
	NewTotal int64    `json:"newTotal"`
}

// RecalculateResult is returned after a recalculation.
type RecalculateResult struct {
	Message         string `json:"message"`
	ActivitiesAdded int    `json:"activitiesAdded"`
	UsersUpdated    int    `json:"usersUpdated"`
}

// RecalculationInfo describes the last recompute cycle. CompletedAt is
// omitted while the cycle is running or after it failed.
type RecalculationInfo struct {
	StartedAt      time.Time  `json:"startedAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	EventsAppended int        `json:"eventsAppended"`
	ActorsUpdated  int        `json:"actorsUpdated"`
}

// Stats is the /stats response body.
type Stats struct {
	Actors            int                `json:"actors"`
	Events            int                `json:"events"`
	Recalculating     bool               `json:"recalculating"`
	LastRecalculation *RecalculationInfo `json:"lastRecalculation,omitempty"`
}
