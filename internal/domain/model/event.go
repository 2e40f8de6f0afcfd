// Package model contains domain models passed between layers.
package model

import "time"

// DefaultPoints is the point value of an activity when the caller omits it.
const DefaultPoints int64 = 20

// Event is an immutable record granting points to one actor at a moment.
type Event struct {
	ID         string    // unique id, assigned on creation
	ActorID    string    // references Actor.ID
	Category   string    // activity label, e.g. "login", "post"
	Points     int64     // positive by convention
	OccurredAt time.Time // when the activity happened
}

// Window is a half-open time interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Includes reports whether t passes an optional window. A nil window
// includes every instant.
func Includes(w *Window, t time.Time) bool {
	return w == nil || w.Contains(t)
}
