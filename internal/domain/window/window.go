// Package window resolves named leaderboard filters into concrete time windows.
package window

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/leaderboard/internal/domain/model"
)

// Filter names a calendar period relative to the current moment.
type Filter string

// Supported filters. FilterNone means all-time.
const (
	FilterNone  Filter = ""
	FilterDay   Filter = "day"
	FilterMonth Filter = "month"
	FilterYear  Filter = "year"
)

// ErrUnknownFilter is returned by Parse for unsupported filter names.
var ErrUnknownFilter = errors.New("unknown filter")

// Parse normalizes a filter name. Blank input yields FilterNone.
func Parse(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterNone, FilterDay, FilterMonth, FilterYear:
		return f, nil
	default:
		return FilterNone, fmt.Errorf("%w: %q (expected day, month or year)", ErrUnknownFilter, s)
	}
}

// Resolve returns the calendar period containing now, evaluated in loc, as a
// half-open window. FilterNone returns nil. A nil loc means time.Local.
func Resolve(f Filter, now time.Time, loc *time.Location) *model.Window {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	y, m, d := now.Date()

	var start, end time.Time
	switch f {
	case FilterDay:
		start = time.Date(y, m, d, 0, 0, 0, 0, loc)
		end = start.AddDate(0, 0, 1)
	case FilterMonth:
		start = time.Date(y, m, 1, 0, 0, 0, 0, loc)
		end = start.AddDate(0, 1, 0)
	case FilterYear:
		start = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		end = start.AddDate(1, 0, 0)
	default:
		return nil
	}
	return &model.Window{Start: start, End: end}
}
