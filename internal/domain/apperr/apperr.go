// Package apperr defines the error kinds surfaced by the leaderboard core.
//
// Every failure returned by the service carries exactly one kind so callers
// can branch with errors.Is without parsing messages.
package apperr

import (
	"errors"
	"fmt"
)

// Sentinel error kinds.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrStorage     = errors.New("storage failure")
	ErrAggregation = errors.New("aggregation failure")
)

// Error ties an operation name and a kind to an underlying cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	case e.Op == "":
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// New returns an error of the given kind with a plain message.
func New(op string, kind error, msg string) error {
	return &Error{Op: op, Kind: kind, Err: errors.New(msg)}
}

// Wrap attaches a kind to err. A nil err yields nil. If err already carries
// a kind it is returned unchanged so the innermost classification wins.
func Wrap(op string, kind, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != nil {
		return err
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// KindOf returns the kind carried by err, or nil when err is unclassified.
func KindOf(err error) error {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrStorage, ErrAggregation} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
