package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput means there is nothing to build an itinerary from:
	// no stops at all, or no start sentinel among them.
	ErrEmptyInput = errors.New("empty input")

	ErrInvalidVisitMinutes = errors.New("visit minutes must be positive")
)

// MalformedStopError reports a raw stop that cannot be processed.
type MalformedStopError struct {
	Index  int
	Field  string
	Reason string
}

func (e *MalformedStopError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed stop #%d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("malformed stop #%d: field %q: %s", e.Index, e.Field, e.Reason)
}

// UnresolvedLocationWarning is a non-fatal note that a stop referenced an
// identifier missing from the location catalog.
type UnresolvedLocationWarning struct {
	Index       int    `json:"index"`
	LocationRef string `json:"location_ref"`
}

func (w UnresolvedLocationWarning) String() string {
	return fmt.Sprintf("stop #%d: unknown location %q", w.Index, w.LocationRef)
}
