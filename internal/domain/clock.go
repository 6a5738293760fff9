package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock is a wall-clock time of day with minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM" (24h).
func ParseClock(s string) (Clock, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Clock{}, fmt.Errorf("parse clock %q: expected HH:MM", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return Clock{}, fmt.Errorf("parse clock %q: hour: %w", s, err)
	}
	minute, err := strconv.Atoi(m)
	if err != nil {
		return Clock{}, fmt.Errorf("parse clock %q: minute: %w", s, err)
	}
	c := Clock{Hour: hour, Minute: minute}
	if err := c.Validate(); err != nil {
		return Clock{}, fmt.Errorf("parse clock %q: %w", s, err)
	}
	return c, nil
}

func (c Clock) Validate() error {
	if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 {
		return fmt.Errorf("clock %02d:%02d out of range", c.Hour, c.Minute)
	}
	return nil
}

func (c Clock) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

func (c Clock) Before(o Clock) bool {
	return c.Hour < o.Hour || (c.Hour == o.Hour && c.Minute < o.Minute)
}

// On places the clock on the calendar day of date, in date's location.
func (c Clock) On(date time.Time) time.Time {
	y, mo, d := date.Date()
	return time.Date(y, mo, d, c.Hour, c.Minute, 0, 0, date.Location())
}
