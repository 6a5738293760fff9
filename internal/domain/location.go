package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeWindow bounds when a visit may happen.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

func (w TimeWindow) Validate() error {
	if w.End.Before(w.Start) {
		return fmt.Errorf("time window: start %s is after end %s", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
	}
	return nil
}

// Return the window as [start, end] unix seconds, the shape ORS expects.
func (w TimeWindow) Unix() []int64 { return []int64{w.Start.Unix(), w.End.Unix()} }

// OpeningHours is a daily open/close window stored in the catalog.
type OpeningHours struct {
	Open  Clock
	Close Clock
}

func (h OpeningHours) Validate() error {
	if err := h.Open.Validate(); err != nil {
		return fmt.Errorf("opening hours: open: %w", err)
	}
	if err := h.Close.Validate(); err != nil {
		return fmt.Errorf("opening hours: close: %w", err)
	}
	if h.Close.Before(h.Open) {
		return fmt.Errorf("opening hours: open %s is after close %s", h.Open, h.Close)
	}
	return nil
}

// On resolves the daily hours into an absolute window on the given day.
func (h OpeningHours) On(date time.Time) TimeWindow {
	return TimeWindow{Start: h.Open.On(date), End: h.Close.On(date)}
}

// Represents an outlet in the location catalog.
// ID is unique within a single job submission; Province, City and District
// exist only so the catalog can be browsed before a selection is made.
type Location struct {
	ID          string
	Name        string
	Coordinates Coordinates
	MapURL      string
	Hours       *OpeningHours

	Province string
	City     string
	District string
}

// MapsLink returns the stored map link, falling back to a Google Maps
// query URL built from the coordinates.
func (l Location) MapsLink() string {
	if strings.TrimSpace(l.MapURL) != "" {
		return l.MapURL
	}
	return "https://www.google.com/maps/?q=" +
		strconv.FormatFloat(l.Coordinates.Lat, 'f', -1, 64) + "," +
		strconv.FormatFloat(l.Coordinates.Lon, 'f', -1, 64)
}

func (l Location) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return errors.New("location: id must be non-empty")
	}
	if err := l.Coordinates.Validate(); err != nil {
		return fmt.Errorf("location %q: %w", l.ID, err)
	}
	if l.Hours != nil {
		if err := l.Hours.Validate(); err != nil {
			return fmt.Errorf("location %q: %w", l.ID, err)
		}
	}
	return nil
}
