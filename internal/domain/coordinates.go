package domain

import "fmt"

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// IsZero reports whether both components are unset.
func (c Coordinates) IsZero() bool { return c.Lon == 0 && c.Lat == 0 }

// Validate checks that the coordinates fall inside WGS84 bounds.
func (c Coordinates) Validate() error {
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", c.Lon)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", c.Lat)
	}
	return nil
}
