package geometry

import (
	"fmt"
	"outlet-route-service/internal/ports"

	"googlemaps.github.io/maps"
)

var routeColors = []string{"green", "red", "blue"}

type LineString struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

type Feature struct {
	Type       string         `json:"type"`
	Geometry   LineString     `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// DecodeLine decodes an encoded polyline (precision 5) into [lon, lat] pairs.
func DecodeLine(encoded string) ([][]float64, error) {
	points, err := maps.DecodePolyline(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode polyline: %w", err)
	}

	coords := make([][]float64, 0, len(points))
	for _, p := range points {
		coords = append(coords, []float64{p.Lng, p.Lat})
	}
	return coords, nil
}

// RoutesToGeoJSON builds one LineString feature per route that carries a
// geometry. Colors cycle through green, red and blue.
func RoutesToGeoJSON(routes []ports.OptimizedRoute) (*FeatureCollection, error) {
	fc := &FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}

	for i, r := range routes {
		if r.Geometry == "" {
			continue
		}

		coords, err := DecodeLine(r.Geometry)
		if err != nil {
			return nil, fmt.Errorf("route for vehicle %d: %w", r.VehicleID, err)
		}

		fc.Features = append(fc.Features, Feature{
			Type:     "Feature",
			Geometry: LineString{Type: "LineString", Coordinates: coords},
			Properties: map[string]any{
				"color":   routeColors[i%len(routeColors)],
				"vehicle": r.VehicleID,
				"name":    fmt.Sprintf("Vehicle %d", r.VehicleID),
			},
		})
	}

	return fc, nil
}
