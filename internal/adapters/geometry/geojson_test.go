package geometry

import (
	"math"
	"outlet-route-service/internal/ports"
	"testing"
)

// Reference polyline from the encoding format documentation.
const samplePolyline = "_p~iF~ps|U_ulLnnqC_mqNvxq`@"

func TestDecodeLine(t *testing.T) {
	coords, err := DecodeLine(samplePolyline)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := [][]float64{
		{-120.2, 38.5},
		{-120.95, 40.7},
		{-126.453, 43.252},
	}
	if len(coords) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(coords))
	}
	for i := range want {
		if math.Abs(coords[i][0]-want[i][0]) > 1e-5 || math.Abs(coords[i][1]-want[i][1]) > 1e-5 {
			t.Fatalf("point %d = %v, want %v", i, coords[i], want[i])
		}
	}
}

func TestRoutesToGeoJSON(t *testing.T) {
	routes := []ports.OptimizedRoute{
		{VehicleID: 0, Geometry: samplePolyline},
		{VehicleID: 1},
		{VehicleID: 2, Geometry: samplePolyline},
	}

	fc, err := RoutesToGeoJSON(routes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fc.Type != "FeatureCollection" || len(fc.Features) != 2 {
		t.Fatalf("unexpected collection: %+v", fc)
	}
	if fc.Features[0].Properties["color"] != "green" || fc.Features[1].Properties["color"] != "blue" {
		t.Fatalf("unexpected colors: %v, %v", fc.Features[0].Properties["color"], fc.Features[1].Properties["color"])
	}
	if fc.Features[1].Properties["vehicle"] != 2 {
		t.Fatalf("vehicle = %v, want 2", fc.Features[1].Properties["vehicle"])
	}
	if fc.Features[0].Geometry.Type != "LineString" {
		t.Fatalf("geometry type = %q", fc.Features[0].Geometry.Type)
	}
}

func TestRoutesToGeoJSONEmpty(t *testing.T) {
	fc, err := RoutesToGeoJSON(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fc.Features == nil || len(fc.Features) != 0 {
		t.Fatalf("expected empty non-nil features, got %#v", fc.Features)
	}
}
