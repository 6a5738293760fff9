package ports

import (
	"context"
	"outlet-route-service/internal/domain"
)

// Catalog browsing parameters. Empty slices mean "no restriction".
type LocationFilter struct {
	Provinces    []string
	Cities       []string
	Districts    []string
	NameContains string
	Limit        int
}

// Port: a boundary for retrieving Location entities from the catalog.
type LocationRepository interface {
	ListLocations(ctx context.Context, filter LocationFilter) ([]domain.Location, error)
	// Return the locations found for ids, keyed by id. Unknown ids are absent.
	GetLocations(ctx context.Context, ids []string) (map[string]domain.Location, error)
}
