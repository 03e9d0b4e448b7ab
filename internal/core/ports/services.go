package ports

import (
	"context"
	"errors"

	"github.com/supercivilian/supercivilian/internal/core/domain"
)

// ErrCacheMiss is returned by CacheService.Get for absent or expired keys.
var ErrCacheMiss = errors.New("cache miss")

// ShelterFetcher queries the upstream shelter map service.
type ShelterFetcher interface {
	// FetchNear returns shelters within radiusMeters of p in upstream order.
	FetchNear(ctx context.Context, p domain.GeoPoint, radiusMeters int) ([]domain.Shelter, error)
	// FetchOne returns domain.ErrNotFound when no feature has the id.
	FetchOne(ctx context.Context, id string) (*domain.Shelter, error)
}

// PlacesProvider is the places and geocoding API.
type PlacesProvider interface {
	Autocomplete(ctx context.Context, query string) ([]domain.AutocompletePrediction, error)
	Details(ctx context.Context, placeID string) (*domain.PlaceDetails, error)
	ReverseGeocode(ctx context.Context, p domain.GeoPoint) ([]domain.GeocodeResult, error)
	Photo(ctx context.Context, reference string, maxWidth int) (*domain.Photo, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishOccupancy(ctx context.Context, occ *domain.Occupancy) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
