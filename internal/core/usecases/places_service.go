package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/supercivilian/supercivilian/internal/core/domain"
	"github.com/supercivilian/supercivilian/internal/core/ports"
)

// Cache lifetimes for places lookups, in seconds.
const (
	autocompleteTTL = 15 * 60
	detailsTTL      = 60 * 60
	reverseTTL      = 15 * 60
)

// PlacesService proxies the places API with caching.
type PlacesService struct {
	places ports.PlacesProvider
	cache  ports.CacheService
}

// NewPlacesService creates a new PlacesService.
func NewPlacesService(places ports.PlacesProvider, cache ports.CacheService) *PlacesService {
	return &PlacesService{places: places, cache: cache}
}

// Autocomplete returns place predictions for a search prefix.
func (s *PlacesService) Autocomplete(ctx context.Context, query string) ([]domain.AutocompletePrediction, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query must not be empty", domain.ErrInvalidArgument)
	}
	return cached(ctx, s.cache, "places:autocomplete:"+query, autocompleteTTL, func() ([]domain.AutocompletePrediction, error) {
		return s.places.Autocomplete(ctx, query)
	})
}

// Details returns a single place.
func (s *PlacesService) Details(ctx context.Context, placeID string) (*domain.PlaceDetails, error) {
	if placeID == "" {
		return nil, fmt.Errorf("%w: place id must not be empty", domain.ErrInvalidArgument)
	}
	return cached(ctx, s.cache, "places:details:"+placeID, detailsTTL, func() (*domain.PlaceDetails, error) {
		return s.places.Details(ctx, placeID)
	})
}

// ReverseGeocode returns address candidates for a point.
func (s *PlacesService) ReverseGeocode(ctx context.Context, p domain.GeoPoint) ([]domain.GeocodeResult, error) {
	return cached(ctx, s.cache, "places:reverse:"+p.String(), reverseTTL, func() ([]domain.GeocodeResult, error) {
		return s.places.ReverseGeocode(ctx, p)
	})
}

// Photo proxies a place photo. Photos are not cached.
func (s *PlacesService) Photo(ctx context.Context, reference string, maxWidth int) (*domain.Photo, error) {
	if reference == "" {
		return nil, fmt.Errorf("%w: photo reference must not be empty", domain.ErrInvalidArgument)
	}
	if maxWidth <= 0 {
		maxWidth = 400
	}
	return s.places.Photo(ctx, reference, maxWidth)
}

// cached is the read-through pattern: JSON from cache on hit, otherwise
// load and store. Errors are never cached.
func cached[T any](ctx context.Context, cache ports.CacheService, key string, ttlSeconds int, load func() (T, error)) (T, error) {
	if cache != nil {
		if data, err := cache.Get(ctx, key); err == nil {
			var v T
			if err := json.Unmarshal(data, &v); err == nil {
				return v, nil
			}
		}
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	if cache != nil {
		if data, err := json.Marshal(v); err == nil {
			_ = cache.Set(ctx, key, data, ttlSeconds)
		}
	}
	return v, nil
}
