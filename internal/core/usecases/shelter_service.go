package usecases

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/supercivilian/supercivilian/internal/core/domain"
	"github.com/supercivilian/supercivilian/internal/core/ports"
	"github.com/supercivilian/supercivilian/internal/pkg/logging"
	"github.com/supercivilian/supercivilian/internal/pkg/metrics"
)

// MaxRangeMeters is the largest search radius callers may ask for.
const MaxRangeMeters = 1_000_000

// ShelterOptions selects the resolver policies.
type ShelterOptions struct {
	// FailOpen answers listings with an empty result when the upstream
	// fails instead of returning the error.
	FailOpen bool
	// SingleFlight lets concurrent misses on one key share an upstream call.
	SingleFlight bool
}

// ShelterService resolves shelter lookups through the proximity cache and
// the upstream map service.
type ShelterService struct {
	fetcher ports.ShelterFetcher
	cache   *ProximityCache
	opts    ShelterOptions
	group   singleflight.Group
}

// NewShelterService creates a new ShelterService. A nil cache disables
// caching.
func NewShelterService(fetcher ports.ShelterFetcher, cache *ProximityCache, opts ShelterOptions) *ShelterService {
	if cache == nil {
		cache = NewProximityCache(nil, 0, 0)
	}
	return &ShelterService{fetcher: fetcher, cache: cache, opts: opts}
}

// ListNear returns the [offset, offset+limit) window of shelters within
// radiusMeters of p, nearest first, each carrying its distance from p.
func (s *ShelterService) ListNear(ctx context.Context, p domain.GeoPoint, radiusMeters, offset, limit int) ([]domain.ShelterView, error) {
	records, ok := s.cache.Get(ctx, p)
	if !ok {
		var err error
		records, err = s.fetchNear(ctx, p, radiusMeters)
		if err != nil {
			if ctx.Err() != nil || !s.opts.FailOpen {
				return nil, err
			}
			logging.FromContext(ctx).Warn("shelter upstream failed, serving empty list",
				"point", p.String(), "error", err)
			metrics.UpstreamFailOpen.Inc()
			records = nil
		}
	}

	// Bucketed entries were sorted for whichever point wrote them.
	if s.cache.Bucketed() {
		records = domain.SortByDistance(p, records)
	}

	page := Paginate(records, offset, limit)
	out := make([]domain.ShelterView, len(page))
	for i, r := range page {
		out[i] = r.WithDistance(p)
	}
	return out, nil
}

// fetchNear loads and caches the sorted list for p. Empty results are not
// cached.
func (s *ShelterService) fetchNear(ctx context.Context, p domain.GeoPoint, radiusMeters int) ([]domain.Shelter, error) {
	v, err := s.do(ctx, s.cache.Key(p), func(ctx context.Context) (any, error) {
		fetched, err := s.fetcher.FetchNear(ctx, p, radiusMeters)
		if err != nil {
			return nil, err
		}
		if len(fetched) == 0 {
			return []domain.Shelter(nil), nil
		}
		sorted := domain.SortByDistance(p, fetched)
		if err := s.cache.Put(ctx, p, sorted, 0, true); err != nil {
			logging.FromContext(ctx).Warn("cache write failed", "point", p.String(), "error", err)
		}
		return sorted, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Shelter), nil
}

// Detail returns one shelter by its upstream id.
func (s *ShelterService) Detail(ctx context.Context, id string) (*domain.Shelter, error) {
	if rec, ok := s.cache.GetOne(ctx, id); ok {
		return rec, nil
	}

	v, err := s.do(ctx, detailKey(id), func(ctx context.Context) (any, error) {
		rec, err := s.fetcher.FetchOne(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := s.cache.PutOne(ctx, id, rec, 0); err != nil {
			logging.FromContext(ctx).Warn("cache write failed", "shelter_id", id, "error", err)
		}
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Shelter), nil
}

// do runs fn detached from the caller's cancellation so an abandoned
// request still fills the cache. With SingleFlight, callers on the same
// key share one call and each may give up on its own context.
func (s *ShelterService) do(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)
	if !s.opts.SingleFlight {
		return fn(detached)
	}

	ch := s.group.DoChan(key, func() (any, error) {
		return fn(detached)
	})
	select {
	case res := <-ch:
		if res.Shared {
			metrics.SharedFetches.Inc()
		}
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
