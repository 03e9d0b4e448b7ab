package usecases

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/supercivilian/supercivilian/internal/core/domain"
	"github.com/supercivilian/supercivilian/internal/core/ports"
	"github.com/supercivilian/supercivilian/internal/pkg/geospatial"
	"github.com/supercivilian/supercivilian/internal/pkg/logging"
	"github.com/supercivilian/supercivilian/internal/pkg/metrics"
)

// DefaultShelterTTL is how long shelter lists and details stay cached.
const DefaultShelterTTL = 60 * 60

// ProximityCache stores shelter lists keyed by query point and single
// shelters keyed by id. A nil store misses on every lookup.
type ProximityCache struct {
	store     ports.CacheService
	ttl       int
	cellLevel int
}

// NewProximityCache creates a ProximityCache. ttlSeconds <= 0 selects
// DefaultShelterTTL. cellLevel > 0 keys lists by the S2 cell of that level
// instead of the exact coordinates.
func NewProximityCache(store ports.CacheService, ttlSeconds, cellLevel int) *ProximityCache {
	if ttlSeconds <= 0 {
		ttlSeconds = DefaultShelterTTL
	}
	if cellLevel < 0 {
		cellLevel = 0
	}
	return &ProximityCache{store: store, ttl: ttlSeconds, cellLevel: cellLevel}
}

// Bucketed reports whether nearby points share list entries.
func (c *ProximityCache) Bucketed() bool {
	return c.cellLevel > 0
}

// Key returns the list key for p.
func (c *ProximityCache) Key(p domain.GeoPoint) string {
	if c.Bucketed() {
		return "shelters:cell:" + geospatial.CellToken(p.Latitude, p.Longitude, c.cellLevel)
	}
	return "shelters:" + p.String()
}

func detailKey(id string) string {
	return "shelter:" + id
}

// Get returns the cached list for p. Lists are ordered by distance from
// the point that wrote them.
func (c *ProximityCache) Get(ctx context.Context, p domain.GeoPoint) ([]domain.Shelter, bool) {
	var out []domain.Shelter
	if !c.load(ctx, "shelters_near", c.Key(p), &out) {
		return nil, false
	}
	return out, true
}

// Put stores records under p's key, sorting them by distance from p first
// unless presorted is set.
func (c *ProximityCache) Put(ctx context.Context, p domain.GeoPoint, records []domain.Shelter, ttlSeconds int, presorted bool) error {
	if c.store == nil {
		return nil
	}
	if !presorted {
		records = domain.SortByDistance(p, records)
	}
	return c.save(ctx, c.Key(p), records, ttlSeconds)
}

// GetOne returns the cached detail record for id.
func (c *ProximityCache) GetOne(ctx context.Context, id string) (*domain.Shelter, bool) {
	var out domain.Shelter
	if !c.load(ctx, "shelter_detail", detailKey(id), &out) {
		return nil, false
	}
	return &out, true
}

// PutOne stores a single shelter for detail lookups.
func (c *ProximityCache) PutOne(ctx context.Context, id string, record *domain.Shelter, ttlSeconds int) error {
	if c.store == nil || record == nil {
		return nil
	}
	return c.save(ctx, detailKey(id), record, ttlSeconds)
}

func (c *ProximityCache) load(ctx context.Context, op, key string, dst any) bool {
	if c.store == nil {
		metrics.CacheMisses.WithLabelValues(op).Inc()
		return false
	}
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ports.ErrCacheMiss) {
			logging.FromContext(ctx).Warn("cache read failed", "key", key, "error", err)
		}
		metrics.CacheMisses.WithLabelValues(op).Inc()
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		logging.FromContext(ctx).Warn("discarding undecodable cache entry", "key", key, "error", err)
		metrics.CacheMisses.WithLabelValues(op).Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues(op).Inc()
	return true
}

func (c *ProximityCache) save(ctx context.Context, key string, v any, ttlSeconds int) error {
	if ttlSeconds <= 0 {
		ttlSeconds = c.ttl
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, key, data, ttlSeconds)
}
