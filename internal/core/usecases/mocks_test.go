package usecases_test

import (
	"context"
	"sync"

	"github.com/supercivilian/supercivilian/internal/core/domain"
	"github.com/supercivilian/supercivilian/internal/core/ports"
)

// --- Mock ShelterFetcher ---

type mockFetcher struct {
	fetchNearFn func(ctx context.Context, p domain.GeoPoint, radius int) ([]domain.Shelter, error)
	fetchOneFn  func(ctx context.Context, id string) (*domain.Shelter, error)

	mu        sync.Mutex
	nearCalls int
	oneCalls  int
}

func (m *mockFetcher) FetchNear(ctx context.Context, p domain.GeoPoint, radius int) ([]domain.Shelter, error) {
	m.mu.Lock()
	m.nearCalls++
	m.mu.Unlock()
	if m.fetchNearFn != nil {
		return m.fetchNearFn(ctx, p, radius)
	}
	return nil, nil
}

func (m *mockFetcher) FetchOne(ctx context.Context, id string) (*domain.Shelter, error) {
	m.mu.Lock()
	m.oneCalls++
	m.mu.Unlock()
	if m.fetchOneFn != nil {
		return m.fetchOneFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockFetcher) calls() (near, one int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nearCalls, m.oneCalls
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]int
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}, ttls: map[string]int{}}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ports.ErrCacheMiss
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttlSeconds
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *mockCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

func (m *mockCache) ttl(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ttls[key]
}

// --- Fixtures ---

// origin is the query point used throughout: longitude 20, latitude 50.
var origin = domain.GeoPoint{Longitude: 20.0, Latitude: 50.0}

// northOf returns a shelter roughly meters north of p. One degree of
// latitude near 50°N is about 111.2 km.
func northOf(p domain.GeoPoint, id string, meters float64) domain.Shelter {
	return domain.Shelter{
		ID:        id,
		Longitude: p.Longitude,
		Latitude:  p.Latitude + meters/111_229.0,
	}
}

func ids(views []domain.ShelterView) []string {
	out := make([]string, len(views))
	for i, v := range views {
		out[i] = v.ID
	}
	return out
}
