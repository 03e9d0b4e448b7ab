package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/supercivilian/supercivilian/internal/core/domain"
	"github.com/supercivilian/supercivilian/internal/core/ports"
	"github.com/supercivilian/supercivilian/internal/pkg/config"
)

func TestOpenCache_None(t *testing.T) {
	cache, closeFn, err := OpenCache(context.Background(), config.CacheConfig{Backend: "none"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeFn()
	if cache != nil {
		t.Fatalf("expected nil cache, got %T", cache)
	}
}

func TestOpenCache_Memory(t *testing.T) {
	ctx := context.Background()
	cache, closeFn, err := OpenCache(ctx, config.CacheConfig{Backend: "memory"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeFn()

	if _, err := cache.Get(ctx, "k"); !errors.Is(err, ports.ErrCacheMiss) {
		t.Fatalf("expected miss, got %v", err)
	}
	if err := cache.Set(ctx, "k", []byte("v"), 60); err != nil {
		t.Fatal(err)
	}
	if v, err := cache.Get(ctx, "k"); err != nil || string(v) != "v" {
		t.Fatalf("expected v, got %q (%v)", v, err)
	}
}

func TestOpenCache_Unknown(t *testing.T) {
	_, closeFn, err := OpenCache(context.Background(), config.CacheConfig{Backend: "memcached"})
	if err == nil {
		t.Fatal("expected error")
	}
	closeFn()
}

func TestShelterService_NoCacheFailOpen(t *testing.T) {
	cfg := &config.Config{
		ArcGIS: config.ArcGISConfig{BaseURL: "http://127.0.0.1:1/query", Timeout: 1, FailOpen: true},
		Cache:  config.CacheConfig{TTL: 3600},
	}
	svc := ShelterService(cfg, nil)

	got, err := svc.ListNear(context.Background(), domain.GeoPoint{Longitude: 21, Latitude: 52}, 1000, 0, 10)
	if err != nil {
		t.Fatalf("fail-open listing returned error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty list, got %d", len(got))
	}
}
