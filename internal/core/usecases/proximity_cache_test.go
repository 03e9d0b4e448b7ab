package usecases_test

import (
	"context"
	"strings"
	"testing"

	"github.com/supercivilian/supercivilian/internal/core/domain"
	"github.com/supercivilian/supercivilian/internal/core/usecases"
)

func TestProximityCache_Key(t *testing.T) {
	c := usecases.NewProximityCache(newMockCache(), 0, 0)

	if got := c.Key(origin); got != "shelters:20,50" {
		t.Errorf("unexpected key %q", got)
	}
	p := domain.GeoPoint{Longitude: 21.012229, Latitude: 52.2296756}
	if got := c.Key(p); got != "shelters:21.012229,52.2296756" {
		t.Errorf("expected unrounded key, got %q", got)
	}
	q := domain.GeoPoint{Longitude: 21.0122291, Latitude: 52.2296756}
	if c.Key(p) == c.Key(q) {
		t.Error("distinct coordinates must not share a key")
	}
}

func TestProximityCache_BucketedKey(t *testing.T) {
	c := usecases.NewProximityCache(newMockCache(), 0, 13)

	a := c.Key(domain.GeoPoint{Longitude: 21.0122, Latitude: 52.2297})
	b := c.Key(domain.GeoPoint{Longitude: 21.0123, Latitude: 52.2298})
	if !strings.HasPrefix(a, "shelters:cell:") {
		t.Errorf("unexpected key %q", a)
	}
	if a != b {
		t.Errorf("expected nearby points to share a cell, got %q and %q", a, b)
	}
}

func TestProximityCache_PutSortsUnlessPresorted(t *testing.T) {
	ctx := context.Background()
	store := newMockCache()
	c := usecases.NewProximityCache(store, 0, 0)

	records := []domain.Shelter{
		northOf(origin, "far", 500),
		northOf(origin, "near", 100),
	}

	if err := c.Put(ctx, origin, records, 0, false); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok := c.Get(ctx, origin)
	if !ok {
		t.Fatal("expected hit")
	}
	if got[0].ID != "near" || got[1].ID != "far" {
		t.Errorf("expected sorted list, got %s, %s", got[0].ID, got[1].ID)
	}
	if ttl := store.ttl("shelters:20,50"); ttl != usecases.DefaultShelterTTL {
		t.Errorf("expected default ttl, got %d", ttl)
	}

	if err := c.Put(ctx, origin, records, 60, true); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, _ = c.Get(ctx, origin)
	if got[0].ID != "far" {
		t.Errorf("presorted input must be stored as given, got %s first", got[0].ID)
	}
	if ttl := store.ttl("shelters:20,50"); ttl != 60 {
		t.Errorf("expected ttl 60, got %d", ttl)
	}
}

func TestProximityCache_Detail(t *testing.T) {
	ctx := context.Background()
	c := usecases.NewProximityCache(newMockCache(), 0, 0)

	if _, ok := c.GetOne(ctx, "7"); ok {
		t.Fatal("expected miss")
	}
	addr := "ul. Prosta 1"
	if err := c.PutOne(ctx, "7", &domain.Shelter{ID: "7", Address: &addr}, 0); err != nil {
		t.Fatalf("put one: %v", err)
	}
	got, ok := c.GetOne(ctx, "7")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.Address == nil || *got.Address != addr {
		t.Errorf("unexpected record %+v", got)
	}
	if _, ok := c.Get(ctx, origin); ok {
		t.Error("detail and list keyspaces must be independent")
	}
}

func TestProximityCache_NilStoreAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	c := usecases.NewProximityCache(nil, 0, 0)

	if err := c.Put(ctx, origin, []domain.Shelter{northOf(origin, "a", 10)}, 0, false); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, ok := c.Get(ctx, origin); ok {
		t.Error("expected miss without a store")
	}
}
