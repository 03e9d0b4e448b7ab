// Package bootstrap wires configuration into adapters and services shared
// by the API server and the warm-up worker.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/supercivilian/supercivilian/internal/adapters/arcgis"
	"github.com/supercivilian/supercivilian/internal/adapters/google"
	"github.com/supercivilian/supercivilian/internal/adapters/memory"
	"github.com/supercivilian/supercivilian/internal/adapters/redis"
	"github.com/supercivilian/supercivilian/internal/adapters/valkey"
	"github.com/supercivilian/supercivilian/internal/core/ports"
	"github.com/supercivilian/supercivilian/internal/core/usecases"
	"github.com/supercivilian/supercivilian/internal/pkg/config"
)

// memorySweepInterval is how often the in-process cache drops expired keys.
const memorySweepInterval = time.Minute

// OpenCache returns the configured cache backend and a function releasing
// it. Backend "none" yields a nil cache, which every consumer treats as a
// permanent miss.
func OpenCache(ctx context.Context, cfg config.CacheConfig) (ports.CacheService, func(), error) {
	noop := func() {}

	switch cfg.Backend {
	case "none", "":
		return nil, noop, nil
	case "memory":
		c := memory.New(memorySweepInterval)
		return c, c.Close, nil
	case "valkey":
		c, err := valkey.New(cfg.Addr, cfg.Password, cfg.DB)
		if err != nil {
			return nil, noop, err
		}
		return c, c.Close, nil
	case "redis":
		c, err := redis.New(ctx, cfg.Addr, cfg.Password, cfg.DB)
		if err != nil {
			return nil, noop, err
		}
		return c, c.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}

// ShelterService builds the shelter resolver over the shelter map service.
func ShelterService(cfg *config.Config, cache ports.CacheService) *usecases.ShelterService {
	fetcher := arcgis.New(cfg.ArcGIS.BaseURL, time.Duration(cfg.ArcGIS.Timeout)*time.Second)
	proximity := usecases.NewProximityCache(cache, cfg.Cache.TTL, cfg.Cache.CellLevel)
	return usecases.NewShelterService(fetcher, proximity, usecases.ShelterOptions{
		FailOpen:     cfg.ArcGIS.FailOpen,
		SingleFlight: cfg.Cache.SingleFlight,
	})
}

// PlacesService builds the places proxy.
func PlacesService(cfg *config.Config, cache ports.CacheService) *usecases.PlacesService {
	client := google.New(google.Config{
		APIKey:     cfg.Google.APIKey,
		PlacesURL:  cfg.Google.PlacesURL,
		GeocodeURL: cfg.Google.GeocodeURL,
		Language:   cfg.Google.Language,
		Components: cfg.Google.Components,
		Timeout:    time.Duration(cfg.Google.Timeout) * time.Second,
	})
	return usecases.NewPlacesService(client, cache)
}
