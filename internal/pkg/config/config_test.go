package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		Server:   ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 10},
		Database: DatabaseConfig{Host: "localhost", Port: 5432},
		Cache:    CacheConfig{Backend: "memory", TTL: 3600},
		ArcGIS:   ArcGISConfig{BaseURL: "http://arcgis.test/query", Timeout: 10},
		Google:   GoogleConfig{Timeout: 10},
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SUPERCIVILIAN_CACHE_BACKEND", "memory")

	cfg, err := Load("supercivilian-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Cache.TTL != 3600 {
		t.Errorf("expected ttl 3600, got %d", cfg.Cache.TTL)
	}
	if !cfg.ArcGIS.FailOpen {
		t.Error("expected fail_open to default to true")
	}
	if !cfg.Cache.SingleFlight {
		t.Error("expected single_flight to default to true")
	}
	if cfg.Cache.CellLevel != 0 {
		t.Errorf("expected exact cache keys by default, got cell level %d", cfg.Cache.CellLevel)
	}
	if cfg.ArcGIS.Timeout != 10 {
		t.Errorf("expected 10s upstream timeout, got %d", cfg.ArcGIS.Timeout)
	}
	if cfg.Telemetry.ServiceName != "supercivilian-test" {
		t.Errorf("unexpected service name %q", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SUPERCIVILIAN_CACHE_BACKEND", "none")
	t.Setenv("SUPERCIVILIAN_ARCGIS_FAIL_OPEN", "false")

	cfg, err := Load("supercivilian-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Cache.Backend != "none" {
		t.Errorf("expected backend none, got %s", cfg.Cache.Backend)
	}
	if cfg.ArcGIS.FailOpen {
		t.Error("expected fail_open overridden to false")
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Cache.Backend = "memcached"
	cfg.Cache.CellLevel = 31

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "cache.backend", "cache.cell_level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %s, got %v", want, err)
		}
	}
}

func TestValidate_RemoteBackendNeedsAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Backend = "redis"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for redis without addr")
	}
}
