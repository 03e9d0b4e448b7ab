package arcgis

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/supercivilian/supercivilian/internal/core/domain"
)

const sampleFeatures = `{
  "objectIdFieldName": "ObjectId2",
  "features": [
    {
      "attributes": {
        "ObjectID": 101,
        "Rodzaj_inw": "Schron",
        "Możliwoś": "Samochodem",
        "Powierzchn": 120,
        "Pojemnoś_": 80,
        "Subiektywn": 3,
        "Rodzaj_obi": "Budynek mieszkalny",
        "Przeznacze": null,
        "Województ": "małopolskie",
        "Powiat": "Kraków",
        "Adres": "ul. Długa 1",
        "x": 19.9449799,
        "y": 50.0646501,
        "ObjectId2": 7
      },
      "geometry": {"x": 19.94498, "y": 50.06465}
    },
    {
      "attributes": {"ObjectId2": 8, "Adres": "ul. Krótka 2"},
      "geometry": {"x": 19.95, "y": 50.07}
    },
    {
      "attributes": {"Adres": "no id"},
      "geometry": {"x": 19.95, "y": 50.07}
    }
  ]
}`

func TestClient_FetchNear(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		want := map[string]string{
			"where":          "1=1",
			"geometryType":   "esriGeometryPoint",
			"spatialRel":     "esriSpatialRelIntersects",
			"geometry":       "19.94,50.06",
			"inSR":           "4326",
			"distance":       "30000",
			"units":          "esriSRUnit_Meter",
			"outFields":      "*",
			"returnGeometry": "true",
			"orderByFields":  "ObjectID ASC",
			"f":              "pjson",
		}
		for k, v := range want {
			if got := q.Get(k); got != v {
				t.Errorf("param %s = %q, want %q", k, got, v)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleFeatures))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	shelters, err := c.FetchNear(context.Background(), domain.GeoPoint{Longitude: 19.94, Latitude: 50.06}, 30000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shelters) != 2 {
		t.Fatalf("expected 2 shelters (feature without id skipped), got %d", len(shelters))
	}

	s := shelters[0]
	if s.ID != "101" {
		t.Errorf("expected id 101, got %s", s.ID)
	}
	if s.Longitude != 19.9449799 || s.Latitude != 50.0646501 {
		t.Errorf("expected attribute coordinates, got %v,%v", s.Longitude, s.Latitude)
	}
	if s.AccessType == nil || *s.AccessType != "Samochodem" {
		t.Errorf("unexpected access_type %v", s.AccessType)
	}
	if s.Capacity == nil || *s.Capacity != 80 {
		t.Errorf("unexpected capacity %v", s.Capacity)
	}
	if s.Voivodeship == nil || *s.Voivodeship != "małopolskie" {
		t.Errorf("unexpected voivodeship %v", s.Voivodeship)
	}
	if s.Purpose != nil {
		t.Errorf("expected null purpose, got %q", *s.Purpose)
	}

	fallback := shelters[1]
	if fallback.ID != "8" {
		t.Errorf("expected ObjectId2 fallback id 8, got %s", fallback.ID)
	}
	if fallback.Longitude != 19.95 || fallback.Latitude != 50.07 {
		t.Errorf("expected geometry fallback, got %v,%v", fallback.Longitude, fallback.Latitude)
	}
	if fallback.Capacity != nil {
		t.Error("expected missing capacity to stay nil")
	}
}

func TestClient_FetchNear_UpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{"error body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error":{"code":400,"message":"Invalid query"}}`))
		}},
		{"not json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>maintenance</html>`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := New(srv.URL, time.Second).FetchNear(context.Background(), domain.GeoPoint{Longitude: 20, Latitude: 50}, 1000)
			if !errors.Is(err, domain.ErrUpstreamUnavailable) {
				t.Errorf("expected ErrUpstreamUnavailable, got %v", err)
			}
		})
	}
}

func TestClient_FetchNear_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"features":[]}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, 20*time.Millisecond).FetchNear(context.Background(), domain.GeoPoint{Longitude: 20, Latitude: 50}, 1000)
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Errorf("expected ErrUpstreamUnavailable on timeout, got %v", err)
	}
}

func TestClient_FetchOne(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("where"); got != "ObjectID = 101" {
			t.Errorf("unexpected where %q", got)
		}
		_, _ = w.Write([]byte(sampleFeatures))
	}))
	defer srv.Close()

	s, err := New(srv.URL, time.Second).FetchOne(context.Background(), "101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ID != "101" {
		t.Errorf("expected first feature, got %s", s.ID)
	}
}

func TestClient_FetchOne_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"features":[]}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).FetchOne(context.Background(), "42")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_FetchOne_NonIntegerID(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).FetchOne(context.Background(), "1 OR 1=1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if called {
		t.Error("non-integer id must not reach the upstream")
	}
}
