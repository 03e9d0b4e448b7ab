package http_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
)

// findOpenAPISpec locates the openapi.yaml file by walking up from the test directory.
func findOpenAPISpec(t *testing.T) string {
	dir, _ := os.Getwd()

	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "api", "openapi.yaml")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		dir = filepath.Dir(dir)
	}

	t.Fatalf("could not find api/openapi.yaml")
	return ""
}

func loadSpec(t *testing.T) *openapi3.T {
	t.Helper()
	data, err := os.ReadFile(findOpenAPISpec(t))
	if err != nil {
		t.Fatalf("failed to read openapi.yaml: %v", err)
	}

	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		t.Fatalf("failed to parse OpenAPI spec: %v", err)
	}
	return spec
}

// TestOpenAPISpec validates the OpenAPI document and checks that every
// registered route is described.
func TestOpenAPISpec(t *testing.T) {
	spec := loadSpec(t)

	if err := spec.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI spec validation failed: %v", err)
	}

	expectedPaths := []string{
		"/v1/health",
		"/v1/ready",
		"/shelters",
		"/shelters/{id}",
		"/shelters/{id}/occupancy",
		"/arcgis/shelters",
		"/arcgis/shelters/{id}",
		"/google/search/autocomplete",
		"/google/places/{id}",
		"/google/geocode/reverse",
		"/google/photos/{reference}",
		"/view/shelters/{id}",
		"/graphql",
	}

	for _, path := range expectedPaths {
		if item := spec.Paths.Find(path); item == nil {
			t.Errorf("expected path %s not found in spec", path)
		}
	}

	if op := spec.Paths.Find("/shelters/{id}/occupancy"); op != nil && op.Put == nil {
		t.Error("expected PUT on /shelters/{id}/occupancy")
	}
	if op := spec.Paths.Find("/arcgis/shelters"); op != nil && op.Get != nil && !op.Get.Deprecated {
		t.Error("expected legacy listing to be marked deprecated")
	}

	expectedSchemas := []string{
		"Shelter",
		"ShelterWithDistance",
		"Occupancy",
		"OccupancyUpdate",
		"AutocompletePrediction",
		"PlaceDetails",
		"GeocodeResult",
		"APIError",
		"ErrorResponse",
	}

	for _, schema := range expectedSchemas {
		if spec.Components.Schemas[schema] == nil {
			t.Errorf("expected schema %s not found", schema)
		}
	}

	t.Logf("OpenAPI spec valid: %d paths, %d schemas", len(spec.Paths.Map()), len(spec.Components.Schemas))
}

// TestOpenAPIInfo verifies spec metadata.
func TestOpenAPIInfo(t *testing.T) {
	spec := loadSpec(t)

	if spec.Info.Title != "Supercivilian Shelter API" {
		t.Errorf("expected title 'Supercivilian Shelter API', got %q", spec.Info.Title)
	}
	if spec.Info.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %q", spec.Info.Version)
	}
	if spec.Info.Description == "" {
		t.Error("expected non-empty description")
	}
	if len(spec.Servers) == 0 {
		t.Fatal("expected at least one server")
	}

	t.Logf("OpenAPI Info: %s v%s @ %s", spec.Info.Title, spec.Info.Version, spec.Servers[0].URL)
}
