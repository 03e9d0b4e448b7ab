package geospatial

import (
	"math"
	"testing"
)

func TestGeodesic_KnownDistance(t *testing.T) {
	// Warsaw (Palace of Culture) to Kraków (Main Square), ~252 km.
	d := Geodesic(52.2318, 21.0060, 50.0617, 19.9373)
	if d < 250_000 || d > 255_000 {
		t.Errorf("expected ~252km, got %.0fm", d)
	}
}

func TestGeodesic_SamePoint(t *testing.T) {
	if d := Geodesic(50, 20, 50, 20); d != 0 {
		t.Errorf("expected 0, got %f", d)
	}
}

func TestGeodesic_Symmetric(t *testing.T) {
	a := Geodesic(50.0, 20.0, 50.01, 20.02)
	b := Geodesic(50.01, 20.02, 50.0, 20.0)
	if math.Abs(a-b) > 1e-6 {
		t.Errorf("expected symmetric distance, got %f vs %f", a, b)
	}
}

func TestCellToken_NearbyPointsShareCell(t *testing.T) {
	a := CellToken(50.06170, 19.93730, 13)
	b := CellToken(50.06171, 19.93731, 13)
	if a != b {
		t.Errorf("expected same token, got %s and %s", a, b)
	}
	if far := CellToken(52.2318, 21.0060, 13); far == a {
		t.Errorf("expected different token for distant point")
	}
}

func TestCellToken_ClampsLevel(t *testing.T) {
	if CellToken(50, 20, 99) != CellToken(50, 20, 30) {
		t.Error("expected level to clamp to 30")
	}
}
