package geospatial

import (
	"github.com/golang/geo/s2"
	"github.com/tidwall/geodesic"
)

// Geodesic returns the distance in meters between two points on the WGS84
// ellipsoid.
func Geodesic(lat1, lon1, lat2, lon2 float64) float64 {
	var meters float64
	geodesic.WGS84.Inverse(lat1, lon1, lat2, lon2, &meters, nil, nil)
	return meters
}

// CellToken returns the S2 cell token containing the point at the given
// level (0-30). Nearby points share a token.
func CellToken(lat, lon float64, level int) string {
	if level < 0 {
		level = 0
	}
	if level > s2.MaxLevel {
		level = s2.MaxLevel
	}
	id := s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lon))
	return id.Parent(level).ToToken()
}
