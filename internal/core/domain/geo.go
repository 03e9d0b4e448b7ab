package domain

import (
	"strconv"

	"github.com/supercivilian/supercivilian/internal/pkg/geospatial"
)

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// String renders the point as "lon,lat" without rounding.
func (p GeoPoint) String() string {
	return strconv.FormatFloat(p.Longitude, 'f', -1, 64) + "," + strconv.FormatFloat(p.Latitude, 'f', -1, 64)
}

// DistanceTo returns the ellipsoidal geodesic distance to o in meters.
func (p GeoPoint) DistanceTo(o GeoPoint) float64 {
	return geospatial.Geodesic(p.Latitude, p.Longitude, o.Latitude, o.Longitude)
}

// Valid reports whether both coordinates are within their ranges.
func (p GeoPoint) Valid() bool {
	return p.Longitude >= -180 && p.Longitude <= 180 &&
		p.Latitude >= -90 && p.Latitude <= 90
}
