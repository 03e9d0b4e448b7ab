package domain

import (
	"sort"
	"time"
)

// Shelter is one shelter as reported by the shelter map service, with the
// upstream field names already translated.
type Shelter struct {
	ID            string  `json:"id"`
	Longitude     float64 `json:"longitude"`
	Latitude      float64 `json:"latitude"`
	InventoryType *string `json:"inventory_type"`
	AccessType    *string `json:"access_type"`
	Area          *int    `json:"area"`
	Capacity      *int    `json:"capacity"`
	Quality       *int    `json:"quality"`
	Category      *string `json:"category"`
	Purpose       *string `json:"purpose"`
	Voivodeship   *string `json:"voivodeship"`
	Province      *string `json:"province"`
	Address       *string `json:"address"`
}

// Point returns the shelter location.
func (s Shelter) Point() GeoPoint {
	return GeoPoint{Longitude: s.Longitude, Latitude: s.Latitude}
}

// WithDistance attaches the distance from p.
func (s Shelter) WithDistance(p GeoPoint) ShelterView {
	d := p.DistanceTo(s.Point())
	return ShelterView{Shelter: s, Distance: &d}
}

// ShelterView is the outbound representation; Distance is only set for
// proximity queries.
type ShelterView struct {
	Shelter
	Distance *float64 `json:"distance,omitempty"`
}

// SortByDistance returns a copy of shelters ordered by ascending distance
// from p. Equal distances keep their input order.
func SortByDistance(p GeoPoint, shelters []Shelter) []Shelter {
	type keyed struct {
		s Shelter
		d float64
	}
	tmp := make([]keyed, len(shelters))
	for i, s := range shelters {
		tmp[i] = keyed{s: s, d: p.DistanceTo(s.Point())}
	}
	sort.SliceStable(tmp, func(i, j int) bool { return tmp[i].d < tmp[j].d })

	out := make([]Shelter, len(tmp))
	for i, k := range tmp {
		out[i] = k.s
	}
	return out
}

// Occupancy is the locally tracked load of a shelter.
type Occupancy struct {
	ShelterID int64     `json:"id"`
	Capacity  int       `json:"capacity"`
	Occupancy int       `json:"occupancy"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Free returns the number of free places, never negative.
func (o Occupancy) Free() int {
	if f := o.Capacity - o.Occupancy; f > 0 {
		return f
	}
	return 0
}

// AutocompletePrediction is one place suggestion for a search prefix.
type AutocompletePrediction struct {
	PlaceID     string   `json:"place_id"`
	Description string   `json:"description"`
	Types       []string `json:"types,omitempty"`
}

// PlaceDetails describes a single place.
type PlaceDetails struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	URL              string  `json:"url"`
	FormattedAddress string  `json:"formatted_address"`
	Website          *string `json:"website,omitempty"`
}

// GeocodeResult is one reverse-geocoding candidate.
type GeocodeResult struct {
	PlaceID          string   `json:"place_id"`
	FormattedAddress string   `json:"formatted_address"`
	Types            []string `json:"types,omitempty"`
}

// Photo is a proxied place photo.
type Photo struct {
	ContentType string
	Data        []byte
}
