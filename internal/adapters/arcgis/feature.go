package arcgis

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/supercivilian/supercivilian/internal/core/domain"
)

// Upstream attribute names. The layer was published from a Polish CSV with
// column names truncated to ten characters.
const (
	fieldObjectID      = "ObjectID"
	fieldObjectID2     = "ObjectId2"
	fieldX             = "x"
	fieldY             = "y"
	fieldInventoryType = "Rodzaj_inw"
	fieldAccessType    = "Możliwoś"
	fieldArea          = "Powierzchn"
	fieldCapacity      = "Pojemnoś_"
	fieldQuality       = "Subiektywn"
	fieldCategory      = "Rodzaj_obi"
	fieldPurpose       = "Przeznacze"
	fieldVoivodeship   = "Województ"
	fieldProvince      = "Powiat"
	fieldAddress       = "Adres"
)

type feature struct {
	Attributes map[string]any `json:"attributes"`
	Geometry   *struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	} `json:"geometry"`
}

func (f feature) toShelter() (domain.Shelter, error) {
	a := f.Attributes

	id, ok := idAttr(a, fieldObjectID)
	if !ok {
		id, ok = idAttr(a, fieldObjectID2)
	}
	if !ok {
		return domain.Shelter{}, fmt.Errorf("%w: %s", errMissingField, fieldObjectID)
	}

	lon, okX := floatAttr(a, fieldX)
	lat, okY := floatAttr(a, fieldY)
	if (!okX || !okY) && f.Geometry != nil && f.Geometry.X != nil && f.Geometry.Y != nil {
		lon, lat = *f.Geometry.X, *f.Geometry.Y
		okX, okY = true, true
	}
	if !okX || !okY {
		return domain.Shelter{}, fmt.Errorf("%w: coordinates of %s", errMissingField, id)
	}

	return domain.Shelter{
		ID:            id,
		Longitude:     lon,
		Latitude:      lat,
		InventoryType: stringAttr(a, fieldInventoryType),
		AccessType:    stringAttr(a, fieldAccessType),
		Area:          intAttr(a, fieldArea),
		Capacity:      intAttr(a, fieldCapacity),
		Quality:       intAttr(a, fieldQuality),
		Category:      stringAttr(a, fieldCategory),
		Purpose:       stringAttr(a, fieldPurpose),
		Voivodeship:   stringAttr(a, fieldVoivodeship),
		Province:      stringAttr(a, fieldProvince),
		Address:       stringAttr(a, fieldAddress),
	}, nil
}

func idAttr(a map[string]any, key string) (string, bool) {
	switch v := a[key].(type) {
	case json.Number:
		return v.String(), true
	case string:
		if v != "" {
			return v, true
		}
	}
	return "", false
}

func floatAttr(a map[string]any, key string) (float64, bool) {
	switch v := a[key].(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

func intAttr(a map[string]any, key string) *int {
	f, ok := floatAttr(a, key)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	n := int(math.Round(f))
	return &n
}

func stringAttr(a map[string]any, key string) *string {
	switch v := a[key].(type) {
	case string:
		return &v
	case json.Number:
		s := v.String()
		return &s
	}
	return nil
}

func traceErr(err error) trace.EventOption {
	return trace.WithAttributes(attribute.String("error", err.Error()))
}
