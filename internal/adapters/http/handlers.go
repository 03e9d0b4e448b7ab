package http

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/supercivilian/supercivilian/internal/core/domain"
	"github.com/supercivilian/supercivilian/internal/core/usecases"
)

const (
	defaultLimit = 10
	defaultRange = 30 * 1000

	msgShelterNotFound    = "Shelter not found"
	msgShelterUnavailable = "Shelter service unavailable"
)

// ListSheltersHandler returns shelters within range of a point, nearest
// first, each with its distance in meters.
func ListSheltersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := queryParams(c)
		lon := q.requiredFloat("longitude")
		lat := q.requiredFloat("latitude")
		offset := q.integer("offset", 0)
		limit := q.integer("limit", defaultLimit)
		rng := q.integer("range", defaultRange)
		if q.err != nil {
			return errBadRequest(c, q.err.Error())
		}
		if rng > usecases.MaxRangeMeters {
			return errBadRequest(c, "Range must be less than 1000km")
		}
		if rng < 0 {
			return errBadRequest(c, "Range must not be negative")
		}

		point := domain.GeoPoint{Longitude: lon, Latitude: lat}
		shelters, err := deps.Shelters.ListNear(c.UserContext(), point, rng, offset, limit)
		if err != nil {
			if errors.Is(err, domain.ErrUpstreamUnavailable) {
				return errBadGateway(c, msgShelterUnavailable)
			}
			return errFromDomain(c, err, msgShelterNotFound)
		}

		SetLinkHeaders(c, Pagination{Offset: offset, Limit: limit, Returned: len(shelters)})
		c.Set("Cache-Control", "public, max-age=300")
		return ok(c, shelters)
	}
}

// GetShelterHandler returns a single shelter by its upstream id.
func GetShelterHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errNotFound(c, msgShelterNotFound)
		}

		shelter, err := deps.Shelters.Detail(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, domain.ErrUpstreamUnavailable) {
				return errInternal(c, msgShelterUnavailable)
			}
			return errFromDomain(c, err, msgShelterNotFound)
		}

		c.Set("Cache-Control", "public, max-age=600")
		return ok(c, shelter)
	}
}

// occupancyView is the API representation of domain.Occupancy.
type occupancyView struct {
	ID        int64     `json:"id"`
	Capacity  int       `json:"capacity"`
	Occupancy int       `json:"occupancy"`
	Free      int       `json:"free"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newOccupancyView(o *domain.Occupancy) occupancyView {
	return occupancyView{
		ID:        o.ShelterID,
		Capacity:  o.Capacity,
		Occupancy: o.Occupancy,
		Free:      o.Free(),
		UpdatedAt: o.UpdatedAt,
	}
}

func shelterID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	return id, err == nil
}

// GetOccupancyHandler returns the locally tracked occupancy of a shelter.
func GetOccupancyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Occupancy == nil {
			return newError(c, 503, "unavailable", "Occupancy tracking unavailable")
		}
		id, valid := shelterID(c)
		if !valid {
			return errNotFound(c, msgShelterNotFound)
		}

		occ, err := deps.Occupancy.Get(c.UserContext(), id)
		if err != nil {
			return errFromDomain(c, err, msgShelterNotFound)
		}

		c.Set("Cache-Control", "no-cache")
		return ok(c, newOccupancyView(occ))
	}
}

type occupancyRequest struct {
	Capacity  *int `json:"capacity"`
	Occupancy *int `json:"occupancy"`
}

// UpdateOccupancyHandler stores new occupancy figures. Staff only.
func UpdateOccupancyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Occupancy == nil {
			return newError(c, 503, "unavailable", "Occupancy tracking unavailable")
		}
		id, valid := shelterID(c)
		if !valid {
			return errNotFound(c, msgShelterNotFound)
		}

		var req occupancyRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Capacity == nil || req.Occupancy == nil {
			return errBadRequest(c, "capacity and occupancy are required")
		}

		occ, err := deps.Occupancy.Update(c.UserContext(), id, *req.Capacity, *req.Occupancy)
		if err != nil {
			return errFromDomain(c, err, msgShelterNotFound)
		}
		return ok(c, newOccupancyView(occ))
	}
}

// AutocompleteHandler proxies place autocompletion.
func AutocompleteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := strings.TrimSpace(c.Query("query"))
		if query == "" {
			return errBadRequest(c, "Query parameter is required")
		}

		predictions, err := deps.Places.Autocomplete(c.UserContext(), query)
		if err != nil {
			return errFromDomain(c, err, "No places match the query")
		}

		c.Set("Cache-Control", "public, max-age=900")
		return ok(c, predictions)
	}
}

// PlaceDetailsHandler proxies place details.
func PlaceDetailsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		details, err := deps.Places.Details(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err, "Place not found")
		}

		c.Set("Cache-Control", "public, max-age=3600")
		return ok(c, details)
	}
}

// ReverseGeocodeHandler proxies reverse geocoding of a point.
func ReverseGeocodeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := queryParams(c)
		lon := q.requiredFloat("longitude")
		lat := q.requiredFloat("latitude")
		if q.err != nil {
			return errBadRequest(c, q.err.Error())
		}

		results, err := deps.Places.ReverseGeocode(c.UserContext(), domain.GeoPoint{Longitude: lon, Latitude: lat})
		if err != nil {
			return errFromDomain(c, err, "No address found for the point")
		}

		c.Set("Cache-Control", "public, max-age=900")
		return ok(c, results)
	}
}

// PlacePhotoHandler streams a place photo.
func PlacePhotoHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := queryParams(c)
		maxWidth := q.integer("maxwidth", 400)
		if q.err != nil {
			return errBadRequest(c, q.err.Error())
		}

		photo, err := deps.Places.Photo(c.UserContext(), c.Params("reference"), maxWidth)
		if err != nil {
			return errFromDomain(c, err, "Photo not found")
		}

		c.Set(fiber.HeaderContentType, photo.ContentType)
		c.Set("Cache-Control", "public, max-age=86400")
		return c.Send(photo.Data)
	}
}
