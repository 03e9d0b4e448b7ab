package http

import (
	"github.com/nats-io/nats.go"

	"github.com/supercivilian/supercivilian/internal/adapters/postgres"
	"github.com/supercivilian/supercivilian/internal/core/ports"
	"github.com/supercivilian/supercivilian/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Shelters  *usecases.ShelterService
	Places    *usecases.PlacesService
	Occupancy *usecases.OccupancyService
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     ports.CacheService
	// JWTSecret signs staff tokens. Empty disables occupancy updates.
	JWTSecret []byte
	// DocsPath is the OpenAPI document served under /docs.
	DocsPath string
}
