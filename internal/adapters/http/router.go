package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/supercivilian/supercivilian/internal/pkg/metrics"
)

const handlerTimeout = 15 * time.Second

// ErrorHandler renders errors that escaped the handlers (unknown routes,
// panics turned into errors, timeouts) in the response envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}

	switch code {
	case fiber.StatusNotFound:
		return newError(c, code, "not_found", msg)
	case fiber.StatusRequestTimeout:
		return newError(c, code, "timeout", "Request timed out")
	case fiber.StatusUpgradeRequired:
		return newError(c, code, "upgrade_required", msg)
	}
	if code < 500 {
		return newError(c, code, "bad_request", msg)
	}
	return errInternal(c, msg)
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())
	app.Use(DeprecationMiddleware(legacyRoutes))

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler())
	app.Get("/v1/ready", ReadyHandler(deps))

	// Shelters, 15s per-request timeout
	listShelters := timeout.NewWithContext(ListSheltersHandler(deps), handlerTimeout)
	getShelter := timeout.NewWithContext(GetShelterHandler(deps), handlerTimeout)

	app.Get("/shelters", listShelters)
	app.Get("/shelters/:id", getShelter)
	app.Get("/shelters/:id/occupancy", timeout.NewWithContext(GetOccupancyHandler(deps), handlerTimeout))
	app.Put("/shelters/:id/occupancy",
		StaffAuthMiddleware(deps.JWTSecret),
		timeout.NewWithContext(UpdateOccupancyHandler(deps), handlerTimeout))

	// Legacy layout
	app.Get("/arcgis/shelters", listShelters)
	app.Get("/arcgis/shelters/:id", getShelter)

	// Places proxy
	google := app.Group("/google")
	google.Get("/search/autocomplete", timeout.NewWithContext(AutocompleteHandler(deps), handlerTimeout))
	google.Get("/places/:id", timeout.NewWithContext(PlaceDetailsHandler(deps), handlerTimeout))
	google.Get("/geocode/reverse", timeout.NewWithContext(ReverseGeocodeHandler(deps), handlerTimeout))
	google.Get("/photos/:reference", timeout.NewWithContext(PlacePhotoHandler(deps), handlerTimeout))

	// Server-rendered page
	app.Get("/view/shelters/:id", timeout.NewWithContext(ShelterPageHandler(deps), handlerTimeout))

	// GraphQL
	app.Post("/graphql", timeout.NewWithContext(GraphQLHandler(deps), handlerTimeout))

	// API documentation (Swagger UI)
	SetupDocs(app, deps.DocsPath)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
