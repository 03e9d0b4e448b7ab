package http

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/supercivilian/supercivilian/internal/pkg/logging"
)

// RequestIDLogMiddleware puts a request-scoped *slog.Logger carrying the
// Fiber request ID into the user context, where services read it with
// logging.FromContext.
func RequestIDLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid, _ := c.Locals("requestid").(string)
		if rid == "" {
			return c.Next()
		}

		reqLogger := slog.Default().With("request_id", rid)
		c.SetUserContext(logging.WithLogger(c.UserContext(), reqLogger))

		return c.Next()
	}
}
