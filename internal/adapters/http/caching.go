package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses that the
// handler left without one.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if c.Response().StatusCode() >= 400 {
			c.Set("Cache-Control", "no-store")
			return err
		}
		if existing := c.GetRespHeader("Cache-Control"); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics":
			ttl = "no-cache"

		case strings.HasPrefix(path, "/docs"):
			ttl = "public, max-age=3600"

		case strings.HasSuffix(path, "/occupancy"):
			ttl = "no-cache" // changes whenever staff update it

		case strings.HasPrefix(path, "/view/"):
			ttl = "public, max-age=300"

		case strings.HasPrefix(path, "/shelters"), strings.HasPrefix(path, "/arcgis/"),
			strings.HasPrefix(path, "/google/"):
			ttl = "public, max-age=300"
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}
