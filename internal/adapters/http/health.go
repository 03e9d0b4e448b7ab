package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/supercivilian/supercivilian/internal/core/ports"
	"github.com/supercivilian/supercivilian/internal/pkg/metrics"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// HealthHandler returns a basic liveness check.
func HealthHandler() fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": Version,
		})
	}
}

// ReadyHandler checks DB, NATS, and cache connectivity. The database is
// optional: without it only occupancy tracking is unavailable.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string)
		allOK := true

		if deps.DB != nil {
			if err := deps.DB.Ping(ctx); err != nil {
				checks["database"] = "error: " + err.Error()
				allOK = false
			} else {
				checks["database"] = "ok"
			}
			metrics.UpdateDBPoolMetrics(deps.DB.Pool.Stat())
		} else {
			checks["database"] = "not configured"
		}

		if deps.NATS != nil {
			if deps.NATS.IsConnected() {
				checks["nats"] = "ok"
			} else {
				checks["nats"] = "disconnected"
				allOK = false
			}
		} else {
			checks["nats"] = "not configured"
		}

		if deps.Cache != nil {
			_, err := deps.Cache.Get(ctx, "__health_check__")
			if err != nil && !errors.Is(err, ports.ErrCacheMiss) {
				checks["cache"] = "error: " + err.Error()
				allOK = false
			} else {
				checks["cache"] = "ok"
			}
		} else {
			checks["cache"] = "not configured"
		}

		status := "ready"
		code := fiber.StatusOK
		if !allOK {
			status = "not ready"
			code = fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}
