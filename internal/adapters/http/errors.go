package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/supercivilian/supercivilian/internal/core/domain"
	"github.com/supercivilian/supercivilian/internal/pkg/logging"
)

// APIError is the body of the "error" member of a failed response.
type APIError struct {
	Code      string `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse is the envelope of every failed API response.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

// SuccessResponse is the envelope of every successful API response.
type SuccessResponse struct {
	Success bool `json:"success"`
	Payload any  `json:"payload"`
}

// ok writes a 200 success envelope.
func ok(c *fiber.Ctx, payload any) error {
	return c.JSON(SuccessResponse{Success: true, Payload: payload})
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(ErrorResponse{
		Success: false,
		Error: APIError{
			Code:      code,
			Message:   message,
			RequestID: reqID,
		},
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errBadGateway returns a 502 error.
func errBadGateway(c *fiber.Ctx, msg string) error {
	return newError(c, 502, "bad_gateway", msg)
}

// errUnauthorized returns a 401 error.
func errUnauthorized(c *fiber.Ctx, msg string) error {
	return newError(c, 401, "unauthorized", msg)
}

// errForbidden returns a 403 error.
func errForbidden(c *fiber.Ctx, msg string) error {
	return newError(c, 403, "forbidden", msg)
}

// errFromDomain maps a service error onto a response. notFound is the
// message used for domain.ErrNotFound and domain.ErrZeroResults.
func errFromDomain(c *fiber.Ctx, err error, notFound string) error {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrZeroResults):
		return errNotFound(c, notFound)
	case errors.Is(err, domain.ErrInvalidArgument):
		return errBadRequest(c, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return newError(c, 408, "timeout", "Request timed out")
	}
	logging.FromContext(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
	return errInternal(c, "Internal server error")
}
