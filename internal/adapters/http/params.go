package http

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// params reads typed query parameters. The first failure is kept in err
// and later reads become no-ops, so handlers check once after parsing.
type params struct {
	c   *fiber.Ctx
	err error
}

func queryParams(c *fiber.Ctx) *params {
	return &params{c: c}
}

func (p *params) lookup(key string) (string, bool) {
	args := p.c.Context().QueryArgs()
	if !args.Has(key) {
		return "", false
	}
	return strings.TrimSpace(string(args.Peek(key))), true
}

// fail records the first error; its message is returned to the client verbatim.
func (p *params) fail(key, msg string) {
	p.err = errors.New(key + " parameter " + msg)
}

// requiredFloat returns a finite float parameter.
func (p *params) requiredFloat(key string) float64 {
	if p.err != nil {
		return 0
	}
	raw, present := p.lookup(key)
	if !present {
		p.fail(key, "is required")
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		p.fail(key, "must be a float")
		return 0
	}
	return v
}

// integer returns an integer parameter, or def when absent.
func (p *params) integer(key string, def int) int {
	if p.err != nil {
		return 0
	}
	raw, present := p.lookup(key)
	if !present {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, "must be an integer")
		return 0
	}
	return v
}
