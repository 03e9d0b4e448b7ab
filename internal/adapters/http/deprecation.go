package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DeprecatedRoute marks an endpoint as deprecated with sunset date.
type DeprecatedRoute struct {
	Path        string    // Route pattern, ":name" segments match any value
	SunsetDate  time.Time // Date when endpoint will be removed
	Alternative string    // Successor pattern, params substituted from Path
}

// legacyRoutes are the URL layout of the first public release, still
// served by the current handlers.
var legacyRoutes = []DeprecatedRoute{
	{Path: "/arcgis/shelters", SunsetDate: time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC), Alternative: "/shelters"},
	{Path: "/arcgis/shelters/:id", SunsetDate: time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC), Alternative: "/shelters/:id"},
}

// DeprecationMiddleware adds Deprecation, Sunset, and Link headers to deprecated endpoints.
func DeprecationMiddleware(deprecated []DeprecatedRoute) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, d := range deprecated {
			params, matched := matchPattern(c.Path(), d.Path)
			if !matched {
				continue
			}

			// RFC 8594
			c.Set("Deprecation", "true")
			c.Set("Sunset", d.SunsetDate.UTC().Format(time.RFC1123))

			if d.Alternative != "" {
				c.Set("Link", fmt.Sprintf(`<%s>; rel="successor-version"`, expandPattern(d.Alternative, params)))
			}

			days := time.Until(d.SunsetDate).Hours() / 24
			if days < 0 {
				days = 0
			}
			c.Set("Warning", fmt.Sprintf(`299 - "Deprecated API, will sunset in %.0f days"`, days))
			break
		}

		return c.Next()
	}
}

// matchPattern matches path against a pattern such as "/shelters/:id" and
// returns the captured segments.
func matchPattern(path, pattern string) (map[string]string, bool) {
	ps := strings.Split(strings.Trim(path, "/"), "/")
	qs := strings.Split(strings.Trim(pattern, "/"), "/")
	if len(ps) != len(qs) {
		return nil, false
	}

	params := map[string]string{}
	for i, seg := range qs {
		if strings.HasPrefix(seg, ":") {
			if ps[i] == "" {
				return nil, false
			}
			params[seg[1:]] = ps[i]
			continue
		}
		if seg != ps[i] {
			return nil, false
		}
	}
	return params, true
}

func expandPattern(pattern string, params map[string]string) string {
	segs := strings.Split(pattern, "/")
	for i, seg := range segs {
		if strings.HasPrefix(seg, ":") {
			if v, ok := params[seg[1:]]; ok {
				segs[i] = v
			}
		}
	}
	return strings.Join(segs, "/")
}
