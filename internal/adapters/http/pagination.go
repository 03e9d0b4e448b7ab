package http

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Pagination describes one offset/limit window.
type Pagination struct {
	Offset   int
	Limit    int
	Returned int
}

// SetLinkHeaders adds RFC 8288 Link headers for a paginated list whose
// total is unknown. "next" is advertised only when the page came back full.
func SetLinkHeaders(c *fiber.Ctx, p Pagination) {
	if p.Limit <= 0 {
		return
	}

	q := url.Values{}
	for k, v := range c.Queries() {
		q.Set(k, v)
	}
	link := func(offset int, rel string) string {
		q.Set("offset", fmt.Sprint(offset))
		q.Set("limit", fmt.Sprint(p.Limit))
		return fmt.Sprintf(`<%s?%s>; rel="%s"`, c.Path(), q.Encode(), rel)
	}

	links := []string{link(0, "first")}

	if p.Offset > 0 {
		prev := p.Offset - p.Limit
		if prev < 0 {
			prev = 0
		}
		links = append(links, link(prev, "prev"))
	}

	if p.Returned >= p.Limit {
		links = append(links, link(p.Offset+p.Limit, "next"))
	}

	if existing := c.GetRespHeader("Link"); existing != "" {
		links = append([]string{existing}, links...)
	}
	c.Set("Link", strings.Join(links, ", "))
}
