package http

import (
	"bytes"
	"embed"
	"errors"
	"html/template"

	"github.com/gofiber/fiber/v2"

	"github.com/supercivilian/supercivilian/internal/core/domain"
	"github.com/supercivilian/supercivilian/internal/pkg/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

var shelterPage = template.Must(template.ParseFS(templateFS, "templates/shelter.html"))

type shelterPageData struct {
	Shelter   *domain.Shelter
	Occupancy *occupancyView
}

// ShelterPageHandler renders the HTML detail page of a shelter, with its
// occupancy when it is tracked.
func ShelterPageHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		shelter, err := deps.Shelters.Detail(ctx, c.Params("id"))
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return renderPage(c, fiber.StatusNotFound, shelterPageData{})
		case err != nil:
			logging.FromContext(ctx).Error("shelter page", "id", c.Params("id"), "error", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Shelter service unavailable")
		}

		data := shelterPageData{Shelter: shelter}
		if id, valid := shelterID(c); valid && deps.Occupancy != nil {
			occ, err := deps.Occupancy.Get(ctx, id)
			if err == nil {
				v := newOccupancyView(occ)
				data.Occupancy = &v
			} else if !errors.Is(err, domain.ErrNotFound) {
				logging.FromContext(ctx).Warn("shelter page occupancy", "id", id, "error", err)
			}
		}

		return renderPage(c, fiber.StatusOK, data)
	}
}

func renderPage(c *fiber.Ctx, status int, data shelterPageData) error {
	var buf bytes.Buffer
	if err := shelterPage.Execute(&buf, data); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}
