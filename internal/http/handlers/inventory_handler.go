package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/apperr"
	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

const maxAvailabilityIDs = 50

type InventoryHandler struct {
	Catalog *services.CatalogService
}

// GET /api/products/availability?ids=1,2,3
func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	raw := strings.TrimSpace(c.Query("ids"))
	if raw == "" {
		return apperr.Invalidf("missing ids")
	}
	ids, ok := validate.IDList(raw, maxAvailabilityIDs)
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "ids"})
		return apperr.Invalidf("ids must be 1-%d comma separated positive integers", maxAvailabilityIDs)
	}

	levels, err := h.Catalog.Availability(c.UserContext(), actor(c), ids)
	if err != nil {
		return err
	}
	return list(c, levels, nil)
}
