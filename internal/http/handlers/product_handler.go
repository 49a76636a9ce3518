package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/apperr"
	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// GET /api/products?page=&limit=&active=&q=
func (h *ProductHandler) List(c *fiber.Ctx) error {
	q := services.ProductQuery{
		Page:  validate.Page(c.Query("page", "1")),
		Limit: validate.Limit(c.Query("limit", "10")),
		Q:     strings.TrimSpace(c.Query("q")),
	}
	if raw := c.Query("active"); raw != "" {
		active := raw == "true"
		q.Active = &active
	}
	if len(q.Q) > 50 {
		return apperr.Invalidf("q must be at most 50 characters")
	}
	products, err := h.Catalog.List(c.UserContext(), actor(c), q)
	if err != nil {
		return err
	}
	return list(c, products, fiber.Map{"page": q.Page, "limit": q.Limit})
}

// GET /api/products/:id
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return err
	}
	p, err := h.Catalog.Get(c.UserContext(), actor(c), id)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func productID(c *fiber.Ctx) (int64, error) {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return 0, apperr.Invalidf("Invalid product id")
	}
	return id, nil
}
