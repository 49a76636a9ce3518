package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type AdminHandler struct {
	Catalog *services.CatalogService
	Orders  *services.OrderService
}

// GET /api/orders
func (h *AdminHandler) OrdersPage(c *fiber.Ctx) error {
	ords, err := h.Orders.ListAll(c.UserContext(), actor(c))
	if err != nil {
		return err
	}
	return list(c, ords, nil)
}

// POST /api/products
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	var req validate.CreateProductRequest
	if err := parseJSON(c, &req); err != nil {
		return err
	}
	p, err := h.Catalog.Create(c.UserContext(), actor(c), req)
	if err != nil {
		return err
	}
	applog.Audit(c, "product.create", map[string]any{"product": p.ID, "price_cents": p.PriceCents, "inventory": p.Inventory})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// PUT /api/products/:id
func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}
	var req validate.UpdateProductRequest
	if err := parseJSON(c, &req); err != nil {
		return err
	}
	p, err := h.Catalog.Update(c.UserContext(), actor(c), id, req)
	if err != nil {
		return err
	}
	applog.Audit(c, "product.update", map[string]any{
		"product": p.ID, "price_cents": p.PriceCents, "inventory": p.Inventory, "is_active": p.IsActive,
	})
	return c.JSON(p)
}

// DELETE /api/products/:id
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}
	if err := h.Catalog.Delete(c.UserContext(), actor(c), id); err != nil {
		applog.Error(c, "product.delete.fail", err, map[string]any{"product": id})
		return err
	}
	applog.Audit(c, "product.delete", map[string]any{"product": id})
	return c.SendStatus(fiber.StatusNoContent)
}
