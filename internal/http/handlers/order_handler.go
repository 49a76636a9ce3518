package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/apperr"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type OrderHandler struct {
	Orders *services.OrderService
}

// POST /api/orders
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var req validate.PlaceOrderRequest
	if err := parseJSON(c, &req); err != nil {
		return err
	}

	order, err := h.Orders.Place(c.UserContext(), actor(c), req.Items)
	if err != nil {
		// business rule errors (bad lines, insufficient stock) are client facing
		if k := apperr.KindOf(err); k == apperr.Invalid || k == apperr.Unavailable {
			applog.Security(c, "order.place.reject", map[string]any{"reason": k.String(), "error": err.Error()})
		}
		return err
	}
	applog.Audit(c, "order.place", map[string]any{
		"order_id":    order.ID,
		"total_cents": order.TotalCents,
		"lines":       len(req.Items),
	})
	return c.Status(fiber.StatusCreated).JSON(order)
}

// GET /api/orders/me
func (h *OrderHandler) History(c *fiber.Ctx) error {
	orders, err := h.Orders.ListMine(c.UserContext(), actor(c))
	if err != nil {
		return err
	}
	return list(c, orders, nil)
}

// GET /api/orders/:id
func (h *OrderHandler) View(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return apperr.Invalidf("Invalid order id")
	}
	o, err := h.Orders.Get(c.UserContext(), actor(c), oid)
	if apperr.Is(err, apperr.NotFound) {
		applog.Security(c, "order.view.miss", map[string]any{"order_id": oid})
	}
	if err != nil {
		return err
	}
	return c.JSON(o)
}
