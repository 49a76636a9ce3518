package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/apperr"
	applog "storefront/internal/log"
)

func statusOf(k apperr.Kind) int {
	switch k {
	case apperr.Invalid, apperr.Unavailable:
		return fiber.StatusBadRequest
	case apperr.NotFound:
		return fiber.StatusNotFound
	case apperr.Conflict:
		return fiber.StatusConflict
	case apperr.Unauthorized:
		return fiber.StatusUnauthorized
	case apperr.Forbidden:
		return fiber.StatusForbidden
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler renders every error returned by a handler as JSON. Internal
// failures are logged with their cause and reported generically.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Kind == apperr.Internal {
		applog.Error(c, "server.error", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Server error"})
	}

	if ae.Kind == apperr.Conflict && ae.Err != nil {
		applog.Info(c, "storage.conflict", map[string]any{"cause": ae.Err.Error()})
	}
	body := fiber.Map{"error": ae.Msg}
	if len(ae.Fields) > 0 {
		body["fields"] = ae.Fields
	}
	return c.Status(statusOf(ae.Kind)).JSON(body)
}

// parseJSON decodes the request body into out, reporting malformed bodies as invalid input.
func parseJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.Invalidf("invalid JSON body")
	}
	return nil
}

func list[T any](c *fiber.Ctx, data []T, extra fiber.Map) error {
	body := fiber.Map{"count": len(data), "data": data}
	for k, v := range extra {
		body[k] = v
	}
	return c.JSON(body)
}
