package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/apperr"
	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req validate.RegisterRequest
	if err := parseJSON(c, &req); err != nil {
		return err
	}
	sess, err := h.Auth.Register(c.UserContext(), req)
	if err != nil {
		return err
	}
	log.Audit(c, "auth.register", map[string]any{"user_id": sess.User.ID})
	return c.Status(fiber.StatusCreated).JSON(sess)
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req validate.LoginRequest
	if err := parseJSON(c, &req); err != nil {
		return err
	}
	sess, err := h.Auth.Login(c.UserContext(), req)
	if err != nil {
		if apperr.Is(err, apperr.Unauthorized) {
			log.Security(c, "auth.login.fail", map[string]any{"email": req.Email})
		}
		return err
	}
	log.Audit(c, "auth.login.success", map[string]any{"user_id": sess.User.ID})
	return c.JSON(sess)
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.Auth.Logout(c.UserContext(), bearerToken(c)); err != nil {
		return err
	}
	log.Audit(c, "auth.logout", nil)
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /api/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"user": currentUser(c)})
}
