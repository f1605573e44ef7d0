package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/palmora-app/palmora/internal/pkg/env"
	"github.com/palmora-app/palmora/internal/pkg/usercontext"
)

// RequireAPISessionAuth ensures an authenticated principal and returns JSON 401 otherwise.
func RequireAPISessionAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}
	return c.Next()
}

// RequireAdmin ensures an administrative principal. Admin membership is the
// admin role plus presence on the explicit ADMIN_EMAILS allow-list; a
// client-asserted role alone is never enough.
func RequireAdmin(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}
	if !userCtx.IsAdmin || !IsAllowListedAdmin(userCtx.Email) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "forbidden",
			"message": "admin access required",
		})
	}
	return c.Next()
}

// IsAllowListedAdmin checks an email against the ADMIN_EMAILS allow-list.
func IsAllowListedAdmin(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, entry := range strings.Split(env.GetEnv("ADMIN_EMAILS", ""), ",") {
		if strings.ToLower(strings.TrimSpace(entry)) == email {
			return true
		}
	}
	return false
}
