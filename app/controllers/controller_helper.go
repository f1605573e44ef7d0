package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ClientIP resolves the originating client address behind proxies. The first
// X-Forwarded-For entry is the original client; CF-Connecting-IP wins when a
// CDN fronts the service.
func ClientIP(c *fiber.Ctx) string {
	if cfIP := strings.TrimSpace(c.Get("CF-Connecting-IP")); cfIP != "" {
		return cfIP
	}
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	return c.IP()
}
