package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/digital-wallet/wallet_ledger/internal/auth"
)

// RegisterAuthRoutes wires login and token refresh.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/login", rateLimiter, h.Login)
	group.Post("/refresh", h.Refresh)
}
