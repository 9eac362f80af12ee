package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/digital-wallet/wallet_ledger/internal/customer"
)

// RegisterCustomerRoutes wires admin-only customer registration.
func RegisterCustomerRoutes(r fiber.Router, h *customer.Handler, admin fiber.Handler) {
	r.Post("/customers", admin, h.Register)
}
