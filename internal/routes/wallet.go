package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/digital-wallet/wallet_ledger/internal/wallet"
)

// RegisterWalletRoutes wires wallet directory endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Post("/wallets", h.Create)
	r.Get("/wallets/:customerId", h.List)
}
