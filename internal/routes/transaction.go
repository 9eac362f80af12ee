package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/digital-wallet/wallet_ledger/internal/transaction"
)

// RegisterTransactionRoutes wires deposit, withdraw, history and approval.
// idempotency guards the two balance-moving endpoints; admin guards approval.
func RegisterTransactionRoutes(r fiber.Router, h *transaction.Handler, idempotency, admin fiber.Handler) {
	group := r.Group("/transactions")
	group.Post("/deposit", idempotency, h.Deposit)
	group.Post("/withdraw", idempotency, h.Withdraw)
	group.Get("/list", h.List)
	group.Patch("/update/:transactionId", admin, h.UpdateStatus)
}
