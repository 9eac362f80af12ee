package wallet

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/digital-wallet/wallet_ledger/internal/auth"
	"github.com/digital-wallet/wallet_ledger/internal/ledger"
	"github.com/digital-wallet/wallet_ledger/internal/validation"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Name              string `json:"wallet_name" validate:"required,min=3,max=32"`
	Currency          string `json:"currency" validate:"required,oneof=TRY USD EUR"`
	ActiveForShopping *bool  `json:"active_for_shopping" validate:"required"`
	ActiveForWithdraw *bool  `json:"active_for_withdraw" validate:"required"`
	CustomerID        string `json:"customer_id" validate:"required"`
}

// Create opens a wallet for the customer named in the body.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	res := validation.Check(req)
	if !res.Valid() {
		return fiber.NewError(http.StatusBadRequest, res.Message())
	}
	if err := auth.Authorize(auth.PrincipalFrom(c), req.CustomerID); err != nil {
		return err
	}

	view, err := h.service.Create(c.UserContext(), CreateInput{
		Name:              req.Name,
		Currency:          ledger.Currency(req.Currency),
		ActiveForShopping: *req.ActiveForShopping,
		ActiveForWithdraw: *req.ActiveForWithdraw,
		CustomerID:        req.CustomerID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(view)
}

// List returns the wallets of the customer in the path.
func (h *Handler) List(c *fiber.Ctx) error {
	customerID := c.Params("customerId")
	if err := auth.Authorize(auth.PrincipalFrom(c), customerID); err != nil {
		return err
	}
	views, err := h.service.ListCustomerWallets(c.UserContext(), customerID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(views)
}
