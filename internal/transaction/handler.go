package transaction

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/digital-wallet/wallet_ledger/internal/auth"
	"github.com/digital-wallet/wallet_ledger/internal/ledger"
	"github.com/digital-wallet/wallet_ledger/internal/validation"
)

// Handler exposes transaction HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a transaction HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type movementRequest struct {
	Amount            decimal.Decimal `json:"amount" validate:"money"`
	WalletID          string          `json:"wallet_id" validate:"required"`
	CustomerID        string          `json:"customer_id" validate:"required"`
	OppositePartyType string          `json:"opposite_party_type" validate:"omitempty,oneof=IBAN PAYMENT"`
	OppositeParty     string          `json:"opposite_party" validate:"required,max=32"`
}

type updateRequest struct {
	Status string `json:"status" validate:"required"`
}

// Deposit credits a wallet.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	req, err := h.parseMovement(c)
	if err != nil {
		return err
	}
	view, err := h.service.Deposit(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(view)
}

// Withdraw debits a wallet.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	req, err := h.parseMovement(c)
	if err != nil {
		return err
	}
	view, err := h.service.Withdraw(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(view)
}

// List returns the transactions of a wallet.
func (h *Handler) List(c *fiber.Ctx) error {
	walletID := c.Query("wallet_id")
	customerID := c.Query("customer_id")
	if walletID == "" || customerID == "" {
		return fiber.NewError(http.StatusBadRequest, "wallet_id and customer_id are required")
	}
	if err := auth.Authorize(auth.PrincipalFrom(c), customerID); err != nil {
		return err
	}
	views, err := h.service.ListWalletTransactions(c.UserContext(), walletID, customerID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(views)
}

// UpdateStatus approves or denies a pending transaction.
func (h *Handler) UpdateStatus(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if res := validation.Check(req); !res.Valid() {
		return fiber.NewError(http.StatusBadRequest, res.Message())
	}
	status, err := ledger.ParseStatus(req.Status)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	view, err := h.service.UpdateStatus(c.UserContext(), c.Params("transactionId"), status)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(view)
}

func (h *Handler) parseMovement(c *fiber.Ctx) (Request, error) {
	var body movementRequest
	if err := c.BodyParser(&body); err != nil {
		return Request{}, fiber.NewError(http.StatusBadRequest, err.Error())
	}
	res := validation.Check(body)
	if !res.Valid() {
		return Request{}, fiber.NewError(http.StatusBadRequest, res.Message())
	}
	if err := auth.Authorize(auth.PrincipalFrom(c), body.CustomerID); err != nil {
		return Request{}, err
	}
	v := res.Value
	return Request{
		Amount:           v.Amount,
		WalletID:         v.WalletID,
		CustomerID:       v.CustomerID,
		CounterpartyType: ledger.CounterpartyType(v.OppositePartyType),
		Counterparty:     v.OppositeParty,
	}, nil
}
