package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/digital-wallet/wallet_ledger/internal/customer"
	"github.com/digital-wallet/wallet_ledger/internal/validation"
)

const (
	// LocalCustomerID is the fiber.Ctx local holding the authenticated customer id.
	LocalCustomerID = "customer_id"
	// LocalRole is the fiber.Ctx local holding the authenticated role.
	LocalRole = "role"
)

// PrincipalFrom reads the principal stored by the JWT middleware.
func PrincipalFrom(c *fiber.Ctx) Principal {
	id, _ := c.Locals(LocalCustomerID).(string)
	role, _ := c.Locals(LocalRole).(customer.Role)
	return Principal{CustomerID: id, Role: role}
}

// Handler exposes auth endpoints for login and refresh.
type Handler struct {
	customers *customer.Service
	svc       *Service
}

// NewHandler builds the auth HTTP handler.
func NewHandler(customers *customer.Service, svc *Service) *Handler {
	return &Handler{customers: customers, svc: svc}
}

type loginRequest struct {
	CustomerID string `json:"customer_id" validate:"required_without=TCKN"`
	TCKN       string `json:"tckn" validate:"required_without=CustomerID"`
	Password   string `json:"password" validate:"required"`
}

type loginResponse struct {
	CustomerID   string `json:"customer_id"`
	Role         string `json:"role"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Login validates credentials and returns a token pair.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if res := validation.Check(req); !res.Valid() {
		return fiber.NewError(http.StatusBadRequest, res.Message())
	}

	cust, err := h.customers.Authenticate(c.UserContext(), customer.Credentials{CustomerID: req.CustomerID, TCKN: req.TCKN, Password: req.Password})
	if err != nil {
		return err
	}
	pair, err := h.svc.Login(cust)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(loginResponse{
		CustomerID:   cust.ID,
		Role:         string(cust.Role),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Refresh issues a new access token using a valid refresh token.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if res := validation.Check(req); !res.Valid() {
		return fiber.NewError(http.StatusBadRequest, res.Message())
	}
	token, exp, err := h.svc.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"access_token": token, "expires_in": exp})
}
