package customer

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/digital-wallet/wallet_ledger/internal/validation"
)

// Handler exposes customer administration endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds the customer HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=64"`
	Surname  string `json:"surname" validate:"required,max=64"`
	TCKN     string `json:"tckn" validate:"required,len=11,numeric"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=CUSTOMER ADMIN"`
}

type customerResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	TCKN    string `json:"tckn"`
	Role    Role   `json:"role"`
}

// Register creates a customer account.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if res := validation.Check(req); !res.Valid() {
		return fiber.NewError(http.StatusBadRequest, res.Message())
	}

	cust, err := h.service.Register(c.UserContext(), RegisterInput{
		Name:     req.Name,
		Surname:  req.Surname,
		TCKN:     req.TCKN,
		Role:     Role(req.Role),
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(customerResponse{
		ID:      cust.ID,
		Name:    cust.Name,
		Surname: cust.Surname,
		TCKN:    cust.TCKN,
		Role:    cust.Role,
	})
}
