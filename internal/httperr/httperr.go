// Package httperr maps domain and infrastructure errors onto HTTP responses.
package httperr

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/digital-wallet/wallet_ledger/internal/auth"
	"github.com/digital-wallet/wallet_ledger/internal/customer"
	"github.com/digital-wallet/wallet_ledger/internal/ledger"
)

// Body is the JSON shape of every error response.
type Body struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

var badRequest = []error{
	ledger.ErrInsufficientBalance,
	ledger.ErrPaymentNotAllowed,
	ledger.ErrTransferNotAllowed,
	ledger.ErrInvalidStatusTransition,
	ledger.ErrInvalidAmount,
	ledger.ErrUnsupportedCurrency,
	ledger.ErrBalanceLimit,
	customer.ErrWeakPassword,
	customer.ErrUnknownRole,
}

var notFound = []error{
	ledger.ErrTransactionNotFound,
	ledger.ErrWalletNotFound,
	ledger.ErrCustomerNotFound,
}

// Status returns the HTTP status and the client-facing message for err.
func Status(err error) (int, string) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return http.StatusBadRequest, target.Error()
		}
	}
	for _, target := range notFound {
		if errors.Is(err, target) {
			return http.StatusNotFound, target.Error()
		}
	}
	switch {
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden, auth.ErrForbidden.Error()
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, customer.ErrInvalidCredentials):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, customer.ErrCustomerExists):
		return http.StatusConflict, customer.ErrCustomerExists.Error()
	case errors.Is(err, ledger.ErrVersionConflict):
		return http.StatusConflict, "wallet was modified concurrently, retry the request"
	case errors.Is(err, ledger.ErrStorage):
		return http.StatusServiceUnavailable, "storage temporarily unavailable"
	}
	return http.StatusInternalServerError, "internal server error"
}

// Handler renders errors returned from handlers as Body.
func Handler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code, msg := Status(err)
		if code >= http.StatusInternalServerError {
			logger.ErrorContext(c.UserContext(), "request failed", "path", c.Path(), "error", err)
		}
		return c.Status(code).JSON(Body{Status: code, Error: http.StatusText(code), Message: msg})
	}
}
