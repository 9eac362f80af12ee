package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/digital-wallet/wallet_ledger/internal/auth"
)

// TokenVerifier turns an access token into the calling principal.
type TokenVerifier interface {
	Verify(accessToken string) (auth.Principal, error)
}

// JWTAuth validates bearer access tokens and stores the principal in the
// request locals.
func JWTAuth(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		principal, err := verifier.Verify(strings.TrimSpace(authz[len("Bearer "):]))
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}

		c.Locals(auth.LocalCustomerID, principal.CustomerID)
		c.Locals(auth.LocalRole, principal.Role)
		return c.Next()
	}
}

// RequireAdmin rejects callers without the ADMIN role. It must run after JWTAuth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !auth.PrincipalFrom(c).IsAdmin() {
			return auth.ErrForbidden
		}
		return c.Next()
	}
}
