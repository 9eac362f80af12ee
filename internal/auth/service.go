package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/digital-wallet/wallet_ledger/internal/config"
	"github.com/digital-wallet/wallet_ledger/internal/customer"
	"github.com/digital-wallet/wallet_ledger/internal/ledger"
)

var (
	// ErrInvalidToken is returned for malformed, expired or wrongly signed tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrForbidden is returned when the principal may not act for the requested customer.
	ErrForbidden = errors.New("access denied")
)

const (
	tokenAccess  = "access"
	tokenRefresh = "refresh"
)

// Claims are the JWT claims issued to customers.
type Claims struct {
	Role customer.Role `json:"role"`
	Kind string        `json:"kind"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller.
type Principal struct {
	CustomerID string
	Role       customer.Role
}

// IsAdmin reports whether the principal holds the ADMIN role.
func (p Principal) IsAdmin() bool {
	return p.Role == customer.RoleAdmin
}

// Authorize allows admins to act for anyone and customers to act for themselves.
func Authorize(p Principal, customerID string) error {
	if p.IsAdmin() || (p.CustomerID != "" && p.CustomerID == customerID) {
		return nil
	}
	return ErrForbidden
}

// Service issues and verifies tokens.
type Service struct {
	cfg       config.Config
	customers customer.Repository
}

// NewService builds a token service.
func NewService(cfg config.Config, customers customer.Repository) *Service {
	return &Service{cfg: cfg, customers: customers}
}

// TokenPair is returned on login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Login issues an access and a refresh token for an authenticated customer.
func (s *Service) Login(c customer.Customer) (TokenPair, error) {
	access, err := s.sign(c.ID, c.Role, tokenAccess, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(c.ID, c.Role, tokenRefresh, s.cfg.RefreshSecret, s.cfg.RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresIn: int64(s.cfg.AccessTokenTTL.Seconds())}, nil
}

// Refresh verifies the refresh token and returns a new access token. The role
// is re-read so that demoted customers lose admin rights on refresh.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, int64, error) {
	claims, err := s.parse(refreshToken, s.cfg.RefreshSecret, tokenRefresh)
	if err != nil {
		return "", 0, err
	}

	c, err := s.customers.FindByID(ctx, claims.Subject)
	if errors.Is(err, ledger.ErrCustomerNotFound) {
		return "", 0, ErrInvalidToken
	}
	if err != nil {
		return "", 0, err
	}

	access, err := s.sign(c.ID, c.Role, tokenAccess, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return "", 0, err
	}
	return access, int64(s.cfg.AccessTokenTTL.Seconds()), nil
}

// Verify parses an access token into a Principal.
func (s *Service) Verify(accessToken string) (Principal, error) {
	claims, err := s.parse(accessToken, s.cfg.JWTSecret, tokenAccess)
	if err != nil {
		return Principal{}, err
	}
	return Principal{CustomerID: claims.Subject, Role: claims.Role}, nil
}

func (s *Service) sign(subject string, role customer.Role, kind, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.cfg.AppName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *Service) parse(token, secret, kind string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(s.cfg.AppName))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Kind != kind || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
