package customer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/digital-wallet/wallet_ledger/internal/ledger"
)

const minPasswordLength = 6

var (
	// ErrInvalidCredentials is returned when the customer id or password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrWeakPassword is returned for passwords shorter than minPasswordLength.
	ErrWeakPassword = fmt.Errorf("password must be at least %d characters", minPasswordLength)
	// ErrUnknownRole is returned for roles other than CUSTOMER and ADMIN.
	ErrUnknownRole = errors.New("unknown role")
)

// Service manages the customer lifecycle.
type Service struct {
	repo Repository
}

// NewService creates a new customer service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a customer and stores a hashed password.
func (s *Service) Register(ctx context.Context, input RegisterInput) (Customer, error) {
	if len(input.Password) < minPasswordLength {
		return Customer{}, ErrWeakPassword
	}
	role := input.Role
	if role == "" {
		role = RoleCustomer
	}
	if role != RoleCustomer && role != RoleAdmin {
		return Customer{}, fmt.Errorf("%w %q", ErrUnknownRole, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return Customer{}, err
	}

	c := Customer{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Surname:      input.Surname,
		TCKN:         input.TCKN,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return Customer{}, err
	}

	return c, nil
}

// FindByID returns the customer or ledger.ErrCustomerNotFound.
func (s *Service) FindByID(ctx context.Context, id string) (Customer, error) {
	return s.repo.FindByID(ctx, id)
}

// Authenticate verifies the password of the given customer.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (Customer, error) {
	var (
		c   Customer
		err error
	)
	if creds.CustomerID != "" {
		c, err = s.repo.FindByID(ctx, creds.CustomerID)
	} else {
		c, err = s.repo.FindByTCKN(ctx, creds.TCKN)
	}
	if err != nil {
		if errors.Is(err, ledger.ErrCustomerNotFound) {
			return Customer{}, ErrInvalidCredentials
		}
		return Customer{}, err
	}

	if err := bcrypt.CompareHashAndPassword(c.PasswordHash, []byte(creds.Password)); err != nil {
		return Customer{}, ErrInvalidCredentials
	}

	return c, nil
}

// EnsureAdmin registers an ADMIN customer with the given TCKN unless one exists.
func (s *Service) EnsureAdmin(ctx context.Context, tckn, password string) (Customer, error) {
	existing, err := s.repo.FindByTCKN(ctx, tckn)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ledger.ErrCustomerNotFound) {
		return Customer{}, err
	}
	return s.Register(ctx, RegisterInput{
		Name:     "System",
		Surname:  "Administrator",
		TCKN:     tckn,
		Role:     RoleAdmin,
		Password: password,
	})
}
