package wallet

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/digital-wallet/wallet_ledger/internal/customer"
	"github.com/digital-wallet/wallet_ledger/internal/ledger"
)

// CustomerFinder resolves wallet owners.
type CustomerFinder interface {
	FindByID(ctx context.Context, id string) (customer.Customer, error)
}

// Service exposes wallet directory operations.
type Service struct {
	repo      Repository
	customers CustomerFinder
	logger    *slog.Logger
}

// NewService builds a wallet service instance.
func NewService(repo Repository, customers CustomerFinder, logger *slog.Logger) *Service {
	return &Service{repo: repo, customers: customers, logger: logger}
}

// Create opens an empty wallet for an existing customer.
func (s *Service) Create(ctx context.Context, input CreateInput) (View, error) {
	switch input.Currency {
	case ledger.CurrencyTRY, ledger.CurrencyUSD, ledger.CurrencyEUR:
	default:
		return View{}, fmt.Errorf("%w %q", ledger.ErrUnsupportedCurrency, input.Currency)
	}

	if _, err := s.customers.FindByID(ctx, input.CustomerID); err != nil {
		return View{}, err
	}

	w := ledger.Wallet{
		ID:                uuid.New().String(),
		CustomerID:        input.CustomerID,
		Name:              input.Name,
		Currency:          input.Currency,
		Balance:           decimal.Zero,
		UsableBalance:     decimal.Zero,
		ActiveForShopping: input.ActiveForShopping,
		ActiveForWithdraw: input.ActiveForWithdraw,
		CreatedAt:         time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, w); err != nil {
		return View{}, err
	}

	s.logger.InfoContext(ctx, "wallet created", "wallet_id", w.ID, "customer_id", w.CustomerID, "currency", w.Currency)
	return NewView(w), nil
}

// ListCustomerWallets returns every wallet owned by customerID. Unknown
// customers simply own no wallets.
func (s *Service) ListCustomerWallets(ctx context.Context, customerID string) ([]View, error) {
	wallets, err := s.repo.ListByOwner(ctx, customerID)
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(wallets))
	for _, w := range wallets {
		views = append(views, NewView(w))
	}
	return views, nil
}
