package wallet

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/digital-wallet/wallet_ledger/internal/ledger"
)

// CreateInput captures data required to open a wallet.
type CreateInput struct {
	Name              string
	Currency          ledger.Currency
	ActiveForShopping bool
	ActiveForWithdraw bool
	CustomerID        string
}

// View is the outward representation of a wallet.
type View struct {
	ID                string          `json:"id"`
	CustomerID        string          `json:"customer_id"`
	Name              string          `json:"wallet_name"`
	Currency          ledger.Currency `json:"currency"`
	ActiveForShopping bool            `json:"active_for_shopping"`
	ActiveForWithdraw bool            `json:"active_for_withdraw"`
	Balance           decimal.Decimal `json:"balance"`
	UsableBalance     decimal.Decimal `json:"usable_balance"`
	CreatedAt         time.Time       `json:"created_at"`
}

// NewView renders w for callers.
func NewView(w ledger.Wallet) View {
	return View{
		ID:                w.ID,
		CustomerID:        w.CustomerID,
		Name:              w.Name,
		Currency:          w.Currency,
		ActiveForShopping: w.ActiveForShopping,
		ActiveForWithdraw: w.ActiveForWithdraw,
		Balance:           w.Balance,
		UsableBalance:     w.UsableBalance,
		CreatedAt:         w.CreatedAt,
	}
}
