package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is a customer's stored-value account. Balance counts settled funds
// plus provisional deposits; UsableBalance is what may still be withdrawn.
type Wallet struct {
	ID                string
	CustomerID        string
	Name              string
	Currency          Currency
	Balance           decimal.Decimal
	UsableBalance     decimal.Decimal
	ActiveForShopping bool
	ActiveForWithdraw bool
	CreatedAt         time.Time
	Version           int64
}

// Transaction is a single deposit or withdrawal recorded against a wallet.
type Transaction struct {
	ID               string
	WalletID         string
	Amount           decimal.Decimal
	Type             Type
	CounterpartyType CounterpartyType
	Counterparty     string
	Status           Status
	CreatedAt        time.Time
	Version          int64
}

// Request carries an already validated deposit or withdraw instruction.
type Request struct {
	Amount           decimal.Decimal
	CounterpartyType CounterpartyType
	Counterparty     string
}
