package transaction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/digital-wallet/wallet_ledger/internal/ledger"
)

// Request is a validated deposit or withdraw instruction against a wallet
// owned by CustomerID.
type Request struct {
	Amount           decimal.Decimal
	WalletID         string
	CustomerID       string
	CounterpartyType ledger.CounterpartyType
	Counterparty     string
}

// View is the outward representation of a transaction.
type View struct {
	ID                string                  `json:"id"`
	WalletID          string                  `json:"wallet_id"`
	Amount            decimal.Decimal         `json:"amount"`
	Type              ledger.Type             `json:"type"`
	OppositePartyType ledger.CounterpartyType `json:"opposite_party_type,omitempty"`
	OppositeParty     string                  `json:"opposite_party"`
	Status            ledger.Status           `json:"status"`
	CreatedAt         time.Time               `json:"created_at"`
}

// NewView renders tx for callers.
func NewView(tx ledger.Transaction) View {
	return View{
		ID:                tx.ID,
		WalletID:          tx.WalletID,
		Amount:            tx.Amount,
		Type:              tx.Type,
		OppositePartyType: tx.CounterpartyType,
		OppositeParty:     tx.Counterparty,
		Status:            tx.Status,
		CreatedAt:         tx.CreatedAt,
	}
}
