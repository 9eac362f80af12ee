package ledger

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInsufficientBalance occurs when a withdrawal exceeds the wallet's usable balance.
	ErrInsufficientBalance = errors.New("insufficient balance to complete the withdraw")

	// ErrPaymentNotAllowed is returned for PAYMENT withdrawals on wallets not active for shopping.
	ErrPaymentNotAllowed = errors.New("payment is not allowed for this wallet")

	// ErrTransferNotAllowed is returned for IBAN withdrawals on wallets not active for withdraw.
	ErrTransferNotAllowed = errors.New("transfer is not allowed for this wallet")

	// ErrTransactionNotFound indicates the transaction is missing or no longer pending.
	ErrTransactionNotFound = errors.New("pending transaction not found")

	// ErrWalletNotFound indicates no wallet matched the lookup.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrCustomerNotFound indicates no customer matched the lookup.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrInvalidStatusTransition is returned when an update targets a status other than APPROVED or DENIED.
	ErrInvalidStatusTransition = errors.New("transaction status cannot be set to PENDING")

	// ErrInvalidAmount rejects non-positive amounts or amounts with more than two fraction digits.
	ErrInvalidAmount = errors.New("amount must be positive with at most two fraction digits")

	// ErrUnsupportedCurrency rejects wallets in currencies other than TRY, USD and EUR.
	ErrUnsupportedCurrency = errors.New("unsupported currency")

	// ErrBalanceLimit rejects deposits that would push a balance past MaxBalance.
	ErrBalanceLimit = errors.New("wallet balance limit exceeded")

	// ErrVersionConflict signals that a row changed between read and write. The
	// whole unit of work may be retried from the read step.
	ErrVersionConflict = errors.New("version conflict")

	// ErrStorage marks infrastructure failures from persistence collaborators.
	ErrStorage = errors.New("storage failure")
)

// Status is the lifecycle state of a transaction.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusDenied   Status = "DENIED"
)

// Type is the direction of a transaction.
type Type string

const (
	TypeDeposit  Type = "DEPOSIT"
	TypeWithdraw Type = "WITHDRAW"
)

// CounterpartyType names the kind of party on the other side of a transaction.
type CounterpartyType string

const (
	CounterpartyIBAN    CounterpartyType = "IBAN"
	CounterpartyPayment CounterpartyType = "PAYMENT"
)

// Currency is the denomination of a wallet.
type Currency string

const (
	CurrencyTRY Currency = "TRY"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// ParseStatus maps case-insensitive input onto a known Status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusPending, StatusApproved, StatusDenied:
		return st, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusDenied
}

// Storage wraps an infrastructure error so callers can match ErrStorage
// while keeping the driver error in the chain.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
