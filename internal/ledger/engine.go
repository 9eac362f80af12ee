package ledger

import "github.com/shopspring/decimal"

// DefaultThreshold is the largest amount that is approved without review.
var DefaultThreshold = decimal.NewFromInt(1000)

// MaxBalance is the largest balance a wallet can hold. It matches the
// NUMERIC(17,2) balance columns.
var MaxBalance = decimal.RequireFromString("999999999999999.99")

const amountScale = 2

// Engine holds the approval and balance rules. It never performs I/O; callers
// load the wallet, run one operation and persist the results together.
type Engine struct {
	threshold decimal.Decimal
}

// NewEngine builds an engine with the given approval threshold. A
// non-positive threshold falls back to DefaultThreshold.
func NewEngine(threshold decimal.Decimal) *Engine {
	if !threshold.IsPositive() {
		threshold = DefaultThreshold
	}
	return &Engine{threshold: threshold}
}

// Threshold returns the configured approval threshold.
func (e *Engine) Threshold() decimal.Decimal {
	return e.threshold
}

// DecideStatus approves amounts up to and including the threshold and holds
// anything larger for review.
func (e *Engine) DecideStatus(amount decimal.Decimal) Status {
	if amount.GreaterThan(e.threshold) {
		return StatusPending
	}
	return StatusApproved
}

// ValidateAmount rejects non-positive amounts and amounts finer than cents.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !amount.Equal(amount.Truncate(amountScale)) {
		return ErrInvalidAmount
	}
	return nil
}

// ValidateTarget accepts only the two terminal statuses as update targets.
func ValidateTarget(target Status) error {
	if !target.Terminal() {
		return ErrInvalidStatusTransition
	}
	return nil
}

// Deposit credits w. The total balance always grows; the usable balance only
// grows when the deposit is approved immediately.
func (e *Engine) Deposit(w *Wallet, req Request) (Transaction, error) {
	if err := ValidateAmount(req.Amount); err != nil {
		return Transaction{}, err
	}
	if w.Balance.Add(req.Amount).GreaterThan(MaxBalance) {
		return Transaction{}, ErrBalanceLimit
	}

	status := e.DecideStatus(req.Amount)
	w.Balance = w.Balance.Add(req.Amount)
	if status == StatusApproved {
		w.UsableBalance = w.UsableBalance.Add(req.Amount)
	}

	return newTransaction(w, TypeDeposit, status, req), nil
}

// Withdraw debits w after checking the feature gates and the usable balance.
// A pending withdrawal only places a hold on the usable balance.
func (e *Engine) Withdraw(w *Wallet, req Request) (Transaction, error) {
	if err := ValidateAmount(req.Amount); err != nil {
		return Transaction{}, err
	}
	if req.CounterpartyType == CounterpartyPayment && !w.ActiveForShopping {
		return Transaction{}, ErrPaymentNotAllowed
	}
	if req.CounterpartyType == CounterpartyIBAN && !w.ActiveForWithdraw {
		return Transaction{}, ErrTransferNotAllowed
	}
	if w.UsableBalance.LessThan(req.Amount) {
		return Transaction{}, ErrInsufficientBalance
	}

	status := e.DecideStatus(req.Amount)
	w.UsableBalance = w.UsableBalance.Sub(req.Amount)
	if status == StatusApproved {
		w.Balance = w.Balance.Sub(req.Amount)
	}

	return newTransaction(w, TypeWithdraw, status, req), nil
}

// Resolve moves a pending transaction to target and applies to w whichever
// side of the balance was left untouched when the transaction was created.
//
//	WITHDRAW approved: balance -= amount   denied: usable += amount
//	DEPOSIT  approved: usable  += amount   denied: balance -= amount
func (e *Engine) Resolve(w *Wallet, tx *Transaction, target Status) error {
	if err := ValidateTarget(target); err != nil {
		return err
	}
	if tx.Status != StatusPending {
		return ErrTransactionNotFound
	}

	switch {
	case tx.Type == TypeWithdraw && target == StatusApproved:
		w.Balance = w.Balance.Sub(tx.Amount)
	case tx.Type == TypeWithdraw && target == StatusDenied:
		w.UsableBalance = w.UsableBalance.Add(tx.Amount)
	case tx.Type == TypeDeposit && target == StatusApproved:
		w.UsableBalance = w.UsableBalance.Add(tx.Amount)
	case tx.Type == TypeDeposit && target == StatusDenied:
		w.Balance = w.Balance.Sub(tx.Amount)
	}

	tx.Status = target
	return nil
}

func newTransaction(w *Wallet, kind Type, status Status, req Request) Transaction {
	return Transaction{
		WalletID:         w.ID,
		Amount:           req.Amount,
		Type:             kind,
		CounterpartyType: req.CounterpartyType,
		Counterparty:     req.Counterparty,
		Status:           status,
	}
}
