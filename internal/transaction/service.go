package transaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/digital-wallet/wallet_ledger/internal/infra"
	"github.com/digital-wallet/wallet_ledger/internal/ledger"
	"github.com/digital-wallet/wallet_ledger/internal/notification"
	"github.com/digital-wallet/wallet_ledger/internal/wallet"
)

const defaultMaxRetries = 3

// Deps groups the collaborators of Service.
type Deps struct {
	Engine       *ledger.Engine
	Wallets      wallet.Repository
	Transactions Repository
	TxManager    infra.TxManager
	Notifier     notification.Notifier
	Logger       *slog.Logger
	MaxRetries   int
}

// Service runs deposits, withdrawals and approvals as atomic units of work.
// A unit that loses an optimistic-lock race is replayed from the read step.
type Service struct {
	engine       *ledger.Engine
	wallets      wallet.Repository
	transactions Repository
	txm          infra.TxManager
	notifier     notification.Notifier
	logger       *slog.Logger
	maxRetries   int
	now          func() time.Time
}

// NewService builds a transaction service.
func NewService(deps Deps) *Service {
	maxRetries := deps.MaxRetries
	if maxRetries < 1 {
		maxRetries = defaultMaxRetries
	}
	return &Service{
		engine:       deps.Engine,
		wallets:      deps.Wallets,
		transactions: deps.Transactions,
		txm:          deps.TxManager,
		notifier:     deps.Notifier,
		logger:       deps.Logger,
		maxRetries:   maxRetries,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Deposit credits the customer's wallet.
func (s *Service) Deposit(ctx context.Context, req Request) (View, error) {
	return s.record(ctx, "deposit", req, s.engine.Deposit)
}

// Withdraw debits the customer's wallet.
func (s *Service) Withdraw(ctx context.Context, req Request) (View, error) {
	return s.record(ctx, "withdraw", req, s.engine.Withdraw)
}

type movement func(w *ledger.Wallet, req ledger.Request) (ledger.Transaction, error)

func (s *Service) record(ctx context.Context, op string, req Request, apply movement) (View, error) {
	var (
		created ledger.Transaction
		owner   string
	)
	err := s.withRetry(ctx, op, func(ctx context.Context) error {
		w, err := s.wallets.FindByOwnerAndID(ctx, req.CustomerID, req.WalletID)
		if err != nil {
			return err
		}

		tx, err := apply(&w, ledger.Request{
			Amount:           req.Amount,
			CounterpartyType: req.CounterpartyType,
			Counterparty:     req.Counterparty,
		})
		if err != nil {
			return err
		}
		tx.ID = uuid.New().String()
		tx.CreatedAt = s.now()

		if err := s.wallets.Save(ctx, &w); err != nil {
			return err
		}
		if err := s.transactions.Create(ctx, tx); err != nil {
			return err
		}
		created, owner = tx, w.CustomerID
		return nil
	})
	if err != nil {
		return View{}, err
	}

	s.logger.InfoContext(ctx, "transaction recorded",
		"transaction_id", created.ID, "wallet_id", created.WalletID, "type", created.Type,
		"amount", created.Amount.String(), "status", created.Status)

	if created.Status == ledger.StatusPending {
		s.notify(ctx, notification.Message{
			Kind:        notification.KindTransactionPending,
			Destination: owner,
			Body:        fmt.Sprintf("%s of %s on wallet %s is awaiting approval", created.Type, created.Amount.StringFixed(2), created.WalletID),
		})
	}
	return NewView(created), nil
}

// ListWalletTransactions returns the history of a wallet owned by customerID.
func (s *Service) ListWalletTransactions(ctx context.Context, walletID, customerID string) ([]View, error) {
	w, err := s.wallets.FindByOwnerAndID(ctx, customerID, walletID)
	if err != nil {
		return nil, err
	}
	txs, err := s.transactions.ListByWallet(ctx, w.ID)
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(txs))
	for _, tx := range txs {
		views = append(views, NewView(tx))
	}
	return views, nil
}

// UpdateStatus approves or denies a pending transaction and reconciles the
// balance of the wallet that owns it.
func (s *Service) UpdateStatus(ctx context.Context, transactionID string, target ledger.Status) (View, error) {
	if err := ledger.ValidateTarget(target); err != nil {
		return View{}, err
	}

	var (
		resolved ledger.Transaction
		owner    string
	)
	err := s.withRetry(ctx, "update status", func(ctx context.Context) error {
		tx, err := s.transactions.FindPendingByID(ctx, transactionID)
		if err != nil {
			return err
		}
		w, err := s.wallets.FindByTransactionID(ctx, tx.ID)
		if err != nil {
			return err
		}

		expected := tx.Version
		if err := s.engine.Resolve(&w, &tx, target); err != nil {
			return err
		}
		if err := s.wallets.Save(ctx, &w); err != nil {
			return err
		}
		if err := s.transactions.UpdateStatus(ctx, tx.ID, target, expected); err != nil {
			return err
		}
		tx.Version = expected + 1
		resolved, owner = tx, w.CustomerID
		return nil
	})
	if err != nil {
		return View{}, err
	}

	s.logger.InfoContext(ctx, "transaction resolved",
		"transaction_id", resolved.ID, "wallet_id", resolved.WalletID, "status", resolved.Status)
	s.notify(ctx, notification.Message{
		Kind:        notification.KindTransactionResolved,
		Destination: owner,
		Body:        fmt.Sprintf("%s of %s on wallet %s was %s", resolved.Type, resolved.Amount.StringFixed(2), resolved.WalletID, resolved.Status),
	})
	return NewView(resolved), nil
}

func (s *Service) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		err = s.txm.WithinTx(ctx, fn)
		if !errors.Is(err, ledger.ErrVersionConflict) {
			return err
		}
		s.logger.WarnContext(ctx, "version conflict", "op", op, "attempt", attempt)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}

func (s *Service) notify(ctx context.Context, msg notification.Message) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "notification failed", "kind", msg.Kind, "error", err)
	}
}
