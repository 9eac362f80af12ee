package wallet

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/digital-wallet/wallet_ledger/internal/ledger"
)

// TransactionIndex tells the in-memory store which wallet owns a transaction.
type TransactionIndex interface {
	WalletIDOf(ctx context.Context, transactionID string) (string, error)
}

// MemoryRepository keeps wallets in a map for tests and local runs.
type MemoryRepository struct {
	mu           sync.RWMutex
	storage      map[string]ledger.Wallet
	transactions TransactionIndex
}

// NewMemoryRepository constructs an in-memory repository. transactions may be
// nil when FindByTransactionID is never called.
func NewMemoryRepository(transactions TransactionIndex) *MemoryRepository {
	return &MemoryRepository{storage: make(map[string]ledger.Wallet), transactions: transactions}
}

func (r *MemoryRepository) Create(_ context.Context, w ledger.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.storage[w.ID]; exists {
		return errors.New("wallet exists")
	}
	r.storage[w.ID] = w
	return nil
}

func (r *MemoryRepository) FindByOwnerAndID(_ context.Context, customerID, walletID string) (ledger.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.storage[walletID]
	if !ok || w.CustomerID != customerID {
		return ledger.Wallet{}, ledger.ErrWalletNotFound
	}
	return w, nil
}

func (r *MemoryRepository) FindByTransactionID(ctx context.Context, transactionID string) (ledger.Wallet, error) {
	if r.transactions == nil {
		return ledger.Wallet{}, ledger.ErrWalletNotFound
	}
	walletID, err := r.transactions.WalletIDOf(ctx, transactionID)
	if err != nil {
		return ledger.Wallet{}, ledger.ErrWalletNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.storage[walletID]
	if !ok {
		return ledger.Wallet{}, ledger.ErrWalletNotFound
	}
	return w, nil
}

func (r *MemoryRepository) ListByOwner(_ context.Context, customerID string) ([]ledger.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wallets := []ledger.Wallet{}
	for _, w := range r.storage {
		if w.CustomerID == customerID {
			wallets = append(wallets, w)
		}
	}
	sort.Slice(wallets, func(i, j int) bool {
		if wallets[i].CreatedAt.Equal(wallets[j].CreatedAt) {
			return wallets[i].ID < wallets[j].ID
		}
		return wallets[i].CreatedAt.Before(wallets[j].CreatedAt)
	})
	return wallets, nil
}

func (r *MemoryRepository) Save(_ context.Context, w *ledger.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.storage[w.ID]
	if !ok {
		return ledger.ErrWalletNotFound
	}
	if stored.Version != w.Version {
		return ledger.ErrVersionConflict
	}
	stored.Balance = w.Balance
	stored.UsableBalance = w.UsableBalance
	stored.Version++
	r.storage[w.ID] = stored
	w.Version = stored.Version
	return nil
}
