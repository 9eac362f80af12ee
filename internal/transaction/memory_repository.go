package transaction

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/digital-wallet/wallet_ledger/internal/ledger"
)

// MemoryRepository keeps transactions in a map for tests and local runs. It
// also serves as the wallet store's transaction index.
type MemoryRepository struct {
	mu      sync.RWMutex
	storage map[string]ledger.Transaction
}

// NewMemoryRepository constructs an in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{storage: make(map[string]ledger.Transaction)}
}

func (r *MemoryRepository) Create(_ context.Context, tx ledger.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.storage[tx.ID]; exists {
		return errors.New("transaction exists")
	}
	r.storage[tx.ID] = tx
	return nil
}

func (r *MemoryRepository) FindPendingByID(_ context.Context, id string) (ledger.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tx, ok := r.storage[id]
	if !ok || tx.Status != ledger.StatusPending {
		return ledger.Transaction{}, ledger.ErrTransactionNotFound
	}
	return tx, nil
}

func (r *MemoryRepository) UpdateStatus(_ context.Context, id string, status ledger.Status, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.storage[id]
	if !ok {
		return ledger.ErrTransactionNotFound
	}
	if tx.Version != expectedVersion || tx.Status != ledger.StatusPending {
		return ledger.ErrVersionConflict
	}
	tx.Status = status
	tx.Version++
	r.storage[id] = tx
	return nil
}

func (r *MemoryRepository) ListByWallet(_ context.Context, walletID string) ([]ledger.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []ledger.Transaction{}
	for _, tx := range r.storage {
		if tx.WalletID == walletID {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// WalletIDOf returns the owning wallet of a transaction in any status.
func (r *MemoryRepository) WalletIDOf(_ context.Context, transactionID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tx, ok := r.storage[transactionID]
	if !ok {
		return "", ledger.ErrTransactionNotFound
	}
	return tx.WalletID, nil
}
