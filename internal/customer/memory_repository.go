package customer

import (
	"context"
	"sync"

	"github.com/digital-wallet/wallet_ledger/internal/ledger"
)

type memoryRepository struct {
	mu        sync.RWMutex
	customers map[string]Customer
}

// NewMemoryRepository builds an in-memory customer store for tests and local runs.
func NewMemoryRepository() Repository {
	return &memoryRepository{customers: make(map[string]Customer)}
}

func (r *memoryRepository) Create(_ context.Context, c Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.customers[c.ID]; exists {
		return ErrCustomerExists
	}
	for _, existing := range r.customers {
		if existing.TCKN == c.TCKN {
			return ErrCustomerExists
		}
	}
	r.customers[c.ID] = c
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.customers[id]
	if !ok {
		return Customer{}, ledger.ErrCustomerNotFound
	}
	return c, nil
}

func (r *memoryRepository) FindByTCKN(_ context.Context, tckn string) (Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.customers {
		if c.TCKN == tckn {
			return c, nil
		}
	}
	return Customer{}, ledger.ErrCustomerNotFound
}
