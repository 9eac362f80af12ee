package infra

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxManager runs a unit of work so that every write inside fn commits or
// rolls back together.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// Conn returns the transaction bound to ctx, or db when none is active.
func Conn(ctx context.Context, db *pgxpool.Pool) Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return db
}

// PostgresTxManager binds a pgx transaction to the context for the duration of fn.
type PostgresTxManager struct {
	db *pgxpool.Pool
}

// NewPostgresTxManager builds a TxManager backed by PostgreSQL.
func NewPostgresTxManager(db *pgxpool.Pool) *PostgresTxManager {
	return &PostgresTxManager{db: db}
}

// WithinTx begins a transaction, runs fn and commits when fn succeeds.
func (m *PostgresTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// MemoryTxManager serialises units of work over the in-memory repositories.
// It cannot roll back: writes made by fn before it fails stay applied. Units
// of work must therefore finish every check that can fail before their first
// write, and repositories used with it must not fail a write once the unit's
// reads succeeded under the lock. Use PostgresTxManager when that does not hold.
type MemoryTxManager struct {
	mu sync.Mutex
}

// NewMemoryTxManager builds a TxManager for in-memory backends.
func NewMemoryTxManager() *MemoryTxManager {
	return &MemoryTxManager{}
}

// WithinTx runs fn while holding the manager lock.
func (m *MemoryTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}
