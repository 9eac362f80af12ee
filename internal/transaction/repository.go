package transaction

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/digital-wallet/wallet_ledger/internal/infra"
	"github.com/digital-wallet/wallet_ledger/internal/ledger"
)

// Repository persists transactions. UpdateStatus only succeeds while the
// stored row is still PENDING at expectedVersion.
type Repository interface {
	Create(ctx context.Context, tx ledger.Transaction) error
	FindPendingByID(ctx context.Context, id string) (ledger.Transaction, error)
	UpdateStatus(ctx context.Context, id string, status ledger.Status, expectedVersion int64) error
	ListByWallet(ctx context.Context, walletID string) ([]ledger.Transaction, error)
}

// PostgresRepository stores transactions in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const transactionColumns = `id, wallet_id, amount, type, counterparty_type, counterparty, status, created_at, version`

// Create inserts a transaction record.
func (r *PostgresRepository) Create(ctx context.Context, tx ledger.Transaction) error {
	id, err := uuid.Parse(tx.ID)
	if err != nil {
		return err
	}
	walletID, err := uuid.Parse(tx.WalletID)
	if err != nil {
		return ledger.ErrWalletNotFound
	}
	_, err = infra.Conn(ctx, r.db).Exec(ctx, `INSERT INTO transactions (`+transactionColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, walletID, tx.Amount, string(tx.Type), string(tx.CounterpartyType), tx.Counterparty,
		string(tx.Status), tx.CreatedAt.UTC(), tx.Version)
	if err != nil {
		return ledger.Storage("insert transaction", err)
	}
	return nil
}

// FindPendingByID returns the transaction only while it is PENDING.
func (r *PostgresRepository) FindPendingByID(ctx context.Context, id string) (ledger.Transaction, error) {
	tid, err := uuid.Parse(id)
	if err != nil {
		return ledger.Transaction{}, ledger.ErrTransactionNotFound
	}
	row := infra.Conn(ctx, r.db).QueryRow(ctx, `SELECT `+transactionColumns+`
        FROM transactions WHERE id = $1 AND status = $2`, tid, string(ledger.StatusPending))
	return scanTransaction(row)
}

// UpdateStatus moves a pending transaction to status and bumps its version.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status ledger.Status, expectedVersion int64) error {
	tid, err := uuid.Parse(id)
	if err != nil {
		return ledger.ErrTransactionNotFound
	}
	tag, err := infra.Conn(ctx, r.db).Exec(ctx, `UPDATE transactions
        SET status = $1, version = version + 1
        WHERE id = $2 AND version = $3 AND status = $4`,
		string(status), tid, expectedVersion, string(ledger.StatusPending))
	if err != nil {
		return ledger.Storage("update transaction status", err)
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrVersionConflict
	}
	return nil
}

// ListByWallet returns the wallet's transactions, oldest first.
func (r *PostgresRepository) ListByWallet(ctx context.Context, walletID string) ([]ledger.Transaction, error) {
	wid, err := uuid.Parse(walletID)
	if err != nil {
		return []ledger.Transaction{}, nil
	}
	rows, err := infra.Conn(ctx, r.db).Query(ctx, `SELECT `+transactionColumns+`
        FROM transactions WHERE wallet_id = $1 ORDER BY created_at, id`, wid)
	if err != nil {
		return nil, ledger.Storage("list transactions", err)
	}
	defer rows.Close()

	out := []ledger.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.Storage("list transactions", err)
	}
	return out, nil
}

func scanTransaction(row pgx.Row) (ledger.Transaction, error) {
	var (
		id, walletID uuid.UUID
		amount       decimal.Decimal
		kind, cpType string
		status       string
		createdAt    time.Time
		tx           ledger.Transaction
	)
	err := row.Scan(&id, &walletID, &amount, &kind, &cpType, &tx.Counterparty, &status, &createdAt, &tx.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.Transaction{}, ledger.ErrTransactionNotFound
		}
		return ledger.Transaction{}, ledger.Storage("scan transaction", err)
	}
	tx.ID = id.String()
	tx.WalletID = walletID.String()
	tx.Amount = amount
	tx.Type = ledger.Type(kind)
	tx.CounterpartyType = ledger.CounterpartyType(cpType)
	tx.Status = ledger.Status(status)
	tx.CreatedAt = createdAt.UTC()
	return tx, nil
}
