package wallet

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

// Repository persists wallets. Save compares the stored version with
// w.Version and fails with ledger.ErrVersionConflict when they differ.
type Repository interface {
	Create(ctx context.Context, w ledger.Wallet) error
	FindByOwnerAndID(ctx context.Context, customerID, walletID string) (ledger.Wallet, error)
	FindByTransactionID(ctx context.Context, transactionID string) (ledger.Wallet, error)
	ListByOwner(ctx context.Context, customerID string) ([]ledger.Wallet, error)
	Save(ctx context.Context, w *ledger.Wallet) error
}

// PostgresRepository stores wallets in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const walletColumns = `w.id, w.customer_id, w.wallet_name, w.currency, w.active_for_shopping, w.active_for_withdraw,
        w.balance, w.usable_balance, w.created_at, w.version`

// Create inserts a wallet record.
func (r *PostgresRepository) Create(ctx context.Context, w ledger.Wallet) error {
	walletID, err := uuid.Parse(w.ID)
	if err != nil {
		return err
	}
	customerID, err := uuid.Parse(w.CustomerID)
	if err != nil {
		return ledger.ErrCustomerNotFound
	}
	_, err = infra.Conn(ctx, r.db).Exec(ctx, `INSERT INTO wallets (id, customer_id, wallet_name, currency,
        active_for_shopping, active_for_withdraw, balance, usable_balance, created_at, version)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		walletID, customerID, w.Name, string(w.Currency), w.ActiveForShopping, w.ActiveForWithdraw,
		w.Balance, w.UsableBalance, w.CreatedAt.UTC(), w.Version)
	if err != nil {
		return ledger.Storage("insert wallet", err)
	}
	return nil
}

// FindByOwnerAndID fetches a wallet only when it belongs to customerID.
func (r *PostgresRepository) FindByOwnerAndID(ctx context.Context, customerID, walletID string) (ledger.Wallet, error) {
	cid, err := uuid.Parse(customerID)
	if err != nil {
		return ledger.Wallet{}, ledger.ErrWalletNotFound
	}
	wid, err := uuid.Parse(walletID)
	if err != nil {
		return ledger.Wallet{}, ledger.ErrWalletNotFound
	}
	row := infra.Conn(ctx, r.db).QueryRow(ctx, `SELECT `+walletColumns+`
        FROM wallets w WHERE w.id = $1 AND w.customer_id = $2`, wid, cid)
	return scanWallet(row)
}

// FindByTransactionID resolves the wallet that owns a transaction.
func (r *PostgresRepository) FindByTransactionID(ctx context.Context, transactionID string) (ledger.Wallet, error) {
	tid, err := uuid.Parse(transactionID)
	if err != nil {
		return ledger.Wallet{}, ledger.ErrWalletNotFound
	}
	row := infra.Conn(ctx, r.db).QueryRow(ctx, `SELECT `+walletColumns+`
        FROM wallets w JOIN transactions t ON t.wallet_id = w.id WHERE t.id = $1`, tid)
	return scanWallet(row)
}

// ListByOwner returns the customer's wallets, oldest first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, customerID string) ([]ledger.Wallet, error) {
	cid, err := uuid.Parse(customerID)
	if err != nil {
		return []ledger.Wallet{}, nil
	}
	rows, err := infra.Conn(ctx, r.db).Query(ctx, `SELECT `+walletColumns+`
        FROM wallets w WHERE w.customer_id = $1 ORDER BY w.created_at, w.id`, cid)
	if err != nil {
		return nil, ledger.Storage("list wallets", err)
	}
	defer rows.Close()

	wallets := []ledger.Wallet{}
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.Storage("list wallets", err)
	}
	return wallets, nil
}

// Save writes the balances of w and bumps its version.
func (r *PostgresRepository) Save(ctx context.Context, w *ledger.Wallet) error {
	wid, err := uuid.Parse(w.ID)
	if err != nil {
		return ledger.ErrWalletNotFound
	}
	tag, err := infra.Conn(ctx, r.db).Exec(ctx, `UPDATE wallets
        SET balance = $1, usable_balance = $2, version = version + 1
        WHERE id = $3 AND version = $4`, w.Balance, w.UsableBalance, wid, w.Version)
	if err != nil {
		return ledger.Storage("update wallet", err)
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrVersionConflict
	}
	w.Version++
	return nil
}

func scanWallet(row pgx.Row) (ledger.Wallet, error) {
	var (
		id, customerID uuid.UUID
		currency       string
		createdAt      time.Time
		balance        decimal.Decimal
		usable         decimal.Decimal
		w              ledger.Wallet
	)
	err := row.Scan(&id, &customerID, &w.Name, &currency, &w.ActiveForShopping, &w.ActiveForWithdraw,
		&balance, &usable, &createdAt, &w.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.Wallet{}, ledger.ErrWalletNotFound
		}
		return ledger.Wallet{}, ledger.Storage("scan wallet", err)
	}
	w.ID = id.String()
	w.CustomerID = customerID.String()
	w.Currency = ledger.Currency(currency)
	w.Balance = balance
	w.UsableBalance = usable
	w.CreatedAt = createdAt.UTC()
	return w, nil
}
