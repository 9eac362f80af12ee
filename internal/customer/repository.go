package customer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/digital-wallet/wallet_ledger/internal/infra"
	"github.com/digital-wallet/wallet_ledger/internal/ledger"
)

// ErrCustomerExists is returned when a TCKN is already registered.
var ErrCustomerExists = errors.New("customer exists")

// Repository persists customers.
type Repository interface {
	Create(ctx context.Context, c Customer) error
	FindByID(ctx context.Context, id string) (Customer, error)
	FindByTCKN(ctx context.Context, tckn string) (Customer, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed customer repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const customerColumns = `id, name, surname, tckn, role, password_hash, created_at`

// Create inserts a new customer.
func (r *PostgresRepository) Create(ctx context.Context, c Customer) error {
	id, err := uuid.Parse(c.ID)
	if err != nil {
		return err
	}
	_, err = infra.Conn(ctx, r.db).Exec(ctx, `INSERT INTO customers (`+customerColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`, id, c.Name, c.Surname, c.TCKN, string(c.Role), c.PasswordHash, c.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrCustomerExists
		}
		return ledger.Storage("insert customer", err)
	}
	return nil
}

// FindByID fetches a customer by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Customer, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return Customer{}, ledger.ErrCustomerNotFound
	}
	row := infra.Conn(ctx, r.db).QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, customerID)
	return scanCustomer(row)
}

// FindByTCKN fetches a customer by national identity number.
func (r *PostgresRepository) FindByTCKN(ctx context.Context, tckn string) (Customer, error) {
	row := infra.Conn(ctx, r.db).QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE tckn = $1`, tckn)
	return scanCustomer(row)
}

func scanCustomer(row pgx.Row) (Customer, error) {
	var (
		id        uuid.UUID
		role      string
		createdAt time.Time
		c         Customer
	)
	if err := row.Scan(&id, &c.Name, &c.Surname, &c.TCKN, &role, &c.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, ledger.ErrCustomerNotFound
		}
		return Customer{}, ledger.Storage("select customer", err)
	}
	c.ID = id.String()
	c.Role = Role(role)
	c.CreatedAt = createdAt.UTC()
	return c, nil
}
