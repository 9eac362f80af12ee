package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/digital-wallet/wallet_ledger/internal/auth"
	"github.com/digital-wallet/wallet_ledger/internal/config"
	"github.com/digital-wallet/wallet_ledger/internal/customer"
	"github.com/digital-wallet/wallet_ledger/internal/infra"
	"github.com/digital-wallet/wallet_ledger/internal/ledger"
	"github.com/digital-wallet/wallet_ledger/internal/middleware"
	"github.com/digital-wallet/wallet_ledger/internal/notification"
	"github.com/digital-wallet/wallet_ledger/internal/transaction"
	"github.com/digital-wallet/wallet_ledger/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes. DB and Cache
// may be nil in development, in which case in-memory stores are used.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// stores groups the repositories chosen for the configured backend.
type stores struct {
	customers    customer.Repository
	wallets      wallet.Repository
	transactions transaction.Repository
	txm          infra.TxManager
}

func newStores(db *pgxpool.Pool) stores {
	if db != nil {
		return stores{
			customers:    customer.NewPostgresRepository(db),
			wallets:      wallet.NewPostgresRepository(db),
			transactions: transaction.NewPostgresRepository(db),
			txm:          infra.NewPostgresTxManager(db),
		}
	}
	txs := transaction.NewMemoryRepository()
	return stores{
		customers:    customer.NewMemoryRepository(),
		wallets:      wallet.NewMemoryRepository(txs),
		transactions: txs,
		txm:          infra.NewMemoryTxManager(),
	}
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDevelopment() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	st := newStores(d.DB)

	notifiers := notification.Fanout{notification.NewLoggerNotifier(d.Logger)}
	if d.Cache != nil {
		notifiers = append(notifiers, notification.NewRedisNotifier(d.Cache, ""))
	}

	customerSvc := customer.NewService(st.customers)
	if d.Cfg.AdminTCKN != "" && d.Cfg.AdminPassword != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		admin, err := customerSvc.EnsureAdmin(ctx, d.Cfg.AdminTCKN, d.Cfg.AdminPassword)
		cancel()
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		d.Logger.Info("admin account ready", "customer_id", admin.ID)
	}

	walletSvc := wallet.NewService(st.wallets, customerSvc, d.Logger)
	transactionSvc := transaction.NewService(transaction.Deps{
		Engine:       ledger.NewEngine(d.Cfg.ApprovalThreshold),
		Wallets:      st.wallets,
		Transactions: st.transactions,
		TxManager:    st.txm,
		Notifier:     notifiers,
		Logger:       d.Logger,
		MaxRetries:   d.Cfg.MaxRetries,
	})
	authSvc := auth.NewService(d.Cfg, st.customers)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterAuthRoutes(api, auth.NewHandler(customerSvc, authSvc), middleware.LoginRateLimit(d.Cache, d.Cfg.LoginRateLimit))

	protected := api.Group("", middleware.JWTAuth(authSvc))
	admin := middleware.RequireAdmin()
	RegisterCustomerRoutes(protected, customer.NewHandler(customerSvc), admin)
	RegisterWalletRoutes(protected, wallet.NewHandler(walletSvc))
	RegisterTransactionRoutes(protected, transaction.NewHandler(transactionSvc),
		middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger), admin)

	return nil
}
