package transaction

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digital-wallet/wallet_ledger/internal/infra"
	"github.com/digital-wallet/wallet_ledger/internal/ledger"
	"github.com/digital-wallet/wallet_ledger/internal/logging"
	"github.com/digital-wallet/wallet_ledger/internal/notification"
	"github.com/digital-wallet/wallet_ledger/internal/wallet"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []notification.Message
}

func (r *recordingNotifier) Send(_ context.Context, m notification.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, m)
	return nil
}

func (r *recordingNotifier) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.messages))
	for _, m := range r.messages {
		out = append(out, m.Kind)
	}
	return out
}

type fixture struct {
	svc      *Service
	wallets  *wallet.MemoryRepository
	txs      *MemoryRepository
	notifier *recordingNotifier
	owner    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	txs := NewMemoryRepository()
	wallets := wallet.NewMemoryRepository(txs)
	notifier := &recordingNotifier{}
	svc := NewService(Deps{
		Engine:       ledger.NewEngine(decimal.NewFromInt(1000)),
		Wallets:      wallets,
		Transactions: txs,
		TxManager:    infra.NewMemoryTxManager(),
		Notifier:     notifier,
		Logger:       logging.Discard(),
		MaxRetries:   3,
	})
	return &fixture{svc: svc, wallets: wallets, txs: txs, notifier: notifier, owner: uuid.NewString()}
}

func (f *fixture) seedWallet(t *testing.T, balance, usable int64, shopping, withdraw bool) ledger.Wallet {
	t.Helper()
	w := ledger.Wallet{
		ID:                uuid.NewString(),
		CustomerID:        f.owner,
		Name:              "Main",
		Currency:          ledger.CurrencyTRY,
		Balance:           decimal.NewFromInt(balance),
		UsableBalance:     decimal.NewFromInt(usable),
		ActiveForShopping: shopping,
		ActiveForWithdraw: withdraw,
		CreatedAt:         time.Now().UTC(),
	}
	require.NoError(t, f.wallets.Create(context.Background(), w))
	return w
}

func (f *fixture) wallet(t *testing.T, id string) ledger.Wallet {
	t.Helper()
	w, err := f.wallets.FindByOwnerAndID(context.Background(), f.owner, id)
	require.NoError(t, err)
	return w
}

func (f *fixture) request(walletID string, amount string, cp ledger.CounterpartyType) Request {
	return Request{
		Amount:           decimal.RequireFromString(amount),
		WalletID:         walletID,
		CustomerID:       f.owner,
		CounterpartyType: cp,
		Counterparty:     "TR000000000000000000000001",
	}
}

func assertBalances(t *testing.T, w ledger.Wallet, balance, usable string) {
	t.Helper()
	assert.True(t, w.Balance.Equal(decimal.RequireFromString(balance)), "balance: want %s got %s", balance, w.Balance)
	assert.True(t, w.UsableBalance.Equal(decimal.RequireFromString(usable)), "usable: want %s got %s", usable, w.UsableBalance)
}

func TestDepositThenWithdrawRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.seedWallet(t, 0, 0, true, true)

	dep, err := f.svc.Deposit(ctx, f.request(w.ID, "100", ledger.CounterpartyIBAN))
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusApproved, dep.Status)
	assertBalances(t, f.wallet(t, w.ID), "100", "100")

	wd, err := f.svc.Withdraw(ctx, f.request(w.ID, "40", ledger.CounterpartyIBAN))
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusApproved, wd.Status)
	assertBalances(t, f.wallet(t, w.ID), "60", "60")

	views, err := f.svc.ListWalletTransactions(ctx, w.ID, f.owner)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Empty(t, f.notifier.kinds())
	assert.Equal(t, int64(2), f.wallet(t, w.ID).Version)
}

func TestPendingWithdrawThenApprove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.seedWallet(t, 3000, 3000, true, true)

	view, err := f.svc.Withdraw(ctx, f.request(w.ID, "2000", ledger.CounterpartyIBAN))
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPending, view.Status)
	assertBalances(t, f.wallet(t, w.ID), "3000", "1000")

	resolved, err := f.svc.UpdateStatus(ctx, view.ID, ledger.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusApproved, resolved.Status)
	assertBalances(t, f.wallet(t, w.ID), "1000", "1000")

	assert.Equal(t, []string{notification.KindTransactionPending, notification.KindTransactionResolved}, f.notifier.kinds())
}

func TestPendingDepositDenied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.seedWallet(t, 0, 0, false, false)

	view, err := f.svc.Deposit(ctx, f.request(w.ID, "1500.25", ledger.CounterpartyIBAN))
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPending, view.Status)
	assertBalances(t, f.wallet(t, w.ID), "1500.25", "0")

	_, err = f.svc.UpdateStatus(ctx, view.ID, ledger.StatusDenied)
	require.NoError(t, err)
	assertBalances(t, f.wallet(t, w.ID), "0", "0")
}

func TestWithdrawRejectionsLeaveStateUntouched(t *testing.T) {
	cases := []struct {
		name     string
		amount   string
		cp       ledger.CounterpartyType
		shopping bool
		withdraw bool
		want     error
	}{
		{name: "insufficient", amount: "500.01", cp: ledger.CounterpartyIBAN, shopping: true, withdraw: true, want: ledger.ErrInsufficientBalance},
		{name: "payment disabled", amount: "10", cp: ledger.CounterpartyPayment, withdraw: true, want: ledger.ErrPaymentNotAllowed},
		{name: "transfer disabled", amount: "10", cp: ledger.CounterpartyIBAN, shopping: true, want: ledger.ErrTransferNotAllowed},
		{name: "bad scale", amount: "1.001", cp: ledger.CounterpartyIBAN, shopping: true, withdraw: true, want: ledger.ErrInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			w := f.seedWallet(t, 500, 500, tc.shopping, tc.withdraw)

			_, err := f.svc.Withdraw(context.Background(), f.request(w.ID, tc.amount, tc.cp))
			require.ErrorIs(t, err, tc.want)

			after := f.wallet(t, w.ID)
			assertBalances(t, after, "500", "500")
			assert.Equal(t, w.Version, after.Version)

			txs, err := f.txs.ListByWallet(context.Background(), w.ID)
			require.NoError(t, err)
			assert.Empty(t, txs)
		})
	}
}

func TestMovementOnForeignWallet(t *testing.T) {
	f := newFixture(t)
	w := f.seedWallet(t, 0, 0, true, true)

	req := f.request(w.ID, "10", ledger.CounterpartyIBAN)
	req.CustomerID = uuid.NewString()
	_, err := f.svc.Deposit(context.Background(), req)
	require.ErrorIs(t, err, ledger.ErrWalletNotFound)

	_, err = f.svc.ListWalletTransactions(context.Background(), w.ID, req.CustomerID)
	require.ErrorIs(t, err, ledger.ErrWalletNotFound)
}

type countingRepository struct {
	Repository
	lookups int
}

func (c *countingRepository) FindPendingByID(ctx context.Context, id string) (ledger.Transaction, error) {
	c.lookups++
	return c.Repository.FindPendingByID(ctx, id)
}

func TestUpdateToPendingRejectedBeforeLookup(t *testing.T) {
	f := newFixture(t)
	counting := &countingRepository{Repository: f.txs}
	f.svc.transactions = counting

	_, err := f.svc.UpdateStatus(context.Background(), uuid.NewString(), ledger.StatusPending)
	require.ErrorIs(t, err, ledger.ErrInvalidStatusTransition)
	assert.Zero(t, counting.lookups)
}

func TestUpdateResolvedTransactionNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.seedWallet(t, 0, 0, true, true)

	approved, err := f.svc.Deposit(ctx, f.request(w.ID, "10", ledger.CounterpartyIBAN))
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, approved.ID, ledger.StatusDenied)
	require.ErrorIs(t, err, ledger.ErrTransactionNotFound)

	pending, err := f.svc.Deposit(ctx, f.request(w.ID, "2000", ledger.CounterpartyIBAN))
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, pending.ID, ledger.StatusApproved)
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, pending.ID, ledger.StatusDenied)
	require.ErrorIs(t, err, ledger.ErrTransactionNotFound)

	assertBalances(t, f.wallet(t, w.ID), "2010", "2010")
}

type conflictingWallets struct {
	wallet.Repository
	conflicts int
	saves     int
}

func (c *conflictingWallets) Save(ctx context.Context, w *ledger.Wallet) error {
	c.saves++
	if c.saves <= c.conflicts {
		return ledger.ErrVersionConflict
	}
	return c.Repository.Save(ctx, w)
}

func TestVersionConflictIsRetried(t *testing.T) {
	f := newFixture(t)
	w := f.seedWallet(t, 0, 0, true, true)
	stub := &conflictingWallets{Repository: f.wallets, conflicts: 2}
	f.svc.wallets = stub

	_, err := f.svc.Deposit(context.Background(), f.request(w.ID, "25", ledger.CounterpartyIBAN))
	require.NoError(t, err)
	assert.Equal(t, 3, stub.saves)
	assertBalances(t, f.wallet(t, w.ID), "25", "25")
}

func TestVersionConflictGivesUpAfterMaxRetries(t *testing.T) {
	f := newFixture(t)
	w := f.seedWallet(t, 0, 0, true, true)
	stub := &conflictingWallets{Repository: f.wallets, conflicts: 10}
	f.svc.wallets = stub

	_, err := f.svc.Deposit(context.Background(), f.request(w.ID, "25", ledger.CounterpartyIBAN))
	require.ErrorIs(t, err, ledger.ErrVersionConflict)
	assert.Equal(t, 3, stub.saves)
	assertBalances(t, f.wallet(t, w.ID), "0", "0")

	txs, err := f.txs.ListByWallet(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	f := newFixture(t)
	w := f.seedWallet(t, 100, 100, true, true)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Withdraw(context.Background(), f.request(w.ID, "30", ledger.CounterpartyIBAN))
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			if !errors.Is(err, ledger.ErrInsufficientBalance) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	assertBalances(t, f.wallet(t, w.ID), "10", "10")
}
