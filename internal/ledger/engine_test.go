package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newWallet(balance, usable string) *Wallet {
	return &Wallet{
		ID:                "wallet-1",
		CustomerID:        "customer-1",
		Currency:          CurrencyTRY,
		Balance:           dec(balance),
		UsableBalance:     dec(usable),
		ActiveForShopping: true,
		ActiveForWithdraw: true,
	}
}

func assertBalances(t *testing.T, w *Wallet, balance, usable string) {
	t.Helper()
	assert.Truef(t, w.Balance.Equal(dec(balance)), "balance: expected %s, got %s", balance, w.Balance)
	assert.Truef(t, w.UsableBalance.Equal(dec(usable)), "usable balance: expected %s, got %s", usable, w.UsableBalance)
}

func TestDecideStatus(t *testing.T) {
	e := NewEngine(dec("1000"))

	cases := map[string]Status{
		"0.01":    StatusApproved,
		"100":     StatusApproved,
		"999.99":  StatusApproved,
		"1000":    StatusApproved,
		"1000.00": StatusApproved,
		"1000.01": StatusPending,
		"2000":    StatusPending,
	}
	for amount, want := range cases {
		assert.Equalf(t, want, e.DecideStatus(dec(amount)), "amount %s", amount)
	}
}

func TestNewEngineFallsBackToDefaultThreshold(t *testing.T) {
	e := NewEngine(decimal.Zero)
	assert.True(t, e.Threshold().Equal(DefaultThreshold))
}

func TestValidateAmount(t *testing.T) {
	require.NoError(t, ValidateAmount(dec("10.25")))
	require.NoError(t, ValidateAmount(dec("10.50")))
	require.ErrorIs(t, ValidateAmount(decimal.Zero), ErrInvalidAmount)
	require.ErrorIs(t, ValidateAmount(dec("-5")), ErrInvalidAmount)
	require.ErrorIs(t, ValidateAmount(dec("1.001")), ErrInvalidAmount)
}

func TestDeposit(t *testing.T) {
	e := NewEngine(dec("1000"))

	t.Run("approved credits both balances", func(t *testing.T) {
		w := newWallet("500", "500")
		tx, err := e.Deposit(w, Request{Amount: dec("100"), CounterpartyType: CounterpartyIBAN, Counterparty: "TR123"})
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, tx.Status)
		assert.Equal(t, TypeDeposit, tx.Type)
		assert.Equal(t, w.ID, tx.WalletID)
		assertBalances(t, w, "600", "600")
	})

	t.Run("pending credits only the total balance", func(t *testing.T) {
		w := newWallet("500", "500")
		tx, err := e.Deposit(w, Request{Amount: dec("2000"), CounterpartyType: CounterpartyIBAN, Counterparty: "TR123"})
		require.NoError(t, err)
		assert.Equal(t, StatusPending, tx.Status)
		assertBalances(t, w, "2500", "500")
	})

	t.Run("ignores feature flags", func(t *testing.T) {
		w := newWallet("0", "0")
		w.ActiveForShopping = false
		w.ActiveForWithdraw = false
		_, err := e.Deposit(w, Request{Amount: dec("10"), CounterpartyType: CounterpartyPayment})
		require.NoError(t, err)
		assertBalances(t, w, "10", "10")
	})

	t.Run("rejects invalid amount without mutation", func(t *testing.T) {
		w := newWallet("500", "500")
		_, err := e.Deposit(w, Request{Amount: dec("0")})
		require.ErrorIs(t, err, ErrInvalidAmount)
		assertBalances(t, w, "500", "500")
	})

	t.Run("rejects a balance past the column limit", func(t *testing.T) {
		w := newWallet("999999999999000", "999999999999000")
		_, err := e.Deposit(w, Request{Amount: dec("999.99"), Counterparty: "TR123"})
		require.NoError(t, err)
		assertBalances(t, w, "999999999999999.99", "999999999999999.99")

		_, err = e.Deposit(w, Request{Amount: dec("0.01"), Counterparty: "TR123"})
		require.ErrorIs(t, err, ErrBalanceLimit)
		assertBalances(t, w, "999999999999999.99", "999999999999999.99")
	})
}

func TestWithdraw(t *testing.T) {
	e := NewEngine(dec("1000"))

	t.Run("approved debits both balances", func(t *testing.T) {
		w := newWallet("5000", "5000")
		tx, err := e.Withdraw(w, Request{Amount: dec("100"), CounterpartyType: CounterpartyIBAN, Counterparty: "TR123123"})
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, tx.Status)
		assert.Equal(t, TypeWithdraw, tx.Type)
		assertBalances(t, w, "4900", "4900")
	})

	t.Run("pending holds the usable balance only", func(t *testing.T) {
		w := newWallet("5000", "5000")
		tx, err := e.Withdraw(w, Request{Amount: dec("2000"), CounterpartyType: CounterpartyIBAN, Counterparty: "TR123123"})
		require.NoError(t, err)
		assert.Equal(t, StatusPending, tx.Status)
		assertBalances(t, w, "5000", "3000")
	})

	t.Run("exact usable balance is allowed", func(t *testing.T) {
		w := newWallet("50", "50")
		_, err := e.Withdraw(w, Request{Amount: dec("50"), CounterpartyType: CounterpartyIBAN})
		require.NoError(t, err)
		assertBalances(t, w, "0", "0")
	})

	rejections := []struct {
		name string
		prep func(w *Wallet)
		req  Request
		want error
	}{
		{
			name: "insufficient usable balance",
			prep: func(w *Wallet) { w.UsableBalance = dec("50") },
			req:  Request{Amount: dec("100"), CounterpartyType: CounterpartyIBAN},
			want: ErrInsufficientBalance,
		},
		{
			name: "payment on wallet not active for shopping",
			prep: func(w *Wallet) { w.ActiveForShopping = false },
			req:  Request{Amount: dec("100"), CounterpartyType: CounterpartyPayment},
			want: ErrPaymentNotAllowed,
		},
		{
			name: "transfer on wallet not active for withdraw",
			prep: func(w *Wallet) { w.ActiveForWithdraw = false },
			req:  Request{Amount: dec("100"), CounterpartyType: CounterpartyIBAN},
			want: ErrTransferNotAllowed,
		},
		{
			name: "gate checked before balance",
			prep: func(w *Wallet) { w.ActiveForShopping = false; w.UsableBalance = decimal.Zero },
			req:  Request{Amount: dec("100"), CounterpartyType: CounterpartyPayment},
			want: ErrPaymentNotAllowed,
		},
		{
			name: "wrongly scaled amount",
			prep: func(*Wallet) {},
			req:  Request{Amount: dec("10.005"), CounterpartyType: CounterpartyIBAN},
			want: ErrInvalidAmount,
		},
	}
	for _, tc := range rejections {
		t.Run(tc.name, func(t *testing.T) {
			w := newWallet("5000", "5000")
			tc.prep(w)
			before := *w

			_, err := e.Withdraw(w, tc.req)
			require.ErrorIs(t, err, tc.want)
			assert.Equal(t, before, *w)
		})
	}
}

func TestResolve(t *testing.T) {
	e := NewEngine(dec("1000"))

	cases := []struct {
		name            string
		kind            Type
		target          Status
		balance, usable string
	}{
		{"approve withdraw settles balance", TypeWithdraw, StatusApproved, "3000", "1000"},
		{"deny withdraw releases hold", TypeWithdraw, StatusDenied, "5000", "3000"},
		{"approve deposit makes funds usable", TypeDeposit, StatusApproved, "5000", "3000"},
		{"deny deposit reverses credit", TypeDeposit, StatusDenied, "3000", "1000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := newWallet("5000", "1000")
			tx := &Transaction{ID: "tx-1", WalletID: w.ID, Amount: dec("2000"), Type: tc.kind, Status: StatusPending}

			require.NoError(t, e.Resolve(w, tx, tc.target))
			assert.Equal(t, tc.target, tx.Status)
			assertBalances(t, w, tc.balance, tc.usable)
		})
	}
}

func TestResolveRejections(t *testing.T) {
	e := NewEngine(dec("1000"))

	w := newWallet("5000", "3000")
	tx := &Transaction{Amount: dec("2000"), Type: TypeWithdraw, Status: StatusPending}
	require.ErrorIs(t, e.Resolve(w, tx, StatusPending), ErrInvalidStatusTransition)
	assert.Equal(t, StatusPending, tx.Status)

	for _, terminal := range []Status{StatusApproved, StatusDenied} {
		done := &Transaction{Amount: dec("2000"), Type: TypeWithdraw, Status: terminal}
		require.ErrorIs(t, e.Resolve(w, done, StatusApproved), ErrTransactionNotFound)
	}
	assertBalances(t, w, "5000", "3000")
}

func TestPendingWithdrawThenApproveScenario(t *testing.T) {
	e := NewEngine(dec("1000"))
	w := newWallet("3000", "3000")

	tx, err := e.Withdraw(w, Request{Amount: dec("2000"), CounterpartyType: CounterpartyIBAN, Counterparty: "TR1"})
	require.NoError(t, err)
	require.Equal(t, StatusPending, tx.Status)
	assertBalances(t, w, "3000", "1000")

	require.NoError(t, e.Resolve(w, &tx, StatusApproved))
	assertBalances(t, w, "1000", "1000")
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("approved")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, st)

	_, err = ParseStatus("cancelled")
	require.Error(t, err)
}
