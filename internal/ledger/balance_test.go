package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

func TestComputeBalances(t *testing.T) {
	t.Parallel()

	accounts := []models.Account{
		{ID: "acc-1", Name: "Bank", Type: models.AccountBank, InitialBalance: dec("1000")},
		{ID: "acc-2", Name: "Wallet", Type: models.AccountCash, InitialBalance: dec("50")},
	}
	txns := []models.Transaction{
		{ID: "t1", Type: models.TransactionIncome, Amount: dec("5000"), AmountAfterTax: decPtr("4250"), Status: models.StatusPaid, AccountID: "acc-1"},
		{ID: "t2", Type: models.TransactionExpense, Amount: dec("1200"), Status: models.StatusPaid, AccountID: "acc-1"},
		{ID: "t3", Type: models.TransactionExpense, Amount: dec("300"), Status: models.StatusUnpaid, AccountID: "acc-1"},
		{ID: "t4", Type: models.TransactionExpense, Amount: dec("20.50"), Status: models.StatusPaid, AccountID: "acc-2"},
		{ID: "t5", Type: models.TransactionIncome, Amount: dec("99"), Status: models.StatusDebt, AccountID: "acc-2"},
		{ID: "t6", Type: models.TransactionExpense, Amount: dec("10"), Status: models.StatusInstallment, AccountID: "acc-2"},
	}

	got := ComputeBalances(accounts, txns)
	require.Len(t, got, 2)
	require.True(t, got[0].Balance.Equal(dec("4050")), got[0].Balance.String())
	require.True(t, got[1].Balance.Equal(dec("29.5")), got[1].Balance.String())

	t.Run("does not mutate input", func(t *testing.T) {
		t.Parallel()
		require.True(t, accounts[0].Balance.IsZero())
	})

	t.Run("single account matches batch", func(t *testing.T) {
		t.Parallel()
		require.True(t, ComputeBalance(accounts[0], txns).Equal(got[0].Balance))
	})
}

func TestBalanceInvariant(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		initial := decimal.NewFromInt(int64(rapid.IntRange(-1000, 100000).Draw(t, "initial")))
		acc := models.Account{ID: "acc-1", InitialBalance: initial}

		n := rapid.IntRange(0, 30).Draw(t, "n")
		txns := make([]models.Transaction, n)
		want := initial
		for i := range txns {
			amount := decimal.NewFromInt(int64(rapid.IntRange(1, 10000).Draw(t, "amount")))
			typ := rapid.SampledFrom([]models.TransactionType{models.TransactionIncome, models.TransactionExpense}).Draw(t, "type")
			status := rapid.SampledFrom([]models.TransactionStatus{
				models.StatusPaid, models.StatusUnpaid, models.StatusDebt, models.StatusInstallment,
			}).Draw(t, "status")
			accountID := rapid.SampledFrom([]string{"acc-1", "acc-2"}).Draw(t, "account")
			txns[i] = models.Transaction{Type: typ, Amount: amount, Status: status, AccountID: accountID}

			if status != models.StatusPaid || accountID != "acc-1" {
				continue
			}
			if typ == models.TransactionIncome {
				want = want.Add(amount)
			} else {
				want = want.Sub(amount)
			}
		}

		got := ComputeBalances([]models.Account{acc}, txns)[0].Balance
		if !got.Equal(want) {
			t.Fatalf("balance %s, want %s", got, want)
		}
	})
}
