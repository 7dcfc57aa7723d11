package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestEnumValidity(t *testing.T) {
	t.Parallel()

	t.Run("transaction types", func(t *testing.T) {
		t.Parallel()
		require.True(t, TransactionIncome.Valid())
		require.True(t, TransactionExpense.Valid())
		require.False(t, TransactionType("transfer").Valid())
	})

	t.Run("categories accept empty", func(t *testing.T) {
		t.Parallel()
		require.True(t, ExpenseCategory("").Valid())
		require.True(t, CategorySavings.Valid())
		require.False(t, ExpenseCategory("food").Valid())
	})

	t.Run("statuses", func(t *testing.T) {
		t.Parallel()
		for _, s := range []TransactionStatus{StatusPaid, StatusUnpaid, StatusDebt, StatusInstallment} {
			require.True(t, s.Valid(), s)
		}
		require.False(t, TransactionStatus("paid").Valid())
	})

	t.Run("account types use display names", func(t *testing.T) {
		t.Parallel()
		require.True(t, AccountType("Bank Account").Valid())
		require.False(t, AccountType("Bank").Valid())
	})

	t.Run("frequencies", func(t *testing.T) {
		t.Parallel()
		require.True(t, FrequencyMonthly.Valid())
		require.False(t, Frequency("Yearly").Valid())
	})
}

func TestTransactionNetAmount(t *testing.T) {
	t.Parallel()

	afterTax := decimal.NewFromInt(4250)

	t.Run("taxed income uses amount after tax", func(t *testing.T) {
		t.Parallel()
		txn := Transaction{Type: TransactionIncome, Amount: decimal.NewFromInt(5000), AmountAfterTax: &afterTax}
		require.True(t, txn.NetAmount().Equal(afterTax))
	})

	t.Run("untaxed income uses amount", func(t *testing.T) {
		t.Parallel()
		txn := Transaction{Type: TransactionIncome, Amount: decimal.NewFromInt(750)}
		require.True(t, txn.NetAmount().Equal(decimal.NewFromInt(750)))
	})

	t.Run("expense ignores after-tax field", func(t *testing.T) {
		t.Parallel()
		txn := Transaction{Type: TransactionExpense, Amount: decimal.NewFromInt(100), AmountAfterTax: &afterTax}
		require.True(t, txn.NetAmount().Equal(decimal.NewFromInt(100)))
	})
}

func TestSupportedCurrencies(t *testing.T) {
	t.Parallel()

	require.Equal(t, "$", SupportedCurrencies[DefaultCurrency])
	require.Len(t, TagColors, 12)
}
