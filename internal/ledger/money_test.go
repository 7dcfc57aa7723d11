package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

func TestFormatMoney(t *testing.T) {
	t.Parallel()

	tests := []struct {
		amount string
		want   string
	}{
		{"0", "$0.00"},
		{"5", "$5.00"},
		{"999.999", "$1,000.00"},
		{"1200", "$1,200.00"},
		{"1234567.8", "$1,234,567.80"},
		{"-45.5", "-$45.50"},
		{"100000", "$100,000.00"},
		{"999999.995", "$1,000,000.00"},
		{"12345678901234567890.12", "$12,345,678,901,234,567,890.12"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, FormatMoney("$", dec(tt.amount)))
		})
	}
}

func TestCurrencySymbol(t *testing.T) {
	t.Parallel()
	require.Equal(t, "S$", CurrencySymbol("SGD"))
	require.Equal(t, "XYZ", CurrencySymbol("XYZ"))
}

func TestApplyTax(t *testing.T) {
	t.Parallel()

	t.Run("taxed income", func(t *testing.T) {
		t.Parallel()
		txn := models.Transaction{Type: models.TransactionIncome, Amount: dec("5000"), TaxPercent: decPtr("15")}
		require.NoError(t, ApplyTax(&txn))
		require.True(t, txn.AmountAfterTax.Equal(dec("4250")))
	})

	t.Run("rounds to cents", func(t *testing.T) {
		t.Parallel()
		txn := models.Transaction{Type: models.TransactionIncome, Amount: dec("100"), TaxPercent: decPtr("33.333")}
		require.NoError(t, ApplyTax(&txn))
		require.Equal(t, "66.67", txn.AmountAfterTax.StringFixed(2))
		require.True(t, txn.AmountAfterTax.Equal(dec("66.67")))
	})

	t.Run("untaxed income clears after-tax", func(t *testing.T) {
		t.Parallel()
		txn := models.Transaction{Type: models.TransactionIncome, Amount: dec("100"), AmountAfterTax: decPtr("1")}
		require.NoError(t, ApplyTax(&txn))
		require.Nil(t, txn.AmountAfterTax)
	})

	t.Run("expense drops tax fields", func(t *testing.T) {
		t.Parallel()
		txn := models.Transaction{Type: models.TransactionExpense, Amount: dec("100"), TaxPercent: decPtr("10"), AmountAfterTax: decPtr("90")}
		require.NoError(t, ApplyTax(&txn))
		require.Nil(t, txn.TaxPercent)
		require.Nil(t, txn.AmountAfterTax)
	})

	t.Run("out of range tax", func(t *testing.T) {
		t.Parallel()
		for _, tax := range []string{"-1", "100.01"} {
			txn := models.Transaction{Type: models.TransactionIncome, Amount: dec("100"), TaxPercent: decPtr(tax)}
			require.ErrorIs(t, ApplyTax(&txn), ErrInvalidTax)
		}
	})
}
