package ledger

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

var hundred = decimal.NewFromInt(100)

// CurrencySymbol returns the display symbol for code, falling back to the code itself.
func CurrencySymbol(code string) string {
	if sym, ok := models.SupportedCurrencies[code]; ok {
		return sym
	}
	return code
}

// FormatMoney renders an amount with two decimals, e.g. "$1,200.00".
func FormatMoney(symbol string, amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	amount = amount.Round(2)
	fixed := amount.StringFixed(2)
	whole := humanize.BigComma(amount.Truncate(0).BigInt())
	return sign + symbol + whole + fixed[strings.IndexByte(fixed, '.'):]
}

// ApplyTax derives AmountAfterTax for taxed income as
// amount * (1 - tax/100), rounded to cents. Expenses never carry tax.
func ApplyTax(txn *models.Transaction) error {
	if txn.Type != models.TransactionIncome {
		txn.TaxPercent = nil
		txn.AmountAfterTax = nil
		return nil
	}
	if txn.TaxPercent == nil {
		txn.AmountAfterTax = nil
		return nil
	}
	tax := *txn.TaxPercent
	if tax.IsNegative() || tax.GreaterThan(hundred) {
		return ErrInvalidTax
	}
	after := txn.Amount.Mul(hundred.Sub(tax)).Div(hundred).Round(2)
	txn.AmountAfterTax = &after
	return nil
}
