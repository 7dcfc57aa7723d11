package ledger

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

// Totals aggregates income (after tax) and expense over a period.
// Every status counts, unlike account balances.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Net is income minus expense.
func (t Totals) Net() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

// TagTotal is the expense attributed to one tag.
type TagTotal struct {
	TagID  string
	Amount decimal.Decimal
}

// Comparison holds this month against last month.
type Comparison struct {
	Current  Totals
	Previous Totals
}

// Summary is the analytics view over [From, To].
type Summary struct {
	From        time.Time
	To          time.Time
	Totals      Totals
	TotalAssets decimal.Decimal
	ByTag       []TagTotal
	Monthly     Comparison
}

// PeriodTotals sums transactions dated within [from, to] by calendar day.
func PeriodTotals(txns []models.Transaction, from, to time.Time, loc *time.Location) Totals {
	start, end := Day(from, loc), Day(to, loc)
	var t Totals
	for i := range txns {
		txn := &txns[i]
		d := Day(txn.Date, loc)
		if d.Before(start) || d.After(end) {
			continue
		}
		if txn.Type == models.TransactionIncome {
			t.Income = t.Income.Add(txn.NetAmount())
		} else {
			t.Expense = t.Expense.Add(txn.Amount)
		}
	}
	return t
}

// TagBreakdown attributes each expense in [from, to] to every tag it carries,
// largest first.
func TagBreakdown(txns []models.Transaction, from, to time.Time, loc *time.Location) []TagTotal {
	start, end := Day(from, loc), Day(to, loc)
	sums := make(map[string]decimal.Decimal)
	for i := range txns {
		txn := &txns[i]
		if txn.Type != models.TransactionExpense {
			continue
		}
		d := Day(txn.Date, loc)
		if d.Before(start) || d.After(end) {
			continue
		}
		for _, tagID := range txn.Tags {
			sums[tagID] = sums[tagID].Add(txn.Amount)
		}
	}

	out := make([]TagTotal, 0, len(sums))
	for id, amt := range sums {
		out = append(out, TagTotal{TagID: id, Amount: amt})
	}
	slices.SortFunc(out, func(a, b TagTotal) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		return cmp.Compare(a.TagID, b.TagID)
	})
	return out
}

// MonthOverMonth compares the calendar month containing today with the one before.
func MonthOverMonth(txns []models.Transaction, today time.Time, loc *time.Location) Comparison {
	d := Day(today, loc)
	thisStart := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, loc)
	thisEnd := thisStart.AddDate(0, 1, -1)
	lastStart := thisStart.AddDate(0, -1, 0)
	lastEnd := thisStart.AddDate(0, 0, -1)
	return Comparison{
		Current:  PeriodTotals(txns, thisStart, thisEnd, loc),
		Previous: PeriodTotals(txns, lastStart, lastEnd, loc),
	}
}

// PercentChange is (current - previous) / |previous| * 100. ok is false
// when previous is zero and current is not, which callers show as "New".
func PercentChange(current, previous decimal.Decimal) (change decimal.Decimal, ok bool) {
	if previous.IsZero() {
		if current.IsPositive() {
			return decimal.Zero, false
		}
		return decimal.Zero, true
	}
	return current.Sub(previous).Div(previous.Abs()).Mul(hundred).Round(1), true
}

// Summarize builds the analytics view. accounts must already carry derived
// balances, see ComputeBalances.
func Summarize(accounts []models.Account, txns []models.Transaction, from, to, today time.Time, loc *time.Location) Summary {
	return Summary{
		From:        Day(from, loc),
		To:          Day(to, loc),
		Totals:      PeriodTotals(txns, from, to, loc),
		TotalAssets: TotalAssets(accounts),
		ByTag:       TagBreakdown(txns, from, to, loc),
		Monthly:     MonthOverMonth(txns, today, loc),
	}
}

// TotalAssets sums the derived balances of accounts.
func TotalAssets(accounts []models.Account) decimal.Decimal {
	var assets decimal.Decimal
	for _, acc := range accounts {
		assets = assets.Add(acc.Balance)
	}
	return assets
}

// SortNewestFirst orders transactions by date descending, keeping the
// relative order of same-instant entries.
func SortNewestFirst(txns []models.Transaction) {
	slices.SortStableFunc(txns, func(a, b models.Transaction) int {
		return b.Date.Compare(a.Date)
	})
}
