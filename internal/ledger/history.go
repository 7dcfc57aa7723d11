package ledger

import (
	"slices"
	"strings"
	"time"

	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

// DescribeChanges summarizes what changed between two versions of a
// transaction, e.g. "Updated amount to $50.00, status to Paid.".
// It returns HistoryUpdated when nothing material changed.
func DescribeChanges(before, after *models.Transaction, symbol string, loc *time.Location) string {
	var changes []string

	if !before.Amount.Equal(after.Amount) {
		changes = append(changes, "amount to "+FormatMoney(symbol, after.Amount))
	}
	if before.Description != after.Description {
		changes = append(changes, "description")
	}
	if !SameDay(before.Date, after.Date, loc) {
		changes = append(changes, "date")
	}
	if before.Status != after.Status {
		changes = append(changes, "status to "+string(after.Status))
	}
	if before.AccountID != after.AccountID {
		changes = append(changes, "account")
	}
	if !sameTagSet(before.Tags, after.Tags) {
		changes = append(changes, "tags")
	}
	if before.Category != after.Category {
		changes = append(changes, "category")
	}
	if before.AttachmentURL != after.AttachmentURL {
		changes = append(changes, "attachment")
	}

	if len(changes) == 0 {
		return HistoryUpdated
	}
	return "Updated " + strings.Join(changes, ", ") + "."
}

// RecordUpdate returns after with one entry describing the diff prepended
// to before's history. Any history carried on after is ignored.
func RecordUpdate(before, after models.Transaction, now time.Time, symbol string, loc *time.Location) models.Transaction {
	entry := models.TransactionHistory{
		Date:   now,
		Change: DescribeChanges(&before, &after, symbol, loc),
	}
	after.History = append([]models.TransactionHistory{entry}, before.History...)
	return after
}

func sameTagSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := slices.Clone(a)
	y := slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}
