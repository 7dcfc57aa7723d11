package ledger

import (
	"slices"
	"time"

	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

// History messages seeded on creation.
const (
	HistoryCreated          = "Transaction created."
	HistoryImported         = "Transaction imported."
	HistoryGenerated        = "Transaction generated from recurring template."
	HistoryGoalContribution = "Transaction created from goal contribution."
	HistoryGoalCompleted    = "Transaction created from completed goal."
	HistoryUpdated          = "Transaction updated."
)

// IDFunc returns a fresh entity id.
type IDFunc func() string

// Materialize walks a template's cursor forward one period at a time and
// emits one Unpaid transaction per occurrence on or before today (and on or
// before EndDate when set). The returned template carries the advanced
// cursor. Calling it again with the returned template and the same today
// emits nothing.
func Materialize(tmpl models.RecurringTransaction, today time.Time, loc *time.Location, newID IDFunc) (models.RecurringTransaction, []models.Transaction) {
	limit := Day(today, loc)
	var end time.Time
	if tmpl.EndDate != nil {
		end = Day(*tmpl.EndDate, loc)
	}

	var generated []models.Transaction
	runner := Day(tmpl.LastGeneratedDate, loc)
	for {
		next := nextOccurrence(tmpl, runner, loc)
		if !next.After(runner) {
			break
		}
		if next.After(limit) {
			break
		}
		if tmpl.EndDate != nil && next.After(end) {
			break
		}

		generated = append(generated, models.Transaction{
			ID:          newID(),
			Type:        tmpl.Type,
			Amount:      tmpl.Amount,
			Description: tmpl.Description,
			Date:        next,
			Tags:        slices.Clone(tmpl.Tags),
			Status:      models.StatusUnpaid,
			AccountID:   tmpl.AccountID,
			Category:    tmpl.Category,
			History:     []models.TransactionHistory{{Date: next, Change: HistoryGenerated}},
		})
		runner = next
	}

	if len(generated) > 0 {
		tmpl.LastGeneratedDate = runner
	}
	return tmpl, generated
}

// NextDue is the first occurrence after the template's cursor.
func NextDue(tmpl models.RecurringTransaction, loc *time.Location) time.Time {
	return nextOccurrence(tmpl, Day(tmpl.LastGeneratedDate, loc), loc)
}

// nextOccurrence is one period after runner, except that a cursor still
// before the start date yields the start date itself.
func nextOccurrence(tmpl models.RecurringTransaction, runner time.Time, loc *time.Location) time.Time {
	if !tmpl.StartDate.IsZero() {
		if start := Day(tmpl.StartDate, loc); runner.Before(start) {
			return start
		}
	}
	return Advance(runner, tmpl.Frequency)
}

// InitialCursor is the cursor for a new template: the day before its start,
// so the start day itself is the first occurrence.
func InitialCursor(start time.Time, loc *time.Location) time.Time {
	return Day(start, loc).AddDate(0, 0, -1)
}
