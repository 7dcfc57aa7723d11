package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

// Contribution is the result of applying a goal contribution.
// Transaction is nil when clamping reduced the amount to zero.
type Contribution struct {
	Goal        models.Goal
	Transaction *models.Transaction
	Effective   decimal.Decimal
}

// Contribute moves money between an account and a goal. Increases are
// rejected when the requested amount exceeds the account's derived balance,
// then clamped to what the goal can still absorb; decreases are clamped to
// the goal's current amount. A positive effective amount produces exactly
// one Paid savings transaction and one history entry that references it.
func Contribute(goal models.Goal, account models.Account, amount decimal.Decimal, change models.GoalChange, now time.Time, newID IDFunc) (Contribution, error) {
	if !amount.IsPositive() {
		return Contribution{}, ErrInvalidAmount
	}

	var effective decimal.Decimal
	var txnType models.TransactionType
	var description string

	switch change {
	case models.GoalIncrease:
		if amount.GreaterThan(account.Balance) {
			return Contribution{}, &InsufficientFundsError{
				AccountName: account.Name,
				Available:   account.Balance,
				Requested:   amount,
			}
		}
		effective = decimal.Min(amount, goal.TargetAmount.Sub(goal.CurrentAmount))
		txnType = models.TransactionExpense
		description = fmt.Sprintf(`Contribution to "%s"`, goal.Name)
	case models.GoalDecrease:
		effective = decimal.Min(amount, goal.CurrentAmount)
		txnType = models.TransactionIncome
		description = fmt.Sprintf(`Withdrawal from "%s"`, goal.Name)
	default:
		return Contribution{}, fmt.Errorf("unknown goal change %q", change)
	}

	if !effective.IsPositive() {
		return Contribution{Goal: goal, Effective: decimal.Zero}, nil
	}

	txn := models.Transaction{
		ID:          newID(),
		Type:        txnType,
		Amount:      effective,
		Description: description,
		Date:        now,
		Tags:        []string{},
		Status:      models.StatusPaid,
		AccountID:   account.ID,
		Category:    models.CategorySavings,
		History:     []models.TransactionHistory{{Date: now, Change: HistoryGoalContribution}},
	}

	if change == models.GoalIncrease {
		goal.CurrentAmount = goal.CurrentAmount.Add(effective)
	} else {
		goal.CurrentAmount = goal.CurrentAmount.Sub(effective)
	}
	entry := models.GoalHistory{
		Date:          now,
		Change:        change,
		Amount:        effective,
		TransactionID: txn.ID,
	}
	goal.History = append([]models.GoalHistory{entry}, goal.History...)

	return Contribution{Goal: goal, Transaction: &txn, Effective: effective}, nil
}

// Complete marks a funded goal Completed and returns the settlement expense
// for its target amount. CurrentAmount and History are left untouched.
func Complete(goal models.Goal, accountID string, now time.Time, newID IDFunc) (models.Goal, models.Transaction, error) {
	if goal.Status == models.GoalCompleted {
		return goal, models.Transaction{}, ErrGoalCompleted
	}
	if goal.CurrentAmount.LessThan(goal.TargetAmount) {
		return goal, models.Transaction{}, ErrGoalNotFunded
	}

	goal.Status = models.GoalCompleted
	txn := models.Transaction{
		ID:          newID(),
		Type:        models.TransactionExpense,
		Amount:      goal.TargetAmount,
		Description: "Payment for goal: " + goal.Name,
		Date:        now,
		Tags:        []string{},
		Status:      models.StatusPaid,
		AccountID:   accountID,
		Category:    models.CategorySavings,
		History:     []models.TransactionHistory{{Date: now, Change: HistoryGoalCompleted}},
	}
	return goal, txn, nil
}
