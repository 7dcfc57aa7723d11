package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned when an amount is zero, negative or malformed.
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	// ErrInvalidTax is returned when a tax percent falls outside [0, 100].
	ErrInvalidTax = errors.New("tax percent must be between 0 and 100")
	// ErrGoalNotFunded is returned when completing a goal below its target.
	ErrGoalNotFunded = errors.New("goal has not reached its target amount")
	// ErrGoalCompleted is returned when completing a goal twice.
	ErrGoalCompleted = errors.New("goal is already completed")
)

// InsufficientFundsError reports an increase larger than the source account balance.
type InsufficientFundsError struct {
	AccountName string
	Available   decimal.Decimal
	Requested   decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in %s: available %s, requested %s",
		e.AccountName, e.Available.StringFixed(2), e.Requested.StringFixed(2))
}
