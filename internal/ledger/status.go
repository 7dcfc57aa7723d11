package ledger

import (
	"time"

	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

// DisplayStatus is a goal's derived state. It is computed, never stored.
type DisplayStatus int

const (
	DisplayActive DisplayStatus = iota
	DisplayPendingConfirmation
	DisplayOverdue
	DisplayCompleted
)

func (s DisplayStatus) String() string {
	switch s {
	case DisplayPendingConfirmation:
		return "Pending Confirmation"
	case DisplayOverdue:
		return "Overdue"
	case DisplayCompleted:
		return "Completed"
	default:
		return "Active"
	}
}

// GoalDisplayStatus derives the status shown for a goal on today.
func GoalDisplayStatus(goal *models.Goal, today time.Time, loc *time.Location) DisplayStatus {
	switch {
	case goal.Status == models.GoalCompleted:
		return DisplayCompleted
	case goal.CurrentAmount.GreaterThanOrEqual(goal.TargetAmount):
		return DisplayPendingConfirmation
	case goal.Status == models.GoalOverdue || Day(goal.Deadline, loc).Before(Day(today, loc)):
		return DisplayOverdue
	default:
		return DisplayActive
	}
}

// DaysLeft is the number of calendar days until the deadline; negative once overdue.
func DaysLeft(goal *models.Goal, today time.Time, loc *time.Location) int {
	return DaysBetween(today, goal.Deadline, loc)
}
