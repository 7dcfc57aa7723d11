package ledger

import (
	"fmt"
	"time"

	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

// RecurringLink is where due notifications point.
const RecurringLink = "/recurring"

// NotificationID is deterministic per template and due day.
func NotificationID(templateID string, due time.Time) string {
	return "notif-" + templateID + "-" + due.Format(DateLayout)
}

// DueNotifications emits one notification per template whose next due day
// is between today and today+DaysBefore inclusive. Nothing is emitted when
// reminders are disabled.
func DueNotifications(templates []models.RecurringTransaction, settings models.ReminderSettings, now time.Time, loc *time.Location) []models.Notification {
	if !settings.Enabled {
		return nil
	}

	var out []models.Notification
	for i := range templates {
		tmpl := &templates[i]
		due := NextDue(*tmpl, loc)
		if tmpl.EndDate != nil && due.After(Day(*tmpl.EndDate, loc)) {
			continue
		}
		diff := DaysBetween(now, due, loc)
		if diff < 0 || diff > settings.DaysBefore {
			continue
		}
		out = append(out, models.Notification{
			ID:      NotificationID(tmpl.ID, due),
			Message: dueMessage(tmpl.Description, diff),
			Date:    now,
			LinkTo:  RecurringLink,
		})
	}
	return out
}

func dueMessage(description string, days int) string {
	if days == 0 {
		return fmt.Sprintf("'%s' is due today.", description)
	}
	return fmt.Sprintf("'%s' is due in %d day(s).", description, days)
}

// MergeNotifications keeps the Read flag of notifications already present.
func MergeNotifications(existing, fresh []models.Notification) []models.Notification {
	read := make(map[string]bool, len(existing))
	for _, n := range existing {
		read[n.ID] = n.Read
	}
	out := make([]models.Notification, len(fresh))
	for i, n := range fresh {
		n.Read = read[n.ID]
		out[i] = n
	}
	return out
}
