package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

func TestDueNotifications(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.March, 22, 8, 0, 0, 0, sgt)
	templates := []models.RecurringTransaction{
		{ID: "rec-today", Description: "Gym", Frequency: models.FrequencyDaily, LastGeneratedDate: day(2024, time.March, 21)},
		{ID: "rec-soon", Description: "Rent", Frequency: models.FrequencyWeekly, LastGeneratedDate: day(2024, time.March, 17)},
		{ID: "rec-far", Description: "Insurance", Frequency: models.FrequencyMonthly, LastGeneratedDate: day(2024, time.March, 1)},
		{ID: "rec-past", Description: "Backlog", Frequency: models.FrequencyDaily, LastGeneratedDate: day(2024, time.March, 10)},
	}
	settings := models.ReminderSettings{Enabled: true, DaysBefore: 3}

	got := DueNotifications(templates, settings, now, sgt)
	require.Len(t, got, 2)

	require.Equal(t, "notif-rec-today-2024-03-22", got[0].ID)
	require.Equal(t, "'Gym' is due today.", got[0].Message)
	require.Equal(t, RecurringLink, got[0].LinkTo)
	require.False(t, got[0].Read)

	require.Equal(t, "notif-rec-soon-2024-03-24", got[1].ID)
	require.Equal(t, "'Rent' is due in 2 day(s).", got[1].Message)

	t.Run("disabled reminders emit nothing", func(t *testing.T) {
		t.Parallel()
		require.Empty(t, DueNotifications(templates, models.ReminderSettings{Enabled: false, DaysBefore: 30}, now, sgt))
	})

	t.Run("ids are stable across runs", func(t *testing.T) {
		t.Parallel()
		again := DueNotifications(templates, settings, now.Add(3*time.Hour), sgt)
		require.Equal(t, got[0].ID, again[0].ID)
		require.Equal(t, got[1].ID, again[1].ID)
	})

	t.Run("ended template is skipped", func(t *testing.T) {
		t.Parallel()
		end := day(2024, time.March, 21)
		ended := []models.RecurringTransaction{templates[0]}
		ended[0].EndDate = &end
		require.Empty(t, DueNotifications(ended, settings, now, sgt))
	})
}

func TestMergeNotifications(t *testing.T) {
	t.Parallel()

	existing := []models.Notification{{ID: "a", Read: true}, {ID: "b", Read: false}}
	fresh := []models.Notification{{ID: "a"}, {ID: "c"}}

	got := MergeNotifications(existing, fresh)
	require.Len(t, got, 2)
	require.True(t, got[0].Read)
	require.False(t, got[1].Read)
}
