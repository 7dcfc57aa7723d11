package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/finance-tracker/internal/models"
	"gitlab.com/yelinaung/finance-tracker/internal/tracker"
)

// addDailyCoffee adds a daily template whose first occurrence was two days ago.
func addDailyCoffee(t *testing.T, env testEnv, userID string) {
	t.Helper()
	accID := env.account(t, userID, "1000", "Main Account")
	_, err := env.tracker.AddRecurring(context.Background(), userID, tracker.RecurringInput{
		Description: "Coffee",
		Amount:      decimal.RequireFromString("4.50"),
		Type:        models.TransactionExpense,
		AccountID:   accID,
		Frequency:   models.FrequencyDaily,
		StartDate:   fixedNow.AddDate(0, 0, -2),
	})
	require.NoError(t, err)
}

func TestCheckRecurring(t *testing.T) {
	t.Parallel()

	t.Run("pushes generated transactions and new reminders once", func(t *testing.T) {
		t.Parallel()
		env := setupBot(t)
		userID := env.login(t)
		addDailyCoffee(t, env, userID)
		env.mock.Reset()

		env.bot.checkRecurring(context.Background())
		require.Equal(t, []string{
			"🔁 3 recurring transaction(s) were generated.",
			"🔔 'Coffee' is due in 1 day(s).",
		}, env.mock.MessagesTo(testChat))

		txns, err := env.tracker.ListTransactions(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, txns, 3)
		for _, txn := range txns {
			require.Equal(t, models.StatusUnpaid, txn.Status)
		}

		env.bot.checkRecurring(context.Background())
		require.Equal(t, 2, env.mock.SentMessageCount())
	})

	t.Run("reminders shown at login are not pushed again", func(t *testing.T) {
		t.Parallel()
		env := setupBot(t)
		userID := env.login(t)
		addDailyCoffee(t, env, userID)
		env.send(t, "/logout")
		require.Contains(t, env.send(t, "/login alex@example.com secret123"), "1 unread notification(s)")
		env.mock.Reset()

		env.bot.checkRecurring(context.Background())
		require.Zero(t, env.mock.SentMessageCount())
	})

	t.Run("each chat of a user is notified", func(t *testing.T) {
		t.Parallel()
		env := setupBot(t)
		userID := env.login(t)
		env.sendFrom(t, 99, "/login alex@example.com secret123")
		addDailyCoffee(t, env, userID)
		env.mock.Reset()

		env.bot.checkRecurring(context.Background())
		require.Len(t, env.mock.MessagesTo(testChat), 2)
		require.Len(t, env.mock.MessagesTo(99), 2)

		txns, err := env.tracker.ListTransactions(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, txns, 3)
	})

	t.Run("failed pushes are retried", func(t *testing.T) {
		t.Parallel()
		env := setupBot(t)
		userID := env.login(t)
		addDailyCoffee(t, env, userID)
		env.mock.Reset()

		env.mock.SendMessageError = errors.New("telegram down")
		env.bot.checkRecurring(context.Background())
		require.InDelta(t, 2, externalErrors(t, env), 0)

		env.mock.SendMessageError = nil
		env.bot.checkRecurring(context.Background())
		require.Equal(t, []string{"🔔 'Coffee' is due in 1 day(s)."}, env.mock.MessagesTo(testChat))
	})

	t.Run("logged out chats are skipped", func(t *testing.T) {
		t.Parallel()
		env := setupBot(t)
		userID := env.login(t)
		addDailyCoffee(t, env, userID)
		env.send(t, "/logout")
		env.mock.Reset()

		env.bot.checkRecurring(context.Background())
		require.Zero(t, env.mock.SentMessageCount())
	})
}

func TestRunRecurringLoop(t *testing.T) {
	t.Parallel()

	t.Run("returns at once when already canceled", func(t *testing.T) {
		t.Parallel()
		env := setupBot(t)
		userID := env.login(t)
		addDailyCoffee(t, env, userID)
		env.mock.Reset()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		env.bot.RunRecurringLoop(ctx)
		require.Zero(t, env.mock.SentMessageCount())
	})

	t.Run("checks immediately and stops on cancel", func(t *testing.T) {
		t.Parallel()
		env := setupBot(t)
		userID := env.login(t)
		addDailyCoffee(t, env, userID)
		env.mock.Reset()

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			env.bot.RunRecurringLoop(ctx)
			close(done)
		}()

		require.Eventually(t, func() bool {
			return env.mock.SentMessageCount() == 2
		}, 5*time.Second, 10*time.Millisecond)

		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("recurring loop did not stop")
		}
	})
}
