package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/finance-tracker/internal/ledger"
	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

func (f fixture) goal(t *testing.T, target string) models.Goal {
	t.Helper()
	goal, err := f.svc.AddGoal(context.Background(), testUser, GoalInput{
		Name:         "New Laptop",
		TargetAmount: dec(target),
		Deadline:     day(2024, time.December, 31),
	})
	require.NoError(t, err)
	return goal
}

func TestAddGoal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	goal := f.goal(t, "1500")
	require.Equal(t, models.GoalActive, goal.Status)
	require.True(t, goal.CurrentAmount.IsZero())
	require.Equal(t, DefaultGoalIcon, goal.Icon)

	_, err := f.svc.AddGoal(ctx, testUser, GoalInput{Name: "x", TargetAmount: dec("0"), Deadline: fixedNow})
	require.ErrorIs(t, err, ledger.ErrInvalidAmount)
	_, err = f.svc.AddGoal(ctx, testUser, GoalInput{TargetAmount: dec("10"), Deadline: fixedNow})
	require.ErrorIs(t, err, ErrMissingField)

	t.Run("update keeps progress", func(t *testing.T) {
		acc := f.account(t, "Bank", "500")
		_, err := f.svc.Contribute(ctx, testUser, goal.ID, dec("100"), acc.ID, models.GoalIncrease)
		require.NoError(t, err)

		updated, err := f.svc.UpdateGoal(ctx, testUser, goal.ID, GoalInput{
			Name: "Gaming Laptop", TargetAmount: dec("2000"), Deadline: day(2025, time.January, 31), Icon: "💻",
		})
		require.NoError(t, err)
		require.Equal(t, "Gaming Laptop", updated.Name)
		require.True(t, updated.CurrentAmount.Equal(dec("100")))
		require.Len(t, updated.History, 1)
	})

	t.Run("delete keeps contribution transactions", func(t *testing.T) {
		require.NoError(t, f.svc.DeleteGoal(ctx, testUser, goal.ID))
		_, err := f.svc.GetGoal(ctx, testUser, goal.ID)
		require.ErrorIs(t, err, ErrNotFound)

		txns, err := f.svc.ListTransactions(ctx, testUser)
		require.NoError(t, err)
		require.Len(t, txns, 1)
	})
}

func TestContribute(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("increase creates linked transaction", func(t *testing.T) {
		f := newFixture(t, WithClock(func() time.Time { return fixedNow.UTC() }))
		acc := f.account(t, "Bank", "1000")
		goal := f.goal(t, "1500")

		res, err := f.svc.Contribute(ctx, testUser, goal.ID, dec("250"), acc.ID, models.GoalIncrease)
		require.NoError(t, err)
		require.NotNil(t, res.Transaction)
		require.True(t, res.Goal.CurrentAmount.Equal(dec("250")))
		require.Equal(t, res.Transaction.ID, res.Goal.History[0].TransactionID)
		require.Equal(t, models.TransactionExpense, res.Transaction.Type)
		require.Equal(t, models.CategorySavings, res.Transaction.Category)
		require.Equal(t, sgt, res.Transaction.Date.Location())
		require.Equal(t, sgt, res.Goal.History[0].Date.Location())
		require.Equal(t, `Contribution to "New Laptop"`, res.Transaction.Description)
		require.True(t, f.balance(t, acc.ID).Equal(dec("750")))

		stored, err := f.svc.GetTransaction(ctx, testUser, res.Transaction.ID)
		require.NoError(t, err)
		require.Equal(t, *res.Transaction, stored)
	})

	t.Run("insufficient funds changes nothing", func(t *testing.T) {
		f := newFixture(t)
		acc := f.account(t, "Cash", "100")
		goal := f.goal(t, "1500")

		_, err := f.svc.Contribute(ctx, testUser, goal.ID, dec("100.01"), acc.ID, models.GoalIncrease)
		var insufficient *ledger.InsufficientFundsError
		require.ErrorAs(t, err, &insufficient)
		require.Equal(t, "Cash", insufficient.AccountName)

		after, err := f.svc.GetGoal(ctx, testUser, goal.ID)
		require.NoError(t, err)
		require.Equal(t, goal, after)
		txns, err := f.svc.ListTransactions(ctx, testUser)
		require.NoError(t, err)
		require.Empty(t, txns)
		require.True(t, f.balance(t, acc.ID).Equal(dec("100")))
	})

	t.Run("increase clamps to remaining target", func(t *testing.T) {
		f := newFixture(t)
		acc := f.account(t, "Bank", "1000")
		goal := f.goal(t, "300")

		res, err := f.svc.Contribute(ctx, testUser, goal.ID, dec("500"), acc.ID, models.GoalIncrease)
		require.NoError(t, err)
		require.True(t, res.Effective.Equal(dec("300")))
		require.True(t, res.Goal.CurrentAmount.Equal(res.Goal.TargetAmount))

		res, err = f.svc.Contribute(ctx, testUser, goal.ID, dec("10"), acc.ID, models.GoalIncrease)
		require.NoError(t, err)
		require.Nil(t, res.Transaction)
		require.True(t, res.Effective.IsZero())
	})

	t.Run("decrease clamps to saved amount", func(t *testing.T) {
		f := newFixture(t)
		acc := f.account(t, "Bank", "1000")
		goal := f.goal(t, "1500")

		_, err := f.svc.Contribute(ctx, testUser, goal.ID, dec("200"), acc.ID, models.GoalIncrease)
		require.NoError(t, err)
		res, err := f.svc.Contribute(ctx, testUser, goal.ID, dec("999"), acc.ID, models.GoalDecrease)
		require.NoError(t, err)
		require.True(t, res.Effective.Equal(dec("200")))
		require.True(t, res.Goal.CurrentAmount.IsZero())
		require.Equal(t, models.TransactionIncome, res.Transaction.Type)
		require.Len(t, res.Goal.History, 2)
		require.True(t, f.balance(t, acc.ID).Equal(dec("1000")))
	})

	t.Run("unknown references", func(t *testing.T) {
		f := newFixture(t)
		acc := f.account(t, "Bank", "1000")
		goal := f.goal(t, "100")

		_, err := f.svc.Contribute(ctx, testUser, "goal-missing", dec("1"), acc.ID, models.GoalIncrease)
		require.ErrorIs(t, err, ErrNotFound)
		_, err = f.svc.Contribute(ctx, testUser, goal.ID, dec("1"), "acc-missing", models.GoalIncrease)
		require.ErrorIs(t, err, ErrNotFound)
		_, err = f.svc.Contribute(ctx, testUser, goal.ID, dec("-5"), acc.ID, models.GoalIncrease)
		require.ErrorIs(t, err, ledger.ErrInvalidAmount)
	})
}

func TestConfirmCompletion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, WithClock(func() time.Time { return fixedNow.UTC() }))
	acc := f.account(t, "Bank", "1000")
	goal := f.goal(t, "400")

	_, _, err := f.svc.ConfirmCompletion(ctx, testUser, goal.ID, acc.ID)
	require.ErrorIs(t, err, ledger.ErrGoalNotFunded)

	_, err = f.svc.Contribute(ctx, testUser, goal.ID, dec("400"), acc.ID, models.GoalIncrease)
	require.NoError(t, err)

	_, _, err = f.svc.ConfirmCompletion(ctx, testUser, goal.ID, "acc-missing")
	require.ErrorIs(t, err, ErrNotFound)

	done, txn, err := f.svc.ConfirmCompletion(ctx, testUser, goal.ID, acc.ID)
	require.NoError(t, err)
	require.Equal(t, models.GoalCompleted, done.Status)
	require.True(t, done.CurrentAmount.Equal(dec("400")))
	require.Len(t, done.History, 1)
	require.Equal(t, "Payment for goal: New Laptop", txn.Description)
	require.True(t, txn.Amount.Equal(dec("400")))
	require.Equal(t, sgt, txn.Date.Location())

	_, _, err = f.svc.ConfirmCompletion(ctx, testUser, goal.ID, acc.ID)
	require.ErrorIs(t, err, ledger.ErrGoalCompleted)
}
