package tracker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

func TestAccountLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	acc := f.account(t, "  Main Bank  ", "1000")
	require.Regexp(t, `^acc-[0-9a-f]{8}$`, acc.ID)
	require.Equal(t, "Main Bank", acc.Name)
	require.True(t, acc.Balance.Equal(dec("1000")))

	t.Run("balance follows paid transactions only", func(t *testing.T) {
		f.expense(t, acc.ID, "45.50")
		_, err := f.svc.AddTransaction(ctx, testUser, TransactionInput{
			Type: models.TransactionExpense, Amount: dec("300"), Description: "Rent",
			Status: models.StatusUnpaid, AccountID: acc.ID,
		})
		require.NoError(t, err)
		require.True(t, f.balance(t, acc.ID).Equal(dec("954.50")))
	})

	t.Run("update re-derives balance", func(t *testing.T) {
		updated, err := f.svc.UpdateAccount(ctx, testUser, acc.ID, AccountInput{
			Name: "Renamed", Type: models.AccountEWallet, InitialBalance: dec("2000"),
		})
		require.NoError(t, err)
		require.Equal(t, "Renamed", updated.Name)
		require.True(t, updated.Balance.Equal(dec("1954.50")))
	})

	t.Run("account in use is not deleted", func(t *testing.T) {
		deleted, err := f.svc.DeleteAccount(ctx, testUser, acc.ID)
		require.NoError(t, err)
		require.False(t, deleted)
		_, err = f.svc.GetAccount(ctx, testUser, acc.ID)
		require.NoError(t, err)
	})

	t.Run("unused account is deleted", func(t *testing.T) {
		spare := f.account(t, "Spare", "0")
		deleted, err := f.svc.DeleteAccount(ctx, testUser, spare.ID)
		require.NoError(t, err)
		require.True(t, deleted)
		_, err = f.svc.GetAccount(ctx, testUser, spare.ID)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing account", func(t *testing.T) {
		deleted, err := f.svc.DeleteAccount(ctx, testUser, "acc-missing")
		require.ErrorIs(t, err, ErrNotFound)
		require.False(t, deleted)
	})
}

func TestAccountValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	tests := []struct {
		name string
		in   AccountInput
		want error
	}{
		{"blank name", AccountInput{Name: "  ", Type: models.AccountCash}, ErrMissingField},
		{"unknown type", AccountInput{Name: "Card", Type: "Credit Card"}, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AddAccount(ctx, testUser, tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}

	accounts, err := f.svc.ListAccounts(ctx, testUser)
	require.NoError(t, err)
	require.Empty(t, accounts)
}

func TestDeleteTransactionRestoresBalance(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	acc := f.account(t, "Bank", "100")
	txn := f.expense(t, acc.ID, "60")
	require.True(t, f.balance(t, acc.ID).Equal(dec("40")))

	require.NoError(t, f.svc.DeleteTransaction(ctx, testUser, txn.ID))
	require.True(t, f.balance(t, acc.ID).Equal(dec("100")))
	require.ErrorIs(t, f.svc.DeleteTransaction(ctx, testUser, txn.ID), ErrNotFound)

	// with no transactions left the account can go
	deleted, err := f.svc.DeleteAccount(ctx, testUser, acc.ID)
	require.NoError(t, err)
	require.True(t, deleted)
}
