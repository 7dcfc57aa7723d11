package repository

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

func TestNewID(t *testing.T) {
	t.Parallel()

	pattern := regexp.MustCompile(`^txn-[0-9a-f]{8}$`)
	seen := make(map[string]bool)
	for range 100 {
		id := NewID("txn")
		require.Regexp(t, pattern, id)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func sampleData() *UserData {
	tax := decimal.NewFromInt(10)
	end := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &UserData{
		Accounts: []models.Account{{ID: "acc-1", Name: "Main Bank", InitialBalance: decimal.NewFromInt(100)}},
		Transactions: []models.Transaction{{
			ID: "txn-1", Tags: []string{"tag-1"}, TaxPercent: &tax,
			History: []models.TransactionHistory{{Change: "Transaction created."}},
		}},
		Recurring: []models.RecurringTransaction{{ID: "rec-1", Tags: []string{"tag-1"}, EndDate: &end}},
		Goals:     []models.Goal{{ID: "goal-1", History: []models.GoalHistory{{TransactionID: "txn-1"}}}},
		Tags:      []models.Tag{{ID: "tag-1", Name: "Food"}},
	}
}

func TestUserDataClone(t *testing.T) {
	t.Parallel()

	orig := sampleData()
	cp := orig.Clone()

	cp.Accounts[0].Name = "changed"
	cp.Transactions[0].Tags[0] = "changed"
	cp.Transactions[0].History[0].Change = "changed"
	*cp.Transactions[0].TaxPercent = decimal.NewFromInt(99)
	cp.Recurring[0].Tags[0] = "changed"
	*cp.Recurring[0].EndDate = time.Time{}
	cp.Goals[0].History[0].TransactionID = "changed"
	cp.Tags[0].Name = "changed"

	require.Equal(t, "Main Bank", orig.Accounts[0].Name)
	require.Equal(t, "tag-1", orig.Transactions[0].Tags[0])
	require.Equal(t, "Transaction created.", orig.Transactions[0].History[0].Change)
	require.True(t, orig.Transactions[0].TaxPercent.Equal(decimal.NewFromInt(10)))
	require.Equal(t, "tag-1", orig.Recurring[0].Tags[0])
	require.False(t, orig.Recurring[0].EndDate.IsZero())
	require.Equal(t, "txn-1", orig.Goals[0].History[0].TransactionID)
	require.Equal(t, "Food", orig.Tags[0].Name)
}

func TestUserDataLookups(t *testing.T) {
	t.Parallel()

	d := sampleData()
	require.Equal(t, 0, d.AccountIndex("acc-1"))
	require.Equal(t, -1, d.AccountIndex("acc-2"))
	require.Equal(t, 0, d.AccountByName("main bank"))
	require.Equal(t, 0, d.TransactionIndex("txn-1"))
	require.Equal(t, 0, d.RecurringIndex("rec-1"))
	require.Equal(t, 0, d.GoalIndex("goal-1"))
	require.Equal(t, 0, d.TagIndex("tag-1"))
	require.Equal(t, 0, d.TagByName(" FOOD "))
	require.Equal(t, -1, d.TagByName("Rent"))
}

func TestStoreUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		t.Parallel()
		s := NewStore()
		err := s.Update(ctx, "user-1", func(d *UserData) error {
			d.Tags = append(d.Tags, models.Tag{ID: "tag-1", Name: "Food"})
			return nil
		})
		require.NoError(t, err)
		require.Len(t, s.Snapshot("user-1").Tags, 1)
	})

	t.Run("discards on error", func(t *testing.T) {
		t.Parallel()
		s := NewStore()
		s.Put("user-1", sampleData())
		boom := errors.New("boom")
		err := s.Update(ctx, "user-1", func(d *UserData) error {
			d.Accounts = nil
			d.Transactions[0].Tags = nil
			return boom
		})
		require.ErrorIs(t, err, boom)

		snap := s.Snapshot("user-1")
		require.Len(t, snap.Accounts, 1)
		require.Equal(t, []string{"tag-1"}, snap.Transactions[0].Tags)
	})

	t.Run("snapshot is isolated", func(t *testing.T) {
		t.Parallel()
		s := NewStore()
		s.Put("user-1", sampleData())
		snap := s.Snapshot("user-1")
		snap.Accounts[0].Name = "changed"
		require.Equal(t, "Main Bank", s.Snapshot("user-1").Accounts[0].Name)
	})

	t.Run("users are partitioned", func(t *testing.T) {
		t.Parallel()
		s := NewStore()
		s.Put("user-1", sampleData())
		require.Empty(t, s.Snapshot("user-2").Accounts)
		require.Equal(t, []string{"user-1"}, s.UserIDs())

		s.Drop("user-1")
		require.Empty(t, s.UserIDs())
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		s := NewStore()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		called := false
		err := s.Update(cctx, "user-1", func(*UserData) error {
			called = true
			return nil
		})
		require.ErrorIs(t, err, context.Canceled)
		require.False(t, called)
	})

	t.Run("concurrent writers do not lose updates", func(t *testing.T) {
		t.Parallel()
		s := NewStore()
		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = s.Update(ctx, "user-1", func(d *UserData) error {
					d.Tags = append(d.Tags, models.Tag{ID: NewID("tag")})
					return nil
				})
			}()
		}
		wg.Wait()
		require.Len(t, s.Snapshot("user-1").Tags, 50)
	})
}

func TestDemoUsers(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.March, 22, 9, 0, 0, 0, time.UTC)
	users := DemoUsers(now, time.UTC, "USD")
	require.Len(t, users, 2)

	alex := users[0]
	require.Equal(t, "user-1", alex.User.ID)
	require.Equal(t, "password123", alex.Password)
	require.Equal(t, 3, alex.User.Settings.Recurring.DaysBefore)
	require.Len(t, alex.Data.Accounts, 2)
	require.Len(t, alex.Data.Transactions, 6)
	require.Len(t, alex.Data.Goals, 4)
	require.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), alex.Data.Recurring[0].LastGeneratedDate)

	jane := users[1]
	require.Equal(t, 5, jane.User.Settings.Recurring.DaysBefore)
	require.Len(t, jane.Data.Recurring, 1)

	for _, u := range users {
		for _, txn := range u.Data.Transactions {
			require.NotEqual(t, -1, u.Data.AccountIndex(txn.AccountID), txn.ID)
			for _, tagID := range txn.Tags {
				require.NotEqual(t, -1, u.Data.TagIndex(tagID), tagID)
			}
		}
	}
}
