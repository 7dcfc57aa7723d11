package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"gitlab.com/yelinaung/finance-tracker/internal/models"
	"gitlab.com/yelinaung/finance-tracker/internal/repository"
)

var fixedNow = time.Date(2024, time.March, 22, 9, 0, 0, 0, time.UTC)

func newTestService() *Service {
	return NewService(repository.NewUserRepository(), "SGD",
		WithBcryptCost(bcrypt.MinCost),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	user, err := svc.Register(ctx, "Alex Doe", "alex@example.com", "password123")
	require.NoError(t, err)
	require.Regexp(t, `^user-[0-9a-f]{8}$`, user.ID)
	require.Equal(t, "SGD", user.Currency)
	require.True(t, user.Settings.Recurring.Enabled)
	require.Equal(t, models.DefaultReminderDays, user.Settings.Recurring.DaysBefore)
	require.Equal(t, models.DefaultItemsPerPage, user.Settings.ItemsPerPage)
	require.Equal(t, fixedNow, user.CreatedAt)
	require.NotEqual(t, "password123", user.PasswordHash)

	t.Run("login succeeds with any email case", func(t *testing.T) {
		got, err := svc.Login(ctx, "ALEX@example.com", "password123")
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "alex@example.com", "nope-nope")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "ghost@example.com", "password123")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, "Other", "Alex@Example.com", "password123")
		require.ErrorIs(t, err, repository.ErrEmailTaken)
	})
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	tests := []struct {
		name, email, password string
	}{
		{"", "a@example.com", "password123"},
		{"Alex", "not-an-email", "password123"},
		{"Alex", "a@example.com", "short"},
	}
	for _, tt := range tests {
		_, err := svc.Register(ctx, tt.name, tt.email, tt.password)
		require.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	user, err := svc.Register(ctx, "Jane", "jane@example.com", "password456")
	require.NoError(t, err)

	require.ErrorIs(t, svc.ChangePassword(ctx, user.ID, "wrong-one", "newpassword"), ErrWrongPassword)
	require.ErrorIs(t, svc.ChangePassword(ctx, user.ID, "password456", "tiny"), ErrInvalidInput)
	require.NoError(t, svc.ChangePassword(ctx, user.ID, "password456", "newpassword"))

	_, err = svc.Login(ctx, "jane@example.com", "password456")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "jane@example.com", "newpassword")
	require.NoError(t, err)

	require.ErrorIs(t, svc.ChangePassword(ctx, "user-404", "x", "y"), repository.ErrNotFound)
}

func TestUpdateProfileAndSettings(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	user, err := svc.Register(ctx, "Jane", "jane@example.com", "password456")
	require.NoError(t, err)

	t.Run("partial profile update", func(t *testing.T) {
		name, currency, phone := "Jane Smith", "eur", " +65 1234 "
		dob := time.Date(1990, time.May, 1, 0, 0, 0, 0, time.UTC)
		got, err := svc.UpdateProfile(ctx, user.ID, ProfileUpdate{Name: &name, Currency: &currency, Phone: &phone, DateOfBirth: &dob})
		require.NoError(t, err)
		require.Equal(t, "Jane Smith", got.Name)
		require.Equal(t, "EUR", got.Currency)
		require.Equal(t, "+65 1234", got.Phone)
		require.Equal(t, dob, *got.DateOfBirth)
		require.Equal(t, "jane@example.com", got.Email)
	})

	t.Run("unsupported currency", func(t *testing.T) {
		code := "XYZ"
		_, err := svc.UpdateProfile(ctx, user.ID, ProfileUpdate{Currency: &code})
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("settings", func(t *testing.T) {
		got, err := svc.UpdateSettings(ctx, user.ID, models.NotificationSettings{
			Recurring: models.ReminderSettings{Enabled: false, DaysBefore: 7},
		})
		require.NoError(t, err)
		require.False(t, got.Settings.Recurring.Enabled)
		require.Equal(t, 7, got.Settings.Recurring.DaysBefore)
		require.Equal(t, models.DefaultItemsPerPage, got.Settings.ItemsPerPage)

		stored, err := svc.User(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, got.Settings, stored.Settings)
	})

	t.Run("settings bounds", func(t *testing.T) {
		_, err := svc.UpdateSettings(ctx, user.ID, models.NotificationSettings{Recurring: models.ReminderSettings{DaysBefore: 31}})
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestSeedDemo(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	store := repository.NewStore()

	require.NoError(t, svc.SeedDemo(ctx, store, time.UTC))
	require.Equal(t, []string{"user-1", "user-2"}, store.UserIDs())

	user, err := svc.Login(ctx, "alex.doe@example.com", "password123")
	require.NoError(t, err)
	require.Equal(t, "user-1", user.ID)
	require.Equal(t, "SGD", user.Currency)
	require.Len(t, store.Snapshot("user-1").Accounts, 2)
}
