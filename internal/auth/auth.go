// Package auth implements the mock account layer: registration, login and
// profile settings. Passwords are bcrypt hashes; there are no tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"gitlab.com/yelinaung/finance-tracker/internal/logger"
	"gitlab.com/yelinaung/finance-tracker/internal/models"
	"gitlab.com/yelinaung/finance-tracker/internal/repository"
)

// MinPasswordLength is the shortest password accepted on register or change.
const MinPasswordLength = 6

// MaxReminderDays bounds the reminder lookahead setting.
const MaxReminderDays = 30

var (
	// ErrInvalidCredentials is returned for an unknown email or wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrWrongPassword is returned when the current password does not match.
	ErrWrongPassword = errors.New("incorrect current password")
	// ErrInvalidInput is returned for malformed registration or profile data.
	ErrInvalidInput = errors.New("invalid input")
)

// Service handles user accounts.
type Service struct {
	users    *repository.UserRepository
	currency string
	cost     int
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithBcryptCost overrides the hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service. New users get defaultCurrency.
func NewService(users *repository.UserRepository, defaultCurrency string, opts ...Option) *Service {
	s := &Service{
		users:    users,
		currency: defaultCurrency,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a user with default settings.
func (s *Service) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: email %q is not valid", ErrInvalidInput, email)
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           repository.NewID("user"),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Currency:     s.currency,
		Settings: models.NotificationSettings{
			Recurring:    models.ReminderSettings{Enabled: true, DaysBefore: models.DefaultReminderDays},
			ItemsPerPage: models.DefaultItemsPerPage,
		},
		CreatedAt: s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	logger.Log.Info().
		Str("user_hash", logger.HashUserID(user.ID)).
		Str("email_hash", logger.HashEmail(email)).
		Msg("User registered")
	return user, nil
}

// Login checks credentials and returns the user.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Log.Warn().Str("email_hash", logger.HashEmail(email)).Msg("Login for unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Log.Warn().Str("user_hash", logger.HashUserID(user.ID)).Msg("Login with wrong password")
		return nil, ErrInvalidCredentials
	}
	logger.Log.Info().Str("user_hash", logger.HashUserID(user.ID)).Msg("User logged in")
	return user, nil
}

// User returns the user with id.
func (s *Service) User(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// ChangePassword replaces the password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrWrongPassword
	}
	if err := checkPassword(next); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}
	logger.Log.Info().Str("user_hash", logger.HashUserID(userID)).Msg("Password changed")
	return nil
}

// ProfileUpdate carries editable profile fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name        *string
	Email       *string
	Currency    *string
	Phone       *string
	DateOfBirth *time.Time
}

// UpdateProfile applies a partial profile update.
func (s *Service) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		user.Name = name
	}
	if upd.Email != nil {
		email := strings.TrimSpace(*upd.Email)
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, fmt.Errorf("%w: email %q is not valid", ErrInvalidInput, email)
		}
		user.Email = email
	}
	if upd.Currency != nil {
		code := strings.ToUpper(strings.TrimSpace(*upd.Currency))
		if _, ok := models.SupportedCurrencies[code]; !ok {
			return nil, fmt.Errorf("%w: currency %q is not supported", ErrInvalidInput, code)
		}
		user.Currency = code
	}
	if upd.Phone != nil {
		user.Phone = strings.TrimSpace(*upd.Phone)
	}
	if upd.DateOfBirth != nil {
		dob := *upd.DateOfBirth
		user.DateOfBirth = &dob
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// UpdateSettings replaces the notification settings.
func (s *Service) UpdateSettings(ctx context.Context, userID string, settings models.NotificationSettings) (*models.User, error) {
	if settings.Recurring.DaysBefore < 0 || settings.Recurring.DaysBefore > MaxReminderDays {
		return nil, fmt.Errorf("%w: reminder days must be between 0 and %d", ErrInvalidInput, MaxReminderDays)
	}
	if settings.ItemsPerPage <= 0 {
		settings.ItemsPerPage = models.DefaultItemsPerPage
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Settings = settings
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return user, nil
}

// SeedDemo registers the demo users and stores their sample data.
func (s *Service) SeedDemo(ctx context.Context, store *repository.Store, loc *time.Location) error {
	for _, seed := range repository.DemoUsers(s.now(), loc, s.currency) {
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), s.cost)
		if err != nil {
			return fmt.Errorf("failed to hash demo password: %w", err)
		}
		user := seed.User
		user.PasswordHash = string(hash)
		if err := s.users.Create(ctx, &user); err != nil {
			return fmt.Errorf("failed to seed demo user: %w", err)
		}
		store.Put(user.ID, seed.Data)
	}
	logger.Log.Info().Msg("Demo data seeded")
	return nil
}

func checkPassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLength)
	}
	if len(password) > 72 {
		return fmt.Errorf("%w: password must be at most 72 bytes", ErrInvalidInput)
	}
	return nil
}
