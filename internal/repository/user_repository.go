package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

// ErrEmailTaken is returned when registering an email that already exists.
var ErrEmailTaken = errors.New("email already registered")

// UserRepository handles user records.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]models.User
	byEmail map[string]string
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]models.User),
		byEmail: make(map[string]string),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create stores a new user. Emails are unique case-insensitively.
func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := normalizeEmail(user.Email)
	if _, exists := r.byEmail[key]; exists {
		return ErrEmailTaken
	}
	if _, exists := r.byID[user.ID]; exists {
		return fmt.Errorf("failed to create user: duplicate id %s", user.ID)
	}
	r.byID[user.ID] = cloneUser(*user)
	r.byEmail[key] = user.ID
	return nil
}

// GetUserByID retrieves a user by id.
func (r *UserRepository) GetUserByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("failed to get user %s: %w", id, ErrNotFound)
	}
	out := cloneUser(user)
	return &out, nil
}

// GetUserByEmail retrieves a user by case-insensitive email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[normalizeEmail(email)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("failed to get user by email: %w", ErrNotFound)
	}
	return r.GetUserByID(ctx, id)
}

// Update replaces a stored user, re-indexing the email when it changed.
func (r *UserRepository) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.byID[user.ID]
	if !ok {
		return fmt.Errorf("failed to update user %s: %w", user.ID, ErrNotFound)
	}
	oldKey, newKey := normalizeEmail(old.Email), normalizeEmail(user.Email)
	if oldKey != newKey {
		if owner, exists := r.byEmail[newKey]; exists && owner != user.ID {
			return ErrEmailTaken
		}
		delete(r.byEmail, oldKey)
		r.byEmail[newKey] = user.ID
	}
	r.byID[user.ID] = cloneUser(*user)
	return nil
}

// GetAllUsers returns every user ordered by id.
func (r *UserRepository) GetAllUsers(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(r.byID))
	for _, u := range r.byID {
		users = append(users, cloneUser(u))
	}
	slices.SortFunc(users, func(a, b models.User) int { return strings.Compare(a.ID, b.ID) })
	return users, nil
}

func cloneUser(u models.User) models.User {
	if u.DateOfBirth != nil {
		dob := *u.DateOfBirth
		u.DateOfBirth = &dob
	}
	return u
}
