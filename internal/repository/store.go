package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

// ErrNotFound is returned when an entity does not exist for the user.
var ErrNotFound = errors.New("not found")

// NewID returns "<prefix>-<8 hex chars>" backed by a random UUID.
func NewID(prefix string) string {
	return prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// UserData holds every entity collection owned by one user.
type UserData struct {
	Accounts     []models.Account
	Transactions []models.Transaction
	Recurring    []models.RecurringTransaction
	Goals        []models.Goal
	Tags         []models.Tag
}

// Clone returns a deep copy that shares no slices with d.
func (d *UserData) Clone() *UserData {
	out := &UserData{
		Accounts:     slices.Clone(d.Accounts),
		Transactions: make([]models.Transaction, len(d.Transactions)),
		Recurring:    make([]models.RecurringTransaction, len(d.Recurring)),
		Goals:        make([]models.Goal, len(d.Goals)),
		Tags:         slices.Clone(d.Tags),
	}
	for i, txn := range d.Transactions {
		out.Transactions[i] = cloneTransaction(txn)
	}
	for i, rec := range d.Recurring {
		rec.Tags = slices.Clone(rec.Tags)
		if rec.EndDate != nil {
			end := *rec.EndDate
			rec.EndDate = &end
		}
		out.Recurring[i] = rec
	}
	for i, goal := range d.Goals {
		goal.History = slices.Clone(goal.History)
		out.Goals[i] = goal
	}
	return out
}

func cloneTransaction(txn models.Transaction) models.Transaction {
	txn.Tags = slices.Clone(txn.Tags)
	txn.History = slices.Clone(txn.History)
	if txn.TaxPercent != nil {
		tax := *txn.TaxPercent
		txn.TaxPercent = &tax
	}
	if txn.AmountAfterTax != nil {
		after := *txn.AmountAfterTax
		txn.AmountAfterTax = &after
	}
	return txn
}

// AccountIndex returns the position of the account with id, or -1.
func (d *UserData) AccountIndex(id string) int {
	return slices.IndexFunc(d.Accounts, func(a models.Account) bool { return a.ID == id })
}

// AccountByName finds an account by case-insensitive name, or -1.
func (d *UserData) AccountByName(name string) int {
	return slices.IndexFunc(d.Accounts, func(a models.Account) bool { return strings.EqualFold(a.Name, name) })
}

// TransactionIndex returns the position of the transaction with id, or -1.
func (d *UserData) TransactionIndex(id string) int {
	return slices.IndexFunc(d.Transactions, func(t models.Transaction) bool { return t.ID == id })
}

// RecurringIndex returns the position of the template with id, or -1.
func (d *UserData) RecurringIndex(id string) int {
	return slices.IndexFunc(d.Recurring, func(r models.RecurringTransaction) bool { return r.ID == id })
}

// GoalIndex returns the position of the goal with id, or -1.
func (d *UserData) GoalIndex(id string) int {
	return slices.IndexFunc(d.Goals, func(g models.Goal) bool { return g.ID == id })
}

// TagIndex returns the position of the tag with id, or -1.
func (d *UserData) TagIndex(id string) int {
	return slices.IndexFunc(d.Tags, func(t models.Tag) bool { return t.ID == id })
}

// TagByName finds a tag by case-insensitive name, or -1.
func (d *UserData) TagByName(name string) int {
	name = strings.TrimSpace(name)
	return slices.IndexFunc(d.Tags, func(t models.Tag) bool { return strings.EqualFold(t.Name, name) })
}

// Store keeps per-user data in memory. Readers always get copies and
// writers replace a user's data in one step, so no partial write is ever
// visible.
type Store struct {
	mu    sync.RWMutex
	users map[string]*UserData
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{users: make(map[string]*UserData)}
}

// Snapshot returns a deep copy of the user's data. Unknown users get empty data.
func (s *Store) Snapshot(userID string) *UserData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.users[userID]
	if !ok {
		return &UserData{}
	}
	return data.Clone()
}

// Update runs fn against a copy of the user's data and stores the copy only
// when fn returns nil. The write lock is held for the duration of fn, which
// serializes writers per store.
func (s *Store) Update(ctx context.Context, userID string, fn func(*UserData) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to update user data: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[userID]
	if !ok {
		current = &UserData{}
	}
	working := current.Clone()
	if err := fn(working); err != nil {
		return err
	}
	s.users[userID] = working
	return nil
}

// Put replaces a user's data wholesale. Used for seeding.
func (s *Store) Put(userID string, data *UserData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = data.Clone()
}

// Drop removes everything stored for a user.
func (s *Store) Drop(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
}

// UserIDs lists users that have data, sorted.
func (s *Store) UserIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
