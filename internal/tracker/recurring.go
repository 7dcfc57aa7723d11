package tracker

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/finance-tracker/internal/ledger"
	"gitlab.com/yelinaung/finance-tracker/internal/logger"
	"gitlab.com/yelinaung/finance-tracker/internal/models"
	"gitlab.com/yelinaung/finance-tracker/internal/repository"
)

// RecurringInput holds the editable fields of a recurring template.
type RecurringInput struct {
	Description string
	Amount      decimal.Decimal
	Type        models.TransactionType
	Tags        []string
	AccountID   string
	Category    models.ExpenseCategory
	Frequency   models.Frequency
	StartDate   time.Time
	EndDate     *time.Time
}

func (s *Service) validateRecurring(in RecurringInput, d *repository.UserData) error {
	if strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("%w: description", ErrMissingField)
	}
	if !in.Amount.IsPositive() {
		return ledger.ErrInvalidAmount
	}
	if !in.Type.Valid() {
		return fmt.Errorf("%w: transaction type %q", ErrInvalidInput, in.Type)
	}
	if !in.Frequency.Valid() {
		return fmt.Errorf("%w: frequency %q", ErrInvalidInput, in.Frequency)
	}
	if !in.Category.Valid() {
		return fmt.Errorf("%w: category %q", ErrInvalidInput, in.Category)
	}
	if in.StartDate.IsZero() {
		return fmt.Errorf("%w: start date", ErrMissingField)
	}
	if in.EndDate != nil && ledger.Day(*in.EndDate, s.loc).Before(ledger.Day(in.StartDate, s.loc)) {
		return fmt.Errorf("%w: end date is before start date", ErrInvalidInput)
	}
	if in.AccountID == "" {
		return fmt.Errorf("%w: account", ErrMissingField)
	}
	if d.AccountIndex(in.AccountID) < 0 {
		return fmt.Errorf("account %s: %w", in.AccountID, ErrNotFound)
	}
	for _, tagID := range in.Tags {
		if d.TagIndex(tagID) < 0 {
			return fmt.Errorf("tag %s: %w", tagID, ErrNotFound)
		}
	}
	return nil
}

func (s *Service) applyRecurring(tmpl *models.RecurringTransaction, in RecurringInput) {
	tmpl.Description = strings.TrimSpace(in.Description)
	tmpl.Amount = in.Amount
	tmpl.Type = in.Type
	tmpl.Tags = slices.Clone(in.Tags)
	tmpl.AccountID = in.AccountID
	tmpl.Category = in.Category
	tmpl.Frequency = in.Frequency
	tmpl.StartDate = ledger.Day(in.StartDate, s.loc)
	tmpl.EndDate = nil
	if in.EndDate != nil {
		end := ledger.Day(*in.EndDate, s.loc)
		tmpl.EndDate = &end
	}
}

// AddRecurring creates a template whose first occurrence is its start date.
func (s *Service) AddRecurring(ctx context.Context, userID string, in RecurringInput) (tmpl models.RecurringTransaction, err error) {
	ctx, span, began := s.start(ctx, "AddRecurring", userID)
	defer func() { s.finish(span, "add_recurring", userID, began, err) }()

	err = s.store.Update(ctx, userID, func(d *repository.UserData) error {
		if err := s.validateRecurring(in, d); err != nil {
			return err
		}
		tmpl = models.RecurringTransaction{ID: repository.NewID("rec")}
		s.applyRecurring(&tmpl, in)
		tmpl.LastGeneratedDate = ledger.InitialCursor(in.StartDate, s.loc)
		d.Recurring = append(d.Recurring, tmpl)
		return nil
	})
	if err != nil {
		return models.RecurringTransaction{}, err
	}

	logger.Log.Info().
		Str("user_hash", logger.HashUserID(userID)).
		Str("recurring_id", tmpl.ID).
		Str("frequency", string(tmpl.Frequency)).
		Msg("Recurring template added")
	return tmpl, nil
}

// UpdateRecurring replaces the editable fields. The cursor is preserved.
func (s *Service) UpdateRecurring(ctx context.Context, userID, recurringID string, in RecurringInput) (tmpl models.RecurringTransaction, err error) {
	ctx, span, began := s.start(ctx, "UpdateRecurring", userID)
	defer func() { s.finish(span, "update_recurring", userID, began, err) }()

	err = s.store.Update(ctx, userID, func(d *repository.UserData) error {
		i := d.RecurringIndex(recurringID)
		if i < 0 {
			return fmt.Errorf("recurring %s: %w", recurringID, ErrNotFound)
		}
		if err := s.validateRecurring(in, d); err != nil {
			return err
		}
		s.applyRecurring(&d.Recurring[i], in)
		tmpl = d.Recurring[i]
		return nil
	})
	if err != nil {
		return models.RecurringTransaction{}, err
	}

	logger.Log.Info().Str("user_hash", logger.HashUserID(userID)).Str("recurring_id", recurringID).Msg("Recurring template updated")
	return tmpl, nil
}

// DeleteRecurring removes a template. Transactions it generated stay.
func (s *Service) DeleteRecurring(ctx context.Context, userID, recurringID string) (err error) {
	ctx, span, began := s.start(ctx, "DeleteRecurring", userID)
	defer func() { s.finish(span, "delete_recurring", userID, began, err) }()

	err = s.store.Update(ctx, userID, func(d *repository.UserData) error {
		i := d.RecurringIndex(recurringID)
		if i < 0 {
			return fmt.Errorf("recurring %s: %w", recurringID, ErrNotFound)
		}
		d.Recurring = slices.Delete(d.Recurring, i, i+1)
		return nil
	})
	if err != nil {
		return err
	}

	logger.Log.Info().Str("user_hash", logger.HashUserID(userID)).Str("recurring_id", recurringID).Msg("Recurring template deleted")
	return nil
}

// ListRecurring returns all templates.
func (s *Service) ListRecurring(_ context.Context, userID string) ([]models.RecurringTransaction, error) {
	return s.store.Snapshot(userID).Recurring, nil
}

// MaterializeRecurring generates every due occurrence up to today and
// advances each template's cursor. Running it again on the same day
// generates nothing.
func (s *Service) MaterializeRecurring(ctx context.Context, userID string) (generated int, err error) {
	ctx, span, began := s.start(ctx, "MaterializeRecurring", userID)
	defer func() { s.finish(span, "materialize_recurring", userID, began, err) }()

	today := s.Now()
	err = s.store.Update(ctx, userID, func(d *repository.UserData) error {
		var fresh []models.Transaction
		for i := range d.Recurring {
			updated, txns := ledger.Materialize(d.Recurring[i], today, s.loc, func() string {
				return repository.NewID("txn")
			})
			d.Recurring[i] = updated
			fresh = append(fresh, txns...)
		}
		if len(fresh) == 0 {
			return nil
		}
		d.Transactions = append(fresh, d.Transactions...)
		ledger.SortNewestFirst(d.Transactions)
		generated = len(fresh)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to materialize recurring transactions: %w", err)
	}

	s.metrics.AddGenerated(generated)
	if generated > 0 {
		logger.Log.Info().
			Str("user_hash", logger.HashUserID(userID)).
			Int("generated", generated).
			Msg("Recurring transactions generated")
	}
	return generated, nil
}
