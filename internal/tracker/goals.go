package tracker

import (
	"context"
	"errors"
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

// DefaultGoalIcon is used when a goal is created without one.
const DefaultGoalIcon = "🎯"

// GoalInput holds the editable fields of a goal. Amount, status and
// history change only through contributions and completion.
type GoalInput struct {
	Name         string
	Description  string
	TargetAmount decimal.Decimal
	Deadline     time.Time
	Icon         string
}

func (in GoalInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: goal name", ErrMissingField)
	}
	if !in.TargetAmount.IsPositive() {
		return ledger.ErrInvalidAmount
	}
	if in.Deadline.IsZero() {
		return fmt.Errorf("%w: deadline", ErrMissingField)
	}
	return nil
}

func (s *Service) applyGoal(goal *models.Goal, in GoalInput) {
	goal.Name = strings.TrimSpace(in.Name)
	goal.Description = strings.TrimSpace(in.Description)
	goal.TargetAmount = in.TargetAmount
	goal.Deadline = ledger.Day(in.Deadline, s.loc)
	goal.Icon = in.Icon
	if goal.Icon == "" {
		goal.Icon = DefaultGoalIcon
	}
}

// AddGoal creates an Active goal with nothing saved yet.
func (s *Service) AddGoal(ctx context.Context, userID string, in GoalInput) (goal models.Goal, err error) {
	ctx, span, began := s.start(ctx, "AddGoal", userID)
	defer func() { s.finish(span, "add_goal", userID, began, err) }()

	if err := in.validate(); err != nil {
		return models.Goal{}, err
	}
	goal = models.Goal{ID: repository.NewID("goal"), Status: models.GoalActive, History: []models.GoalHistory{}}
	s.applyGoal(&goal, in)

	err = s.store.Update(ctx, userID, func(d *repository.UserData) error {
		d.Goals = append(d.Goals, goal)
		return nil
	})
	if err != nil {
		return models.Goal{}, fmt.Errorf("failed to add goal: %w", err)
	}

	logger.Log.Info().
		Str("user_hash", logger.HashUserID(userID)).
		Str("goal_id", goal.ID).
		Str("name", logger.SanitizeText(goal.Name)).
		Msg("Goal added")
	return goal, nil
}

// UpdateGoal replaces the editable fields of a goal.
func (s *Service) UpdateGoal(ctx context.Context, userID, goalID string, in GoalInput) (goal models.Goal, err error) {
	ctx, span, began := s.start(ctx, "UpdateGoal", userID)
	defer func() { s.finish(span, "update_goal", userID, began, err) }()

	if err := in.validate(); err != nil {
		return models.Goal{}, err
	}
	err = s.store.Update(ctx, userID, func(d *repository.UserData) error {
		i := d.GoalIndex(goalID)
		if i < 0 {
			return fmt.Errorf("goal %s: %w", goalID, ErrNotFound)
		}
		s.applyGoal(&d.Goals[i], in)
		goal = d.Goals[i]
		return nil
	})
	if err != nil {
		return models.Goal{}, err
	}

	logger.Log.Info().Str("user_hash", logger.HashUserID(userID)).Str("goal_id", goalID).Msg("Goal updated")
	return goal, nil
}

// DeleteGoal removes a goal. Its contribution transactions stay.
func (s *Service) DeleteGoal(ctx context.Context, userID, goalID string) (err error) {
	ctx, span, began := s.start(ctx, "DeleteGoal", userID)
	defer func() { s.finish(span, "delete_goal", userID, began, err) }()

	err = s.store.Update(ctx, userID, func(d *repository.UserData) error {
		i := d.GoalIndex(goalID)
		if i < 0 {
			return fmt.Errorf("goal %s: %w", goalID, ErrNotFound)
		}
		d.Goals = slices.Delete(d.Goals, i, i+1)
		return nil
	})
	if err != nil {
		return err
	}

	logger.Log.Info().Str("user_hash", logger.HashUserID(userID)).Str("goal_id", goalID).Msg("Goal deleted")
	return nil
}

// ListGoals returns all goals.
func (s *Service) ListGoals(_ context.Context, userID string) ([]models.Goal, error) {
	return s.store.Snapshot(userID).Goals, nil
}

// GetGoal returns one goal.
func (s *Service) GetGoal(_ context.Context, userID, goalID string) (models.Goal, error) {
	d := s.store.Snapshot(userID)
	i := d.GoalIndex(goalID)
	if i < 0 {
		return models.Goal{}, fmt.Errorf("goal %s: %w", goalID, ErrNotFound)
	}
	return d.Goals[i], nil
}

// ContributionResult is the outcome of Contribute. Transaction is nil when
// the clamped amount was zero and nothing changed.
type ContributionResult struct {
	Goal        models.Goal
	Transaction *models.Transaction
	Effective   decimal.Decimal
}

// Contribute moves money between an account and a goal. The goal update
// and its backing transaction are stored together or not at all.
func (s *Service) Contribute(ctx context.Context, userID, goalID string, amount decimal.Decimal, accountID string, change models.GoalChange) (res ContributionResult, err error) {
	ctx, span, began := s.start(ctx, "Contribute", userID)
	defer func() { s.finish(span, "contribute", userID, began, err) }()

	err = s.store.Update(ctx, userID, func(d *repository.UserData) error {
		gi := d.GoalIndex(goalID)
		if gi < 0 {
			return fmt.Errorf("goal %s: %w", goalID, ErrNotFound)
		}
		ai := d.AccountIndex(accountID)
		if ai < 0 {
			return fmt.Errorf("account %s: %w", accountID, ErrNotFound)
		}
		account := d.Accounts[ai]
		account.Balance = ledger.ComputeBalance(account, d.Transactions)

		out, err := ledger.Contribute(d.Goals[gi], account, amount, change, s.Now(), func() string {
			return repository.NewID("txn")
		})
		if err != nil {
			return err
		}
		res = ContributionResult{Goal: out.Goal, Transaction: out.Transaction, Effective: out.Effective}
		if out.Transaction == nil {
			return nil
		}
		d.Goals[gi] = out.Goal
		d.Transactions = append([]models.Transaction{*out.Transaction}, d.Transactions...)
		ledger.SortNewestFirst(d.Transactions)
		return nil
	})

	switch {
	case err != nil:
		var insufficient *ledger.InsufficientFundsError
		if errors.As(err, &insufficient) {
			s.metrics.IncrContribution(string(change), "rejected")
		}
		return ContributionResult{}, err
	case res.Transaction == nil:
		s.metrics.IncrContribution(string(change), "noop")
		logger.Log.Info().Str("user_hash", logger.HashUserID(userID)).Str("goal_id", goalID).Msg("Goal contribution clamped to zero")
	default:
		s.metrics.IncrContribution(string(change), "applied")
		logger.Log.Info().
			Str("user_hash", logger.HashUserID(userID)).
			Str("goal_id", goalID).
			Str("change", string(change)).
			Str("requested", amount.StringFixed(2)).
			Str("effective", res.Effective.StringFixed(2)).
			Str("txn_id", res.Transaction.ID).
			Msg("Goal contribution applied")
	}
	return res, nil
}

// ConfirmCompletion completes a funded goal and records the settlement
// expense against fromAccountID.
func (s *Service) ConfirmCompletion(ctx context.Context, userID, goalID, fromAccountID string) (goal models.Goal, txn models.Transaction, err error) {
	ctx, span, began := s.start(ctx, "ConfirmCompletion", userID)
	defer func() { s.finish(span, "confirm_completion", userID, began, err) }()

	err = s.store.Update(ctx, userID, func(d *repository.UserData) error {
		gi := d.GoalIndex(goalID)
		if gi < 0 {
			return fmt.Errorf("goal %s: %w", goalID, ErrNotFound)
		}
		if d.AccountIndex(fromAccountID) < 0 {
			return fmt.Errorf("account %s: %w", fromAccountID, ErrNotFound)
		}
		done, settlement, err := ledger.Complete(d.Goals[gi], fromAccountID, s.Now(), func() string {
			return repository.NewID("txn")
		})
		if err != nil {
			return err
		}
		d.Goals[gi] = done
		d.Transactions = append([]models.Transaction{settlement}, d.Transactions...)
		ledger.SortNewestFirst(d.Transactions)
		goal, txn = done, settlement
		return nil
	})
	if err != nil {
		return models.Goal{}, models.Transaction{}, err
	}

	logger.Log.Info().
		Str("user_hash", logger.HashUserID(userID)).
		Str("goal_id", goalID).
		Str("txn_id", txn.ID).
		Msg("Goal completed")
	return goal, txn, nil
}
