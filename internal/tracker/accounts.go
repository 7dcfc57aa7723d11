package tracker

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/finance-tracker/internal/ledger"
	"gitlab.com/yelinaung/finance-tracker/internal/logger"
	"gitlab.com/yelinaung/finance-tracker/internal/models"
	"gitlab.com/yelinaung/finance-tracker/internal/repository"
)

// AccountInput holds the editable fields of an account.
type AccountInput struct {
	Name           string
	Type           models.AccountType
	InitialBalance decimal.Decimal
}

func (in AccountInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: account name", ErrMissingField)
	}
	if !in.Type.Valid() {
		return fmt.Errorf("%w: account type %q", ErrInvalidInput, in.Type)
	}
	return nil
}

// AddAccount creates an account. Its balance starts at the initial balance.
func (s *Service) AddAccount(ctx context.Context, userID string, in AccountInput) (acc models.Account, err error) {
	ctx, span, began := s.start(ctx, "AddAccount", userID)
	defer func() { s.finish(span, "add_account", userID, began, err) }()

	if err := in.validate(); err != nil {
		return models.Account{}, err
	}
	acc = models.Account{
		ID:             repository.NewID("acc"),
		Name:           strings.TrimSpace(in.Name),
		Type:           in.Type,
		InitialBalance: in.InitialBalance,
	}
	err = s.store.Update(ctx, userID, func(d *repository.UserData) error {
		d.Accounts = append(d.Accounts, acc)
		return nil
	})
	if err != nil {
		return models.Account{}, fmt.Errorf("failed to add account: %w", err)
	}
	acc.Balance = acc.InitialBalance

	logger.Log.Info().
		Str("user_hash", logger.HashUserID(userID)).
		Str("account_id", acc.ID).
		Str("type", string(acc.Type)).
		Msg("Account added")
	return acc, nil
}

// UpdateAccount replaces the editable fields. The balance is re-derived.
func (s *Service) UpdateAccount(ctx context.Context, userID, accountID string, in AccountInput) (acc models.Account, err error) {
	ctx, span, began := s.start(ctx, "UpdateAccount", userID)
	defer func() { s.finish(span, "update_account", userID, began, err) }()

	if err := in.validate(); err != nil {
		return models.Account{}, err
	}
	err = s.store.Update(ctx, userID, func(d *repository.UserData) error {
		i := d.AccountIndex(accountID)
		if i < 0 {
			return fmt.Errorf("account %s: %w", accountID, ErrNotFound)
		}
		d.Accounts[i].Name = strings.TrimSpace(in.Name)
		d.Accounts[i].Type = in.Type
		d.Accounts[i].InitialBalance = in.InitialBalance
		acc = d.Accounts[i]
		acc.Balance = ledger.ComputeBalance(acc, d.Transactions)
		return nil
	})
	if err != nil {
		return models.Account{}, err
	}

	logger.Log.Info().Str("user_hash", logger.HashUserID(userID)).Str("account_id", accountID).Msg("Account updated")
	return acc, nil
}

// DeleteAccount removes an account that no transaction references. It
// returns false with a nil error when the account is still in use.
func (s *Service) DeleteAccount(ctx context.Context, userID, accountID string) (deleted bool, err error) {
	ctx, span, began := s.start(ctx, "DeleteAccount", userID)
	defer func() { s.finish(span, "delete_account", userID, began, err) }()

	err = s.store.Update(ctx, userID, func(d *repository.UserData) error {
		i := d.AccountIndex(accountID)
		if i < 0 {
			return fmt.Errorf("account %s: %w", accountID, ErrNotFound)
		}
		inUse := slices.ContainsFunc(d.Transactions, func(t models.Transaction) bool {
			return t.AccountID == accountID
		})
		if inUse {
			return nil
		}
		d.Accounts = slices.Delete(d.Accounts, i, i+1)
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if !deleted {
		logger.Log.Warn().Str("user_hash", logger.HashUserID(userID)).Str("account_id", accountID).Msg("Account in use, not deleted")
		return false, nil
	}
	logger.Log.Info().Str("user_hash", logger.HashUserID(userID)).Str("account_id", accountID).Msg("Account deleted")
	return true, nil
}

// ListAccounts returns accounts with derived balances.
func (s *Service) ListAccounts(ctx context.Context, userID string) ([]models.Account, error) {
	_, span, began := s.start(ctx, "ListAccounts", userID)
	defer s.finish(span, "list_accounts", userID, began, nil)

	d := s.store.Snapshot(userID)
	return ledger.ComputeBalances(d.Accounts, d.Transactions), nil
}

// GetAccount returns one account with its derived balance.
func (s *Service) GetAccount(ctx context.Context, userID, accountID string) (models.Account, error) {
	accounts, err := s.ListAccounts(ctx, userID)
	if err != nil {
		return models.Account{}, err
	}
	for _, acc := range accounts {
		if acc.ID == accountID {
			return acc, nil
		}
	}
	return models.Account{}, fmt.Errorf("account %s: %w", accountID, ErrNotFound)
}
