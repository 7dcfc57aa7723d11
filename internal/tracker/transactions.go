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

// TransactionInput holds the editable fields of a transaction.
type TransactionInput struct {
	Type          models.TransactionType
	Amount        decimal.Decimal
	Description   string
	Date          time.Time
	Tags          []string
	Status        models.TransactionStatus
	AccountID     string
	Category      models.ExpenseCategory
	TaxPercent    *decimal.Decimal
	AttachmentURL string
}

// InputFromTransaction returns the editable fields of txn, for read-modify-write updates.
func InputFromTransaction(txn models.Transaction) TransactionInput {
	return TransactionInput{
		Type:          txn.Type,
		Amount:        txn.Amount,
		Description:   txn.Description,
		Date:          txn.Date,
		Tags:          slices.Clone(txn.Tags),
		Status:        txn.Status,
		AccountID:     txn.AccountID,
		Category:      txn.Category,
		TaxPercent:    txn.TaxPercent,
		AttachmentURL: txn.AttachmentURL,
	}
}

// build validates in and turns it into a transaction without id or history.
// strict requires the account and every tag to exist in d.
func (s *Service) build(in TransactionInput, d *repository.UserData, strict bool) (models.Transaction, error) {
	if !in.Type.Valid() {
		return models.Transaction{}, fmt.Errorf("%w: transaction type %q", ErrInvalidInput, in.Type)
	}
	if !in.Amount.IsPositive() {
		return models.Transaction{}, ledger.ErrInvalidAmount
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return models.Transaction{}, fmt.Errorf("%w: description", ErrMissingField)
	}
	status := in.Status
	if status == "" {
		status = models.StatusPaid
	}
	if !status.Valid() {
		return models.Transaction{}, fmt.Errorf("%w: status %q", ErrInvalidInput, in.Status)
	}
	if !in.Category.Valid() {
		return models.Transaction{}, fmt.Errorf("%w: category %q", ErrInvalidInput, in.Category)
	}
	date := in.Date
	if date.IsZero() {
		date = s.now()
	}

	tags := make([]string, 0, len(in.Tags))
	for _, tagID := range in.Tags {
		if slices.Contains(tags, tagID) {
			continue
		}
		if d.TagIndex(tagID) < 0 {
			if strict {
				return models.Transaction{}, fmt.Errorf("tag %s: %w", tagID, ErrNotFound)
			}
			continue
		}
		tags = append(tags, tagID)
	}

	if strict {
		if in.AccountID == "" {
			return models.Transaction{}, fmt.Errorf("%w: account", ErrMissingField)
		}
		if d.AccountIndex(in.AccountID) < 0 {
			return models.Transaction{}, fmt.Errorf("account %s: %w", in.AccountID, ErrNotFound)
		}
	}

	txn := models.Transaction{
		Type:          in.Type,
		Amount:        in.Amount,
		Description:   desc,
		Date:          date,
		Tags:          tags,
		Status:        status,
		AccountID:     in.AccountID,
		Category:      in.Category,
		AttachmentURL: strings.TrimSpace(in.AttachmentURL),
	}
	if in.TaxPercent != nil {
		tax := *in.TaxPercent
		txn.TaxPercent = &tax
	}
	if err := ledger.ApplyTax(&txn); err != nil {
		return models.Transaction{}, err
	}
	return txn, nil
}

// AddTransaction records a new transaction with a creation history entry.
func (s *Service) AddTransaction(ctx context.Context, userID string, in TransactionInput) (txn models.Transaction, err error) {
	ctx, span, began := s.start(ctx, "AddTransaction", userID)
	defer func() { s.finish(span, "add_transaction", userID, began, err) }()

	err = s.store.Update(ctx, userID, func(d *repository.UserData) error {
		built, err := s.build(in, d, true)
		if err != nil {
			return err
		}
		built.ID = repository.NewID("txn")
		built.History = []models.TransactionHistory{{Date: built.Date, Change: ledger.HistoryCreated}}
		d.Transactions = append([]models.Transaction{built}, d.Transactions...)
		ledger.SortNewestFirst(d.Transactions)
		txn = built
		return nil
	})
	if err != nil {
		return models.Transaction{}, err
	}

	logger.Log.Info().
		Str("user_hash", logger.HashUserID(userID)).
		Str("txn_id", txn.ID).
		Str("type", string(txn.Type)).
		Str("amount", txn.Amount.StringFixed(2)).
		Str("description", logger.SanitizeDescription(txn.Description)).
		Msg("Transaction added")
	return txn, nil
}

// UpdateTransaction replaces the editable fields and prepends one history
// entry describing what changed.
func (s *Service) UpdateTransaction(ctx context.Context, userID, txnID string, in TransactionInput) (txn models.Transaction, err error) {
	ctx, span, began := s.start(ctx, "UpdateTransaction", userID)
	defer func() { s.finish(span, "update_transaction", userID, began, err) }()

	symbol := s.currencySymbol(ctx, userID)
	err = s.store.Update(ctx, userID, func(d *repository.UserData) error {
		i := d.TransactionIndex(txnID)
		if i < 0 {
			return fmt.Errorf("transaction %s: %w", txnID, ErrNotFound)
		}
		built, err := s.build(in, d, true)
		if err != nil {
			return err
		}
		built.ID = txnID
		txn = ledger.RecordUpdate(d.Transactions[i], built, s.now(), symbol, s.loc)
		d.Transactions[i] = txn
		ledger.SortNewestFirst(d.Transactions)
		return nil
	})
	if err != nil {
		return models.Transaction{}, err
	}

	logger.Log.Info().
		Str("user_hash", logger.HashUserID(userID)).
		Str("txn_id", txnID).
		Str("change", txn.History[0].Change).
		Msg("Transaction updated")
	return txn, nil
}

// DeleteTransaction removes one transaction.
func (s *Service) DeleteTransaction(ctx context.Context, userID, txnID string) (err error) {
	ctx, span, began := s.start(ctx, "DeleteTransaction", userID)
	defer func() { s.finish(span, "delete_transaction", userID, began, err) }()

	err = s.store.Update(ctx, userID, func(d *repository.UserData) error {
		i := d.TransactionIndex(txnID)
		if i < 0 {
			return fmt.Errorf("transaction %s: %w", txnID, ErrNotFound)
		}
		d.Transactions = slices.Delete(d.Transactions, i, i+1)
		return nil
	})
	if err != nil {
		return err
	}

	logger.Log.Info().Str("user_hash", logger.HashUserID(userID)).Str("txn_id", txnID).Msg("Transaction deleted")
	return nil
}

// DeleteTransactions removes every transaction whose id is in ids and
// returns how many were removed. Unknown ids are ignored.
func (s *Service) DeleteTransactions(ctx context.Context, userID string, ids []string) (removed int, err error) {
	ctx, span, began := s.start(ctx, "DeleteTransactions", userID)
	defer func() { s.finish(span, "delete_transactions", userID, began, err) }()

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	err = s.store.Update(ctx, userID, func(d *repository.UserData) error {
		before := len(d.Transactions)
		d.Transactions = slices.DeleteFunc(d.Transactions, func(t models.Transaction) bool {
			return drop[t.ID]
		})
		removed = before - len(d.Transactions)
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Log.Info().
		Str("user_hash", logger.HashUserID(userID)).
		Int("requested", len(ids)).
		Int("removed", removed).
		Msg("Transactions bulk deleted")
	return removed, nil
}

// ImportTransactions adds a batch in one atomic update. Account and tag
// references are not required to exist: unknown tags are dropped and an
// unknown account is kept as given. Expenses without a category get one
// from the suggester when configured. A single invalid row rejects the batch.
func (s *Service) ImportTransactions(ctx context.Context, userID string, inputs []TransactionInput) (imported []models.Transaction, err error) {
	ctx, span, began := s.start(ctx, "ImportTransactions", userID)
	defer func() { s.finish(span, "import_transactions", userID, began, err) }()

	inputs = s.suggestCategories(ctx, inputs)

	err = s.store.Update(ctx, userID, func(d *repository.UserData) error {
		batch := make([]models.Transaction, 0, len(inputs))
		for i, in := range inputs {
			built, err := s.build(in, d, false)
			if err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
			built.ID = repository.NewID("txn")
			built.History = []models.TransactionHistory{{Date: built.Date, Change: ledger.HistoryImported}}
			batch = append(batch, built)
		}
		d.Transactions = append(batch, d.Transactions...)
		ledger.SortNewestFirst(d.Transactions)
		imported = batch
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info().
		Str("user_hash", logger.HashUserID(userID)).
		Int("count", len(imported)).
		Msg("Transactions imported")
	return imported, nil
}

func (s *Service) suggestCategories(ctx context.Context, inputs []TransactionInput) []TransactionInput {
	if s.suggester == nil {
		return inputs
	}
	out := slices.Clone(inputs)
	for i := range out {
		if out[i].Type != models.TransactionExpense || out[i].Category != "" || strings.TrimSpace(out[i].Description) == "" {
			continue
		}
		category, err := s.suggester.SuggestCategory(ctx, out[i].Description)
		if err != nil {
			s.metrics.IncrExternalError("gemini")
			logger.Log.Debug().Err(err).Int("row", i+1).Msg("Category suggestion failed")
			continue
		}
		if category.Valid() {
			out[i].Category = category
		}
	}
	return out
}

// ListTransactions returns all transactions, newest first.
func (s *Service) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	_, span, began := s.start(ctx, "ListTransactions", userID)
	defer s.finish(span, "list_transactions", userID, began, nil)

	return s.store.Snapshot(userID).Transactions, nil
}

// GetTransaction returns one transaction.
func (s *Service) GetTransaction(_ context.Context, userID, txnID string) (models.Transaction, error) {
	d := s.store.Snapshot(userID)
	i := d.TransactionIndex(txnID)
	if i < 0 {
		return models.Transaction{}, fmt.Errorf("transaction %s: %w", txnID, ErrNotFound)
	}
	return d.Transactions[i], nil
}
