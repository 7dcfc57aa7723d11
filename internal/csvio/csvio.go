// Package csvio converts transactions to and from the CSV layout users
// download and upload.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/finance-tracker/internal/ledger"
	"gitlab.com/yelinaung/finance-tracker/internal/models"
	"gitlab.com/yelinaung/finance-tracker/internal/repository"
	"gitlab.com/yelinaung/finance-tracker/internal/tracker"
)

// Header is the column layout of exported files.
var Header = []string{"Date", "Description", "Amount", "Type", "Category", "Status", "Account", "Tags"}

const (
	unknownName = "Unknown"
	tagJoiner   = "; "
	minColumns  = 4
)

var (
	// ErrInvalidAmount is returned by ParseAmount for non-numeric or non-positive input.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidDate is returned by ParseDate for unrecognized formats.
	ErrInvalidDate = errors.New("invalid date")
)

var amountPattern = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// currencySymbols holds every supported symbol, longest first, so "S$"
// is tried before "$".
var currencySymbols = func() []string {
	symbols := make([]string, 0, len(models.SupportedCurrencies))
	for _, symbol := range models.SupportedCurrencies {
		symbols = append(symbols, symbol)
	}
	slices.SortFunc(symbols, func(a, b string) int {
		if d := len(b) - len(a); d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})
	return slices.Compact(symbols)
}()

var dateLayouts = []string{
	ledger.DateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
}

// Filename is the download name for an export made at now.
func Filename(now time.Time) string {
	return fmt.Sprintf("transactions-%s.csv", now.Format(ledger.DateLayout))
}

// Export writes txns with every field quoted. Account and tag ids are
// rendered by name, or Unknown when they no longer exist.
func Export(w io.Writer, txns []models.Transaction, accounts []models.Account, tags []models.Tag, loc *time.Location) error {
	accountNames := make(map[string]string, len(accounts))
	for _, acc := range accounts {
		accountNames[acc.ID] = acc.Name
	}
	tagNames := make(map[string]string, len(tags))
	for _, tag := range tags {
		tagNames[tag.ID] = tag.Name
	}

	if _, err := io.WriteString(w, strings.Join(Header, ",")+"\n"); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range txns {
		txn := &txns[i]
		account, ok := accountNames[txn.AccountID]
		if !ok {
			account = unknownName
		}
		names := make([]string, 0, len(txn.Tags))
		for _, id := range txn.Tags {
			name, ok := tagNames[id]
			if !ok {
				name = unknownName
			}
			names = append(names, name)
		}

		row := []string{
			txn.Date.In(loc).Format(ledger.DateLayout),
			txn.Description,
			txn.Amount.StringFixed(2),
			string(txn.Type),
			string(txn.Category),
			string(txn.Status),
			account,
			strings.Join(names, tagJoiner),
		}
		if _, err := io.WriteString(w, quoteRow(row)+"\n"); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	return nil
}

func quoteRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

// SkippedRow is an input line that could not be turned into a transaction.
type SkippedRow struct {
	Line   int
	Reason string
}

// Result is the outcome of Parse.
type Result struct {
	Rows    []tracker.TransactionInput
	Skipped []SkippedRow
}

// Parse reads an uploaded file. Accounts and tags are resolved by name;
// unknown accounts leave the account empty and unknown tags are dropped.
// Rows with an unusable date, amount or type are reported in Skipped.
func Parse(r io.Reader, accounts []models.Account, tags []models.Tag, loc *time.Location) (Result, error) {
	data := &repository.UserData{Accounts: accounts, Tags: tags}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var res Result
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			res.Skipped = append(res.Skipped, SkippedRow{Line: parseErr.StartLine, Reason: parseErr.Err.Error()})
			first = false
			continue
		}
		if err != nil {
			return Result{}, fmt.Errorf("failed to read CSV: %w", err)
		}

		line, _ := reader.FieldPos(0)
		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(record[0], "\ufeff")), Header[0]) {
				continue
			}
		}
		if isBlank(record) {
			continue
		}

		in, err := parseRecord(record, data, loc)
		if err != nil {
			res.Skipped = append(res.Skipped, SkippedRow{Line: line, Reason: err.Error()})
			continue
		}
		res.Rows = append(res.Rows, in)
	}
	return res, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseRecord(record []string, data *repository.UserData, loc *time.Location) (tracker.TransactionInput, error) {
	if len(record) < minColumns {
		return tracker.TransactionInput{}, fmt.Errorf("expected at least %d columns, got %d", minColumns, len(record))
	}

	date, err := ParseDate(field(record, 0), loc)
	if err != nil {
		return tracker.TransactionInput{}, err
	}
	description := field(record, 1)
	if description == "" {
		return tracker.TransactionInput{}, errors.New("missing description")
	}
	amount, err := ParseAmount(field(record, 2))
	if err != nil {
		return tracker.TransactionInput{}, err
	}
	txnType := models.TransactionType(strings.ToLower(field(record, 3)))
	if !txnType.Valid() {
		return tracker.TransactionInput{}, fmt.Errorf("unknown type %q", field(record, 3))
	}

	in := tracker.TransactionInput{
		Type:        txnType,
		Amount:      amount,
		Description: description,
		Date:        date,
		Status:      parseStatus(field(record, 5)),
		Category:    parseCategory(field(record, 4)),
	}
	if i := data.AccountByName(field(record, 6)); i >= 0 {
		in.AccountID = data.Accounts[i].ID
	}
	for _, name := range strings.Split(field(record, 7), ";") {
		if i := data.TagByName(name); i >= 0 {
			in.Tags = append(in.Tags, data.Tags[i].ID)
		}
	}
	return in, nil
}

// ParseAmount accepts a positive decimal, optionally with a leading
// currency symbol and thousands separators.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer(",", "", " ", "").Replace(strings.TrimSpace(s))
	for _, symbol := range currencySymbols {
		if rest, ok := strings.CutPrefix(cleaned, symbol); ok {
			cleaned = rest
			break
		}
	}

	if !amountPattern.MatchString(cleaned) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %q must be positive", ErrInvalidAmount, s)
	}
	return amount, nil
}

// ParseDate accepts YYYY-MM-DD and a few common variants, interpreted in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func parseStatus(s string) models.TransactionStatus {
	for _, status := range []models.TransactionStatus{models.StatusPaid, models.StatusUnpaid, models.StatusDebt, models.StatusInstallment} {
		if strings.EqualFold(s, string(status)) {
			return status
		}
	}
	return models.StatusPaid
}

func parseCategory(s string) models.ExpenseCategory {
	c := models.ExpenseCategory(strings.ToLower(s))
	if c.Valid() {
		return c
	}
	return ""
}
