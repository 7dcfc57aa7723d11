package bot

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/finance-tracker/internal/auth"
	"gitlab.com/yelinaung/finance-tracker/internal/csvio"
	"gitlab.com/yelinaung/finance-tracker/internal/ledger"
	"gitlab.com/yelinaung/finance-tracker/internal/models"
	"gitlab.com/yelinaung/finance-tracker/internal/repository"
	"gitlab.com/yelinaung/finance-tracker/internal/tracker"
)

// decimalCommaRegex matches amounts written with a decimal comma, like "5,50".
var decimalCommaRegex = regexp.MustCompile(`^\d+,\d{1,2}$`)

// parseAmount accepts plain, grouped ("1,200.50"), decimal-comma ("5,50")
// and symbol-prefixed ("$12") amounts.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if decimalCommaRegex.MatchString(s) {
		s = strings.Replace(s, ",", ".", 1)
	}
	amount, err := csvio.ParseAmount(s)
	if err != nil {
		return decimal.Zero, ledger.ErrInvalidAmount
	}
	return amount, nil
}

// parseBalance is parseAmount that also allows zero, for opening balances.
func parseBalance(s string) (decimal.Decimal, error) {
	if d, err := decimal.NewFromString(strings.TrimSpace(s)); err == nil && d.IsZero() {
		return decimal.Zero, nil
	}
	return parseAmount(s)
}

func parseTransactionType(s string) (models.TransactionType, bool) {
	switch strings.ToLower(s) {
	case "income", "in", "+":
		return models.TransactionIncome, true
	case "expense", "exp", "out", "-":
		return models.TransactionExpense, true
	}
	return "", false
}

func parseAccountType(s string) (models.AccountType, bool) {
	switch strings.ToLower(s) {
	case "bank":
		return models.AccountBank, true
	case "cash":
		return models.AccountCash, true
	case "ewallet", "e-wallet", "wallet":
		return models.AccountEWallet, true
	}
	return "", false
}

func parseFrequency(s string) (models.Frequency, bool) {
	switch strings.ToLower(s) {
	case "daily":
		return models.FrequencyDaily, true
	case "weekly":
		return models.FrequencyWeekly, true
	case "monthly":
		return models.FrequencyMonthly, true
	}
	return "", false
}

func parseDate(s string, loc *time.Location) (time.Time, bool) {
	t, err := time.ParseInLocation(ledger.DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// splitArgs splits args on whitespace into at most n fields. The last field
// keeps its inner spacing so descriptions and names survive intact.
func splitArgs(args string, n int) []string {
	var fields []string
	rest := strings.TrimSpace(args)
	for len(fields) < n-1 && rest != "" {
		i := strings.IndexFunc(rest, unicode.IsSpace)
		if i < 0 {
			break
		}
		fields = append(fields, rest[:i])
		rest = strings.TrimSpace(rest[i:])
	}
	if rest != "" {
		fields = append(fields, rest)
	}
	return fields
}

// extractTags removes trailing "#name" words from text and returns them.
// An underscore in a tag stands for a space, so "#office_supplies" names
// the tag "office supplies".
func extractTags(text string) (string, []string) {
	words := strings.Fields(text)
	var tags []string
	for len(words) > 0 {
		last := words[len(words)-1]
		if len(last) < 2 || last[0] != '#' {
			break
		}
		tags = append([]string{strings.ReplaceAll(last[1:], "_", " ")}, tags...)
		words = words[:len(words)-1]
	}
	return strings.Join(words, " "), tags
}

// resolveTags maps tag names to ids, case-insensitively. Names that match no
// tag are returned as unknown.
func resolveTags(tags []models.Tag, names []string) (ids, unknown []string) {
	data := repository.UserData{Tags: tags}
	for _, name := range names {
		i := data.TagByName(name)
		if i < 0 {
			unknown = append(unknown, name)
			continue
		}
		ids = append(ids, tags[i].ID)
	}
	return ids, unknown
}

// isUserError reports whether err is safe and useful to show as-is.
func isUserError(err error) bool {
	switch {
	case tracker.IsValidation(err),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrWrongPassword),
		errors.Is(err, auth.ErrInvalidInput),
		errors.Is(err, repository.ErrEmailTaken),
		errors.Is(err, csvio.ErrInvalidAmount),
		errors.Is(err, csvio.ErrInvalidDate):
		return true
	}
	return false
}
