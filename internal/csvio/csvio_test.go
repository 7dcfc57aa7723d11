package csvio

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

var sgt = time.FixedZone("SGT", 8*60*60)

var (
	testAccounts = []models.Account{{ID: "acc-1", Name: "Main Bank"}, {ID: "acc-2", Name: "Cash Wallet"}}
	testTags     = []models.Tag{{ID: "tag-1", Name: "Food"}, {ID: "tag-2", Name: "Work"}}
)

func TestExport(t *testing.T) {
	t.Parallel()

	txns := []models.Transaction{
		{
			Type:        models.TransactionExpense,
			Amount:      decimal.RequireFromString("12.5"),
			Description: `Say "hi"`,
			Date:        time.Date(2024, time.March, 20, 23, 30, 0, 0, time.UTC),
			Tags:        []string{"tag-1", "tag-gone"},
			Status:      models.StatusPaid,
			AccountID:   "acc-1",
			Category:    models.CategoryFlexible,
		},
		{
			Type:        models.TransactionIncome,
			Amount:      decimal.NewFromInt(5000),
			Description: "Salary, March",
			Date:        time.Date(2024, time.March, 1, 0, 0, 0, 0, sgt),
			Status:      models.StatusUnpaid,
			AccountID:   "acc-deleted",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, txns, testAccounts, testTags, sgt))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Equal(t, []string{
		"Date,Description,Amount,Type,Category,Status,Account,Tags",
		`"2024-03-21","Say ""hi""","12.50","expense","flexible","Paid","Main Bank","Food; Unknown"`,
		`"2024-03-01","Salary, March","5000.00","income","","Unpaid","Unknown",""`,
	}, lines)
}

func TestFilename(t *testing.T) {
	t.Parallel()
	require.Equal(t, "transactions-2024-03-22.csv", Filename(time.Date(2024, time.March, 22, 9, 0, 0, 0, sgt)))
}

func TestParse(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"Date,Description,Amount,Type,Category,Status,Account,Tags",
		`"2024-03-20","Lunch, with team","12.50","expense","Flexible","Paid","main bank","Food; Work; Travel"`,
		`2024-03-21,Salary,"5,000.00",Income,,,Unknown Bank,`,
		``,
		`bad-date,Oops,1,expense`,
		`2024-03-22,Refund,-3,income`,
		`2024-03-22,Gift,10,transfer`,
		`2024-03-22,Short`,
		`2024-03-23,Coffee,S$4.20,expense,,debt,Cash Wallet,food`,
	}, "\n")

	res, err := Parse(strings.NewReader(input), testAccounts, testTags, sgt)
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)

	lunch := res.Rows[0]
	require.Equal(t, "Lunch, with team", lunch.Description)
	require.Equal(t, time.Date(2024, time.March, 20, 0, 0, 0, 0, sgt), lunch.Date)
	require.True(t, lunch.Amount.Equal(decimal.RequireFromString("12.50")))
	require.Equal(t, models.CategoryFlexible, lunch.Category)
	require.Equal(t, "acc-1", lunch.AccountID)
	require.Equal(t, []string{"tag-1", "tag-2"}, lunch.Tags)

	salary := res.Rows[1]
	require.Equal(t, models.TransactionIncome, salary.Type)
	require.True(t, salary.Amount.Equal(decimal.NewFromInt(5000)))
	require.Equal(t, models.StatusPaid, salary.Status)
	require.Empty(t, salary.AccountID)
	require.Empty(t, salary.Tags)

	coffee := res.Rows[2]
	require.Equal(t, models.StatusDebt, coffee.Status)
	require.Equal(t, "acc-2", coffee.AccountID)
	require.True(t, coffee.Amount.Equal(decimal.RequireFromString("4.20")))

	lines := make([]int, 0, len(res.Skipped))
	for _, s := range res.Skipped {
		lines = append(lines, s.Line)
		require.NotEmpty(t, s.Reason)
	}
	require.Equal(t, []int{5, 6, 7, 8}, lines)
}

func TestParseWithoutHeader(t *testing.T) {
	t.Parallel()

	res, err := Parse(strings.NewReader("2024-03-20,Lunch,10,expense\n"), nil, nil, sgt)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.Empty(t, res.Skipped)
}

func TestExportThenParse(t *testing.T) {
	t.Parallel()

	txn := models.Transaction{
		Type:        models.TransactionExpense,
		Amount:      decimal.RequireFromString("99.99"),
		Description: `Dinner "Chez Nous", rooftop`,
		Date:        time.Date(2024, time.February, 29, 0, 0, 0, 0, sgt),
		Tags:        []string{"tag-2", "tag-1"},
		Status:      models.StatusInstallment,
		AccountID:   "acc-2",
		Category:    models.CategoryOther,
	}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, []models.Transaction{txn}, testAccounts, testTags, sgt))

	res, err := Parse(&buf, testAccounts, testTags, sgt)
	require.NoError(t, err)
	require.Empty(t, res.Skipped)
	require.Len(t, res.Rows, 1)

	got := res.Rows[0]
	require.Equal(t, txn.Description, got.Description)
	require.Equal(t, txn.Date, got.Date)
	require.True(t, txn.Amount.Equal(got.Amount))
	require.Equal(t, txn.Status, got.Status)
	require.Equal(t, txn.AccountID, got.AccountID)
	require.Equal(t, txn.Tags, got.Tags)
	require.Equal(t, txn.Category, got.Category)
}

func TestParseAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12.50", "12.5", true},
		{" 1,234.567 ", "1234.57", true},
		{"$45", "45", true},
		{"S$10.10", "10.1", true},
		{"€3", "3", true},
		{"0", "", false},
		{"-4", "", false},
		{"1e3", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseAmount(tt.in)
			if !tt.ok {
				require.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			require.True(t, got.Equal(decimal.RequireFromString(tt.want)), got.String())
		})
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"2024-03-20", "2024/03/20", "2024-03-20 00:00:00"} {
		got, err := ParseDate(in, sgt)
		require.NoError(t, err, in)
		require.Equal(t, time.Date(2024, time.March, 20, 0, 0, 0, 0, sgt), got)
	}
	_, err := ParseDate("20/03/2024", sgt)
	require.ErrorIs(t, err, ErrInvalidDate)
}

func FuzzParseCSV(f *testing.F) {
	f.Add("Date,Description,Amount,Type\n2024-03-20,Lunch,10,expense\n")
	f.Add(`"2024-03-20","a ""quoted"" value","1,000.00","income","","Paid","Main Bank","Food; Work"`)
	f.Add("\"unterminated\n,,,\n")
	f.Add("\ufeffDate\n")

	f.Fuzz(func(t *testing.T, data string) {
		res, err := Parse(strings.NewReader(data), testAccounts, testTags, time.UTC)
		require.NoError(t, err)
		for _, row := range res.Rows {
			require.True(t, row.Amount.IsPositive())
			require.True(t, row.Type.Valid())
			require.True(t, row.Status.Valid())
			require.True(t, row.Category.Valid())
			require.NotEmpty(t, row.Description)
		}
		for _, s := range res.Skipped {
			require.Positive(t, s.Line)
		}
	})
}

func FuzzParseAmount(f *testing.F) {
	for _, seed := range []string{"12.50", "1,234", "$5", "-1", "0.001", "RM 3", "9999999999999999999.99"} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, s string) {
		amount, err := ParseAmount(s)
		if err != nil {
			require.ErrorIs(t, err, ErrInvalidAmount)
			return
		}
		require.True(t, amount.IsPositive())
		require.GreaterOrEqual(t, amount.Exponent(), int32(-2))
	})
}
