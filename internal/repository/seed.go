package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

// SeedUser is a demo account with its plaintext password and starting data.
type SeedUser struct {
	User     models.User
	Password string
	Data     *UserData
}

// DemoUsers builds the two demo users with dates anchored to now's month.
func DemoUsers(now time.Time, loc *time.Location, currency string) []SeedUser {
	now = now.In(loc)
	y, m := now.Year(), now.Month()
	dayOf := func(d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, loc) }
	amt := decimal.NewFromInt
	ptr := func(v int64) *decimal.Decimal { d := decimal.NewFromInt(v); return &d }
	created := func(d time.Time) []models.TransactionHistory {
		return []models.TransactionHistory{{Date: d, Change: "Transaction created."}}
	}
	settings := func(days int) models.NotificationSettings {
		return models.NotificationSettings{
			Recurring:    models.ReminderSettings{Enabled: true, DaysBefore: days},
			ItemsPerPage: models.DefaultItemsPerPage,
		}
	}

	alex := &UserData{
		Accounts: []models.Account{
			{ID: "acc-1-1", Name: "Main Bank Account", Type: models.AccountBank, InitialBalance: amt(10000)},
			{ID: "acc-1-2", Name: "Cash Wallet", Type: models.AccountCash, InitialBalance: amt(500)},
		},
		Tags: []models.Tag{
			{ID: "tag-1-1", Name: "Salary", Color: models.TagColors[4]},
			{ID: "tag-1-2", Name: "Freelance", Color: models.TagColors[6]},
			{ID: "tag-1-3", Name: "Groceries", Color: models.TagColors[1]},
			{ID: "tag-1-4", Name: "Utilities", Color: models.TagColors[7]},
			{ID: "tag-1-5", Name: "Rent", Color: models.TagColors[0]},
			{ID: "tag-1-6", Name: "Transportation", Color: models.TagColors[3]},
			{ID: "tag-1-7", Name: "Entertainment", Color: models.TagColors[9]},
			{ID: "tag-1-8", Name: "Office Supplies", Color: models.TagColors[8]},
		},
		Transactions: []models.Transaction{
			{ID: "txn-1-6", Type: models.TransactionExpense, Amount: amt(75), Description: "Printer Ink with Receipt", Date: dayOf(11), Tags: []string{"tag-1-8"}, Category: models.CategoryFlexible, Status: models.StatusPaid, AccountID: "acc-1-2", AttachmentURL: "https://example.com/receipts/printer-ink.png", History: created(dayOf(11))},
			{ID: "txn-1-5", Type: models.TransactionIncome, Amount: amt(750), Description: "Freelance Project", Date: dayOf(10), Tags: []string{"tag-1-2"}, TaxPercent: ptr(10), AmountAfterTax: ptr(675), Status: models.StatusPaid, AccountID: "acc-1-1", History: created(dayOf(10))},
			{ID: "txn-1-4", Type: models.TransactionExpense, Amount: amt(150), Description: "Electricity & Water Bill", Date: dayOf(5), Tags: []string{"tag-1-4"}, Category: models.CategoryFixed, Status: models.StatusUnpaid, AccountID: "acc-1-1", History: created(dayOf(5))},
			{ID: "txn-1-3", Type: models.TransactionExpense, Amount: amt(350), Description: "Weekly Groceries", Date: dayOf(3), Tags: []string{"tag-1-3"}, Category: models.CategoryFlexible, Status: models.StatusPaid, AccountID: "acc-1-2", History: created(dayOf(3))},
			{ID: "txn-1-2", Type: models.TransactionExpense, Amount: amt(1200), Description: "Apartment Rent", Date: dayOf(2), Tags: []string{"tag-1-5"}, Category: models.CategoryFixed, Status: models.StatusPaid, AccountID: "acc-1-1", History: created(dayOf(2))},
			{ID: "txn-1-1", Type: models.TransactionIncome, Amount: amt(5000), Description: "Monthly Salary", Date: dayOf(1), Tags: []string{"tag-1-1"}, TaxPercent: ptr(15), AmountAfterTax: ptr(4250), Status: models.StatusPaid, AccountID: "acc-1-1", History: created(dayOf(1))},
		},
		Recurring: []models.RecurringTransaction{
			{ID: "rec-1-1", Description: "Monthly Rent", Amount: amt(1200), Type: models.TransactionExpense, Tags: []string{"tag-1-5"}, AccountID: "acc-1-1", Category: models.CategoryFixed, Frequency: models.FrequencyMonthly, StartDate: time.Date(2023, time.January, 2, 0, 0, 0, 0, loc), LastGeneratedDate: dayOf(2).AddDate(0, 0, -1)},
			{ID: "rec-1-2", Description: "Weekly Groceries Budget", Amount: amt(100), Type: models.TransactionExpense, Tags: []string{"tag-1-3"}, AccountID: "acc-1-2", Category: models.CategoryFlexible, Frequency: models.FrequencyWeekly, StartDate: time.Date(2023, time.January, 1, 0, 0, 0, 0, loc), LastGeneratedDate: dayOf(3).AddDate(0, 0, -7)},
		},
		Goals: []models.Goal{
			{ID: "goal-1-1", Name: "Summer Vacation", Description: "Family trip to Hawaii. Need to book flights and hotel.", TargetAmount: amt(2000), CurrentAmount: amt(750), Deadline: time.Date(y, time.August, 31, 0, 0, 0, 0, loc), Icon: "✈️", Status: models.GoalActive},
			{ID: "goal-1-2", Name: "New Laptop", Description: "For work and personal projects. Eyeing the new MacBook Pro.", TargetAmount: amt(1500), CurrentAmount: amt(1500), Deadline: time.Date(y, time.June, 30, 0, 0, 0, 0, loc), Icon: "💻", Status: models.GoalCompleted},
			{ID: "goal-1-3", Name: "Emergency Fund", Description: "Save up 3 months of living expenses for peace of mind.", TargetAmount: amt(5000), CurrentAmount: amt(3200), Deadline: time.Date(y+1, time.January, 1, 0, 0, 0, 0, loc), Icon: "🛡️", Status: models.GoalActive},
			{ID: "goal-1-4", Name: "Down Payment", Description: "Saving for a down payment on a house in the suburbs.", TargetAmount: amt(10000), CurrentAmount: amt(2500), Deadline: time.Date(y-1, time.December, 31, 0, 0, 0, 0, loc), Icon: "🏠", Status: models.GoalOverdue},
		},
	}

	jane := &UserData{
		Accounts: []models.Account{
			{ID: "acc-2-1", Name: "Business Checking", Type: models.AccountBank, InitialBalance: amt(25000)},
			{ID: "acc-2-2", Name: "E-Wallet", Type: models.AccountEWallet, InitialBalance: amt(1200)},
		},
		Tags: []models.Tag{
			{ID: "tag-2-1", Name: "Consulting", Color: models.TagColors[5]},
			{ID: "tag-2-2", Name: "Software", Color: models.TagColors[8]},
			{ID: "tag-2-3", Name: "Office Supplies", Color: models.TagColors[2]},
			{ID: "tag-2-4", Name: "Travel", Color: models.TagColors[10]},
			{ID: "tag-2-5", Name: "Client Dinner", Color: models.TagColors[1]},
		},
		Transactions: []models.Transaction{
			{ID: "txn-2-4", Type: models.TransactionExpense, Amount: amt(600), Description: "Flight for Conference", Date: dayOf(12), Tags: []string{"tag-2-4"}, Category: models.CategoryFlexible, Status: models.StatusUnpaid, AccountID: "acc-2-1", History: created(dayOf(12))},
			{ID: "txn-2-3", Type: models.TransactionExpense, Amount: amt(49), Description: "Productivity Software", Date: dayOf(9), Tags: []string{"tag-2-2"}, Category: models.CategoryFixed, Status: models.StatusPaid, AccountID: "acc-2-1", History: created(dayOf(9))},
			{ID: "txn-2-2", Type: models.TransactionExpense, Amount: amt(250), Description: "Business Lunch", Date: dayOf(6), Tags: []string{"tag-2-5"}, Category: models.CategoryFlexible, Status: models.StatusPaid, AccountID: "acc-2-2", History: created(dayOf(6))},
			{ID: "txn-2-1", Type: models.TransactionIncome, Amount: amt(3200), Description: "Consulting Gig", Date: dayOf(4), Tags: []string{"tag-2-1"}, Status: models.StatusPaid, AccountID: "acc-2-1", History: created(dayOf(4))},
		},
		Recurring: []models.RecurringTransaction{
			{ID: "rec-2-1", Description: "Productivity Software Suite", Amount: amt(49), Type: models.TransactionExpense, Tags: []string{"tag-2-2"}, AccountID: "acc-2-1", Category: models.CategoryFixed, Frequency: models.FrequencyMonthly, StartDate: time.Date(2023, time.January, 9, 0, 0, 0, 0, loc), LastGeneratedDate: dayOf(9).AddDate(0, 0, -1)},
		},
		Goals: []models.Goal{
			{ID: "goal-2-1", Name: "Office Upgrade", Description: "New standing desk, ergonomic chair, and a second monitor.", TargetAmount: amt(3000), CurrentAmount: amt(1250), Deadline: time.Date(y, time.December, 31, 0, 0, 0, 0, loc), Icon: "🏢", Status: models.GoalActive},
		},
	}

	return []SeedUser{
		{
			User:     models.User{ID: "user-1", Name: "Alex Doe", Email: "alex.doe@example.com", Currency: currency, Settings: settings(3), CreatedAt: now},
			Password: "password123",
			Data:     alex,
		},
		{
			User:     models.User{ID: "user-2", Name: "Jane Smith", Email: "jane.smith@example.com", Currency: currency, Settings: settings(5), CreatedAt: now},
			Password: "password456",
			Data:     jane,
		},
	}
}
