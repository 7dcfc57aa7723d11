// Package models defines the domain entities for the finance tracker.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the default currency for new users.
const DefaultCurrency = "USD"

// DefaultReminderDays is the default reminder lookahead for new users.
const DefaultReminderDays = 3

// DefaultItemsPerPage is the default list page size for new users.
const DefaultItemsPerPage = 10

// MaxTagNameLength is the maximum allowed length for tag names.
const MaxTagNameLength = 30

// SupportedCurrencies lists all supported currency codes.
var SupportedCurrencies = map[string]string{
	"SGD": "S$",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "¥",
	"MYR": "RM",
	"THB": "฿",
	"IDR": "Rp",
	"PHP": "₱",
	"VND": "₫",
	"KRW": "₩",
	"INR": "₹",
	"AUD": "A$",
	"NZD": "NZ$",
	"HKD": "HK$",
	"TWD": "NT$",
}

// TagColors is the palette offered for new tags.
var TagColors = []string{
	"#ef4444", "#f97316", "#eab308", "#84cc16", "#22c55e", "#14b8a6",
	"#06b6d4", "#3b82f6", "#8b5cf6", "#d946ef", "#ec4899", "#78716c",
}

// TransactionType is either income or expense.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// ExpenseCategory classifies a transaction.
type ExpenseCategory string

const (
	CategoryFixed      ExpenseCategory = "fixed"
	CategoryFlexible   ExpenseCategory = "flexible"
	CategoryInvestment ExpenseCategory = "investment"
	CategorySavings    ExpenseCategory = "savings"
	CategoryOther      ExpenseCategory = "other"
)

// ExpenseCategories lists every category in display order.
var ExpenseCategories = []ExpenseCategory{
	CategoryFixed, CategoryFlexible, CategoryInvestment, CategorySavings, CategoryOther,
}

// Valid reports whether c is a known category. The empty category is valid.
func (c ExpenseCategory) Valid() bool {
	if c == "" {
		return true
	}
	for _, known := range ExpenseCategories {
		if c == known {
			return true
		}
	}
	return false
}

// AccountType is the kind of money container.
type AccountType string

const (
	AccountBank    AccountType = "Bank Account"
	AccountCash    AccountType = "Cash"
	AccountEWallet AccountType = "E-Wallet"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	return t == AccountBank || t == AccountCash || t == AccountEWallet
}

// TransactionStatus describes settlement state. Only Paid affects balances.
type TransactionStatus string

const (
	StatusPaid        TransactionStatus = "Paid"
	StatusUnpaid      TransactionStatus = "Unpaid"
	StatusDebt        TransactionStatus = "Debt"
	StatusInstallment TransactionStatus = "Installment"
)

// Valid reports whether s is a known status.
func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPaid, StatusUnpaid, StatusDebt, StatusInstallment:
		return true
	}
	return false
}

// Frequency is the period of a recurring template.
type Frequency string

const (
	FrequencyDaily   Frequency = "Daily"
	FrequencyWeekly  Frequency = "Weekly"
	FrequencyMonthly Frequency = "Monthly"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	return f == FrequencyDaily || f == FrequencyWeekly || f == FrequencyMonthly
}

// GoalStatus is the stored status of a goal.
type GoalStatus string

const (
	GoalActive    GoalStatus = "Active"
	GoalCompleted GoalStatus = "Completed"
	GoalOverdue   GoalStatus = "Overdue"
)

// GoalChange is the direction of a goal contribution.
type GoalChange string

const (
	GoalIncrease GoalChange = "increase"
	GoalDecrease GoalChange = "decrease"
)

// ReminderSettings controls recurring-template due notifications.
type ReminderSettings struct {
	Enabled    bool
	DaysBefore int
}

// NotificationSettings groups per-user notification preferences.
type NotificationSettings struct {
	Recurring    ReminderSettings
	ItemsPerPage int
}

// User is a mock-authenticated application user.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Currency     string
	DateOfBirth  *time.Time
	Phone        string
	Settings     NotificationSettings
	CreatedAt    time.Time
}

// Account is a money container. Balance is derived, never authoritative.
type Account struct {
	ID             string
	Name           string
	Type           AccountType
	InitialBalance decimal.Decimal
	Balance        decimal.Decimal
}

// TransactionHistory is one audit entry on a transaction.
type TransactionHistory struct {
	Date   time.Time
	Change string
}

// Transaction is a concrete income or expense entry.
type Transaction struct {
	ID             string
	Type           TransactionType
	Amount         decimal.Decimal
	Description    string
	Date           time.Time
	Tags           []string
	Status         TransactionStatus
	AccountID      string
	Category       ExpenseCategory
	TaxPercent     *decimal.Decimal
	AmountAfterTax *decimal.Decimal
	AttachmentURL  string
	// History is newest-first and append-only.
	History []TransactionHistory
}

// NetAmount is the amount used when aggregating: after-tax for taxed income.
func (t *Transaction) NetAmount() decimal.Decimal {
	if t.Type == TransactionIncome && t.AmountAfterTax != nil {
		return *t.AmountAfterTax
	}
	return t.Amount
}

// RecurringTransaction is a template materialized into transactions.
type RecurringTransaction struct {
	ID          string
	Description string
	Amount      decimal.Decimal
	Type        TransactionType
	Tags        []string
	AccountID   string
	Category    ExpenseCategory
	Frequency   Frequency
	StartDate   time.Time
	EndDate     *time.Time
	// LastGeneratedDate is the cursor: occurrences up to and including it exist.
	LastGeneratedDate time.Time
}

// GoalHistory links one goal contribution to its backing transaction.
type GoalHistory struct {
	Date          time.Time
	Change        GoalChange
	Amount        decimal.Decimal
	TransactionID string
}

// Goal is a savings target.
type Goal struct {
	ID            string
	Name          string
	Description   string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	Deadline      time.Time
	Icon          string
	Status        GoalStatus
	// History is newest-first.
	History []GoalHistory
}

// Tag is a user-defined label.
type Tag struct {
	ID    string
	Name  string
	Color string
}

// Notification is an ephemeral per-session message.
type Notification struct {
	ID      string
	Message string
	Date    time.Time
	Read    bool
	LinkTo  string
}
