// Package ledger holds the pure derived-state rules of the finance tracker:
// balances, recurrence materialization, goal bookkeeping, change history,
// due reminders and summaries. Nothing here touches storage or the clock.
package ledger

import (
	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

// SignedAmount is the balance effect of a paid transaction.
func SignedAmount(txn *models.Transaction) decimal.Decimal {
	if txn.Type == models.TransactionIncome {
		return txn.NetAmount()
	}
	return txn.Amount.Neg()
}

// ComputeBalance folds the paid transactions of one account onto its initial balance.
func ComputeBalance(account models.Account, txns []models.Transaction) decimal.Decimal {
	balance := account.InitialBalance
	for i := range txns {
		txn := &txns[i]
		if txn.AccountID != account.ID || txn.Status != models.StatusPaid {
			continue
		}
		balance = balance.Add(SignedAmount(txn))
	}
	return balance
}

// ComputeBalances returns a copy of accounts with Balance derived from txns.
func ComputeBalances(accounts []models.Account, txns []models.Transaction) []models.Account {
	deltas := make(map[string]decimal.Decimal, len(accounts))
	for i := range txns {
		txn := &txns[i]
		if txn.Status != models.StatusPaid {
			continue
		}
		deltas[txn.AccountID] = deltas[txn.AccountID].Add(SignedAmount(txn))
	}

	out := make([]models.Account, len(accounts))
	for i, acc := range accounts {
		acc.Balance = acc.InitialBalance.Add(deltas[acc.ID])
		out[i] = acc
	}
	return out
}
