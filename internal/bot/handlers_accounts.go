package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/finance-tracker/internal/ledger"
	"gitlab.com/yelinaung/finance-tracker/internal/tracker"
)

// handleAccountsCore lists accounts with derived balances and total assets.
func (b *Bot) handleAccountsCore(ctx context.Context, tg TelegramAPI, update *models.Update, userID string) {
	chatID := update.Message.Chat.ID
	accounts, err := b.tracker.ListAccounts(ctx, userID)
	if err != nil {
		b.replyError(ctx, tg, chatID, "list accounts", err)
		return
	}
	if len(accounts) == 0 {
		b.reply(ctx, tg, chatID, "No accounts yet. Add one with <code>/addaccount bank 1000 Main Account</code>.")
		return
	}

	symbol := b.symbolFor(ctx, userID)
	var sb strings.Builder
	sb.WriteString("🏦 <b>Accounts</b>\n\n")
	for _, acc := range accounts {
		fmt.Fprintf(&sb, "• <code>%s</code> <b>%s</b> (%s): %s\n",
			acc.ID, escapeHTML(acc.Name), acc.Type, ledger.FormatMoney(symbol, acc.Balance))
	}
	fmt.Fprintf(&sb, "\n<b>Total assets:</b> %s", ledger.FormatMoney(symbol, ledger.TotalAssets(accounts)))
	b.reply(ctx, tg, chatID, sb.String())
}

// handleAddAccountCore handles /addaccount <type> <initial> <name>.
func (b *Bot) handleAddAccountCore(ctx context.Context, tg TelegramAPI, update *models.Update, userID string) {
	chatID := update.Message.Chat.ID
	args := splitArgs(commandArgs(update), 3)
	if len(args) != 3 {
		b.usage(ctx, tg, chatID, "/addaccount <bank|cash|ewallet> <initial> <name>")
		return
	}
	accType, ok := parseAccountType(args[0])
	if !ok {
		b.reply(ctx, tg, chatID, "❌ Account type must be bank, cash or ewallet.")
		return
	}
	initial, err := parseBalance(args[1])
	if err != nil {
		b.replyError(ctx, tg, chatID, "add account", err)
		return
	}

	acc, err := b.tracker.AddAccount(ctx, userID, tracker.AccountInput{
		Name:           args[2],
		Type:           accType,
		InitialBalance: initial,
	})
	if err != nil {
		b.replyError(ctx, tg, chatID, "add account", err)
		return
	}
	b.reply(ctx, tg, chatID, fmt.Sprintf("✅ Account <b>%s</b> added (<code>%s</code>) with %s.",
		escapeHTML(acc.Name), acc.ID, ledger.FormatMoney(b.symbolFor(ctx, userID), acc.Balance)))
}

// handleDeleteAccountCore removes an unused account.
func (b *Bot) handleDeleteAccountCore(ctx context.Context, tg TelegramAPI, update *models.Update, userID string) {
	chatID := update.Message.Chat.ID
	id := strings.TrimSpace(commandArgs(update))
	if id == "" {
		b.usage(ctx, tg, chatID, "/deleteaccount <id>")
		return
	}

	deleted, err := b.tracker.DeleteAccount(ctx, userID, id)
	if err != nil {
		b.replyError(ctx, tg, chatID, "delete account", err)
		return
	}
	if !deleted {
		b.reply(ctx, tg, chatID, "⚠️ This account still has transactions and cannot be deleted.")
		return
	}
	b.reply(ctx, tg, chatID, "🗑 Account deleted.")
}

// accountNames maps account ids to names for display.
func (b *Bot) accountNames(ctx context.Context, userID string) map[string]string {
	accounts, err := b.tracker.ListAccounts(ctx, userID)
	if err != nil {
		return nil
	}
	names := make(map[string]string, len(accounts))
	for _, acc := range accounts {
		names[acc.ID] = acc.Name
	}
	return names
}

// signed renders an amount with a leading + for income and - for expense.
func signed(symbol string, amount decimal.Decimal, income bool) string {
	if income {
		return "+" + ledger.FormatMoney(symbol, amount)
	}
	return ledger.FormatMoney(symbol, amount.Neg())
}
