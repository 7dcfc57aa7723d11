package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"

	"gitlab.com/yelinaung/finance-tracker/internal/ledger"
	appmodels "gitlab.com/yelinaung/finance-tracker/internal/models"
	"gitlab.com/yelinaung/finance-tracker/internal/tracker"
)

// handleAddCore handles /add <income|expense> <amount> <accountID> <description> [#tag ...].
func (b *Bot) handleAddCore(ctx context.Context, tg TelegramAPI, update *models.Update, userID string) {
	chatID := update.Message.Chat.ID
	args := splitArgs(commandArgs(update), 4)
	if len(args) != 4 {
		b.usage(ctx, tg, chatID, "/add <income|expense> <amount> <accountID> <description> [#tag ...]")
		return
	}
	txnType, ok := parseTransactionType(args[0])
	if !ok {
		b.reply(ctx, tg, chatID, "❌ Type must be income or expense.")
		return
	}
	amount, err := parseAmount(args[1])
	if err != nil {
		b.replyError(ctx, tg, chatID, "add transaction", err)
		return
	}

	description, tagNames := extractTags(args[3])
	tags, err := b.tracker.ListTags(ctx, userID)
	if err != nil {
		b.replyError(ctx, tg, chatID, "add transaction", err)
		return
	}
	tagIDs, unknown := resolveTags(tags, tagNames)
	if len(unknown) > 0 {
		b.reply(ctx, tg, chatID, fmt.Sprintf("❌ Unknown tag <b>%s</b>. Create it with /addtag first.", escapeHTML(unknown[0])))
		return
	}

	txn, err := b.tracker.AddTransaction(ctx, userID, tracker.TransactionInput{
		Type:        txnType,
		Amount:      amount,
		Description: description,
		Tags:        tagIDs,
		AccountID:   args[2],
	})
	if err != nil {
		b.replyError(ctx, tg, chatID, "add transaction", err)
		return
	}

	symbol := b.symbolFor(ctx, userID)
	b.reply(ctx, tg, chatID, fmt.Sprintf("✅ Added %s <b>%s</b> (<code>%s</code>).",
		signed(symbol, txn.Amount, txn.Type == appmodels.TransactionIncome), escapeHTML(txn.Description), txn.ID))
}

// handleListCore shows the newest transactions, one page of the user's page size.
func (b *Bot) handleListCore(ctx context.Context, tg TelegramAPI, update *models.Update, userID string) {
	chatID := update.Message.Chat.ID
	txns, err := b.tracker.ListTransactions(ctx, userID)
	if err != nil {
		b.replyError(ctx, tg, chatID, "list transactions", err)
		return
	}
	if len(txns) == 0 {
		b.reply(ctx, tg, chatID, "No transactions yet. Add one with /add.")
		return
	}

	pageSize := appmodels.DefaultItemsPerPage
	if user, err := b.auth.User(ctx, userID); err == nil && user.Settings.ItemsPerPage > 0 {
		pageSize = user.Settings.ItemsPerPage
	}
	shown := txns[:min(pageSize, len(txns))]

	symbol := b.symbolFor(ctx, userID)
	accounts := b.accountNames(ctx, userID)
	loc := b.tracker.Location()

	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 <b>Transactions</b> (%d of %d)\n\n", len(shown), len(txns))
	for _, txn := range shown {
		fmt.Fprintf(&sb, "<code>%s</code> %s %s <b>%s</b>",
			txn.ID, txn.Date.In(loc).Format(ledger.DateLayout),
			signed(symbol, txn.NetAmount(), txn.Type == appmodels.TransactionIncome),
			escapeHTML(txn.Description))
		if name, ok := accounts[txn.AccountID]; ok {
			fmt.Fprintf(&sb, " · %s", escapeHTML(name))
		}
		if txn.Status != appmodels.StatusPaid {
			fmt.Fprintf(&sb, " [%s]", txn.Status)
		}
		sb.WriteString("\n")
	}
	b.reply(ctx, tg, chatID, sb.String())
}

// handlePayCore marks a transaction as paid.
func (b *Bot) handlePayCore(ctx context.Context, tg TelegramAPI, update *models.Update, userID string) {
	chatID := update.Message.Chat.ID
	id := strings.TrimSpace(commandArgs(update))
	if id == "" {
		b.usage(ctx, tg, chatID, "/pay <id>")
		return
	}

	txn, err := b.tracker.GetTransaction(ctx, userID, id)
	if err != nil {
		b.replyError(ctx, tg, chatID, "update transaction", err)
		return
	}
	if txn.Status == appmodels.StatusPaid {
		b.reply(ctx, tg, chatID, "ℹ️ This transaction is already paid.")
		return
	}

	in := tracker.InputFromTransaction(txn)
	in.Status = appmodels.StatusPaid
	txn, err = b.tracker.UpdateTransaction(ctx, userID, id, in)
	if err != nil {
		b.replyError(ctx, tg, chatID, "update transaction", err)
		return
	}
	b.reply(ctx, tg, chatID, "✅ "+escapeHTML(txn.History[0].Change))
}

// handleHistoryCore shows the audit trail of a transaction.
func (b *Bot) handleHistoryCore(ctx context.Context, tg TelegramAPI, update *models.Update, userID string) {
	chatID := update.Message.Chat.ID
	id := strings.TrimSpace(commandArgs(update))
	if id == "" {
		b.usage(ctx, tg, chatID, "/history <id>")
		return
	}

	txn, err := b.tracker.GetTransaction(ctx, userID, id)
	if err != nil {
		b.replyError(ctx, tg, chatID, "load history", err)
		return
	}

	loc := b.tracker.Location()
	var sb strings.Builder
	fmt.Fprintf(&sb, "🕘 <b>%s</b>\n\n", escapeHTML(txn.Description))
	for _, h := range txn.History {
		fmt.Fprintf(&sb, "• %s %s\n", h.Date.In(loc).Format(ledger.DateLayout), escapeHTML(h.Change))
	}
	b.reply(ctx, tg, chatID, sb.String())
}

// handleDeleteCore removes one or more transactions by id.
func (b *Bot) handleDeleteCore(ctx context.Context, tg TelegramAPI, update *models.Update, userID string) {
	chatID := update.Message.Chat.ID
	ids := strings.Fields(commandArgs(update))
	if len(ids) == 0 {
		b.usage(ctx, tg, chatID, "/delete <id> [id ...]")
		return
	}

	removed, err := b.tracker.DeleteTransactions(ctx, userID, ids)
	if err != nil {
		b.replyError(ctx, tg, chatID, "delete transactions", err)
		return
	}
	if removed == 0 {
		b.reply(ctx, tg, chatID, "No matching transactions found.")
		return
	}
	b.reply(ctx, tg, chatID, fmt.Sprintf("🗑 Deleted %d transaction(s).", removed))
}
