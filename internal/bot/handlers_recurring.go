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

// handleRecurringCore lists recurring templates with their next due date.
func (b *Bot) handleRecurringCore(ctx context.Context, tg TelegramAPI, update *models.Update, userID string) {
	chatID := update.Message.Chat.ID
	templates, err := b.tracker.ListRecurring(ctx, userID)
	if err != nil {
		b.replyError(ctx, tg, chatID, "list recurring transactions", err)
		return
	}
	if len(templates) == 0 {
		b.reply(ctx, tg, chatID, "No recurring transactions. Add one with /addrecurring.")
		return
	}

	symbol := b.symbolFor(ctx, userID)
	loc := b.tracker.Location()
	var sb strings.Builder
	sb.WriteString("🔁 <b>Recurring</b>\n\n")
	for _, tmpl := range templates {
		next := ledger.NextDue(tmpl, loc)
		fmt.Fprintf(&sb, "<code>%s</code> %s %s <b>%s</b>",
			tmpl.ID, tmpl.Frequency,
			signed(symbol, tmpl.Amount, tmpl.Type == appmodels.TransactionIncome),
			escapeHTML(tmpl.Description))
		if tmpl.EndDate != nil && next.After(ledger.Day(*tmpl.EndDate, loc)) {
			sb.WriteString(" (ended)\n")
			continue
		}
		fmt.Fprintf(&sb, " next %s\n", next.In(loc).Format(ledger.DateLayout))
	}
	b.reply(ctx, tg, chatID, sb.String())
}

// handleAddRecurringCore handles
// /addrecurring <daily|weekly|monthly> <income|expense> <amount> <accountID> <description>.
// The first occurrence is today.
func (b *Bot) handleAddRecurringCore(ctx context.Context, tg TelegramAPI, update *models.Update, userID string) {
	chatID := update.Message.Chat.ID
	args := splitArgs(commandArgs(update), 5)
	if len(args) != 5 {
		b.usage(ctx, tg, chatID, "/addrecurring <daily|weekly|monthly> <income|expense> <amount> <accountID> <description>")
		return
	}
	freq, ok := parseFrequency(args[0])
	if !ok {
		b.reply(ctx, tg, chatID, "❌ Frequency must be daily, weekly or monthly.")
		return
	}
	txnType, ok := parseTransactionType(args[1])
	if !ok {
		b.reply(ctx, tg, chatID, "❌ Type must be income or expense.")
		return
	}
	amount, err := parseAmount(args[2])
	if err != nil {
		b.replyError(ctx, tg, chatID, "add recurring transaction", err)
		return
	}

	tmpl, err := b.tracker.AddRecurring(ctx, userID, tracker.RecurringInput{
		Description: args[4],
		Amount:      amount,
		Type:        txnType,
		AccountID:   args[3],
		Frequency:   freq,
		StartDate:   b.tracker.Now(),
	})
	if err != nil {
		b.replyError(ctx, tg, chatID, "add recurring transaction", err)
		return
	}
	b.reply(ctx, tg, chatID, fmt.Sprintf("✅ %s recurring <b>%s</b> added (<code>%s</code>). First occurrence %s.",
		tmpl.Frequency, escapeHTML(tmpl.Description), tmpl.ID,
		tmpl.StartDate.In(b.tracker.Location()).Format(ledger.DateLayout)))
}

// handleDeleteRecurringCore removes a template. Generated transactions stay.
func (b *Bot) handleDeleteRecurringCore(ctx context.Context, tg TelegramAPI, update *models.Update, userID string) {
	chatID := update.Message.Chat.ID
	id := strings.TrimSpace(commandArgs(update))
	if id == "" {
		b.usage(ctx, tg, chatID, "/deleterecurring <id>")
		return
	}
	if err := b.tracker.DeleteRecurring(ctx, userID, id); err != nil {
		b.replyError(ctx, tg, chatID, "delete recurring transaction", err)
		return
	}
	b.reply(ctx, tg, chatID, "🗑 Recurring transaction deleted. Transactions it already generated are kept.")
}
