package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/finance-tracker/internal/csvio"
	"gitlab.com/yelinaung/finance-tracker/internal/ledger"
	"gitlab.com/yelinaung/finance-tracker/internal/logger"
)

const (
	// maxImportBytes caps the size of an uploaded CSV.
	maxImportBytes = 1 << 20
	// maxSkippedShown is how many skipped rows an import reply lists.
	maxSkippedShown = 10
)

var errFileTooLarge = errors.New("file is larger than 1 MB")

// handleNotificationsCore lists the session's notifications.
func (b *Bot) handleNotificationsCore(ctx context.Context, tg TelegramAPI, update *models.Update, userID string) {
	chatID := update.Message.Chat.ID
	notes := b.tracker.Notifications(ctx, userID)
	if len(notes) == 0 {
		b.reply(ctx, tg, chatID, "🔔 No notifications.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🔔 <b>Notifications</b> (%d unread)\n\n", countUnread(notes))
	for _, n := range notes {
		marker := "⚪"
		if !n.Read {
			marker = "🔵"
		}
		fmt.Fprintf(&sb, "%s %s\n", marker, escapeHTML(n.Message))
	}
	sb.WriteString("\nUse /readall to mark them as read.")
	b.reply(ctx, tg, chatID, sb.String())
}

// handleReadAllCore marks every notification as read.
func (b *Bot) handleReadAllCore(ctx context.Context, tg TelegramAPI, update *models.Update, userID string) {
	n := b.tracker.MarkAllNotificationsRead(ctx, userID)
	b.reply(ctx, tg, update.Message.Chat.ID, fmt.Sprintf("✅ Marked %d notification(s) as read.", n))
}

// summaryRange returns [from, to] ending today: the last 7 days for "week",
// the current month otherwise.
func summaryRange(period string, today time.Time) (time.Time, time.Time, bool) {
	switch strings.ToLower(strings.TrimSpace(period)) {
	case "week":
		return today.AddDate(0, 0, -6), today, true
	case "", "month":
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()), today, true
	}
	return time.Time{}, time.Time{}, false
}

// handleSummaryCore shows totals, tag breakdown and the month-over-month change.
func (b *Bot) handleSummaryCore(ctx context.Context, tg TelegramAPI, update *models.Update, userID string) {
	chatID := update.Message.Chat.ID
	from, to, ok := summaryRange(commandArgs(update), b.tracker.Now())
	if !ok {
		b.usage(ctx, tg, chatID, "/summary [week|month]")
		return
	}

	sum, err := b.tracker.Summary(ctx, userID, from, to)
	if err != nil {
		b.replyError(ctx, tg, chatID, "build summary", err)
		return
	}

	symbol := b.symbolFor(ctx, userID)
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 <b>Summary</b> %s to %s\n\n",
		sum.From.Format(ledger.DateLayout), sum.To.Format(ledger.DateLayout))
	fmt.Fprintf(&sb, "Income: %s\n", ledger.FormatMoney(symbol, sum.Totals.Income))
	fmt.Fprintf(&sb, "Expenses: %s\n", ledger.FormatMoney(symbol, sum.Totals.Expense))
	fmt.Fprintf(&sb, "Net: %s\n", ledger.FormatMoney(symbol, sum.Totals.Net()))
	fmt.Fprintf(&sb, "Total assets: %s\n", ledger.FormatMoney(symbol, sum.TotalAssets))

	if len(sum.ByTag) > 0 {
		names := b.tagNames(ctx, userID)
		sb.WriteString("\n<b>Expenses by tag:</b>\n")
		for _, tt := range sum.ByTag {
			fmt.Fprintf(&sb, "• %s: %s\n", escapeHTML(names[tt.TagID]), ledger.FormatMoney(symbol, tt.Amount))
		}
	}

	sb.WriteString("\n<b>This month vs last month:</b>\n")
	writeChange(&sb, "Income", symbol, sum.Monthly.Current.Income, sum.Monthly.Previous.Income)
	writeChange(&sb, "Expenses", symbol, sum.Monthly.Current.Expense, sum.Monthly.Previous.Expense)

	b.reply(ctx, tg, chatID, sb.String())
}

func writeChange(sb *strings.Builder, label, symbol string, current, previous decimal.Decimal) {
	fmt.Fprintf(sb, "• %s: %s", label, ledger.FormatMoney(symbol, current))
	if pct, ok := ledger.PercentChange(current, previous); ok {
		sign := ""
		if pct.IsPositive() {
			sign = "+"
		}
		fmt.Fprintf(sb, " (%s%s%%)", sign, pct.StringFixed(1))
	}
	sb.WriteString("\n")
}

func (b *Bot) tagNames(ctx context.Context, userID string) map[string]string {
	tags, err := b.tracker.ListTags(ctx, userID)
	if err != nil {
		return nil
	}
	names := make(map[string]string, len(tags))
	for _, tag := range tags {
		names[tag.ID] = tag.Name
	}
	return names
}

// handleExportCore sends all transactions as a CSV document.
func (b *Bot) handleExportCore(ctx context.Context, tg TelegramAPI, update *models.Update, userID string) {
	chatID := update.Message.Chat.ID
	txns, err := b.tracker.ListTransactions(ctx, userID)
	if err != nil {
		b.replyError(ctx, tg, chatID, "export transactions", err)
		return
	}
	if len(txns) == 0 {
		b.reply(ctx, tg, chatID, "No transactions to export.")
		return
	}
	accounts, err := b.tracker.ListAccounts(ctx, userID)
	if err != nil {
		b.replyError(ctx, tg, chatID, "export transactions", err)
		return
	}
	tags, err := b.tracker.ListTags(ctx, userID)
	if err != nil {
		b.replyError(ctx, tg, chatID, "export transactions", err)
		return
	}

	var buf bytes.Buffer
	if err := csvio.Export(&buf, txns, accounts, tags, b.tracker.Location()); err != nil {
		b.replyError(ctx, tg, chatID, "export transactions", err)
		return
	}

	filename := csvio.Filename(b.tracker.Now())
	_, err = tg.SendDocument(ctx, &tgbot.SendDocumentParams{
		ChatID:   chatID,
		Document: &models.InputFileUpload{Filename: filename, Data: &buf},
		Caption:  fmt.Sprintf("📄 %d transaction(s) exported.", len(txns)),
	})
	if err != nil {
		b.metrics.IncrExternalError("telegram")
		logger.Log.Error().Err(err).Str("chat_hash", logger.HashChatID(chatID)).Msg("Failed to send export")
		b.reply(ctx, tg, chatID, "❌ Failed to send the export. Please try again.")
		return
	}
	logger.Log.Info().Str("user_hash", logger.HashUserID(userID)).Int("count", len(txns)).Msg("Transactions exported")
}

// handleImportCore imports transactions from an uploaded CSV document.
func (b *Bot) handleImportCore(ctx context.Context, tg TelegramAPI, update *models.Update, userID string) {
	chatID := update.Message.Chat.ID
	doc := update.Message.Document
	if !strings.EqualFold(path.Ext(doc.FileName), ".csv") {
		b.reply(ctx, tg, chatID, "❌ Only <code>.csv</code> files can be imported.")
		return
	}

	data, err := b.downloadFile(ctx, tg, doc.FileID)
	if err != nil {
		if errors.Is(err, errFileTooLarge) {
			b.reply(ctx, tg, chatID, "❌ The file is too large. The limit is 1 MB.")
			return
		}
		b.metrics.IncrExternalError("telegram")
		logger.Log.Error().Err(err).Str("chat_hash", logger.HashChatID(chatID)).Msg("Failed to download import file")
		b.reply(ctx, tg, chatID, "❌ Failed to download the file. Please try again.")
		return
	}

	accounts, err := b.tracker.ListAccounts(ctx, userID)
	if err != nil {
		b.replyError(ctx, tg, chatID, "import transactions", err)
		return
	}
	tags, err := b.tracker.ListTags(ctx, userID)
	if err != nil {
		b.replyError(ctx, tg, chatID, "import transactions", err)
		return
	}

	result, err := csvio.Parse(bytes.NewReader(data), accounts, tags, b.tracker.Location())
	if err != nil {
		b.replyError(ctx, tg, chatID, "read the CSV file", err)
		return
	}

	var sb strings.Builder
	if len(result.Rows) == 0 {
		sb.WriteString("📥 No transactions found in the file.")
	} else {
		imported, err := b.tracker.ImportTransactions(ctx, userID, result.Rows)
		if err != nil {
			b.replyError(ctx, tg, chatID, "import transactions", err)
			return
		}
		fmt.Fprintf(&sb, "📥 Imported %d transaction(s).", len(imported))
	}

	if len(result.Skipped) > 0 {
		fmt.Fprintf(&sb, "\n\n⚠️ Skipped %d row(s):\n", len(result.Skipped))
		for i, row := range result.Skipped {
			if i == maxSkippedShown {
				fmt.Fprintf(&sb, "• and %d more\n", len(result.Skipped)-maxSkippedShown)
				break
			}
			fmt.Fprintf(&sb, "• line %d: %s\n", row.Line, escapeHTML(row.Reason))
		}
	}
	b.reply(ctx, tg, chatID, sb.String())
}

// downloadFile fetches a Telegram file through the instrumented HTTP client.
func (b *Bot) downloadFile(ctx context.Context, tg TelegramAPI, fileID string) ([]byte, error) {
	file, err := tg.GetFile(ctx, &tgbot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tg.FileDownloadLink(file), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImportBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) > maxImportBytes {
		return nil, errFileTooLarge
	}
	return data, nil
}
