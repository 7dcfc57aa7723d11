package bot

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-telegram/bot/models"

	"gitlab.com/yelinaung/finance-tracker/internal/auth"
	"gitlab.com/yelinaung/finance-tracker/internal/logger"
	appmodels "gitlab.com/yelinaung/finance-tracker/internal/models"
)

// handleCurrencyCore shows the user's currency, or sets it when a code is given.
func (b *Bot) handleCurrencyCore(ctx context.Context, tg TelegramAPI, update *models.Update, userID string) {
	chatID := update.Message.Chat.ID
	code := strings.ToUpper(strings.TrimSpace(commandArgs(update)))

	if code == "" {
		user, err := b.auth.User(ctx, userID)
		if err != nil {
			b.replyError(ctx, tg, chatID, "load currency", err)
			return
		}
		b.reply(ctx, tg, chatID, fmt.Sprintf("💱 Your currency: <b>%s</b> (%s)\n\n%s",
			user.Currency, appmodels.SupportedCurrencies[user.Currency], buildCurrencyListMessage()))
		return
	}

	if _, ok := appmodels.SupportedCurrencies[code]; !ok {
		b.reply(ctx, tg, chatID, fmt.Sprintf("❌ Unknown currency: <code>%s</code>\n\n%s",
			escapeHTML(code), buildCurrencyListMessage()))
		return
	}

	user, err := b.auth.UpdateProfile(ctx, userID, auth.ProfileUpdate{Currency: &code})
	if err != nil {
		b.replyError(ctx, tg, chatID, "update currency", err)
		return
	}

	logger.Log.Info().Str("user_hash", logger.HashUserID(userID)).Str("currency", user.Currency).Msg("Currency updated")
	b.reply(ctx, tg, chatID, fmt.Sprintf("✅ Currency set to <b>%s</b> (%s).",
		user.Currency, appmodels.SupportedCurrencies[user.Currency]))
}

// buildCurrencyListMessage lists all supported currencies alphabetically.
func buildCurrencyListMessage() string {
	codes := make([]string, 0, len(appmodels.SupportedCurrencies))
	for code := range appmodels.SupportedCurrencies {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var sb strings.Builder
	sb.WriteString("<b>Supported currencies:</b>\n")
	for _, code := range codes {
		fmt.Fprintf(&sb, "• <code>%s</code> %s\n", code, appmodels.SupportedCurrencies[code])
	}
	sb.WriteString("\nUsage: <code>/currency SGD</code>")
	return sb.String()
}

// handleRemindersCore handles /reminders <on|off> [days]. Without arguments
// it shows the current settings.
func (b *Bot) handleRemindersCore(ctx context.Context, tg TelegramAPI, update *models.Update, userID string) {
	chatID := update.Message.Chat.ID
	user, err := b.auth.User(ctx, userID)
	if err != nil {
		b.replyError(ctx, tg, chatID, "load reminder settings", err)
		return
	}
	settings := user.Settings

	args := strings.Fields(strings.ToLower(commandArgs(update)))
	if len(args) == 0 {
		b.reply(ctx, tg, chatID, describeReminders(settings.Recurring))
		return
	}

	switch args[0] {
	case "on":
		settings.Recurring.Enabled = true
	case "off":
		settings.Recurring.Enabled = false
	default:
		b.usage(ctx, tg, chatID, "/reminders <on|off> [days]")
		return
	}
	if len(args) > 1 {
		days, err := strconv.Atoi(args[1])
		if err != nil {
			b.usage(ctx, tg, chatID, "/reminders <on|off> [days]")
			return
		}
		settings.Recurring.DaysBefore = days
	}

	updated, err := b.auth.UpdateSettings(ctx, userID, settings)
	if err != nil {
		b.replyError(ctx, tg, chatID, "update reminder settings", err)
		return
	}
	if _, err := b.tracker.RefreshNotifications(ctx, userID); err != nil {
		logger.Log.Warn().Err(err).Str("user_hash", logger.HashUserID(userID)).Msg("Failed to refresh notifications")
	}
	b.reply(ctx, tg, chatID, "✅ "+describeReminders(updated.Settings.Recurring))
}

func describeReminders(r appmodels.ReminderSettings) string {
	if !r.Enabled {
		return "🔕 Recurring reminders are off."
	}
	return fmt.Sprintf("🔔 Recurring reminders are on, %d day(s) before each due date.", r.DaysBefore)
}
