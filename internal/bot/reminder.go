package bot

import (
	"context"
	"fmt"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"gitlab.com/yelinaung/finance-tracker/internal/logger"
	appmodels "gitlab.com/yelinaung/finance-tracker/internal/models"
)

// RecurringCheckTimeout is the maximum time a single recurring check can take.
const RecurringCheckTimeout = 2 * time.Minute

// RunRecurringLoop periodically materializes recurring transactions for
// every logged-in chat and pushes what is new. It blocks until ctx is done.
func (b *Bot) RunRecurringLoop(ctx context.Context) {
	logger.Log.Info().Dur("interval", b.cfg.RecurringCheckInterval).Msg("Recurring loop started")

	ticker := time.NewTicker(b.cfg.RecurringCheckInterval)
	defer ticker.Stop()

	select {
	case <-ctx.Done():
		logger.Log.Info().Msg("Recurring loop stopped")
		return
	default:
	}

	// Run one check immediately so a restart does not delay due transactions
	// by a full interval.
	b.checkRecurring(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info().Msg("Recurring loop stopped")
			return
		case <-ticker.C:
			b.checkRecurring(ctx)
		}
	}
}

// checkRecurring runs one pass over the logged-in chats. Each user is
// materialized once even when several chats share the login.
func (b *Bot) checkRecurring(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, RecurringCheckTimeout)
	defer cancel()

	generated := make(map[string]int)
	for _, s := range b.sessions.LoadAll(checkCtx) {
		n, seen := generated[s.UserID]
		if !seen {
			var err error
			n, err = b.tracker.MaterializeRecurring(checkCtx, s.UserID)
			if err != nil {
				logger.Log.Error().Err(err).Str("user_hash", logger.HashUserID(s.UserID)).Msg("Recurring check failed")
				continue
			}
			generated[s.UserID] = n
		}

		notes, err := b.tracker.RefreshNotifications(checkCtx, s.UserID)
		if err != nil {
			logger.Log.Warn().Err(err).Str("user_hash", logger.HashUserID(s.UserID)).Msg("Failed to refresh notifications")
			continue
		}
		b.push(checkCtx, s.ChatID, n, notes)
	}
}

// push sends the generated count and any unread notification not yet
// delivered to chatID.
func (b *Bot) push(ctx context.Context, chatID int64, generated int, notes []appmodels.Notification) {
	if generated > 0 {
		b.send(ctx, chatID, fmt.Sprintf("🔁 %d recurring transaction(s) were generated.", generated))
	}
	for _, n := range b.unpushed(chatID, notes) {
		if !b.send(ctx, chatID, "🔔 "+escapeHTML(n.Message)) {
			continue
		}
		b.markPushed(chatID, []appmodels.Notification{n})
	}
}

func (b *Bot) send(ctx context.Context, chatID int64, text string) bool {
	_, err := b.messageSender.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		b.metrics.IncrExternalError("telegram")
		logger.Log.Warn().Err(err).Str("chat_hash", logger.HashChatID(chatID)).Msg("Failed to push update")
		return false
	}
	return true
}

// unpushed returns unread notifications not yet delivered to chatID.
func (b *Bot) unpushed(chatID int64, notes []appmodels.Notification) []appmodels.Notification {
	b.pushMu.Lock()
	defer b.pushMu.Unlock()

	var out []appmodels.Notification
	for _, n := range notes {
		if !n.Read && !b.pushed[chatID][n.ID] {
			out = append(out, n)
		}
	}
	return out
}

// markPushed records notes as delivered to chatID.
func (b *Bot) markPushed(chatID int64, notes []appmodels.Notification) {
	b.pushMu.Lock()
	defer b.pushMu.Unlock()

	seen, ok := b.pushed[chatID]
	if !ok {
		seen = make(map[string]bool)
		b.pushed[chatID] = seen
	}
	for _, n := range notes {
		seen[n.ID] = true
	}
}

func (b *Bot) forgetPushed(chatID int64) {
	b.pushMu.Lock()
	defer b.pushMu.Unlock()
	delete(b.pushed, chatID)
}
