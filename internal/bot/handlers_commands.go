package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"

	"gitlab.com/yelinaung/finance-tracker/internal/ledger"
	"gitlab.com/yelinaung/finance-tracker/internal/logger"
	appmodels "gitlab.com/yelinaung/finance-tracker/internal/models"
)

// formatGreeting returns a greeting suffix with the user's name.
func formatGreeting(firstName string) string {
	if firstName == "" {
		return ""
	}
	return ", " + escapeHTML(firstName)
}

// symbolFor returns the display symbol of the user's currency.
func (b *Bot) symbolFor(ctx context.Context, userID string) string {
	user, err := b.auth.User(ctx, userID)
	if err != nil {
		return ledger.CurrencySymbol(b.cfg.DefaultCurrency)
	}
	return ledger.CurrencySymbol(user.Currency)
}

// handleStartCore greets the user.
func (b *Bot) handleStartCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	firstName := ""
	if update.Message.From != nil {
		firstName = update.Message.From.FirstName
	}

	text := fmt.Sprintf(`👋 Welcome%s!

I'm your personal finance tracker. I keep your accounts, transactions, recurring bills and savings goals in one place.

<b>Quick Start:</b>
• <code>/register Alex alex@example.com secret123</code>
• <code>/login alex@example.com secret123</code>
• <code>/addaccount bank 1000 Main Account</code>

Use /help to see all available commands.`,
		formatGreeting(firstName))

	b.reply(ctx, tg, update.Message.Chat.ID, text)
}

// handleHelpCore lists every command.
func (b *Bot) handleHelpCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	text := `📚 <b>Available Commands</b>

<b>Account:</b>
• <code>/register &lt;name&gt; &lt;email&gt; &lt;password&gt;</code>
• <code>/login &lt;email&gt; &lt;password&gt;</code>
• <code>/logout</code>
• <code>/currency [code]</code> - Show or set your currency
• <code>/reminders &lt;on|off&gt; [days]</code> - Recurring due reminders

<b>Money accounts:</b>
• <code>/accounts</code> - Balances and total assets
• <code>/addaccount &lt;bank|cash|ewallet&gt; &lt;initial&gt; &lt;name&gt;</code>
• <code>/deleteaccount &lt;id&gt;</code>

<b>Transactions:</b>
• <code>/add &lt;income|expense&gt; &lt;amount&gt; &lt;accountID&gt; &lt;description&gt; [#tag ...]</code>
• <code>/list</code> - Recent transactions
• <code>/pay &lt;id&gt;</code> - Mark as paid
• <code>/history &lt;id&gt;</code> - Change history
• <code>/delete &lt;id&gt; [id ...]</code>

<b>Recurring:</b>
• <code>/recurring</code>
• <code>/addrecurring &lt;daily|weekly|monthly&gt; &lt;income|expense&gt; &lt;amount&gt; &lt;accountID&gt; &lt;description&gt;</code>
• <code>/deleterecurring &lt;id&gt;</code>

<b>Goals:</b>
• <code>/goals</code>
• <code>/addgoal &lt;target&gt; &lt;YYYY-MM-DD&gt; &lt;name&gt;</code>
• <code>/contribute &lt;goalID&gt; &lt;amount&gt; &lt;accountID&gt;</code>
• <code>/withdraw &lt;goalID&gt; &lt;amount&gt; &lt;accountID&gt;</code>
• <code>/confirmgoal &lt;goalID&gt; &lt;accountID&gt;</code>

<b>Tags:</b>
• <code>/tags</code>
• <code>/addtag &lt;name&gt; [#color]</code>
• <code>/deletetag &lt;name&gt;</code>

<b>Reports:</b>
• <code>/summary [week|month]</code>
• <code>/notifications</code> and <code>/readall</code>
• <code>/export</code> - Download a CSV
• Send a <code>.csv</code> file to import transactions`

	b.reply(ctx, tg, update.Message.Chat.ID, text)
}

// handleRegisterCore creates a user and logs the chat in.
func (b *Bot) handleRegisterCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	chatID := update.Message.Chat.ID
	fields := strings.Fields(commandArgs(update))
	if len(fields) < 3 {
		b.usage(ctx, tg, chatID, "/register <name> <email> <password>")
		return
	}
	name := strings.Join(fields[:len(fields)-2], " ")
	email, password := fields[len(fields)-2], fields[len(fields)-1]

	user, err := b.auth.Register(ctx, name, email, password)
	if err != nil {
		b.replyError(ctx, tg, chatID, "register", err)
		return
	}
	b.openSession(ctx, tg, chatID, user)
}

// handleLoginCore checks credentials and starts a session.
func (b *Bot) handleLoginCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	chatID := update.Message.Chat.ID
	fields := strings.Fields(commandArgs(update))
	if len(fields) != 2 {
		b.usage(ctx, tg, chatID, "/login <email> <password>")
		return
	}

	user, err := b.auth.Login(ctx, fields[0], fields[1])
	if err != nil {
		b.replyError(ctx, tg, chatID, "log in", err)
		return
	}
	b.openSession(ctx, tg, chatID, user)
}

// openSession materializes recurring transactions and loads notifications,
// then binds the chat to user. A failed start leaves the chat unbound.
func (b *Bot) openSession(ctx context.Context, tg TelegramAPI, chatID int64, user *appmodels.User) {
	if previous, ok := b.sessions.UserFor(ctx, chatID); ok && previous != user.ID {
		b.closeSession(ctx, chatID)
	}
	report, err := b.tracker.StartSession(ctx, user.ID)
	if err != nil {
		b.replyError(ctx, tg, chatID, "start session", err)
		return
	}
	b.sessions.Save(ctx, chatID, user.ID)

	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Logged in as <b>%s</b>.", escapeHTML(user.Name))
	if report.Generated > 0 {
		fmt.Fprintf(&sb, "\n🔁 %d recurring transaction(s) were generated.", report.Generated)
	}
	if unread := countUnread(report.Notifications); unread > 0 {
		fmt.Fprintf(&sb, "\n🔔 You have %d unread notification(s). Use /notifications to see them.", unread)
	}
	b.markPushed(chatID, report.Notifications)

	logger.Log.Info().
		Str("chat_hash", logger.HashChatID(chatID)).
		Str("user_hash", logger.HashUserID(user.ID)).
		Int("generated", report.Generated).
		Msg("Chat logged in")
	b.reply(ctx, tg, chatID, sb.String())
}

// handleLogoutCore unbinds the chat.
func (b *Bot) handleLogoutCore(ctx context.Context, tg TelegramAPI, update *models.Update, _ string) {
	chatID := update.Message.Chat.ID
	b.closeSession(ctx, chatID)
	b.reply(ctx, tg, chatID, "👋 Logged out.")
}

// closeSession unbinds chatID and ends the user's session once no other
// chat is logged in as them.
func (b *Bot) closeSession(ctx context.Context, chatID int64) {
	userID, ok := b.sessions.Remove(ctx, chatID)
	b.forgetPushed(chatID)
	if !ok {
		return
	}
	for _, s := range b.sessions.LoadAll(ctx) {
		if s.UserID == userID {
			return
		}
	}
	b.tracker.EndSession(ctx, userID)
}

func countUnread(notes []appmodels.Notification) int {
	n := 0
	for _, note := range notes {
		if !note.Read {
			n++
		}
	}
	return n
}
