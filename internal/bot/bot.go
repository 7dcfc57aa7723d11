// Package bot is the Telegram front-end of the finance tracker.
package bot

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"gitlab.com/yelinaung/finance-tracker/internal/auth"
	"gitlab.com/yelinaung/finance-tracker/internal/bot/mocks"
	"gitlab.com/yelinaung/finance-tracker/internal/config"
	"gitlab.com/yelinaung/finance-tracker/internal/logger"
	"gitlab.com/yelinaung/finance-tracker/internal/metrics"
	"gitlab.com/yelinaung/finance-tracker/internal/repository"
	"gitlab.com/yelinaung/finance-tracker/internal/tracker"
)

const pollTimeout = time.Minute

// TelegramAPI is the part of the Telegram client the handlers use. It lives
// in mocks so the fake can implement it without importing this package.
type TelegramAPI = mocks.TelegramAPI

var _ TelegramAPI = (*tgbot.Bot)(nil)

// Deps are the services the bot drives.
type Deps struct {
	Auth     *auth.Service
	Tracker  *tracker.Service
	Sessions *repository.SessionRepository
	Metrics  *metrics.Metrics
}

type commandHandler func(ctx context.Context, tg TelegramAPI, update *models.Update)

type sessionHandler func(ctx context.Context, tg TelegramAPI, update *models.Update, userID string)

// Bot wraps the Telegram client with the tracker services.
type Bot struct {
	bot      *tgbot.Bot
	cfg      *config.Config
	auth     *auth.Service
	tracker  *tracker.Service
	sessions *repository.SessionRepository
	metrics  *metrics.Metrics

	messageSender TelegramAPI
	httpClient    *http.Client
	commands      map[string]commandHandler

	pushMu sync.Mutex
	// pushed holds notification ids already delivered per chat.
	pushed map[int64]map[string]bool
}

// New creates a Bot connected to the Telegram API.
func New(cfg *config.Config, deps Deps) (*Bot, error) {
	b := newBot(cfg, deps)
	b.httpClient = &http.Client{
		Timeout:   pollTimeout + 10*time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	telegramBot, err := tgbot.New(cfg.TelegramBotToken,
		tgbot.WithHTTPClient(pollTimeout, b.httpClient),
		tgbot.WithMiddlewares(b.logMiddleware),
		tgbot.WithDefaultHandler(b.defaultHandler),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b.bot = telegramBot
	b.messageSender = telegramBot
	return b, nil
}

func newBot(cfg *config.Config, deps Deps) *Bot {
	b := &Bot{
		cfg:        cfg,
		auth:       deps.Auth,
		tracker:    deps.Tracker,
		sessions:   deps.Sessions,
		metrics:    deps.Metrics,
		httpClient: http.DefaultClient,
		pushed:     make(map[int64]map[string]bool),
	}
	b.commands = b.registerCommands()
	return b
}

// Start begins polling for updates and blocks until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	logger.Log.Info().Msg("Bot started polling")
	b.bot.Start(ctx)
}

func (b *Bot) registerCommands() map[string]commandHandler {
	return map[string]commandHandler{
		"/start":    b.handleStartCore,
		"/help":     b.handleHelpCore,
		"/register": b.handleRegisterCore,
		"/login":    b.handleLoginCore,

		"/logout":          b.withSession(b.handleLogoutCore),
		"/accounts":        b.withSession(b.handleAccountsCore),
		"/addaccount":      b.withSession(b.handleAddAccountCore),
		"/deleteaccount":   b.withSession(b.handleDeleteAccountCore),
		"/add":             b.withSession(b.handleAddCore),
		"/list":            b.withSession(b.handleListCore),
		"/pay":             b.withSession(b.handlePayCore),
		"/history":         b.withSession(b.handleHistoryCore),
		"/delete":          b.withSession(b.handleDeleteCore),
		"/recurring":       b.withSession(b.handleRecurringCore),
		"/addrecurring":    b.withSession(b.handleAddRecurringCore),
		"/deleterecurring": b.withSession(b.handleDeleteRecurringCore),
		"/goals":           b.withSession(b.handleGoalsCore),
		"/addgoal":         b.withSession(b.handleAddGoalCore),
		"/contribute":      b.withSession(b.handleContributeCore),
		"/withdraw":        b.withSession(b.handleWithdrawCore),
		"/confirmgoal":     b.withSession(b.handleConfirmGoalCore),
		"/tags":            b.withSession(b.handleTagsCore),
		"/addtag":          b.withSession(b.handleAddTagCore),
		"/deletetag":       b.withSession(b.handleDeleteTagCore),
		"/notifications":   b.withSession(b.handleNotificationsCore),
		"/readall":         b.withSession(b.handleReadAllCore),
		"/summary":         b.withSession(b.handleSummaryCore),
		"/export":          b.withSession(b.handleExportCore),
		"/reminders":       b.withSession(b.handleRemindersCore),
		"/currency":        b.withSession(b.handleCurrencyCore),
	}
}

// withSession resolves the chat's logged-in user before calling next.
func (b *Bot) withSession(next sessionHandler) commandHandler {
	return func(ctx context.Context, tg TelegramAPI, update *models.Update) {
		chatID := update.Message.Chat.ID
		userID, ok := b.sessions.UserFor(ctx, chatID)
		if !ok {
			b.reply(ctx, tg, chatID, "🔒 Please /login first. New here? Use /register.")
			return
		}
		next(ctx, tg, update, userID)
	}
}

// logMiddleware logs the command name only; arguments can carry passwords.
func (b *Bot) logMiddleware(next tgbot.HandlerFunc) tgbot.HandlerFunc {
	return func(ctx context.Context, tgBot *tgbot.Bot, update *models.Update) {
		if update.Message != nil {
			msg := update.Message
			event := logger.Log.Info().Str("chat_hash", logger.HashChatID(msg.Chat.ID))
			if cmd, _ := splitCommand(msg.Text); cmd != "" {
				event = event.Str("command", cmd)
			}
			if msg.Document != nil {
				event = event.Str("type", "document")
			}
			event.Msg("User input")
		}
		next(ctx, tgBot, update)
	}
}

// defaultHandler receives every update; routing happens in handleUpdateCore.
func (b *Bot) defaultHandler(ctx context.Context, tgBot *tgbot.Bot, update *models.Update) {
	b.handleUpdateCore(ctx, tgBot, update)
}

// handleUpdateCore routes a message to its command or document handler.
func (b *Bot) handleUpdateCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	msg := update.Message

	if msg.Document != nil {
		b.withSession(b.handleImportCore)(ctx, tg, update)
		return
	}

	cmd, _ := splitCommand(msg.Text)
	if handler, ok := b.commands[cmd]; ok {
		handler(ctx, tg, update)
		return
	}

	logger.Log.Debug().Str("chat_hash", logger.HashChatID(msg.Chat.ID)).Msg("Unrecognized input")
	b.reply(ctx, tg, msg.Chat.ID, "I didn't understand that. Use /help to see available commands.")
}

// splitCommand returns the lower-cased command without any @botname suffix,
// and the trimmed remainder. Non-commands yield an empty command.
func splitCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	end := strings.IndexFunc(text, unicode.IsSpace)
	cmd, args := text, ""
	if end >= 0 {
		cmd, args = text[:end], strings.TrimSpace(text[end:])
	}
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.ToLower(cmd), args
}

// commandArgs returns the arguments of the command in update.
func commandArgs(update *models.Update) string {
	_, args := splitCommand(update.Message.Text)
	return args
}

func (b *Bot) reply(ctx context.Context, tg TelegramAPI, chatID int64, text string) {
	_, err := tg.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		b.metrics.IncrExternalError("telegram")
		logger.Log.Error().Err(err).Str("chat_hash", logger.HashChatID(chatID)).Msg("Failed to send message")
	}
}

// replyError shows validation failures verbatim and hides everything else.
func (b *Bot) replyError(ctx context.Context, tg TelegramAPI, chatID int64, action string, err error) {
	if isUserError(err) {
		b.reply(ctx, tg, chatID, "❌ "+escapeHTML(err.Error()))
		return
	}
	logger.Log.Error().Err(err).Str("chat_hash", logger.HashChatID(chatID)).Msg("Failed to " + action)
	b.reply(ctx, tg, chatID, "❌ Failed to "+action+". Please try again.")
}

// usage replies with a command's expected syntax.
func (b *Bot) usage(ctx context.Context, tg TelegramAPI, chatID int64, syntax string) {
	b.reply(ctx, tg, chatID, "Usage: <code>"+escapeHTML(syntax)+"</code>")
}

// escapeHTML escapes HTML special characters for safe interpolation in Telegram HTML messages.
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
