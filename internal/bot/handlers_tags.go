package bot

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-telegram/bot/models"

	"gitlab.com/yelinaung/finance-tracker/internal/repository"
	"gitlab.com/yelinaung/finance-tracker/internal/tracker"
)

// hexColorRegex matches a trailing "#rrggbb" color argument.
var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// handleTagsCore lists the user's tags.
func (b *Bot) handleTagsCore(ctx context.Context, tg TelegramAPI, update *models.Update, userID string) {
	chatID := update.Message.Chat.ID
	tags, err := b.tracker.ListTags(ctx, userID)
	if err != nil {
		b.replyError(ctx, tg, chatID, "list tags", err)
		return
	}
	if len(tags) == 0 {
		b.reply(ctx, tg, chatID, "No tags yet. Add one with <code>/addtag Groceries</code>.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🏷 <b>Tags</b>\n\n")
	for _, tag := range tags {
		fmt.Fprintf(&sb, "• <b>%s</b> <code>%s</code>\n", escapeHTML(tag.Name), tag.Color)
	}
	sb.WriteString("\nUse them in /add as <code>#name</code>; write spaces as underscores.")
	b.reply(ctx, tg, chatID, sb.String())
}

// handleAddTagCore handles /addtag <name> [#color].
func (b *Bot) handleAddTagCore(ctx context.Context, tg TelegramAPI, update *models.Update, userID string) {
	chatID := update.Message.Chat.ID
	args := commandArgs(update)
	if args == "" {
		b.usage(ctx, tg, chatID, "/addtag <name> [#color]")
		return
	}

	in := tracker.TagInput{Name: args}
	if fields := strings.Fields(args); len(fields) > 1 && hexColorRegex.MatchString(fields[len(fields)-1]) {
		in.Color = fields[len(fields)-1]
		in.Name = strings.Join(fields[:len(fields)-1], " ")
	}

	tag, err := b.tracker.AddTag(ctx, userID, in)
	if err != nil {
		b.replyError(ctx, tg, chatID, "add tag", err)
		return
	}
	b.reply(ctx, tg, chatID, fmt.Sprintf("✅ Tag <b>%s</b> added (%s).", escapeHTML(tag.Name), tag.Color))
}

// handleDeleteTagCore deletes a tag by name and strips it from transactions.
func (b *Bot) handleDeleteTagCore(ctx context.Context, tg TelegramAPI, update *models.Update, userID string) {
	chatID := update.Message.Chat.ID
	name := strings.TrimPrefix(commandArgs(update), "#")
	if name == "" {
		b.usage(ctx, tg, chatID, "/deletetag <name>")
		return
	}

	tags, err := b.tracker.ListTags(ctx, userID)
	if err != nil {
		b.replyError(ctx, tg, chatID, "delete tag", err)
		return
	}
	data := repository.UserData{Tags: tags}
	i := data.TagByName(name)
	if i < 0 {
		b.reply(ctx, tg, chatID, fmt.Sprintf("❌ No tag named <b>%s</b>.", escapeHTML(name)))
		return
	}

	affected, err := b.tracker.DeleteTag(ctx, userID, tags[i].ID)
	if err != nil {
		b.replyError(ctx, tg, chatID, "delete tag", err)
		return
	}
	b.reply(ctx, tg, chatID, fmt.Sprintf("🗑 Tag <b>%s</b> deleted and removed from %d transaction(s).",
		escapeHTML(tags[i].Name), affected))
}
