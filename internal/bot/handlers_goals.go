package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/finance-tracker/internal/ledger"
	appmodels "gitlab.com/yelinaung/finance-tracker/internal/models"
	"gitlab.com/yelinaung/finance-tracker/internal/tracker"
)

var hundred = decimal.NewFromInt(100)

// goalLine renders one goal with progress and derived status.
func (b *Bot) goalLine(goal *appmodels.Goal, symbol string) string {
	now, loc := b.tracker.Now(), b.tracker.Location()
	status := ledger.GoalDisplayStatus(goal, now, loc)

	progress := decimal.Zero
	if goal.TargetAmount.IsPositive() {
		progress = goal.CurrentAmount.Div(goal.TargetAmount).Mul(hundred).Round(0)
	}

	line := fmt.Sprintf("%s <b>%s</b> (<code>%s</code>)\n   %s / %s (%s%%) · %s",
		goal.Icon, escapeHTML(goal.Name), goal.ID,
		ledger.FormatMoney(symbol, goal.CurrentAmount), ledger.FormatMoney(symbol, goal.TargetAmount),
		progress.String(), status)
	if status == ledger.DisplayActive {
		line += fmt.Sprintf(" · %d day(s) left", ledger.DaysLeft(goal, now, loc))
	}
	return line
}

// handleGoalsCore lists goals.
func (b *Bot) handleGoalsCore(ctx context.Context, tg TelegramAPI, update *models.Update, userID string) {
	chatID := update.Message.Chat.ID
	goals, err := b.tracker.ListGoals(ctx, userID)
	if err != nil {
		b.replyError(ctx, tg, chatID, "list goals", err)
		return
	}
	if len(goals) == 0 {
		b.reply(ctx, tg, chatID, "No goals yet. Add one with <code>/addgoal 5000 2025-12-31 Vacation</code>.")
		return
	}

	symbol := b.symbolFor(ctx, userID)
	var sb strings.Builder
	sb.WriteString("🎯 <b>Goals</b>\n\n")
	for i := range goals {
		sb.WriteString(b.goalLine(&goals[i], symbol))
		sb.WriteString("\n")
	}
	b.reply(ctx, tg, chatID, sb.String())
}

// handleAddGoalCore handles /addgoal <target> <YYYY-MM-DD> <name>.
func (b *Bot) handleAddGoalCore(ctx context.Context, tg TelegramAPI, update *models.Update, userID string) {
	chatID := update.Message.Chat.ID
	args := splitArgs(commandArgs(update), 3)
	if len(args) != 3 {
		b.usage(ctx, tg, chatID, "/addgoal <target> <YYYY-MM-DD> <name>")
		return
	}
	target, err := parseAmount(args[0])
	if err != nil {
		b.replyError(ctx, tg, chatID, "add goal", err)
		return
	}
	deadline, ok := parseDate(args[1], b.tracker.Location())
	if !ok {
		b.reply(ctx, tg, chatID, "❌ Deadline must be a date like 2025-12-31.")
		return
	}

	goal, err := b.tracker.AddGoal(ctx, userID, tracker.GoalInput{
		Name:         args[2],
		TargetAmount: target,
		Deadline:     deadline,
	})
	if err != nil {
		b.replyError(ctx, tg, chatID, "add goal", err)
		return
	}
	b.reply(ctx, tg, chatID, "✅ Goal added.\n\n"+b.goalLine(&goal, b.symbolFor(ctx, userID)))
}

// handleContributeCore moves money from an account into a goal.
func (b *Bot) handleContributeCore(ctx context.Context, tg TelegramAPI, update *models.Update, userID string) {
	b.contribute(ctx, tg, update, userID, appmodels.GoalIncrease)
}

// handleWithdrawCore moves money from a goal back to an account.
func (b *Bot) handleWithdrawCore(ctx context.Context, tg TelegramAPI, update *models.Update, userID string) {
	b.contribute(ctx, tg, update, userID, appmodels.GoalDecrease)
}

func (b *Bot) contribute(ctx context.Context, tg TelegramAPI, update *models.Update, userID string, change appmodels.GoalChange) {
	chatID := update.Message.Chat.ID
	args := strings.Fields(commandArgs(update))
	if len(args) != 3 {
		cmd := "/contribute"
		if change == appmodels.GoalDecrease {
			cmd = "/withdraw"
		}
		b.usage(ctx, tg, chatID, cmd+" <goalID> <amount> <accountID>")
		return
	}
	amount, err := parseAmount(args[1])
	if err != nil {
		b.replyError(ctx, tg, chatID, "update goal", err)
		return
	}

	res, err := b.tracker.Contribute(ctx, userID, args[0], amount, args[2], change)
	if err != nil {
		b.replyError(ctx, tg, chatID, "update goal", err)
		return
	}

	symbol := b.symbolFor(ctx, userID)
	if res.Transaction == nil {
		if change == appmodels.GoalIncrease {
			b.reply(ctx, tg, chatID, "ℹ️ This goal has already reached its target. Nothing was changed.")
		} else {
			b.reply(ctx, tg, chatID, "ℹ️ This goal has nothing to withdraw. Nothing was changed.")
		}
		return
	}

	verb := "Added"
	if change == appmodels.GoalDecrease {
		verb = "Withdrew"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ %s %s", verb, ledger.FormatMoney(symbol, res.Effective))
	if !res.Effective.Equal(amount) {
		fmt.Fprintf(&sb, " (limited from %s)", ledger.FormatMoney(symbol, amount))
	}
	sb.WriteString(".\n\n")
	sb.WriteString(b.goalLine(&res.Goal, symbol))
	b.reply(ctx, tg, chatID, sb.String())
}

// handleConfirmGoalCore completes a funded goal.
func (b *Bot) handleConfirmGoalCore(ctx context.Context, tg TelegramAPI, update *models.Update, userID string) {
	chatID := update.Message.Chat.ID
	args := strings.Fields(commandArgs(update))
	if len(args) != 2 {
		b.usage(ctx, tg, chatID, "/confirmgoal <goalID> <accountID>")
		return
	}

	goal, txn, err := b.tracker.ConfirmCompletion(ctx, userID, args[0], args[1])
	if err != nil {
		b.replyError(ctx, tg, chatID, "complete goal", err)
		return
	}
	b.reply(ctx, tg, chatID, fmt.Sprintf("🎉 Goal <b>%s</b> completed! Recorded %s as <code>%s</code>.",
		escapeHTML(goal.Name), ledger.FormatMoney(b.symbolFor(ctx, userID), txn.Amount), txn.ID))
}
