package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/omarshaarawi/fantasywrapped/internal/models"
	"github.com/omarshaarawi/fantasywrapped/internal/service"
)

// Collector is the part of the wrapped service the bot needs.
type Collector interface {
	Collect(ctx context.Context, leagueKey string, creds models.Credentials) ([]models.Award, service.Run, error)
}

type Handler struct {
	wrapped Collector
	creds   models.Credentials
}

// NewHandler answers commands with the server's own credentials; cached
// leagues are served without them.
func NewHandler(wrapped Collector, creds models.Credentials) *Handler {
	return &Handler{wrapped: wrapped, creds: creds}
}

func (h *Handler) HandleCommand(ctx context.Context, update tgbotapi.Update) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")
	command := strings.ToLower(update.Message.Command())
	args := strings.Fields(update.Message.CommandArguments())
	msg.ParseMode = tgbotapi.ModeMarkdown

	switch command {
	case "start":
		msg.Text = "Welcome to Fantasy Wrapped! Use /help to see available commands."
	case "help":
		msg.Text = "Available commands:\n/wrapped <league> - Season awards summary\n/award <league> <name> - Full results for one award"
	case "wrapped":
		h.handleWrapped(ctx, &msg, args)
	case "award":
		h.handleAward(ctx, &msg, args)
	default:
		msg.Text = "Unknown command. Use /help to see available commands."
	}

	return msg
}

func (h *Handler) handleWrapped(ctx context.Context, msg *tgbotapi.MessageConfig, args []string) {
	if len(args) != 1 {
		msg.Text = "Please provide a league key. Usage: /wrapped <league>"
		return
	}
	list, _, err := h.wrapped.Collect(ctx, args[0], h.creds)
	if err != nil {
		msg.Text = fmt.Sprintf("Error computing awards: %v", err)
		msg.ParseMode = ""
		return
	}
	msg.Text = service.FormatSummary(args[0], list)
}

func (h *Handler) handleAward(ctx context.Context, msg *tgbotapi.MessageConfig, args []string) {
	if len(args) < 2 {
		msg.Text = "Please provide a league key and award name. Usage: /award <league> <name>"
		return
	}
	list, _, err := h.wrapped.Collect(ctx, args[0], h.creds)
	if err != nil {
		msg.Text = fmt.Sprintf("Error computing awards: %v", err)
		msg.ParseMode = ""
		return
	}
	name := strings.Join(args[1:], " ")
	award, ok := service.FindAward(list, name)
	if !ok {
		msg.Text = fmt.Sprintf("Award not found: %s", name)
		msg.ParseMode = ""
		return
	}
	msg.Text = service.FormatAward(award)
}
