package receiver

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramHandler handles Telegram commands for the receiver feature
type TelegramHandler struct {
	service *Service
}

// NewTelegramHandler creates a new Telegram handler for the receiver feature
func NewTelegramHandler(service *Service) *TelegramHandler {
	return &TelegramHandler{service: service}
}

// HandleCommand processes receiver-related Telegram commands
func (h *TelegramHandler) HandleCommand(bot *tgbotapi.BotAPI, chatID int64, command string, args string) error {
	var action, data string
	switch command {
	case "boot":
		action = "boot"
	case "broadcast":
		fields := strings.Fields(args)
		if len(fields) == 0 {
			msg := tgbotapi.NewMessage(chatID, "❌ Usage: /broadcast <action> [uri]\nActions: "+strings.Join(Actions(), ", "))
			_, err := bot.Send(msg)
			return err
		}
		action = fields[0]
		if len(fields) > 1 {
			data = fields[1]
		}
	default:
		bot.Send(tgbotapi.NewMessage(chatID, "❌ Unknown receiver command. Use /broadcast or /boot"))
		return nil
	}

	commands := h.service.Receive(context.Background(), ParseBroadcast(action, data))
	if len(commands) == 0 {
		_, err := bot.Send(tgbotapi.NewMessage(chatID, "🤷 Nothing to scan for that broadcast"))
		return err
	}

	var b strings.Builder
	b.WriteString("📡 *Commands sent*\n\n")
	for _, cmd := range commands {
		fmt.Fprintf(&b, "• `%s`\n", cmd.String())
	}
	msg := tgbotapi.NewMessage(chatID, b.String())
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := bot.Send(msg)
	return err
}

// GetCommands returns the available commands for this handler
func (h *TelegramHandler) GetCommands() map[string]string {
	return map[string]string{
		"broadcast": "Send a broadcast: /broadcast <action> [uri]",
		"boot":      "Scan internal and external volumes",
	}
}

// HandleCallback handles callback queries for this feature (receiver has no callbacks)
func (h *TelegramHandler) HandleCallback(bot *tgbotapi.BotAPI, callback *tgbotapi.CallbackQuery) bool {
	return false
}
