package scanner

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramHandler handles Telegram commands for the scanner feature
type TelegramHandler struct {
	service *Service
}

// NewTelegramHandler creates a new Telegram handler for the scanner feature
func NewTelegramHandler(service *Service) *TelegramHandler {
	return &TelegramHandler{service: service}
}

// HandleCommand processes scanner-related Telegram commands
func (h *TelegramHandler) HandleCommand(bot *tgbotapi.BotAPI, chatID int64, command string, args string) error {
	if command != "pending" {
		bot.Send(tgbotapi.NewMessage(chatID, "❌ Unknown scanner command. Use /pending"))
		return nil
	}

	pending := h.service.Pending()
	if len(pending) == 0 {
		_, err := bot.Send(tgbotapi.NewMessage(chatID, "✅ Nothing pending"))
		return err
	}
	var b strings.Builder
	b.WriteString("⏳ *Pending commands*\n\n")
	for _, item := range pending {
		fmt.Fprintf(&b, "`%s` since %s\n", item.Command.String(), item.Timestamp.Format("15:04:05"))
	}
	msg := tgbotapi.NewMessage(chatID, b.String())
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := bot.Send(msg)
	return err
}

// GetCommands returns the available commands for this handler
func (h *TelegramHandler) GetCommands() map[string]string {
	return map[string]string{
		"pending": "Show commands waiting on the scan service",
	}
}

// HandleCallback handles callback queries for this feature (scanner has no callbacks)
func (h *TelegramHandler) HandleCallback(bot *tgbotapi.BotAPI, callback *tgbotapi.CallbackQuery) bool {
	return false
}
