package jobs

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramHandler handles Telegram commands for the jobs feature
type TelegramHandler struct {
	service *Service
}

// NewTelegramHandler creates a new Telegram handler for the jobs feature
func NewTelegramHandler(service *Service) *TelegramHandler {
	return &TelegramHandler{service: service}
}

// HandleCommand processes jobs-related Telegram commands
func (h *TelegramHandler) HandleCommand(bot *tgbotapi.BotAPI, chatID int64, command string, args string) error {
	switch command {
	case "jobs":
		return h.handleJobs(bot, chatID)
	case "cancel":
		return h.handleCancel(bot, chatID, strings.TrimSpace(args))
	default:
		msg := tgbotapi.NewMessage(chatID, "❌ Unknown jobs command. Use /jobs or /cancel <id>")
		bot.Send(msg)
		return nil
	}
}

// GetCommands returns the available commands for this handler
func (h *TelegramHandler) GetCommands() map[string]string {
	return map[string]string{
		"jobs":   "Show active scan jobs",
		"cancel": "Cancel a job: /cancel <id>",
	}
}

// HandleCallback handles callback queries for this feature (jobs has no callbacks)
func (h *TelegramHandler) HandleCallback(bot *tgbotapi.BotAPI, callback *tgbotapi.CallbackQuery) bool {
	return false
}

// handleJobs shows jobs that have not finished yet
func (h *TelegramHandler) handleJobs(bot *tgbotapi.BotAPI, chatID int64) error {
	var b strings.Builder
	for _, job := range h.service.GetJobs() {
		if job.Status.Finished() {
			continue
		}
		fmt.Fprintf(&b, "%s `%s` %s: %s\n", jobStatusEmoji(job.Status), job.ID[:8], job.Name, job.Message)
	}

	text := "📋 *No active jobs*"
	if b.Len() > 0 {
		text = "📋 *Active Jobs*\n\n" + b.String()
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := bot.Send(msg)
	return err
}

// handleCancel cancels the job whose id starts with prefix
func (h *TelegramHandler) handleCancel(bot *tgbotapi.BotAPI, chatID int64, prefix string) error {
	if prefix == "" {
		bot.Send(tgbotapi.NewMessage(chatID, "Usage: /cancel <job id>"))
		return nil
	}
	for _, job := range h.service.GetJobs() {
		if !strings.HasPrefix(job.ID, prefix) {
			continue
		}
		text := "🚫 Cancelled " + job.Name
		if err := h.service.CancelJob(job.ID); err != nil {
			text = "❌ " + err.Error()
		}
		_, err := bot.Send(tgbotapi.NewMessage(chatID, text))
		return err
	}
	_, err := bot.Send(tgbotapi.NewMessage(chatID, "❌ "+ErrJobNotFound.Error()))
	return err
}

func jobStatusEmoji(status JobStatus) string {
	switch status {
	case JobStatusPending:
		return "⏳"
	case JobStatusRunning:
		return "🔄"
	case JobStatusCompleted:
		return "✅"
	case JobStatusFailed:
		return "❌"
	case JobStatusCancelled:
		return "🚫"
	default:
		return "❓"
	}
}
