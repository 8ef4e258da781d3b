package hosting

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/contre95/scanrelay/src/features/config"
	"github.com/contre95/scanrelay/src/features/jobs"
	"github.com/contre95/scanrelay/src/features/receiver"
	"github.com/contre95/scanrelay/src/features/scanner"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramCommandHandler interface that each feature implements
type TelegramCommandHandler interface {
	HandleCommand(bot *tgbotapi.BotAPI, chatID int64, command string, args string) error
	GetCommands() map[string]string                                             // Returns command -> description mapping
	HandleCallback(bot *tgbotapi.BotAPI, callback *tgbotapi.CallbackQuery) bool // Handle feature-specific callbacks
}

// TelegramBot handles Telegram bot operations
type TelegramBot struct {
	bot      *tgbotapi.BotAPI
	config   *config.Manager
	handlers map[string]TelegramCommandHandler
	commands map[string]string // command -> feature
	updates  tgbotapi.UpdatesChannel
	stopOnce sync.Once
	stopChan chan struct{}

	inputsMu      sync.Mutex
	pendingInputs map[string]string // chatID_messageID -> callbackData
}

// NewTelegramBot creates a new Telegram bot instance
func NewTelegramBot(cfg *config.Manager, receiverService *receiver.Service, scannerService *scanner.Service, jobService *jobs.Service) (*TelegramBot, error) {
	telegramConfig := cfg.Get().Telegram

	if !telegramConfig.Enabled {
		return nil, fmt.Errorf("telegram bot is disabled in configuration")
	}

	if telegramConfig.Token == "" {
		return nil, fmt.Errorf("telegram bot token is not configured")
	}

	bot, err := tgbotapi.NewBotAPI(telegramConfig.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	slog.Info("Telegram bot initialized", "username", bot.Self.UserName)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30

	telegramBot := &TelegramBot{
		bot:           bot,
		config:        cfg,
		handlers:      make(map[string]TelegramCommandHandler),
		commands:      make(map[string]string),
		updates:       bot.GetUpdatesChan(updateConfig),
		stopChan:      make(chan struct{}),
		pendingInputs: make(map[string]string),
	}

	telegramBot.RegisterHandler("receiver", receiver.NewTelegramHandler(receiverService))
	telegramBot.RegisterHandler("scanner", scanner.NewTelegramHandler(scannerService))
	telegramBot.RegisterHandler("jobs", jobs.NewTelegramHandler(jobService))
	telegramBot.RegisterHandler("config", config.NewTelegramHandler(cfg))

	return telegramBot, nil
}

// RegisterHandler registers a feature's command handler and the commands it answers to.
func (t *TelegramBot) RegisterHandler(feature string, handler TelegramCommandHandler) {
	t.handlers[feature] = handler
	for command := range handler.GetCommands() {
		t.commands[command] = feature
	}
	slog.Debug("Registered Telegram handler", "feature", feature)
}

// Start begins listening for Telegram updates
func (t *TelegramBot) Start() {
	slog.Info("Starting Telegram bot listener")

	for {
		select {
		case update := <-t.updates:
			if update.Message != nil {
				go t.handleMessage(update)
			}
			if update.CallbackQuery != nil {
				go t.handleCallbackQuery(update)
			}
		case <-t.stopChan:
			slog.Info("Stopping Telegram bot listener")
			return
		}
	}
}

// Stop gracefully stops the bot
func (t *TelegramBot) Stop() {
	t.stopOnce.Do(func() {
		t.bot.StopReceivingUpdates()
		close(t.stopChan)
	})
}

// handleMessage processes incoming messages
func (t *TelegramBot) handleMessage(update tgbotapi.Update) {
	message := update.Message
	chatID := message.Chat.ID

	allowedUsers := t.config.Get().Telegram.AllowedUsers
	if len(allowedUsers) == 0 {
		slog.Warn("No allowed users configured", "chat_id", chatID)
		t.sendMessage(chatID, "❌ Access denied: No users configured. Please add users to the config.")
		return
	}

	username := message.From.UserName
	if username == "" {
		username = message.From.FirstName
		if message.From.LastName != "" {
			username += " " + message.From.LastName
		}
	}
	if !slices.Contains(allowedUsers, username) {
		slog.Warn("Unauthorized user", "username", username, "chat_id", chatID)
		t.sendMessage(chatID, "Unknown user, please add your user to the config")
		return
	}

	if message.IsCommand() {
		if !t.addressedToUs(message) {
			return
		}
		t.handleCommand(message)
		return
	}

	if message.ReplyToMessage != nil && t.handleReplyInput(message) {
		return
	}

	t.sendMessage(chatID, "🤖 Send /menu or /help to see available options")
}

// addressedToUs drops group commands meant for another bot (/cmd@otherbot).
func (t *TelegramBot) addressedToUs(message *tgbotapi.Message) bool {
	handle := strings.TrimPrefix(t.config.Get().Telegram.BotHandle, "@")
	_, target, found := strings.Cut(message.CommandWithAt(), "@")
	if !found || handle == "" {
		return true
	}
	return strings.EqualFold(target, handle)
}

// handleCommand processes bot commands
func (t *TelegramBot) handleCommand(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	command := message.Command()
	args := message.CommandArguments()

	slog.Debug("Processing command", "command", command, "args", args, "chat_id", chatID)

	switch command {
	case "help", "start", "menu":
		t.handleHelp(chatID)
	default:
		if err := t.routeCommand(command, args, chatID); err != nil {
			slog.Error("Failed to handle command", "command", command, "error", err)
			t.sendMessage(chatID, "❌ Failed to process command")
		}
	}
}

// routeCommand routes commands to the appropriate feature handler
func (t *TelegramBot) routeCommand(command, args string, chatID int64) error {
	feature, exists := t.commands[command]
	if !exists {
		t.sendMessage(chatID, "❌ Unknown command. Send /help to see available commands.")
		return nil
	}

	handler, exists := t.handlers[feature]
	if !exists {
		t.sendMessage(chatID, fmt.Sprintf("❌ %s feature not available", escapeMarkdown(feature)))
		return nil
	}

	return handler.HandleCommand(t.bot, chatID, command, args)
}

// escapeMarkdown escapes special characters for safe Markdown usage
func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"`", "\\`", "*", "\\*", "_", "\\_", "[", "\\[", "]", "\\]",
		"(", "\\(", ")", "\\)", "~", "\\~", ">", "\\>", "#", "\\#",
		"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
		"}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}

// sendMessage sends a message to the specified chat
func (t *TelegramBot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := t.bot.Send(msg); err != nil {
		slog.Error("Failed to send message", "error", err, "chat_id", chatID)
	}
}

// handleCallbackQuery handles callback queries from inline keyboards
func (t *TelegramBot) handleCallbackQuery(update tgbotapi.Update) {
	callback := update.CallbackQuery

	if strings.HasPrefix(callback.Data, "menu_") {
		t.handleMenuCallback(callback)
		return
	}

	for _, handler := range t.handlers {
		if handler.HandleCallback(t.bot, callback) {
			break
		}
	}

	t.bot.Request(tgbotapi.NewCallback(callback.ID, ""))
}

// helpText lists every registered command, sorted.
func (t *TelegramBot) helpText() string {
	var b strings.Builder
	b.WriteString("*📡 Scanrelay*\n\nChoose an action below or use commands directly:\n\n")
	for _, feature := range slices.Sorted(maps.Keys(t.handlers)) {
		descriptions := t.handlers[feature].GetCommands()
		for _, command := range slices.Sorted(maps.Keys(descriptions)) {
			fmt.Fprintf(&b, "/%s - %s\n", escapeMarkdown(command), escapeMarkdown(descriptions[command]))
		}
	}
	return b.String()
}

// handleHelp shows main menu with inline keyboard
func (t *TelegramBot) handleHelp(chatID int64) {
	buttons := [][]tgbotapi.InlineKeyboardButton{
		{
			tgbotapi.NewInlineKeyboardButtonData("🔁 Boot scan", "menu_boot"),
			tgbotapi.NewInlineKeyboardButtonData("📡 Broadcast", "menu_broadcast"),
		},
		{
			tgbotapi.NewInlineKeyboardButtonData("⏳ Pending", "menu_pending"),
			tgbotapi.NewInlineKeyboardButtonData("📋 Jobs", "menu_jobs"),
		},
		{
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Config", "menu_config"),
		},
	}

	msg := tgbotapi.NewMessage(chatID, t.helpText())
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	if _, err := t.bot.Send(msg); err != nil {
		slog.Error("Failed to send menu", "error", err, "chat_id", chatID)
	}
}

// handleMenuCallback handles main menu callback queries
func (t *TelegramBot) handleMenuCallback(callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID

	t.bot.Request(tgbotapi.NewCallback(callback.ID, ""))

	switch callback.Data {
	case "menu_boot":
		t.routeMenuCommand("boot", "", chatID)
	case "menu_pending":
		t.routeMenuCommand("pending", "", chatID)
	case "menu_jobs":
		t.routeMenuCommand("jobs", "", chatID)
	case "menu_config":
		t.routeMenuCommand("config", "", chatID)
	case "menu_broadcast":
		t.promptForInput(chatID, "📡 *Broadcast*\n\nPlease reply with `<action> [uri]`\nExample: `mounted file:///storage/usb1`", "menu_broadcast")
	}
}

// promptForInput sends a message that forces user to reply with input
func (t *TelegramBot) promptForInput(chatID int64, promptText, callbackData string) {
	msg := tgbotapi.NewMessage(chatID, promptText)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.ForceReply{ForceReply: true}

	sentMsg, err := t.bot.Send(msg)
	if err != nil {
		slog.Error("Failed to send prompt", "error", err)
		return
	}

	t.inputsMu.Lock()
	t.pendingInputs[inputKey(chatID, sentMsg.MessageID)] = callbackData
	t.inputsMu.Unlock()
}

// handleReplyInput handles replies to our input prompts
func (t *TelegramBot) handleReplyInput(message *tgbotapi.Message) bool {
	key := inputKey(message.Chat.ID, message.ReplyToMessage.MessageID)

	t.inputsMu.Lock()
	callbackData, exists := t.pendingInputs[key]
	delete(t.pendingInputs, key)
	t.inputsMu.Unlock()

	if !exists {
		return false
	}

	switch callbackData {
	case "menu_broadcast":
		t.routeMenuCommand("broadcast", message.Text, message.Chat.ID)
	default:
		return false
	}
	return true
}

func inputKey(chatID int64, messageID int) string {
	return fmt.Sprintf("%d_%d", chatID, messageID)
}

// routeMenuCommand routes menu selections to appropriate feature handlers
func (t *TelegramBot) routeMenuCommand(command, args string, chatID int64) {
	if err := t.routeCommand(command, args, chatID); err != nil {
		slog.Error("Failed to handle menu command", "command", command, "error", err)
		t.sendMessage(chatID, "❌ Failed to process menu selection")
	}
}
