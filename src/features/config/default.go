package config

import "time"

var defaultConfig = Config{
	ExternalStorageRoot: "/storage/emulated/0",
	HotReload:           false,
	Telegram: Telegram{
		Enabled:      false,
		Token:        "",                                   // Can be obtained with https://t.me/BotFather
		AllowedUsers: []string{"<your_telegram_username>"}, // No @
		BotHandle:    "@<YourTelegramUserBot>",             // With @
	},
	Logger: Logger{
		Enabled: true,
		Level:   "info",
		Format:  "text",
	},
	Server: Server{
		PrintRoutes: false,
		Port:        3636,
	},
	Scanner: Scanner{
		Mode:    "log",
		Command: "",
		URL:     "",
		Timeout: 30 * time.Second,
	},
	Jobs: Jobs{
		Log:     false,
		LogPath: "./logs/jobs",
		Webhooks: WebhookConfig{
			Enabled:  false,
			JobTypes: []string{},
			Command:  "",
		},
	},
}

// createDefaultConfig returns a fresh copy of the default configuration.
func createDefaultConfig() *Config {
	cfg := defaultConfig
	cfg.Telegram.AllowedUsers = append([]string{}, defaultConfig.Telegram.AllowedUsers...)
	cfg.Jobs.Webhooks.JobTypes = append([]string{}, defaultConfig.Jobs.Webhooks.JobTypes...)
	return &cfg
}
