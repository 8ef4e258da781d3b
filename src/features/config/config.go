package config

import "time"

// Config holds the application configuration.
type Config struct {
	// ExternalStorageRoot bounds which scan-file requests are honoured.
	ExternalStorageRoot string   `yaml:"externalStorageRoot" validate:"required"`
	HotReload           bool     `yaml:"hot_reload"`
	Telegram            Telegram `yaml:"telegram"`
	Logger              Logger   `yaml:"logger"`
	Server              Server   `yaml:"server"`
	Scanner             Scanner  `yaml:"scanner"`
	Jobs                Jobs     `yaml:"jobs"`
}

type Jobs struct {
	Log      bool          `yaml:"log"`
	LogPath  string        `yaml:"log_path" validate:"required_if=Log true"`
	Webhooks WebhookConfig `yaml:"webhooks"`
}

type WebhookConfig struct {
	Enabled  bool     `yaml:"enabled"`
	JobTypes []string `yaml:"job_types"`
	Command  string   `yaml:"command" validate:"required_if=Enabled true"`
}

// Scanner selects how commands reach the scan service.
type Scanner struct {
	Mode    string        `yaml:"mode" validate:"oneof=log exec http"`
	Command string        `yaml:"command" validate:"required_if=Mode exec"` // text/template, see scanservice
	URL     string        `yaml:"url" validate:"required_if=Mode http"`
	Timeout time.Duration `yaml:"timeout"`
}

// Server hold the configuration for the Fiber server Config
type Server struct {
	PrintRoutes bool   `yaml:"show_routes"`
	Port        uint32 `yaml:"port" validate:"required"`
}

// Logger holds the configuration for the app logging
type Logger struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format  string `yaml:"format" validate:"omitempty,oneof=json text logfmt"`
}

type Telegram struct {
	Enabled      bool     `yaml:"enabled"`
	Token        string   `yaml:"token"`
	AllowedUsers []string `yaml:"allowedUsers"`
	BotHandle    string   `yaml:"bot_handle"`
}
