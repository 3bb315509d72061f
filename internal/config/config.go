package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "CRM_DASHBOARD_CONFIG"
	apiBaseURLEnv     = "CRM_API_BASE_URL"
	apiTokenEnv       = "CRM_API_TOKEN"
	databaseDSNEnv    = "DATABASE_DSN"
	redisURLEnv       = "REDIS_URL"
	httpAddrEnv       = "HTTP_ADDR"
	logLevelEnv       = "LOG_LEVEL"
	chatGPTAPIKeyEnv  = "CHATGPT_API_KEY"
	chatGPTModelEnv   = "CHATGPT_MODEL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	sentryDSNEnv      = "SENTRY_DSN"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Server        ServerConfig       `yaml:"server"`
	API           APIConfig          `yaml:"api"`
	Redis         RedisConfig        `yaml:"redis"`
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Dashboard     DashboardConfig    `yaml:"dashboard"`
	Notifications NotificationConfig `yaml:"notifications"`
	ChatGPT       ChatGPTConfig      `yaml:"chatgpt"`
	Sentry        SentryConfig       `yaml:"sentry"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ServerConfig is the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// APIConfig points at the CRM REST backend.
type APIConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// RedisConfig enables the shared snapshot cache. An empty URL keeps the
// snapshot in process memory.
type RedisConfig struct {
	URL string        `yaml:"url"`
	TTL time.Duration `yaml:"ttl"`
}

// DatabaseConfig describes where bucket history is recorded. An empty DSN
// disables history.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig defines when the dashboard is refreshed in the background.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// DashboardConfig selects and orders the cards.
type DashboardConfig struct {
	Metrics      []string `yaml:"metrics"`
	HistoryLimit int      `yaml:"historyLimit"`
	Digest       bool     `yaml:"digest"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// ChatGPTConfig defines how to contact the ChatGPT API.
type ChatGPTConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
}

type SentryConfig struct {
	DSN         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		env    string
		target *string
	}{
		{apiBaseURLEnv, &c.API.BaseURL},
		{apiTokenEnv, &c.API.Token},
		{databaseDSNEnv, &c.Database.DSN},
		{redisURLEnv, &c.Redis.URL},
		{httpAddrEnv, &c.Server.Addr},
		{logLevelEnv, &c.Logging.Level},
		{telegramTokenEnv, &c.Notifications.Telegram.BotToken},
		{telegramChatIDEnv, &c.Notifications.Telegram.ChatID},
		{chatGPTAPIKeyEnv, &c.ChatGPT.APIKey},
		{chatGPTModelEnv, &c.ChatGPT.Model},
		{sentryDSNEnv, &c.Sentry.DSN},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.target = v
		}
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	mergeString(&base.Logging.Level, override.Logging.Level)

	mergeString(&base.Server.Addr, override.Server.Addr)
	mergeDuration(&base.Server.ShutdownTimeout, override.Server.ShutdownTimeout)

	mergeString(&base.API.BaseURL, override.API.BaseURL)
	mergeString(&base.API.Token, override.API.Token)
	mergeDuration(&base.API.Timeout, override.API.Timeout)

	mergeString(&base.Redis.URL, override.Redis.URL)
	mergeDuration(&base.Redis.TTL, override.Redis.TTL)

	mergeString(&base.Database.DSN, override.Database.DSN)

	mergeString(&base.Scheduler.CronExpression, override.Scheduler.CronExpression)
	mergeString(&base.Scheduler.Timezone, override.Scheduler.Timezone)

	if len(override.Dashboard.Metrics) > 0 {
		base.Dashboard.Metrics = override.Dashboard.Metrics
	}
	if override.Dashboard.HistoryLimit > 0 {
		base.Dashboard.HistoryLimit = override.Dashboard.HistoryLimit
	}
	base.Dashboard.Digest = base.Dashboard.Digest || override.Dashboard.Digest

	mergeString(&base.Notifications.Telegram.BotToken, override.Notifications.Telegram.BotToken)
	mergeString(&base.Notifications.Telegram.ChatID, override.Notifications.Telegram.ChatID)

	mergeString(&base.ChatGPT.Endpoint, override.ChatGPT.Endpoint)
	mergeString(&base.ChatGPT.Model, override.ChatGPT.Model)
	mergeString(&base.ChatGPT.APIKey, override.ChatGPT.APIKey)
	mergeString(&base.ChatGPT.SystemPrompt, override.ChatGPT.SystemPrompt)

	mergeString(&base.Sentry.DSN, override.Sentry.DSN)
	mergeString(&base.Sentry.Environment, override.Sentry.Environment)

	return base
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func mergeDuration(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Server:  ServerConfig{Addr: ":8080", ShutdownTimeout: 10 * time.Second},
		API: APIConfig{
			BaseURL: "http://127.0.0.1:8000/crm/v1/",
			Timeout: 15 * time.Second,
		},
		Redis:     RedisConfig{TTL: 5 * time.Minute},
		Scheduler: SchedulerConfig{CronExpression: "*/5 * * * *", Timezone: defaultTimezone, location: tz},
		Dashboard: DashboardConfig{HistoryLimit: 50},
		ChatGPT: ChatGPTConfig{
			Endpoint:     "https://api.openai.com/v1/chat/completions",
			Model:        "gpt-4o-mini",
			SystemPrompt: "You are an operations analyst. Summarize the CRM dashboard status counts in three short bullet points.",
		},
		Sentry: SentryConfig{Environment: "development"},
	}
}
