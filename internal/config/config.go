package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the main struct that holds all configuration for the application.
// It is built once at process start and injected into every component.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Mail      MailConfig      `mapstructure:"mail"`
	Site      SiteConfig      `mapstructure:"site"`
	Broadcast BroadcastConfig `mapstructure:"broadcast"`
	Intake    IntakeConfig    `mapstructure:"intake"`
}

// LoggerConfig holds logging-specific settings.
type LoggerConfig struct {
	Level string `mapstructure:"level"`
	// Format is "console" for human-readable output or "json".
	Format string `mapstructure:"format"`
}

// HTTPConfig holds HTTP server-specific settings.
type HTTPConfig struct {
	Port         string        `mapstructure:"port"`
	GinMode      string        `mapstructure:"gin_mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// PostgresConfig holds settings for the read-only directory connection.
type PostgresConfig struct {
	DSN          string        `mapstructure:"dsn"`
	MaxConns     int32         `mapstructure:"max_conns"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
}

// RedisConfig holds settings for the optional profile cache.
// The cache is disabled when Addr is empty.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// AdminConfig holds settings for the team chat webhook.
type AdminConfig struct {
	WebhookURL string        `mapstructure:"webhook_url"`
	BotName    string        `mapstructure:"bot_name"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// TelegramConfig holds settings for the optional Telegram alert mirror.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// MailConfig holds settings for the outbound mail provider.
type MailConfig struct {
	// Provider is "api", "smtp" or "log".
	Provider string        `mapstructure:"provider"`
	From     string        `mapstructure:"from"`
	APIKey   string        `mapstructure:"api_key"`
	APIURL   string        `mapstructure:"api_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	SMTP     SMTPConfig    `mapstructure:"smtp"`
	Breaker  BreakerConfig `mapstructure:"breaker"`
}

// SMTPConfig holds SMTP settings for the gomail provider.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// BreakerConfig tunes the circuit breaker around the mail provider.
type BreakerConfig struct {
	MaxFailures uint32        `mapstructure:"max_failures"`
	OpenTimeout time.Duration `mapstructure:"open_timeout"`
}

// SiteConfig holds values embedded in email templates.
type SiteConfig struct {
	URL      string `mapstructure:"url"`
	Name     string `mapstructure:"name"`
	Currency string `mapstructure:"currency"`
}

// BroadcastConfig tunes broadcast fan-out.
type BroadcastConfig struct {
	Workers       int           `mapstructure:"workers"`
	Interval      time.Duration `mapstructure:"interval"`
	PageSize      int           `mapstructure:"page_size"`
	MaxRecipients int           `mapstructure:"max_recipients"`
}

// IntakeConfig holds the optional non-HTTP event sources.
type IntakeConfig struct {
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	NATS     NATSConfig     `mapstructure:"nats"`
}

// RabbitMQConfig enables queue intake when DSN is set.
type RabbitMQConfig struct {
	DSN     string `mapstructure:"dsn"`
	Queue   string `mapstructure:"queue"`
	Workers int    `mapstructure:"workers"`
}

// NATSConfig enables subject intake when URL is set.
type NATSConfig struct {
	URL        string `mapstructure:"url"`
	Subject    string `mapstructure:"subject"`
	QueueGroup string `mapstructure:"queue_group"`
}

// defaults registers every key so that environment-only deployments
// (no config file) still populate the whole struct.
var defaults = map[string]any{
	"logger.level":  "info",
	"logger.format": "console",

	"http.port":          ":8080",
	"http.gin_mode":      "release",
	"http.read_timeout":  "10s",
	"http.write_timeout": "5m",

	"postgres.dsn":           "",
	"postgres.max_conns":     5,
	"postgres.query_timeout": "3s",

	"redis.addr":     "",
	"redis.password": "",
	"redis.db":       0,
	"redis.ttl":      "5m",

	"admin.webhook_url": "",
	"admin.bot_name":    "Pitch Alerts",
	"admin.timeout":     "5s",

	"telegram.bot_token": "",
	"telegram.chat_id":   0,

	"mail.provider":             "api",
	"mail.from":                 "",
	"mail.api_key":              "",
	"mail.api_url":              "https://api.resend.com",
	"mail.timeout":              "10s",
	"mail.smtp.host":            "",
	"mail.smtp.port":            587,
	"mail.smtp.username":        "",
	"mail.smtp.password":        "",
	"mail.breaker.max_failures": 10,
	"mail.breaker.open_timeout": "30s",

	"site.url":      "http://localhost:3000",
	"site.name":     "PitchBox",
	"site.currency": "₦",

	"broadcast.workers":        5,
	"broadcast.interval":       "200ms",
	"broadcast.page_size":      1000,
	"broadcast.max_recipients": 50000,

	"intake.rabbitmq.dsn":     "",
	"intake.rabbitmq.queue":   "",
	"intake.rabbitmq.workers": 5,
	"intake.nats.url":         "",
	"intake.nats.subject":     "",
	"intake.nats.queue_group": "",
}

// NewConfig reads an optional .env file, an optional configs/config.yaml and
// environment variables, in increasing order of precedence.
// Environment keys are the config keys upper-cased with "." replaced by "_",
// e.g. admin.webhook_url is ADMIN_WEBHOOK_URL.
func NewConfig() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("configs")
	v.AddConfigPath(".")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
