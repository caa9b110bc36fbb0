package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/anjaylytics/plandesk/internal/content"
	"github.com/anjaylytics/plandesk/internal/models"
)

// Config represents the complete application configuration
type Config struct {
	Service  ServiceConfig     `mapstructure:"service"`
	Defaults DefaultsConfig    `mapstructure:"defaults"`
	Telegram TelegramConfig    `mapstructure:"telegram"`
	Export   ExportConfig      `mapstructure:"export"`
	Logging  LoggingConfig     `mapstructure:"logging"`
	Content  content.Overrides `mapstructure:"content"`
}

// ServiceConfig holds the scoring-service connection settings. A zero
// timeout leaves requests unbounded.
type ServiceConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// DefaultsConfig holds the parameter values the views start from.
type DefaultsConfig struct {
	DailyBudgetPula float64 `mapstructure:"daily_budget_pula"`
	BankrollPula    float64 `mapstructure:"bankroll_pula"`
	Risk            float64 `mapstructure:"risk"`
	Preset          string  `mapstructure:"preset"`
}

// TelegramConfig holds the Telegram bot settings
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// ExportConfig holds CSV export settings
type ExportConfig struct {
	Directory string `mapstructure:"directory"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables. An
// empty path searches ./configs and the working directory and falls
// back to defaults when no file exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, relying on actual environment variables")
	}

	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("PLANDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Service defaults
	v.SetDefault("service.base_url", "http://localhost:8000")
	v.SetDefault("service.timeout", "0s") // 0 = no timeout
	v.SetDefault("service.requests_per_second", 4.0)

	// Parameter defaults shown on first render
	v.SetDefault("defaults.daily_budget_pula", 500.0)
	v.SetDefault("defaults.bankroll_pula", 10000.0)
	v.SetDefault("defaults.risk", 0.5)
	v.SetDefault("defaults.preset", "Global")

	// Telegram defaults
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	// Export defaults
	v.SetDefault("export.directory", "./exports")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate Service config
	if c.Service.BaseURL == "" {
		return fmt.Errorf("service.base_url is required")
	}
	if c.Service.Timeout < 0 {
		return fmt.Errorf("service.timeout must not be negative")
	}
	if c.Service.RequestsPerSecond <= 0 {
		return fmt.Errorf("service.requests_per_second must be positive")
	}

	// Validate parameter defaults
	if c.Defaults.DailyBudgetPula < models.MinDailyBudgetPula {
		return fmt.Errorf("defaults.daily_budget_pula must be at least %d", models.MinDailyBudgetPula)
	}
	if c.Defaults.BankrollPula < models.MinBankrollPula {
		return fmt.Errorf("defaults.bankroll_pula must be at least %d", models.MinBankrollPula)
	}
	if c.Defaults.Risk < 0.0 || c.Defaults.Risk > 1.0 {
		return fmt.Errorf("defaults.risk must be between 0.0 and 1.0")
	}
	if err := models.Preset(c.Defaults.Preset).Validate(); err != nil {
		return fmt.Errorf("defaults.preset: %w", err)
	}

	// Validate Telegram config
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
		if c.Telegram.MaxRetries < 0 {
			return fmt.Errorf("telegram.max_retries must not be negative")
		}
		if c.Telegram.RetryDelayBase < 0 {
			return fmt.Errorf("telegram.retry_delay_base must not be negative")
		}
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	// Validate content overrides
	for _, g := range c.Content.TipGroups {
		if g.Category == "" {
			return fmt.Errorf("content.tip_groups entries require a category")
		}
		if len(g.Tips) == 0 {
			return fmt.Errorf("content.tip_groups %q requires at least one tip", g.Category)
		}
	}
	for _, b := range c.Content.Brokers {
		if b.Name == "" || b.URL == "" {
			return fmt.Errorf("content.brokers entries require a name and url")
		}
	}

	return nil
}

// GetServiceConfig returns the scoring-service configuration
func (c *Config) GetServiceConfig() ServiceConfig {
	return c.Service
}

// GetDefaultsConfig returns the parameter defaults
func (c *Config) GetDefaultsConfig() DefaultsConfig {
	return c.Defaults
}

// GetTelegramConfig returns the Telegram configuration
func (c *Config) GetTelegramConfig() TelegramConfig {
	return c.Telegram
}

// GetExportConfig returns the export configuration
func (c *Config) GetExportConfig() ExportConfig {
	return c.Export
}

// GetLoggingConfig returns the Logging configuration
func (c *Config) GetLoggingConfig() LoggingConfig {
	return c.Logging
}

// GetContentOverrides returns the content table overrides
func (c *Config) GetContentOverrides() content.Overrides {
	return c.Content
}
