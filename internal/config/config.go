package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"shiftscan/internal/domain"
)

const defaultExternalHTTPTimeout = 90 * time.Second
const defaultExternalHTTPTimeoutSeconds = int(defaultExternalHTTPTimeout / time.Second)
const defaultMaxImageBytes = 10 << 20

type Config struct {
	RecognizerProvider string `yaml:"recognizer_provider"`
	RecognizerModel    string `yaml:"recognizer_model"`
	GeminiAPIKey       string `yaml:"gemini_api_key"`
	AnthropicAPIKey    string `yaml:"anthropic_api_key"`
	OpenAIAPIKey       string `yaml:"openai_api_key"`
	OpenAIBaseURL      string `yaml:"openai_base_url"`

	DefaultTargetName string  `yaml:"default_target_name"`
	DefaultHourlyWage float64 `yaml:"default_hourly_wage"`
	DefaultYearMonth  string  `yaml:"default_year_month"`
	CurrencySymbol    string  `yaml:"currency_symbol"`
	Locale            string  `yaml:"locale"`
	Timezone          string  `yaml:"timezone"`

	DBPath                     string `yaml:"db_path"`
	ExternalHTTPTimeoutSeconds int    `yaml:"external_http_timeout_seconds"`
	MaxImageBytes              int64  `yaml:"max_image_bytes"`

	SlackBotToken     string `yaml:"slack_bot_token"`
	SlackAppToken     string `yaml:"slack_app_token"`
	ReminderSchedule  string `yaml:"reminder_schedule"`
	ReminderChannelID string `yaml:"reminder_channel_id"`

	MetricsAddress string `yaml:"metrics_address"`
	LogLevel       string `yaml:"log_level"`
	LogJSON        bool   `yaml:"log_json"`

	Location *time.Location `yaml:"-"` // computed from Timezone, not from YAML
}

// LoadConfig reads the YAML file at CONFIG_PATH (default config.yaml), applies
// environment overrides and defaults, and validates the result.
func LoadConfig() (Config, error) {
	var cfg Config

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", configPath, err)
		}
	}

	envOverride(&cfg.RecognizerProvider, "RECOGNIZER_PROVIDER")
	envOverride(&cfg.RecognizerModel, "RECOGNIZER_MODEL")
	envOverride(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverride(&cfg.OpenAIBaseURL, "OPENAI_BASE_URL")
	envOverride(&cfg.DefaultTargetName, "DEFAULT_TARGET_NAME")
	envOverride(&cfg.DefaultYearMonth, "DEFAULT_YEAR_MONTH")
	envOverride(&cfg.CurrencySymbol, "CURRENCY_SYMBOL")
	envOverride(&cfg.Locale, "LOCALE")
	envOverride(&cfg.Timezone, "TIMEZONE")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackAppToken, "SLACK_APP_TOKEN")
	envOverride(&cfg.ReminderSchedule, "REMINDER_SCHEDULE")
	envOverride(&cfg.ReminderChannelID, "REMINDER_CHANNEL_ID")
	envOverride(&cfg.MetricsAddress, "METRICS_ADDRESS")
	envOverride(&cfg.LogLevel, "LOG_LEVEL")
	envOverrideBool(&cfg.LogJSON, "LOG_JSON")
	if err := envOverrideFloat(&cfg.DefaultHourlyWage, "DEFAULT_HOURLY_WAGE"); err != nil {
		return Config{}, err
	}
	if err := envOverrideInt(&cfg.ExternalHTTPTimeoutSeconds, "EXTERNAL_HTTP_TIMEOUT_SECONDS"); err != nil {
		return Config{}, err
	}
	if err := envOverrideInt64(&cfg.MaxImageBytes, "MAX_IMAGE_BYTES"); err != nil {
		return Config{}, err
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.RecognizerProvider = strings.ToLower(strings.TrimSpace(c.RecognizerProvider))
	if c.RecognizerProvider == "" {
		c.RecognizerProvider = "gemini"
	}
	if c.OpenAIBaseURL == "" {
		c.OpenAIBaseURL = "https://api.openai.com/v1"
	}
	if c.DefaultHourlyWage == 0 {
		c.DefaultHourlyWage = 1200
	}
	if c.CurrencySymbol == "" {
		c.CurrencySymbol = "¥"
	}
	if c.Locale == "" {
		c.Locale = "ja"
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.DBPath == "" {
		c.DBPath = "./shiftscan.db"
	}
	if c.ExternalHTTPTimeoutSeconds == 0 {
		c.ExternalHTTPTimeoutSeconds = defaultExternalHTTPTimeoutSeconds
	}
	if c.MaxImageBytes == 0 {
		c.MaxImageBytes = defaultMaxImageBytes
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) validate() error {
	switch c.RecognizerProvider {
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("gemini_api_key is required when recognizer_provider=gemini")
		}
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("anthropic_api_key is required when recognizer_provider=anthropic")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("openai_api_key is required when recognizer_provider=openai")
		}
	default:
		return fmt.Errorf("recognizer_provider must be 'gemini', 'anthropic' or 'openai', got '%s'", c.RecognizerProvider)
	}

	if strings.EqualFold(c.Timezone, "Local") {
		c.Location = time.Local
	} else {
		loc, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone '%s': %w", c.Timezone, err)
		}
		c.Location = loc
	}
	if c.DefaultYearMonth == "" {
		c.DefaultYearMonth = time.Now().In(c.Location).Format("2006-01")
	}
	if !domain.ValidYearMonth(c.DefaultYearMonth) {
		return fmt.Errorf("invalid default_year_month '%s': must look like 2026-01", c.DefaultYearMonth)
	}
	if c.DefaultHourlyWage < 0 || math.IsNaN(c.DefaultHourlyWage) || math.IsInf(c.DefaultHourlyWage, 0) {
		return fmt.Errorf("invalid default_hourly_wage '%v': must be >= 0", c.DefaultHourlyWage)
	}
	if c.ExternalHTTPTimeoutSeconds < 5 {
		return fmt.Errorf("invalid external_http_timeout_seconds '%d': must be >= 5", c.ExternalHTTPTimeoutSeconds)
	}
	if c.MaxImageBytes < 1024 {
		return fmt.Errorf("invalid max_image_bytes '%d': must be >= 1024", c.MaxImageBytes)
	}
	if (c.ReminderSchedule == "") != (c.ReminderChannelID == "") {
		return fmt.Errorf("reminder_schedule and reminder_channel_id must be set together")
	}
	return nil
}

// ValidateForBot checks the settings only the Slack bot needs.
func (c Config) ValidateForBot() error {
	required := map[string]string{
		"slack_bot_token": c.SlackBotToken,
		"slack_app_token": c.SlackAppToken,
	}
	for _, name := range []string{"slack_bot_token", "slack_app_token"} {
		if required[name] == "" {
			return fmt.Errorf("required config '%s' is not set (via config.yaml or env var)", name)
		}
	}
	return nil
}

// DefaultSettings returns the analysis settings used when a user has not saved their own.
func (c Config) DefaultSettings() domain.AnalysisSettings {
	return domain.AnalysisSettings{
		TargetName: c.DefaultTargetName,
		HourlyWage: c.DefaultHourlyWage,
		YearMonth:  c.DefaultYearMonth,
	}
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}

func envOverrideInt64(field *int64, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}

func envOverrideBool(field *bool, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = strings.EqualFold(val, "true") || val == "1"
	}
}

func envOverrideFloat(field *float64, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}
