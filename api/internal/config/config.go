package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Provider string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	GeminiAPIKey  string
	GeminiModel   string

	ImagesDir  string
	OutputPath string

	LogLevel  string
	LogFormat string

	// optional sinks; empty disables them
	DatabaseURL      string
	TelegramBotToken string
	TelegramChatID   int64
}

func defaults(v *viper.Viper) {
	v.SetDefault("LLM_PROVIDER", "openai")
	v.SetDefault("OPENAI_MODEL", "gpt-4o")
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("IMAGES_DIR", "images")
	v.SetDefault("OUTPUT_PATH", "carinfo.json")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("ENV_FILE", ".env")
}

// Load reads defaults, then the optional .env file named by ENV_FILE, then
// the process environment, which wins over the file.
func Load() (*Config, error) {
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	if path := strings.TrimSpace(v.GetString("ENV_FILE")); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	cfg := &Config{
		Provider:         strings.ToLower(strings.TrimSpace(v.GetString("LLM_PROVIDER"))),
		OpenAIAPIKey:     strings.TrimSpace(v.GetString("OPENAI_API_KEY")),
		OpenAIModel:      v.GetString("OPENAI_MODEL"),
		OpenAIBaseURL:    v.GetString("OPENAI_BASE_URL"),
		GeminiAPIKey:     strings.TrimSpace(v.GetString("GEMINI_API_KEY")),
		GeminiModel:      v.GetString("GEMINI_MODEL"),
		ImagesDir:        v.GetString("IMAGES_DIR"),
		OutputPath:       v.GetString("OUTPUT_PATH"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		LogFormat:        v.GetString("LOG_FORMAT"),
		DatabaseURL:      strings.TrimSpace(v.GetString("DATABASE_URL")),
		TelegramBotToken: strings.TrimSpace(v.GetString("TELEGRAM_BOT_TOKEN")),
	}

	if s := strings.TrimSpace(v.GetString("TELEGRAM_CHAT_ID")); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Provider {
	case "openai", "gpt":
		if c.OpenAIAPIKey == "" {
			return errors.New("missing required env OPENAI_API_KEY")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return errors.New("missing required env GEMINI_API_KEY")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q; use 'openai' or 'gemini'", c.Provider)
	}
	if strings.TrimSpace(c.ImagesDir) == "" {
		return errors.New("IMAGES_DIR is empty")
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return errors.New("OUTPUT_PATH is empty")
	}
	return nil
}

// NotifyEnabled reports whether both Telegram settings are present.
func (c *Config) NotifyEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

func isNotExist(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, fs.ErrNotExist)
}
