// Package config loads application configuration for the flatvoice server.
// Configuration comes from an optional YAML file plus environment variables;
// a .env file in the working directory is loaded first, so local development
// needs no exported shell variables. Environment values override the file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Completion CompletionConfig `yaml:"completion"`
	Speech     SpeechConfig     `yaml:"speech"`
	Transcribe TranscribeConfig `yaml:"transcribe"`
	Delivery   DeliveryConfig   `yaml:"delivery"`
	Session    SessionConfig    `yaml:"session"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// CatalogConfig points at the listing catalog. An empty path selects the
// built-in seed catalog.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// CompletionConfig configures the language-model completion service.
type CompletionConfig struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	MaxTokens int    `yaml:"max_tokens"`
	Streaming bool   `yaml:"streaming"`
}

// SpeechConfig configures the speech-synthesis service.
type SpeechConfig struct {
	APIKey       string `yaml:"api_key"`
	VoiceID      string `yaml:"voice_id"`
	ModelID      string `yaml:"model_id"`
	BaseURL      string `yaml:"base_url"`
	PhraseBudget int    `yaml:"phrase_budget"` // max characters per synthesized phrase
}

// TranscribeConfig configures the transcription service.
type TranscribeConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// DeliveryConfig configures presentation delivery.
type DeliveryConfig struct {
	TwilioAccountSID string `yaml:"twilio_account_sid"`
	TwilioAuthToken  string `yaml:"twilio_auth_token"`
	TwilioFrom       string `yaml:"twilio_from"`
	LandingBaseURL   string `yaml:"landing_base_url"`
}

// SessionConfig configures session lifecycle behavior.
type SessionConfig struct {
	ResetDelay  time.Duration `yaml:"reset_delay"`  // ended -> idle auto-reset
	IdleTimeout time.Duration `yaml:"idle_timeout"` // 0 disables the idle sweep
}

// Load reads configuration from the optional YAML file at path (ignored when
// empty or missing), then applies environment overrides and defaults.
func Load(path string) (*Config, error) {
	// Best-effort: a missing .env file is not an error.
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Host, "SERVER_HOST")
	setInt(&cfg.Server.Port, "PORT")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Catalog.Path, "CATALOG_PATH")

	setString(&cfg.Completion.APIKey, "OPENAI_API_KEY")
	setString(&cfg.Completion.Model, "OPENAI_MODEL")
	setString(&cfg.Completion.BaseURL, "OPENAI_BASE_URL")

	setString(&cfg.Speech.APIKey, "ELEVENLABS_API_KEY")
	setString(&cfg.Speech.VoiceID, "ELEVENLABS_VOICE_ID")
	setString(&cfg.Speech.ModelID, "ELEVENLABS_MODEL_ID")
	setString(&cfg.Speech.BaseURL, "ELEVENLABS_BASE_URL")

	setString(&cfg.Transcribe.APIKey, "WHISPER_API_KEY")
	setString(&cfg.Transcribe.Model, "WHISPER_MODEL")
	setString(&cfg.Transcribe.BaseURL, "WHISPER_BASE_URL")

	setString(&cfg.Delivery.TwilioAccountSID, "TWILIO_ACCOUNT_SID")
	setString(&cfg.Delivery.TwilioAuthToken, "TWILIO_AUTH_TOKEN")
	setString(&cfg.Delivery.TwilioFrom, "TWILIO_FROM")
	setString(&cfg.Delivery.LandingBaseURL, "LANDING_BASE_URL")
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Completion.Model == "" {
		cfg.Completion.Model = "gpt-4o-mini"
	}
	if cfg.Completion.MaxTokens == 0 {
		cfg.Completion.MaxTokens = 512
	}
	if cfg.Speech.ModelID == "" {
		cfg.Speech.ModelID = "eleven_flash_v2_5"
	}
	if cfg.Speech.PhraseBudget == 0 {
		cfg.Speech.PhraseBudget = 180
	}
	if cfg.Transcribe.Model == "" {
		cfg.Transcribe.Model = "whisper-1"
	}
	if cfg.Delivery.LandingBaseURL == "" {
		cfg.Delivery.LandingBaseURL = "https://flatvoice.ru"
	}
	if cfg.Session.ResetDelay == 0 {
		cfg.Session.ResetDelay = 2 * time.Second
	}
}

// Validate checks configuration consistency. Provider keys are allowed to be
// empty: the server falls back to no-op providers for local development.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Session.ResetDelay < 0 {
		return fmt.Errorf("session reset delay must not be negative")
	}
	if c.Session.IdleTimeout < 0 {
		return fmt.Errorf("session idle timeout must not be negative")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
