// Package config loads the emojichat configuration.
//
// Configuration is a YAML file (see DefaultPath) layered under environment
// overrides. A .env file in the working directory is honored via LoadDotEnv.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"emojichat/internal/logging"
)

// Config holds all emojichat configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Chat    ChatConfig    `yaml:"chat"`
	UI      UIConfig      `yaml:"ui"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig locates the emoji backend.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"` // transport timeout, Go duration; "0" disables
}

// ChatConfig configures the chat defaults.
type ChatConfig struct {
	Moderation       bool `yaml:"moderation"`         // initial state of the moderation toggle
	MaxMessageLength int  `yaml:"max_message_length"` // input field limit
}

// UIConfig configures the terminal interface.
type UIConfig struct {
	Theme string `yaml:"theme"` // auto, light, dark
}

// LoggingConfig configures file logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`  // debug, info, warn, error
	Format     string          `yaml:"format"` // json, text
	Categories map[string]bool `yaml:"categories,omitempty"`
}

// ValidThemes lists the accepted ui.theme values.
var ValidThemes = []string{"auto", "light", "dark"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: "30s",
		},
		Chat: ChatConfig{
			Moderation:       true,
			MaxMessageLength: 1000,
		},
		UI: UIConfig{
			Theme: "auto",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".emojichat", "config.yaml")
	}
	return filepath.Join(dir, "emojichat", "config.yaml")
}

// Dir returns the directory holding the config file at path; logs live
// beneath it.
func Dir(path string) string {
	return filepath.Dir(path)
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are ignored. Variables already set are not overwritten.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
		logging.Config("loaded environment from %s", p)
	}
	return nil
}

// Load loads configuration from a YAML file and applies environment
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// envOverrides are the supported environment variables. Pointer fields stay
// nil when the variable is unset or empty.
type envOverrides struct {
	APIURL     string `env:"EMOJICHAT_API_URL"`
	Timeout    string `env:"EMOJICHAT_TIMEOUT"`
	Moderation *bool  `env:"EMOJICHAT_MODERATION"`
	Theme      string `env:"EMOJICHAT_THEME"`
	Debug      *bool  `env:"EMOJICHAT_DEBUG"`
	LogLevel   string `env:"EMOJICHAT_LOG_LEVEL"`
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}

	if o.APIURL != "" {
		c.API.BaseURL = o.APIURL
	}
	if o.Timeout != "" {
		c.API.Timeout = o.Timeout
	}
	if o.Theme != "" {
		c.UI.Theme = o.Theme
	}
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	if o.Moderation != nil {
		c.Chat.Moderation = *o.Moderation
	}
	if o.Debug != nil {
		c.Logging.DebugMode = *o.Debug
	}
	return nil
}

// GetAPITimeout returns the API timeout as a duration.
func (c *Config) GetAPITimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d < 0 {
		return 30 * time.Second
	}
	return d
}

// LoggingOptions converts the logging section for logging.Initialize.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{
		DebugMode:  c.Logging.DebugMode,
		Level:      c.Logging.Level,
		JSONFormat: c.Logging.Format == "json",
		Categories: c.Logging.Categories,
	}
}

// Validate reports every problem in the configuration.
func (c *Config) Validate() error {
	var result *multierror.Error

	u, err := url.Parse(c.API.BaseURL)
	switch {
	case c.API.BaseURL == "":
		result = multierror.Append(result, errors.New("api.base_url is required"))
	case err != nil:
		result = multierror.Append(result, fmt.Errorf("api.base_url: %w", err))
	case u.Scheme != "http" && u.Scheme != "https", u.Host == "":
		result = multierror.Append(result, fmt.Errorf("api.base_url must be an absolute http(s) URL, got %q", c.API.BaseURL))
	}

	if d, err := time.ParseDuration(c.API.Timeout); err != nil {
		result = multierror.Append(result, fmt.Errorf("api.timeout: %w", err))
	} else if d < 0 {
		result = multierror.Append(result, fmt.Errorf("api.timeout must not be negative"))
	}

	if c.Chat.MaxMessageLength <= 0 {
		result = multierror.Append(result, fmt.Errorf("chat.max_message_length must be positive, got %d", c.Chat.MaxMessageLength))
	}

	if !slices.Contains(ValidThemes, c.UI.Theme) {
		result = multierror.Append(result, fmt.Errorf("invalid ui.theme: %s (valid: %v)", c.UI.Theme, ValidThemes))
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		result = multierror.Append(result, fmt.Errorf("invalid logging.level: %s", c.Logging.Level))
	}

	return result.ErrorOrNil()
}
