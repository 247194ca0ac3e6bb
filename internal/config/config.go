// Package config loads the journal service configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const maxConfigFileSize = 1024 * 1024

// Defaults.
const (
	DefaultAddr              = ":8080"
	DefaultWebDir            = "web"
	DefaultOpenAIModel       = "gpt-3.5-turbo"
	DefaultGenerationTimeout = 30 * time.Second
	DefaultGenerationRate    = 0.5
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "json"
)

// Config is the complete service configuration.
type Config struct {
	Addr   string `koanf:"addr"`
	WebDir string `koanf:"web_dir"`

	// DatabaseURL selects PostgreSQL; empty uses the in-memory store.
	DatabaseURL string `koanf:"database_url"`

	// OpenAIAPIKey enables weekly summaries when set.
	OpenAIAPIKey      string        `koanf:"openai_api_key"`
	OpenAIModel       string        `koanf:"openai_model"`
	OpenAIBaseURL     string        `koanf:"openai_base_url"`
	GenerationTimeout time.Duration `koanf:"generation_timeout"`
	GenerationRate    float64       `koanf:"generation_rate"`

	// DevMode disables the weekly summary cooldown.
	DevMode     bool `koanf:"dev_mode"`
	DisableAuth bool `koanf:"disable_auth"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	OIDCIssuer       string `koanf:"oidc_issuer"`
	OIDCClientID     string `koanf:"oidc_client_id"`
	OIDCClientSecret string `koanf:"oidc_client_secret"`
	OIDCRedirectURL  string `koanf:"oidc_redirect_url"`
}

// EnvPrefix namespaces the environment variables Load reads.
const EnvPrefix = "JOURNAL_"

// Load reads the optional YAML file at path, then overrides it with
// environment variables (JOURNAL_DATABASE_URL -> database_url), then fills
// defaults. Variables without the prefix are ignored.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

func applyDefaults(c *Config) {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.WebDir == "" {
		c.WebDir = DefaultWebDir
	}
	if c.OpenAIModel == "" {
		c.OpenAIModel = DefaultOpenAIModel
	}
	if c.GenerationTimeout == 0 {
		c.GenerationTimeout = DefaultGenerationTimeout
	}
	if c.GenerationRate == 0 {
		c.GenerationRate = DefaultGenerationRate
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q (want debug, info, warn or error)", c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format %q (want json or console)", c.LogFormat)
	}
	if c.GenerationTimeout < 0 {
		return errors.New("generation timeout must be positive")
	}
	if c.GenerationRate < 0 {
		return errors.New("generation rate must be positive")
	}
	if c.OIDCIssuer != "" && (c.OIDCClientID == "" || c.OIDCRedirectURL == "") {
		return errors.New("oidc issuer requires a client id and redirect url")
	}
	return nil
}

// GenerationEnabled reports whether weekly summaries can be generated.
func (c *Config) GenerationEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// OIDCEnabled reports whether single sign-on is configured.
func (c *Config) OIDCEnabled() bool {
	return c.OIDCIssuer != ""
}
