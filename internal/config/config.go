// ABOUTME: Configuration loading and validation for coven-bot
// ABOUTME: Loads TOML config from XDG path with environment variable expansion

package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultCommandPrefix marks messages as bot commands when the config
// leaves bot.command_prefix unset.
const DefaultCommandPrefix = "!"

// Environment variables recognized by the bot.
const (
	// EnvConfig overrides the config file path.
	EnvConfig = "COVEN_BOT_CONFIG"
	// EnvPassword supplies the login password when the config leaves
	// matrix.password empty. Only consulted when no session file exists.
	EnvPassword = "COVEN_BOT_PASSWORD"
	// EnvLogLevel overrides logging.level from the config.
	EnvLogLevel = "COVEN_BOT_LOGLEVEL"
)

type Config struct {
	Matrix  MatrixConfig  `toml:"matrix"`
	Store   StoreConfig   `toml:"store"`
	Bot     BotConfig     `toml:"bot"`
	Logging LoggingConfig `toml:"logging"`
}

type MatrixConfig struct {
	Homeserver string `toml:"homeserver"`
	UserID     string `toml:"user_id"`
	// Password is only consulted for the initial login; once a session
	// file exists it is never read again.
	Password string `toml:"password"`
}

type StoreConfig struct {
	Location   string `toml:"location"`
	Passphrase string `toml:"passphrase"`
}

type BotConfig struct {
	CommandPrefix string `toml:"command_prefix"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

// Load reads config from the given path, expanding environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables (${VAR} syntax)
	expanded := expandEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR} with environment variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(varName)
	})
}

func (c *Config) applyDefaults() {
	if c.Bot.CommandPrefix == "" {
		c.Bot.CommandPrefix = DefaultCommandPrefix
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks that required config fields are present and valid.
func (c *Config) Validate() error {
	if c.Matrix.Homeserver == "" {
		return fmt.Errorf("matrix.homeserver is required")
	}
	u, err := url.Parse(c.Matrix.Homeserver)
	if err != nil {
		return fmt.Errorf("matrix.homeserver is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("matrix.homeserver must use http or https scheme")
	}
	if c.Matrix.UserID == "" {
		return fmt.Errorf("matrix.user_id is required")
	}
	if !strings.HasPrefix(c.Matrix.UserID, "@") || !strings.Contains(c.Matrix.UserID, ":") {
		return fmt.Errorf("matrix.user_id must be a full Matrix ID (@localpart:server)")
	}
	if c.Store.Location == "" {
		return fmt.Errorf("store.location is required")
	}
	return nil
}
