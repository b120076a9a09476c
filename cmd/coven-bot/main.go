// ABOUTME: Entry point for coven-bot
// ABOUTME: Matrix chatroom bot answering admin-gated commands via the Synapse admin API

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/2389/coven-bot/internal/bot"
	"github.com/2389/coven-bot/internal/config"
)

const banner = `
    ╭──────────────────────────────────╮
    │                                  │
    │   ┏━╸┏━┓╻ ╻┏━╸┏┓╻   ┏┓ ┏━┓╺┳╸    │
    │   ┃  ┃ ┃┃┏┛┣╸ ┃┗┫   ┣┻┓┃ ┃ ┃     │
    │   ┗━╸┗━┛┗┛ ┗━╸╹ ╹   ┗━┛┗━┛ ╹     │
    │                                  │
    │            coven-bot             │
    │                                  │
    ╰──────────────────────────────────╯
`

// getConfigPath returns the path to the bot config file.
// Priority: COVEN_BOT_CONFIG env var > XDG_CONFIG_HOME/coven/bot.toml > ~/.config/coven/bot.toml
func getConfigPath() string {
	if envPath := os.Getenv(config.EnvConfig); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "bot.toml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "coven", "bot.toml")
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	configPath := getConfigPath()

	// Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config from %s: %w", configPath, err)
	}

	// Setup logger, env override wins over the config
	level := cfg.Logging.Level
	if envLevel := os.Getenv(config.EnvLogLevel); envLevel != "" {
		level = envLevel
	}
	logger := setupLogger(level)

	// Print startup info
	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:     %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Homeserver: %s\n", cfg.Matrix.Homeserver)
	green.Print("    ▶ ")
	fmt.Printf("User:       %s\n", cfg.Matrix.UserID)
	green.Print("    ▶ ")
	fmt.Printf("Store:      %s\n", cfg.Store.Location)
	if cfg.Store.Passphrase != "" {
		green.Print("    ▶ ")
		fmt.Println("Encryption: enabled")
	}
	fmt.Println()

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Create and run the bot
	b, err := bot.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating bot: %w", err)
	}

	logger.Info().Msg("starting bot")
	return b.Run(ctx)
}

func setupLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	return zerolog.New(writer).With().Timestamp().Logger().Level(lvl)
}
