// Package config handles configuration loading for coven-bot.
//
// # Overview
//
// Configuration is loaded from a TOML file with environment variable
// expansion and validated before the bot starts.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from COVEN_BOT_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/coven/bot.toml
//  3. ~/.config/coven/bot.toml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	[matrix]
//	password = "${COVEN_BOT_PASSWORD}"
//
// Syntax: ${VAR_NAME}
//
// # Configuration Sections
//
// Matrix connection:
//
//	[matrix]
//	homeserver = "https://synapse.example.org"
//	user_id    = "@bot:example.org"
//	password   = "${COVEN_BOT_PASSWORD}"  # initial login only
//
// Session store:
//
//	[store]
//	location   = "/var/lib/coven-bot"
//	passphrase = ""  # optional, encrypts session.json at rest
//
// Bot behavior:
//
//	[bot]
//	command_prefix = "!"
//
// Logging:
//
//	[logging]
//	level = "info"  # trace, debug, info, warn, error
package config
