// Package admin is a thin client for the Synapse admin API.
//
// It covers exactly the two endpoints the bot needs: checking whether a user
// is a server admin, and listing all users on the server. Requests go through
// the bot's authenticated mautrix client, so the bot account itself must be a
// Synapse admin for these calls to succeed.
package admin
