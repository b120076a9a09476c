// Package bot contains the event-driven core of coven-bot.
//
// # Components
//
//   - Bot: startup sequencing (restore-or-login, one bootstrap sync,
//     handler registration) and the continuous sync loop.
//   - Router: dispatches sync events, either to the auto-joiner
//     (membership changes) or through the admin gate to the command
//     registry (messages).
//   - AutoJoiner: accepts room invitations with exponential backoff,
//     one goroutine per invited room.
//   - Registry: fixed keyword → handler map for the chat commands;
//     unknown keywords get the help text.
//
// # Event flow
//
//	sync loop → Router ─┬─ m.room.member invite → AutoJoiner → JoinRoom
//	                    └─ m.room.message "!cmd" → admin gate → Registry
//
// The Matrix transport is consumed through the narrow Client interface and
// the admin API through AdminAPI, so the whole package is testable against
// fakes.
//
// # Authorization
//
// Every command invocation re-queries the Synapse admin API for the
// sender's admin status; there is no cache and no bypass path. Verified
// non-admins get an explicit refusal reply. A failed admin query drops the
// message with only a log entry.
package bot
