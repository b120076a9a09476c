// Package session persists the bot's Matrix login credentials so restarts
// resume the existing session instead of logging in again.
//
// The session lives in a single pretty-printed JSON file at
// <store.location>/session.json. When a store passphrase is configured the
// file is an age scrypt envelope of the same JSON. The file is written once
// after a successful login and never deleted by the bot; a stale session is
// removed by the operator.
package session
