// ABOUTME: Event router dispatching sync events to auto-join and command handling
// ABOUTME: Gates every command on a live Synapse admin-status query of the sender

package bot

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"
)

const refusalMessage = "Only server admins are allowed to interact with me"

// Router receives events from the sync loop and dispatches them. Membership
// changes go to the auto-joiner; command messages go through the admin gate
// and then the command registry. Handler failures are logged, never
// propagated, so a failing event can't take down the sync loop.
type Router struct {
	client   Client
	admin    AdminAPI
	commands *Registry
	autojoin *AutoJoiner
	userID   id.UserID
	prefix   string
	log      zerolog.Logger

	// wg tracks in-flight command goroutines for tests.
	wg sync.WaitGroup
}

// NewRouter creates a router for the bot running as userID.
func NewRouter(client Client, adminAPI AdminAPI, autojoin *AutoJoiner, userID id.UserID, prefix string, log zerolog.Logger) *Router {
	return &Router{
		client:   client,
		admin:    adminAPI,
		commands: NewRegistry(client, adminAPI, prefix),
		autojoin: autojoin,
		userID:   userID,
		prefix:   prefix,
		log:      log,
	}
}

// OnMemberEvent handles m.room.member state events. Only invites targeting
// the bot itself start a join sequence; everything else is a no-op.
func (r *Router) OnMemberEvent(ctx context.Context, evt *event.Event) {
	if evt.GetStateKey() != r.userID.String() {
		return
	}
	content := evt.Content.AsMember()
	if content == nil || content.Membership != event.MembershipInvite {
		return
	}
	r.autojoin.HandleInvite(ctx, evt.RoomID)
}

// OnMessageEvent handles m.room.message events. Plain-text messages starting
// with the command prefix are dispatched asynchronously; everything else is
// ignored. The sync transport only delivers message events for joined rooms.
func (r *Router) OnMessageEvent(ctx context.Context, evt *event.Event) {
	if evt.Sender == r.userID {
		return
	}
	content, ok := evt.Content.Parsed.(*event.MessageEventContent)
	if !ok || content.MsgType != event.MsgText {
		return
	}
	body, ok := strings.CutPrefix(content.Body, r.prefix)
	if !ok {
		return
	}

	// Dispatch in a goroutine so remote admin-API and send calls never
	// block delivery of subsequent sync events.
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.runCommand(ctx, evt.RoomID, evt.Sender, strings.TrimSpace(body))
	}()
}

// runCommand applies the admin gate and dispatches to the registry.
func (r *Router) runCommand(ctx context.Context, roomID id.RoomID, sender id.UserID, input string) {
	isAdmin, err := r.admin.IsUserAdmin(ctx, sender)
	if err != nil {
		// Fail closed for this message only: no reply, just a log entry.
		r.log.Error().Err(err).Stringer("sender", sender).
			Msg("admin check failed, dropping message")
		return
	}
	if !isAdmin {
		r.log.Info().Stringer("sender", sender).Msg("refusing command from non-admin user")
		if err := r.client.SendText(ctx, roomID, refusalMessage); err != nil {
			r.log.Error().Err(err).Stringer("room_id", roomID).Msg("failed to send refusal")
		}
		return
	}

	r.log.Info().Stringer("sender", sender).Str("command", input).Msg("received command")
	if err := r.commands.Dispatch(ctx, input, roomID); err != nil {
		r.log.Error().Err(err).Str("command", input).Stringer("room_id", roomID).
			Msg("command failed")
	}
}
