// ABOUTME: Shared fakes for bot package tests
// ABOUTME: In-memory Client and AdminAPI implementations with call recording

package bot

import (
	"context"
	"sync"

	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/2389/coven-bot/internal/admin"
)

type sentMessage struct {
	roomID    id.RoomID
	body      string
	formatted string
}

// fakeClient records sends and joins. Join behavior: errors are popped from
// joinErrs first; once the queue is empty, joinErr (if set) is returned for
// every call, otherwise joins succeed.
type fakeClient struct {
	mu       sync.Mutex
	joinErrs []error
	joinErr  error
	joins    []id.RoomID
	sent     []sentMessage
	sendErr  error

	// joinBlock, when non-nil, makes JoinRoom wait until the channel is
	// closed before doing anything.
	joinBlock chan struct{}
}

func (f *fakeClient) JoinRoom(ctx context.Context, roomID id.RoomID) error {
	if f.joinBlock != nil {
		<-f.joinBlock
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joins = append(f.joins, roomID)
	if len(f.joinErrs) > 0 {
		err := f.joinErrs[0]
		f.joinErrs = f.joinErrs[1:]
		return err
	}
	return f.joinErr
}

func (f *fakeClient) SendText(ctx context.Context, roomID id.RoomID, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMessage{roomID: roomID, body: body})
	return nil
}

func (f *fakeClient) SendHTML(ctx context.Context, roomID id.RoomID, body, formattedBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMessage{roomID: roomID, body: body, formatted: formattedBody})
	return nil
}

func (f *fakeClient) sentMessages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func (f *fakeClient) joinedRooms() []id.RoomID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]id.RoomID(nil), f.joins...)
}

// fakeAdmin answers admin-status and user-list queries from fixed data.
type fakeAdmin struct {
	mu       sync.Mutex
	admins   map[id.UserID]bool
	adminErr error
	users    []admin.User
	usersErr error
	queries  []id.UserID
}

func (f *fakeAdmin) IsUserAdmin(ctx context.Context, userID id.UserID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, userID)
	if f.adminErr != nil {
		return false, f.adminErr
	}
	return f.admins[userID], nil
}

func (f *fakeAdmin) ListUsers(ctx context.Context) ([]admin.User, error) {
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	return f.users, nil
}

func (f *fakeAdmin) queriedUsers() []id.UserID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]id.UserID(nil), f.queries...)
}

func memberEvent(roomID id.RoomID, stateKey string, membership event.Membership) *event.Event {
	sk := stateKey
	return &event.Event{
		Type:     event.StateMember,
		RoomID:   roomID,
		StateKey: &sk,
		Content: event.Content{
			Parsed: &event.MemberEventContent{Membership: membership},
		},
	}
}

func messageEvent(roomID id.RoomID, sender id.UserID, msgType event.MessageType, body string) *event.Event {
	return &event.Event{
		Type:   event.EventMessage,
		RoomID: roomID,
		Sender: sender,
		Content: event.Content{
			Parsed: &event.MessageEventContent{MsgType: msgType, Body: body},
		},
	}
}
