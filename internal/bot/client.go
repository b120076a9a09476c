// ABOUTME: Narrow Matrix client interface used by the bot's event handlers
// ABOUTME: Includes the mautrix-backed implementation used in production

package bot

import (
	"context"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/2389/coven-bot/internal/admin"
)

// Client is the slice of the Matrix client surface the event handlers need.
// Keeping it narrow lets tests substitute a fake transport.
type Client interface {
	// SendText sends a plain-text message to a room.
	SendText(ctx context.Context, roomID id.RoomID, body string) error
	// SendHTML sends a message with a plain-text fallback body and an HTML
	// formatted rendering of the same content.
	SendHTML(ctx context.Context, roomID id.RoomID, body, formattedBody string) error
	// JoinRoom accepts an invitation to the given room.
	JoinRoom(ctx context.Context, roomID id.RoomID) error
}

// AdminAPI is the admin-query capability consumed by the auth gate and the
// list_users command. Implemented by admin.Client in production.
type AdminAPI interface {
	IsUserAdmin(ctx context.Context, userID id.UserID) (bool, error)
	ListUsers(ctx context.Context) ([]admin.User, error)
}

// matrixClient adapts *mautrix.Client to the Client interface.
type matrixClient struct {
	cli *mautrix.Client
}

// NewMatrixClient wraps a mautrix client for use by the bot's handlers.
func NewMatrixClient(cli *mautrix.Client) Client {
	return &matrixClient{cli: cli}
}

func (m *matrixClient) SendText(ctx context.Context, roomID id.RoomID, body string) error {
	_, err := m.cli.SendText(ctx, roomID, body)
	return err
}

func (m *matrixClient) SendHTML(ctx context.Context, roomID id.RoomID, body, formattedBody string) error {
	_, err := m.cli.SendMessageEvent(ctx, roomID, event.EventMessage, &event.MessageEventContent{
		MsgType:       event.MsgText,
		Body:          body,
		Format:        event.FormatHTML,
		FormattedBody: formattedBody,
	})
	return err
}

func (m *matrixClient) JoinRoom(ctx context.Context, roomID id.RoomID) error {
	_, err := m.cli.JoinRoomByID(ctx, roomID)
	return err
}
