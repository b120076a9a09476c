// ABOUTME: Synapse admin API client for admin-status checks and user listing
// ABOUTME: Wraps the authenticated mautrix client with typed request/response structs

package admin

import (
	"context"
	"fmt"
	"net/http"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/id"
)

// User is one entry of the server's user list, in the shape the
// /_synapse/admin/v2/users endpoint returns it.
type User struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayname"`
	Admin       bool   `json:"admin"`
}

// Client queries the Synapse admin API through an authenticated mautrix
// client.
type Client struct {
	mx *mautrix.Client
}

// NewClient wraps the given mautrix client. The client's access token is
// used as-is; no extra credentials are needed.
func NewClient(mx *mautrix.Client) *Client {
	return &Client{mx: mx}
}

// IsUserAdmin reports whether userID is a server administrator. Every call
// performs a live query; results are never cached because admin status can
// change at any time.
func (c *Client) IsUserAdmin(ctx context.Context, userID id.UserID) (bool, error) {
	var resp struct {
		Admin bool `json:"admin"`
	}
	_, err := c.mx.MakeRequest(ctx, http.MethodGet,
		c.mx.BuildURL(mautrix.SynapseAdminURLPath{"v1", "users", userID, "admin"}),
		nil, &resp)
	if err != nil {
		return false, fmt.Errorf("querying admin status of %s: %w", userID, err)
	}
	return resp.Admin, nil
}

// ListUsers returns the server's users in the order Synapse returns them.
// Only the first page is fetched; the endpoint's next_token is ignored.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var resp struct {
		Users     []User `json:"users"`
		NextToken string `json:"next_token"`
		Total     int    `json:"total"`
	}
	_, err := c.mx.MakeRequest(ctx, http.MethodGet,
		c.mx.BuildURL(mautrix.SynapseAdminURLPath{"v2", "users"}),
		nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return resp.Users, nil
}
