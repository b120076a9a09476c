// ABOUTME: Command registry mapping chat keywords to handlers
// ABOUTME: Unknown keywords fall through to the help handler

package bot

import (
	"context"
	"fmt"
	"html"
	"strings"

	"maunium.net/go/mautrix/id"
)

const partyMessage = "🎉🎊🥳 let's PARTY!! 🥳🎊🎉"

// command is one registered chat command.
type command struct {
	name        string
	description string
	run         func(ctx context.Context, roomID id.RoomID) error
}

// Registry dispatches prefix-stripped message text to the matching command
// handler. The command set is fixed at construction; anything unrecognized
// runs the help handler instead of producing an error, so every dispatch
// yields some reply.
type Registry struct {
	client   Client
	admin    AdminAPI
	prefix   string
	commands map[string]command
	// order holds command names in registration order for stable help text
	order []string
}

// NewRegistry builds the registry with the built-in command set. prefix is
// only used to render command names in help text.
func NewRegistry(client Client, adminAPI AdminAPI, prefix string) *Registry {
	r := &Registry{
		client:   client,
		admin:    adminAPI,
		prefix:   prefix,
		commands: make(map[string]command),
	}
	r.register("list_users", "list all users on this server", r.listUsers)
	r.register("party", "are you ready to party?", r.party)
	r.register("help", "list all available commands (this message)", r.help)
	return r
}

func (r *Registry) register(name, description string, run func(ctx context.Context, roomID id.RoomID) error) {
	r.commands[name] = command{name: name, description: description, run: run}
	r.order = append(r.order, name)
}

// Dispatch runs the command named by input (already prefix-stripped and
// trimmed). Unknown input runs the help handler.
func (r *Registry) Dispatch(ctx context.Context, input string, roomID id.RoomID) error {
	cmd, ok := r.commands[input]
	if !ok {
		return r.help(ctx, roomID)
	}
	return cmd.run(ctx, roomID)
}

func (r *Registry) help(ctx context.Context, roomID id.RoomID) error {
	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, name := range r.order {
		fmt.Fprintf(&b, "\n%s%s: %s", r.prefix, name, r.commands[name].description)
	}
	return r.client.SendText(ctx, roomID, b.String())
}

func (r *Registry) party(ctx context.Context, roomID id.RoomID) error {
	return r.client.SendText(ctx, roomID, partyMessage)
}

// listUsers renders the server's user list in server order, as plain text
// with an HTML table rendering of the same three fields.
func (r *Registry) listUsers(ctx context.Context, roomID id.RoomID) error {
	users, err := r.admin.ListUsers(ctx)
	if err != nil {
		return err
	}

	var plain, table strings.Builder
	table.WriteString("<table><tr><th>User ID</th><th>Display Name</th><th>Admin</th></tr>")
	for _, u := range users {
		fmt.Fprintf(&plain, "%s (%s) admin=%t\n", u.Name, u.DisplayName, u.Admin)
		fmt.Fprintf(&table, "<tr><td>%s</td><td>%s</td><td>%t</td></tr>",
			html.EscapeString(u.Name), html.EscapeString(u.DisplayName), u.Admin)
	}
	table.WriteString("</table>")

	return r.client.SendHTML(ctx, roomID, plain.String(), table.String())
}
