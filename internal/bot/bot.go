// ABOUTME: Bot runtime owning session establishment and the continuous sync loop
// ABOUTME: Restores or creates the session, syncs once, then registers handlers

package bot

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/2389/coven-bot/internal/admin"
	"github.com/2389/coven-bot/internal/config"
	"github.com/2389/coven-bot/internal/session"
)

const deviceDisplayName = "coven-bot"

// Bot wires the Matrix client, session store, admin client and event router
// together and runs the sync loop.
type Bot struct {
	cfg      *config.Config
	client   *mautrix.Client
	sessions *session.Store
	router   *Router
	log      zerolog.Logger
}

// New creates a bot from the given configuration. No network calls happen
// until Run.
func New(cfg *config.Config, log zerolog.Logger) (*Bot, error) {
	client, err := mautrix.NewClient(cfg.Matrix.Homeserver, id.UserID(cfg.Matrix.UserID), "")
	if err != nil {
		return nil, fmt.Errorf("creating matrix client: %w", err)
	}
	client.Log = log.With().Str("component", "mautrix").Logger()

	adminClient := admin.NewClient(client)
	mc := NewMatrixClient(client)
	autojoin := NewAutoJoiner(mc, log.With().Str("component", "autojoin").Logger())
	router := NewRouter(mc, adminClient, autojoin, id.UserID(cfg.Matrix.UserID),
		cfg.Bot.CommandPrefix, log.With().Str("component", "router").Logger())

	return &Bot{
		cfg:      cfg,
		client:   client,
		sessions: session.NewStore(cfg.Store.Location, cfg.Store.Passphrase),
		router:   router,
		log:      log,
	}, nil
}

// Run establishes the session, performs one bootstrap sync, registers the
// event handlers and then syncs continuously until ctx is cancelled or the
// sync loop fails. Any error it returns is fatal to the process.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.connect(ctx); err != nil {
		return err
	}

	// One blocking sync before any handler is registered, so events that
	// happened while the bot was down are never dispatched. Without this
	// a restart would replay old commands.
	b.log.Info().Msg("performing bootstrap sync")
	resp, err := b.client.SyncRequest(ctx, 0, "", "", false, event.PresenceOnline)
	if err != nil {
		return fmt.Errorf("bootstrap sync: %w", err)
	}
	if err := b.client.Store.SaveNextBatch(ctx, b.client.UserID, resp.NextBatch); err != nil {
		return fmt.Errorf("saving sync token: %w", err)
	}

	syncer, ok := b.client.Syncer.(*mautrix.DefaultSyncer)
	if !ok {
		return fmt.Errorf("unexpected syncer type: %T", b.client.Syncer)
	}
	syncer.OnEventType(event.StateMember, b.router.OnMemberEvent)
	syncer.OnEventType(event.EventMessage, b.router.OnMessageEvent)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	syncErr := make(chan error, 1)
	go func() {
		syncErr <- b.client.SyncWithContext(runCtx)
	}()

	b.log.Info().Stringer("user_id", b.client.UserID).Msg("bot running")

	select {
	case <-ctx.Done():
		b.log.Info().Msg("shutting down")
		return nil
	case err := <-syncErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("sync loop: %w", err)
		}
		return nil
	}
}

// connect restores the persisted session or, when none exists, performs an
// interactive login and persists the result.
func (b *Bot) connect(ctx context.Context) error {
	if b.sessions.Exists() {
		return b.restore(ctx)
	}
	return b.login(ctx)
}

// restore resumes the persisted session. Any failure is fatal: a restored
// session is never silently replaced by a fresh login, the operator has to
// delete the stale file and re-authenticate.
func (b *Bot) restore(ctx context.Context) error {
	sess, err := b.sessions.Load()
	if err != nil {
		return fmt.Errorf("loading session (delete %s to re-authenticate): %w", b.sessions.Path(), err)
	}

	b.client.UserID = sess.UserID
	b.client.DeviceID = sess.DeviceID
	b.client.AccessToken = sess.AccessToken

	whoami, err := b.client.Whoami(ctx)
	if err != nil {
		return fmt.Errorf("resuming session (delete %s if it is stale): %w", b.sessions.Path(), err)
	}
	if whoami.UserID != sess.UserID {
		return fmt.Errorf("session belongs to %s, config expects %s", whoami.UserID, sess.UserID)
	}

	b.log.Info().Stringer("user_id", sess.UserID).Str("device_id", string(sess.DeviceID)).
		Msg("restored session")
	return nil
}

// login performs a password login and persists the resulting session. The
// password comes from the config (usually via ${VAR} expansion) or, as a
// fallback, straight from the environment.
func (b *Bot) login(ctx context.Context) error {
	password := b.cfg.Matrix.Password
	if password == "" {
		password = os.Getenv(config.EnvPassword)
	}
	if password == "" {
		return fmt.Errorf("no session found, no password configured and %s is unset", config.EnvPassword)
	}

	b.log.Info().Str("user_id", b.cfg.Matrix.UserID).Msg("no session found, logging in")

	resp, err := b.client.Login(ctx, &mautrix.ReqLogin{
		Type: mautrix.AuthTypePassword,
		Identifier: mautrix.UserIdentifier{
			Type: mautrix.IdentifierTypeUser,
			User: b.cfg.Matrix.UserID,
		},
		Password:                 password,
		InitialDeviceDisplayName: deviceDisplayName,
		StoreCredentials:         true,
	})
	if err != nil {
		return fmt.Errorf("logging in as %s: %w", b.cfg.Matrix.UserID, err)
	}

	sess := &session.Session{
		Homeserver:  b.cfg.Matrix.Homeserver,
		UserID:      resp.UserID,
		DeviceID:    resp.DeviceID,
		AccessToken: resp.AccessToken,
	}
	if err := b.sessions.Save(sess); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}

	b.log.Info().Stringer("user_id", resp.UserID).Str("session_file", b.sessions.Path()).
		Msg("logged in and saved session")
	return nil
}
