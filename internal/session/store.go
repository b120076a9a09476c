// ABOUTME: On-disk session persistence for the bot's Matrix credentials
// ABOUTME: Stores pretty-printed JSON, optionally age-encrypted with a passphrase

package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filippo.io/age"
	"maunium.net/go/mautrix/id"
)

// FileName is the session file name inside the store location.
const FileName = "session.json"

// Session holds the credentials needed to resume an authenticated Matrix
// connection without re-entering a password. It is written once after a
// successful login and replaced wholesale on re-login, never mutated in
// place.
type Session struct {
	Homeserver  string      `json:"homeserver"`
	UserID      id.UserID   `json:"user_id"`
	DeviceID    id.DeviceID `json:"device_id"`
	AccessToken string      `json:"access_token"`
}

// Store reads and writes the session file at a configured location. It is
// only touched once at process startup, so no locking is needed.
type Store struct {
	location   string
	passphrase string
}

// NewStore creates a store rooted at location. If passphrase is non-empty,
// the session file is encrypted at rest with an age scrypt recipient.
func NewStore(location, passphrase string) *Store {
	return &Store{location: location, passphrase: passphrase}
}

// Path returns the full path of the session file.
func (s *Store) Path() string {
	return filepath.Join(s.location, FileName)
}

// Exists reports whether a readable session file is present.
func (s *Store) Exists() bool {
	f, err := os.Open(s.Path())
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// Load reads and parses the persisted session. It fails fast on unreadable,
// undecryptable, or incomplete content; the caller must treat any error as
// fatal rather than continue with a partially-usable session.
func (s *Store) Load() (*Session, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}

	if s.passphrase != "" {
		data, err = s.decrypt(data)
		if err != nil {
			return nil, fmt.Errorf("decrypting session file: %w", err)
		}
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parsing session file: %w", err)
	}
	if sess.UserID == "" || sess.AccessToken == "" || sess.Homeserver == "" {
		return nil, fmt.Errorf("session file is missing required fields")
	}

	return &sess, nil
}

// Save writes the session to disk, overwriting any prior content. The store
// directory is created if needed and the file is only readable by the owner.
func (s *Store) Save(sess *Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing session: %w", err)
	}

	if s.passphrase != "" {
		data, err = s.encrypt(data)
		if err != nil {
			return fmt.Errorf("encrypting session: %w", err)
		}
	}

	if err := os.MkdirAll(s.location, 0700); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}
	if err := os.WriteFile(s.Path(), data, 0600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

func (s *Store) encrypt(plaintext []byte) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(s.passphrase)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Store) decrypt(ciphertext []byte) ([]byte, error) {
	identity, err := age.NewScryptIdentity(s.passphrase)
	if err != nil {
		return nil, err
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}
