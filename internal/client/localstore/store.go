package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/smartpool/internal/client/models"
	"github.com/dmitrijs2005/smartpool/internal/common"
	"github.com/dmitrijs2005/smartpool/internal/filex"
	"github.com/dmitrijs2005/smartpool/internal/logging"
)

// FileName is the document's name inside the data directory.
const FileName = "user_data.json"

type document struct {
	Auth        *models.Session            `json:"auth,omitempty"`
	Preferences map[string]json.RawMessage `json:"preferences,omitempty"`
}

// Store is the single-file JSON record store.
type Store struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
	log  logging.Logger
}

type Option func(*Store)

// WithClock replaces time.Now, for session expiry checks and login stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns a Store backed by the file at path. The file and its
// directory are created on first write.
func New(path string, log logging.Logger, opts ...Option) *Store {
	s := &Store{path: path, now: time.Now, log: log.With("component", "localstore")}
	for _, o := range opts {
		o(s)
	}
	return s
}

// DefaultPath is <user config dir>/smartpool/user_data.json.
func DefaultPath() (string, error) {
	dir, err := filex.UserDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// load always returns a usable document; err is non-nil only when an
// existing file could not be read or parsed.
func (s *Store) load(ctx context.Context) (document, error) {
	doc := document{Preferences: map[string]json.RawMessage{}}

	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		s.log.Warn(ctx, "local storage read failed, using empty document", "path", s.path, "error", err)
		return doc, fmt.Errorf("%w: %v", common.ErrStorageUnreadable, err)
	}
	if len(b) == 0 {
		return doc, nil
	}

	if err := json.Unmarshal(b, &doc); err != nil {
		s.log.Warn(ctx, "local storage corrupt, using empty document", "path", s.path, "error", err)
		return document{Preferences: map[string]json.RawMessage{}}, fmt.Errorf("%w: %v", common.ErrStorageUnreadable, err)
	}
	if doc.Preferences == nil {
		doc.Preferences = map[string]json.RawMessage{}
	}
	return doc, nil
}

func (s *Store) save(ctx context.Context, doc document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode local storage: %w", err)
	}
	if err := filex.WriteFileAtomic(s.path, b, 0o600); err != nil {
		s.log.Error(ctx, "local storage write failed", "path", s.path, "error", err)
		return fmt.Errorf("write local storage: %w", err)
	}
	return nil
}

// Get decodes the preference stored under key into dst. It returns
// common.ErrNotFound when the key was never set.
func (s *Store) Get(ctx context.Context, key string, dst any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return err
	}

	raw, ok := doc.Preferences[key]
	if !ok {
		return common.ErrNotFound
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode preference %s: %w", key, err)
	}
	return nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode preference %s: %w", key, err)
	}

	// An unreadable file is overwritten; load already logged it.
	doc, _ := s.load(ctx)
	doc.Preferences[key] = raw
	return s.save(ctx, doc)
}

// Delete removes key. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, _ := s.load(ctx)
	if _, ok := doc.Preferences[key]; !ok {
		return nil
	}
	delete(doc.Preferences, key)
	return s.save(ctx, doc)
}

// All returns every preference as raw JSON.
func (s *Store) All(ctx context.Context) (map[string]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	return doc.Preferences, err
}

// SetAll replaces the whole preferences mapping. The session is kept.
func (s *Store) SetAll(ctx context.Context, prefs map[string]json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, _ := s.load(ctx)
	doc.Preferences = make(map[string]json.RawMessage, len(prefs))
	for k, v := range prefs {
		doc.Preferences[k] = v
	}
	return s.save(ctx, doc)
}

// SaveSession replaces any stored session with a new one stamped now.
func (s *Store) SaveSession(ctx context.Context, userID, email string, cred models.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, _ := s.load(ctx)
	doc.Auth = &models.Session{
		UserID:         userID,
		Email:          email,
		Credentials:    cred,
		LoginTimestamp: models.NewTimestamp(s.now()),
	}
	return s.save(ctx, doc)
}

// UpdateCredentials swaps the tokens of userID's session. The login
// timestamp is kept, so renewing tokens does not extend the session.
func (s *Store) UpdateCredentials(ctx context.Context, userID string, cred models.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	if doc.Auth == nil || doc.Auth.UserID != userID {
		return common.ErrNoSession
	}
	doc.Auth.Credentials = cred
	return s.save(ctx, doc)
}

// Session returns the stored session while it is younger than
// common.SessionLifetime. An expired session is deleted and reported as
// common.ErrSessionExpired; no session at all is common.ErrNoSession.
func (s *Store) Session(ctx context.Context) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if doc.Auth == nil || doc.Auth.LoginTimestamp.IsZero() {
		return nil, common.ErrNoSession
	}

	if doc.Auth.Expired(s.now(), common.SessionLifetime) {
		s.log.Info(ctx, "session expired", "user_id", doc.Auth.UserID)
		doc.Auth = nil
		if err := s.save(ctx, doc); err != nil {
			return nil, err
		}
		return nil, common.ErrSessionExpired
	}

	sess := *doc.Auth
	return &sess, nil
}

// ClearSession removes the stored session, if any.
func (s *Store) ClearSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil || doc.Auth == nil {
		return nil
	}
	doc.Auth = nil
	return s.save(ctx, doc)
}
