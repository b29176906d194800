// Package session holds the logged-in staff session and keeps it in sync
// with durable storage.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/otcheredev/clinic-desk/internal/cache"
	"github.com/otcheredev/clinic-desk/internal/models"
	"github.com/otcheredev/clinic-desk/pkg/logger"
)

// DefaultKey is the storage key of the serialized session
const DefaultKey = "authSession"

// State is the authentication state
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Authenticator exchanges credentials for a session
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.Session, error)
}

// Store is the single source of truth for the current session. Every
// transition writes storage first and only then updates memory, under one
// lock, so the two never diverge.
type Store struct {
	mu      sync.RWMutex
	storage cache.Cache
	key     string
	current *models.Session
	log     zerolog.Logger
}

// NewStore creates a store over storage. Call Load before use.
func NewStore(storage cache.Cache, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{
		storage: storage,
		key:     key,
		log:     logger.Component("session"),
	}
}

// Load derives the state from storage. Absent or malformed data leaves the
// store anonymous; a malformed entry is removed.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil

	data, err := s.storage.Get(ctx, s.key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil || string(data) == "null" {
		s.log.Warn().Err(err).Msg("Discarding malformed stored session")
		if delErr := s.storage.Delete(ctx, s.key); delErr != nil {
			return fmt.Errorf("failed to discard malformed session: %w", delErr)
		}
		return nil
	}

	s.current = &sess
	return nil
}

// SetAuth moves to Authenticated(sess), or to Anonymous when sess is nil.
// On a storage failure nothing changes and the error is returned.
func (s *Store) SetAuth(ctx context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess == nil {
		if err := s.storage.Delete(ctx, s.key); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		s.current = nil
		s.log.Debug().Msg("Session cleared")
		return nil
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.storage.Set(ctx, s.key, data, 0); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	stored := *sess
	s.current = &stored
	s.log.Debug().Str("user", sess.User.Email).Msg("Session stored")
	return nil
}

// ClearAuth forgets the session. No logout call is made to the backend.
func (s *Store) ClearAuth(ctx context.Context) error {
	return s.SetAuth(ctx, nil)
}

// Login authenticates and stores the resulting session
func (s *Store) Login(ctx context.Context, auth Authenticator, email, password string) (*models.Session, error) {
	sess, err := auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.SetAuth(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// State reports the current authentication state
func (s *Store) State() State {
	if s.IsAuthenticated() {
		return Authenticated
	}
	return Anonymous
}

// IsAuthenticated is true exactly when an access token is held
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// Token returns the access token or "". It satisfies gateway.TokenProvider.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return ""
	}
	return s.current.AccessToken
}

// User returns the logged-in user, if any
func (s *Store) User() (models.UserInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return models.UserInfo{}, false
	}
	return s.current.User, true
}

// Session returns a copy of the current session, or nil
func (s *Store) Session() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil
	}
	out := *s.current
	return &out
}

// UserEmail returns the logged-in user's email or ""
func (s *Store) UserEmail() string {
	u, _ := s.User()
	return u.Email
}

// HasPersistedSession reports whether storage currently holds a session entry.
// Storage errors count as "no session".
func (s *Store) HasPersistedSession(ctx context.Context) bool {
	ok, err := s.storage.Exists(ctx, s.key)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to check stored session")
		return false
	}
	return ok
}
