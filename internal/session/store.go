// Package session holds the client-side record of who is logged in.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"castella/internal/logging"
	"castella/internal/storage"
)

// Storage keys owned by the Store. Nothing else writes them.
const (
	TokenKey = "token"
	UserKey  = "user"
)

var ErrInvalidLogin = errors.New("session: login requires a user and a token")

// Session is a point-in-time view of the store. A token without a user is a valid
// transient state; callers must not assume one implies the other.
type Session struct {
	Token string
	User  *UserProfile
}

// Authenticated reports whether a token is held.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Store is the single source of truth for the current session of one client context.
// Reads are lock-free snapshots; writers are serialized.
type Store struct {
	storage storage.Storage
	log     *zap.Logger

	writeMu sync.Mutex
	current atomic.Pointer[Session]
}

func NewStore(st storage.Storage, log *zap.Logger) *Store {
	s := &Store{storage: st, log: logging.OrNop(log)}
	s.current.Store(&Session{})
	return s
}

// Initialize hydrates the store from durable storage. A stored user that cannot be decoded,
// or one stored without a token, leaves the store logged out without returning an error.
func (s *Store) Initialize(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.current.Store(&Session{})

	token, _, err := s.storage.Get(ctx, TokenKey)
	if err != nil {
		return fmt.Errorf("read session token: %w", err)
	}
	rawUser, _, err := s.storage.Get(ctx, UserKey)
	if err != nil {
		return fmt.Errorf("read session user: %w", err)
	}

	var user *UserProfile
	if rawUser != "" {
		var decoded UserProfile
		if err := json.Unmarshal([]byte(rawUser), &decoded); err != nil {
			s.log.Warn("discarding unreadable stored user", zap.Error(err))
			return nil
		}
		user = &decoded
	}
	if token == "" && user != nil {
		s.log.Warn("discarding stored user without a token", zap.String("user_id", user.ID))
		return nil
	}

	s.current.Store(&Session{Token: token, User: user})
	return nil
}

// Login records user and token, persisting both before they become visible. Calling it
// again overwrites the previous session.
func (s *Store) Login(ctx context.Context, user *UserProfile, token string) error {
	if user == nil || token == "" {
		return ErrInvalidLogin
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := Session{Token: token, User: user.Clone()}
	if err := s.persist(ctx, next); err != nil {
		previous := *s.current.Load()
		if rbErr := s.restore(ctx, previous); rbErr != nil {
			s.log.Error("session storage left inconsistent after failed login", zap.Error(rbErr))
		}
		return err
	}

	s.current.Store(&next)
	return nil
}

// Logout clears storage and memory. It is safe to call when already logged out; memory is
// cleared even when storage refuses the delete.
func (s *Store) Logout(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.current.Store(&Session{})
	return s.clear(ctx)
}

func (s *Store) CurrentToken() string {
	return s.current.Load().Token
}

// CurrentUser returns a copy of the logged in user, or nil.
func (s *Store) CurrentUser() *UserProfile {
	return s.current.Load().User.Clone()
}

// Snapshot returns token and user as one consistent value.
func (s *Store) Snapshot() Session {
	cur := s.current.Load()
	return Session{Token: cur.Token, User: cur.User.Clone()}
}

func (s *Store) persist(ctx context.Context, sess Session) error {
	encoded, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}
	if err := s.storage.Set(ctx, TokenKey, sess.Token); err != nil {
		return fmt.Errorf("store session token: %w", err)
	}
	if err := s.storage.Set(ctx, UserKey, string(encoded)); err != nil {
		return fmt.Errorf("store session user: %w", err)
	}
	return nil
}

func (s *Store) restore(ctx context.Context, previous Session) error {
	if previous.Authenticated() && previous.User != nil {
		return s.persist(ctx, previous)
	}
	return s.clear(ctx)
}

// clear removes the user before the token, so a partial failure leaves at most a token.
func (s *Store) clear(ctx context.Context) error {
	userErr := s.storage.Delete(ctx, UserKey)
	tokenErr := s.storage.Delete(ctx, TokenKey)
	if err := errors.Join(userErr, tokenErr); err != nil {
		return fmt.Errorf("clear session storage: %w", err)
	}
	return nil
}
