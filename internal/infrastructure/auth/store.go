// Package auth keeps the signed-in session on disk and hands it to the dispatcher.
package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/ytgenius/internal/domain"
	"github.com/doeshing/ytgenius/internal/pkg/filesystem"
	"github.com/doeshing/ytgenius/internal/ports"
)

// ErrEmptyToken is returned when signing in without a token.
var ErrEmptyToken = errors.New("access token is empty")

// Store persists the session as YAML and lets an environment variable
// override the stored token.
type Store struct {
	path     string
	tokenEnv string
	logger   ports.Logger
	now      func() time.Time

	mu        sync.Mutex
	listeners map[int]func(*domain.Session)
	nextID    int
	balance   *int
}

// NewStore creates a session store. An empty path selects ~/.ytgenius/session.yaml.
func NewStore(path, tokenEnvVar string, logger ports.Logger) *Store {
	if path == "" {
		path = filesystem.AppPath("session.yaml")
	}
	return &Store{
		path:      filesystem.ExpandPath(path),
		tokenEnv:  tokenEnvVar,
		logger:    logger,
		now:       time.Now,
		listeners: make(map[int]func(*domain.Session)),
	}
}

// Path returns the session file location.
func (s *Store) Path() string {
	return s.path
}

// TokenEnvVar names the environment variable that overrides the stored token.
func (s *Store) TokenEnvVar() string {
	return s.tokenEnv
}

// CurrentSession returns the active session, or nil when signed out or expired.
func (s *Store) CurrentSession(ctx context.Context) (*domain.Session, error) {
	session, err := s.Inspect(ctx)
	if err != nil {
		return nil, err
	}
	if !session.Usable(s.now()) {
		return nil, nil
	}
	return session, nil
}

// Inspect returns the session as stored, expired or not.
func (s *Store) Inspect(ctx context.Context) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if token := s.envToken(); token != "" {
		session := SessionFromToken(token)
		session.LastKnownBalance = s.balance
		return session, nil
	}
	return s.read()
}

// SignIn stores a new session built from token and notifies listeners.
func (s *Store) SignIn(ctx context.Context, token string) (*domain.Session, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return nil, ErrEmptyToken
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	session := SessionFromToken(token)
	if session.Expired(s.now()) {
		return nil, fmt.Errorf("token expired at %s", session.ExpiresAt.Format(domain.TimestampFormat))
	}

	s.mu.Lock()
	if err := s.write(session); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.balance = nil
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.logger.Info("signed in", map[string]interface{}{"user": session.User.Email})
	notify(listeners, session)
	return session, nil
}

// SignOut deletes the stored session. A token supplied through the
// environment stays in effect.
func (s *Store) SignOut() error {
	s.mu.Lock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.mu.Unlock()
		return fmt.Errorf("remove session: %w", err)
	}
	s.balance = nil
	listeners := s.snapshotListeners()
	envSet := s.envToken() != ""
	s.mu.Unlock()

	if envSet {
		s.logger.Warn("session file removed but token still set in environment", map[string]interface{}{"env": s.tokenEnv})
	}
	notify(listeners, nil)
	return nil
}

// RecordBalance remembers the coin balance reported by the last request.
func (s *Store) RecordBalance(coinsLeft int) error {
	s.mu.Lock()
	balance := coinsLeft
	s.balance = &balance

	var changed *domain.Session
	if s.envToken() == "" {
		session, err := s.read()
		if err != nil || session == nil {
			s.mu.Unlock()
			return err
		}
		session.LastKnownBalance = &balance
		if err := s.write(session); err != nil {
			s.mu.Unlock()
			return err
		}
		changed = session
	} else {
		changed = SessionFromToken(s.envToken())
		changed.LastKnownBalance = &balance
	}
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, changed)
	return nil
}

// OnSessionChange registers fn for sign-in, sign-out and balance changes.
func (s *Store) OnSessionChange(fn func(*domain.Session)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) envToken() string {
	if s.tokenEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(s.tokenEnv))
}

func (s *Store) read() (*domain.Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var session domain.Session
	if err := yaml.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", s.path, err)
	}
	if session.AccessToken == "" {
		return nil, nil
	}
	return &session, nil
}

func (s *Store) write(session *domain.Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), domain.DirectoryPermissions); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := yaml.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(s.path, data, domain.SecureFilePermissions); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return os.Chmod(s.path, domain.SecureFilePermissions)
}

func (s *Store) snapshotListeners() []func(*domain.Session) {
	out := make([]func(*domain.Session), 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []func(*domain.Session), session *domain.Session) {
	for _, fn := range listeners {
		fn(session)
	}
}

// SessionFromToken reads identity and expiry from a JWT without verifying its
// signature; the service verifies it. Opaque tokens yield a session with no
// expiry and an empty user.
func SessionFromToken(token string) *domain.Session {
	session := &domain.Session{AccessToken: token}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return session
	}

	if sub, err := claims.GetSubject(); err == nil {
		session.User.ID = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		session.ExpiresAt = exp.Time.UTC()
	}
	session.User.Email = stringClaim(claims, "email")

	if meta, ok := claims["user_metadata"].(map[string]interface{}); ok {
		session.User.DisplayName = firstString(meta, "full_name", "name")
		session.User.AvatarURL = firstString(meta, "avatar_url", "picture")
	}
	return session
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

func firstString(values map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := values[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

var _ ports.SessionProvider = (*Store)(nil)
