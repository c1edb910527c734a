// Package session holds the authenticated identity of the current profile:
// the bearer token and user record returned by login, persisted so they
// survive restarts until an explicit logout.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/matthieukhl/storefront/internal/api"
	"github.com/matthieukhl/storefront/internal/database"
	"github.com/matthieukhl/storefront/internal/models"
	"go.uber.org/zap"
)

// Persisted keys.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// AuthErrorDisplay is how long a failed login stays reported by AuthError.
const AuthErrorDisplay = 2500 * time.Millisecond

var (
	ErrInvalidCredentials = errors.New("wrong email or password")
	ErrMissingCredentials = errors.New("email and password are required")
	ErrNotAuthenticated   = errors.New("not logged in")
	ErrNotAdmin           = errors.New("admin role required")
	ErrAlreadyRegistered  = errors.New("an account with this email already exists")
)

// KV is the persistent key/value storage behind the session.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	SetMany(ctx context.Context, pairs map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}

// Authenticator is the part of the API the session talks to.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error)
}

type Store struct {
	kv     KV
	auth   Authenticator
	logger *zap.Logger
	now    func() time.Time

	mu        sync.RWMutex
	token     string
	user      *models.User
	authErr   error
	authErrAt time.Time
}

// Option customises a Store.
type Option func(*Store)

// WithClock replaces time.Now, used to test AuthError expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open creates a Store and loads any persisted session.
func Open(ctx context.Context, kv KV, auth Authenticator, logger *zap.Logger, opts ...Option) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		kv:     kv,
		auth:   auth,
		logger: logger.Named("session"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the persisted session. A missing or corrupt record
// leaves the store anonymous.
func (s *Store) Reload(ctx context.Context) error {
	token, err := s.kv.Get(ctx, TokenKey)
	if errors.Is(err, database.ErrNotFound) {
		s.set("", nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	raw, err := s.kv.Get(ctx, UserKey)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("failed to load session: %w", err)
	}

	var user models.User
	if err != nil || json.Unmarshal([]byte(raw), &user) != nil || token == "" {
		s.logger.Warn("discarding incomplete persisted session")
		if err := s.kv.Delete(ctx, TokenKey, UserKey); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		s.set("", nil)
		return nil
	}

	s.set(token, &user)
	return nil
}

func (s *Store) set(token string, user *models.User) {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
}

// Login authenticates against the API and persists the returned session.
// Rejected credentials yield ErrInvalidCredentials; network and server
// failures keep their api.Error kind. Failures leave the current session
// untouched and are reported by AuthError for AuthErrorDisplay.
func (s *Store) Login(ctx context.Context, email, password string) (models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return models.User{}, s.fail(ErrMissingCredentials)
	}

	resp, err := s.auth.Login(ctx, email, password)
	if err != nil {
		switch api.KindOf(err) {
		case api.KindUnauthorized, api.KindRejected, api.KindNotFound:
			err = fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		s.logger.Warn("login failed", zap.String("email", email), zap.Error(err))
		return models.User{}, s.fail(err)
	}
	if resp.Token == "" {
		return models.User{}, s.fail(&api.Error{Kind: api.KindDecode, Op: "POST /auth/login", Err: errors.New("response has no token")})
	}

	user := resp.User()
	raw, err := json.Marshal(user)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to encode user: %w", err)
	}
	if err := s.kv.SetMany(ctx, map[string]string{TokenKey: resp.Token, UserKey: string(raw)}); err != nil {
		return models.User{}, fmt.Errorf("failed to persist session: %w", err)
	}

	s.mu.Lock()
	s.token = resp.Token
	s.user = &user
	s.authErr = nil
	s.mu.Unlock()

	s.logger.Info("logged in", zap.String("email", user.Email), zap.String("role", user.Role))
	return user, nil
}

func (s *Store) fail(err error) error {
	s.mu.Lock()
	s.authErr = err
	s.authErrAt = s.now()
	s.mu.Unlock()
	return err
}

// AuthError returns the last login failure while it is still displayable.
func (s *Store) AuthError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.authErr == nil || s.now().Sub(s.authErrAt) >= AuthErrorDisplay {
		return nil
	}
	return s.authErr
}

// Register creates an account. It does not log the new user in.
func (s *Store) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if req.Role == "" {
		req.Role = models.RoleUser
	}
	if req.Role != models.RoleUser && req.Role != models.RoleAdmin {
		return nil, fmt.Errorf("unknown role %q", req.Role)
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		return nil, errors.New("username, email and password are required")
	}

	resp, err := s.auth.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.AlreadyExists {
		return resp, ErrAlreadyRegistered
	}
	s.logger.Info("registered", zap.String("email", req.Email), zap.String("role", req.Role))
	return resp, nil
}

// Logout forgets the persisted token and user record.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.kv.Delete(ctx, TokenKey, UserKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.set("", nil)
	s.logger.Info("logged out")
	return nil
}

// Current returns the logged-in user, if any.
func (s *Store) Current() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// Token returns the bearer token, empty when anonymous.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsAuthenticated reports whether a session is present.
func (s *Store) IsAuthenticated() bool {
	_, ok := s.Current()
	return ok
}

// IsAdmin is true iff a user record is present and its role is admin.
func (s *Store) IsAdmin() bool {
	user, ok := s.Current()
	return ok && user.IsAdmin()
}

// AdminToken returns the bearer token for admin-only calls.
func (s *Store) AdminToken() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil || s.token == "" {
		return "", ErrNotAuthenticated
	}
	if !s.user.IsAdmin() {
		return "", ErrNotAdmin
	}
	return s.token, nil
}

// Close drops the in-memory session. The persisted record is kept; the
// owner of the KV closes it.
func (s *Store) Close() error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.authErr = nil
	s.mu.Unlock()
	return nil
}
