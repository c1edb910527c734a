package session

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matthieukhl/storefront/internal/api"
	"github.com/matthieukhl/storefront/internal/config"
	"github.com/matthieukhl/storefront/internal/database"
	"github.com/matthieukhl/storefront/internal/models"
	"github.com/matthieukhl/storefront/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// ---- fakes ----

type memKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemKV() *memKV { return &memKV{data: map[string]string{}} }

func (m *memKV) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", database.ErrNotFound
	}
	return v, nil
}

func (m *memKV) SetMany(ctx context.Context, pairs map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range pairs {
		m.data[k] = v
	}
	return nil
}

func (m *memKV) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type fakeAuth struct {
	LoginFn    func(email, password string) (*models.LoginResponse, error)
	RegisterFn func(req models.RegisterRequest) (*models.RegisterResponse, error)
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	return f.LoginFn(email, password)
}

func (f *fakeAuth) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	return f.RegisterFn(req)
}

func adminLogin(email, password string) (*models.LoginResponse, error) {
	if password != "secret" {
		return nil, &api.Error{Kind: api.KindUnauthorized, Op: "POST /auth/login", Status: 401}
	}
	return &models.LoginResponse{Token: "tok-1", Email: email, Username: "admin", Role: models.RoleAdmin, ID: "u1"}, nil
}

// ---- tests ----

func TestLoginPersistsAndLogoutClears(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s, err := Open(ctx, kv, &fakeAuth{LoginFn: adminLogin}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, s.IsAuthenticated())
	assert.False(t, s.IsAdmin())

	user, err := s.Login(ctx, " admin@example.com ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", user.Email)
	assert.True(t, s.IsAdmin())
	assert.Equal(t, "tok-1", s.Token())
	assert.Equal(t, "tok-1", kv.data[TokenKey])
	assert.Contains(t, kv.data[UserKey], `"role":"admin"`)

	token, err := s.AdminToken()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	// A new Store on the same storage sees the persisted session
	reopened, err := Open(ctx, kv, &fakeAuth{}, nil)
	require.NoError(t, err)
	assert.True(t, reopened.IsAdmin())

	require.NoError(t, s.Logout(ctx))
	assert.False(t, s.IsAdmin())
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
	assert.Empty(t, kv.data)

	_, err = s.AdminToken()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestLoginAsUserIsNotAdmin(t *testing.T) {
	ctx := context.Background()
	auth := &fakeAuth{LoginFn: func(email, password string) (*models.LoginResponse, error) {
		return &models.LoginResponse{Token: "t", Email: email, Role: models.RoleUser, ID: "u2"}, nil
	}}
	s, err := Open(ctx, newMemKV(), auth, nil)
	require.NoError(t, err)

	_, err = s.Login(ctx, "bob@example.com", "pw")
	require.NoError(t, err)
	assert.True(t, s.IsAuthenticated())
	assert.False(t, s.IsAdmin())

	_, err = s.AdminToken()
	assert.ErrorIs(t, err, ErrNotAdmin)
}

func TestLoginFailureKindsAndExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	netErr := &api.Error{Kind: api.KindNetwork, Op: "POST /auth/login", Err: errors.New("connection refused")}
	auth := &fakeAuth{LoginFn: func(email, password string) (*models.LoginResponse, error) {
		if email == "offline@example.com" {
			return nil, netErr
		}
		return adminLogin(email, password)
	}}
	s, err := Open(ctx, newMemKV(), auth, zaptest.NewLogger(t), WithClock(clock))
	require.NoError(t, err)

	_, err = s.Login(ctx, "admin@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.True(t, api.IsKind(err, api.KindUnauthorized))
	assert.False(t, s.IsAuthenticated())
	assert.ErrorIs(t, s.AuthError(), ErrInvalidCredentials)

	now = now.Add(2 * time.Second)
	assert.Error(t, s.AuthError())

	now = now.Add(600 * time.Millisecond)
	assert.NoError(t, s.AuthError())

	_, err = s.Login(ctx, "offline@example.com", "secret")
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.True(t, api.IsKind(err, api.KindNetwork))

	_, err = s.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	// A successful login clears the banner
	_, err = s.Login(ctx, "admin@example.com", "secret")
	require.NoError(t, err)
	assert.NoError(t, s.AuthError())
}

func TestFailedLoginKeepsExistingSession(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, newMemKV(), &fakeAuth{LoginFn: adminLogin}, nil)
	require.NoError(t, err)

	_, err = s.Login(ctx, "admin@example.com", "secret")
	require.NoError(t, err)
	_, err = s.Login(ctx, "admin@example.com", "wrong")
	require.Error(t, err)

	assert.True(t, s.IsAdmin())
}

func TestCorruptPersistedUserIsDiscarded(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	kv.data[TokenKey] = "tok"
	kv.data[UserKey] = "{not json"

	s, err := Open(ctx, kv, &fakeAuth{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, kv.data)
}

func TestTokenWithoutUserIsDiscarded(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	kv.data[TokenKey] = "tok"

	s, err := Open(ctx, kv, &fakeAuth{}, nil)
	require.NoError(t, err)
	assert.False(t, s.IsAuthenticated())
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	var got models.RegisterRequest
	auth := &fakeAuth{RegisterFn: func(req models.RegisterRequest) (*models.RegisterResponse, error) {
		got = req
		if req.Email == "taken@example.com" {
			return &models.RegisterResponse{AlreadyExists: true}, nil
		}
		return &models.RegisterResponse{ID: "u9", Email: req.Email, Role: req.Role}, nil
	}}
	s, err := Open(ctx, newMemKV(), auth, nil)
	require.NoError(t, err)

	resp, err := s.Register(ctx, models.RegisterRequest{Username: "carol", Email: "carol@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "u9", resp.ID)
	assert.Equal(t, models.RoleUser, got.Role)
	assert.False(t, s.IsAuthenticated())

	_, err = s.Register(ctx, models.RegisterRequest{Username: "x", Email: "taken@example.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	_, err = s.Register(ctx, models.RegisterRequest{Role: "root", Username: "x", Email: "x@example.com", Password: "pw"})
	assert.Error(t, err)

	_, err = s.Register(ctx, models.RegisterRequest{Username: "x"})
	assert.Error(t, err)
}

func TestCloseDropsInMemoryState(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s, err := Open(ctx, kv, &fakeAuth{LoginFn: adminLogin}, nil)
	require.NoError(t, err)
	_, err = s.Login(ctx, "admin@example.com", "secret")
	require.NoError(t, err)

	require.NoError(t, s.Close())
	assert.False(t, s.IsAuthenticated())
	assert.NotEmpty(t, kv.data)
}

func TestSessionAgainstStubAPIAndSQLite(t *testing.T) {
	ctx := context.Background()

	store := server.NewStore()
	seed, err := server.DecodeSeed(strings.NewReader(`users: [{username: admin, email: admin@example.com, password: secret, role: admin}]`))
	require.NoError(t, err)
	require.NoError(t, store.Apply(seed))
	ts := httptest.NewServer(server.NewServer(store, nil).Handler())
	defer ts.Close()

	db, err := database.NewConnection(&config.SessionConfig{Path: filepath.Join(t.TempDir(), "session.db")})
	require.NoError(t, err)
	defer db.Close()

	client := api.NewClientWithHTTP(ts.URL, ts.Client(), nil)
	s, err := Open(ctx, db, client, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = s.Login(ctx, "admin@example.com", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Login(ctx, "admin@example.com", "secret")
	require.NoError(t, err)

	reopened, err := Open(ctx, db, client, nil)
	require.NoError(t, err)
	assert.True(t, reopened.IsAdmin())
	assert.Equal(t, s.Token(), reopened.Token())
}
