package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matthieukhl/storefront/internal/models"
	"github.com/matthieukhl/storefront/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newStubAPI(t *testing.T) (*Client, *httptest.Server) {
	t.Helper()
	store := server.NewStore()
	seed, err := server.DecodeSeed(strings.NewReader(`
users:
  - {username: admin, email: admin@example.com, password: secret, role: admin}
products:
  - {title: Blue Speaker, price: 19.99, available_quantity: 3, product_type: Speaker}
  - {title: Red Backpack, price: 45, available_quantity: 1, product_type: Backpack}
`))
	require.NoError(t, err)
	require.NoError(t, store.Apply(seed))

	ts := httptest.NewServer(server.NewServer(store, zaptest.NewLogger(t)).Handler())
	t.Cleanup(ts.Close)

	return NewClientWithHTTP(ts.URL+"/", ts.Client(), zaptest.NewLogger(t)), ts
}

func TestLoginAndProductLifecycle(t *testing.T) {
	client, _ := newStubAPI(t)
	ctx := context.Background()

	resp, err := client.Login(ctx, "admin@example.com", "secret")
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.True(t, resp.User().IsAdmin())

	products, err := client.ListProducts(ctx, "")
	require.NoError(t, err)
	require.Len(t, products, 2)

	created, err := client.CreateProduct(ctx, resp.Token, models.Product{
		ID: "ignored", Title: "Gold Watch", Price: 99, ProductType: "Watch",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "ignored", created.ID)

	created.Title = "Gold Watch II"
	updated, err := client.UpdateProduct(ctx, resp.Token, *created)
	require.NoError(t, err)
	assert.Equal(t, "Gold Watch II", updated.Title)

	got, err := client.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gold Watch II", got.Title)

	require.NoError(t, client.DeleteProduct(ctx, resp.Token, created.ID))

	_, err = client.GetProduct(ctx, created.ID)
	assert.True(t, IsKind(err, KindNotFound), "got %v", err)
}

func TestLogin_RejectedCredentials(t *testing.T) {
	client, _ := newStubAPI(t)

	_, err := client.Login(context.Background(), "admin@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, KindUnauthorized, KindOf(err))

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid credentials", apiErr.Message)
}

func TestMutationWithoutToken(t *testing.T) {
	client, _ := newStubAPI(t)
	_, err := client.CreateProduct(context.Background(), "", models.Product{Title: "x"})
	assert.True(t, IsKind(err, KindUnauthorized))
}

func TestRegister_AlreadyExists(t *testing.T) {
	client, _ := newStubAPI(t)
	req := models.RegisterRequest{Role: "user", Username: "admin", Email: "admin@example.com", Password: "pw"}

	resp, err := client.Register(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.AlreadyExists)
}

func TestNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	client := NewClientWithHTTP(url, &http.Client{Timeout: time.Second}, zaptest.NewLogger(t))
	_, err := client.ListProducts(context.Background(), "")
	assert.Equal(t, KindNetwork, KindOf(err))
}

func TestServerAndDecodeErrors(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, `{"error":"database down"}`, http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"not":"a list"}`))
	}))
	defer ts.Close()

	client := NewClientWithHTTP(ts.URL, ts.Client(), zaptest.NewLogger(t))

	_, err := client.ListProducts(context.Background(), "")
	assert.Equal(t, KindServer, KindOf(err))
	assert.Contains(t, err.Error(), "database down")

	_, err = client.ListProducts(context.Background(), "")
	assert.Equal(t, KindDecode, KindOf(err))
}

func TestBearerHeaderSent(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	client := NewClientWithHTTP(ts.URL, ts.Client(), nil)
	products, err := client.ListProducts(context.Background(), "tok")
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Equal(t, "Bearer tok", got)
}

func TestKindForStatus(t *testing.T) {
	assert.Equal(t, KindUnauthorized, kindForStatus(401))
	assert.Equal(t, KindUnauthorized, kindForStatus(403))
	assert.Equal(t, KindNotFound, kindForStatus(404))
	assert.Equal(t, KindConflict, kindForStatus(409))
	assert.Equal(t, KindRejected, kindForStatus(422))
	assert.Equal(t, KindServer, kindForStatus(503))
	assert.True(t, KindServer.Retryable())
	assert.False(t, KindRejected.Retryable())
}
