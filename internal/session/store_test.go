package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/expensedesk/expensectl/internal/api"
	"github.com/expensedesk/expensectl/internal/domain/entity"
)

func newTestStore(t *testing.T, handler http.Handler, storage Storage) (*Store, *api.Client) {
	t.Helper()
	if handler == nil {
		handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		})
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := zap.NewNop()
	client := api.NewClient(api.Config{BaseURL: srv.URL, Timeout: 5 * time.Second}, logger)
	store := NewStore(api.NewAuthAPI(client, logger), client, storage, logger)
	return store, client
}

func TestStore_LoginPersistsSession(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"token": "jwt-token",
			"user": map[string]interface{}{
				"id":       int64(5),
				"email":    "alice@corp.test",
				"fullName": "Alice",
				"role":     entity.RoleManager,
			},
		})
	})

	storage := NewMemoryStorage()
	store, client := newTestStore(t, handler, storage)

	identity, err := store.Login(context.Background(), "alice@corp.test", "secret")
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, "alice@corp.test", identity.Email)
	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "jwt-token", client.Token())

	token, ok := storage.Get(KeyToken)
	require.True(t, ok)
	assert.Equal(t, "jwt-token", token)
	rawUser, ok := storage.Get(KeyUser)
	require.True(t, ok)
	assert.Contains(t, rawUser, "alice@corp.test")
}

func TestStore_RestoresPersistedSession(t *testing.T) {
	storage := NewMemoryStorage()
	storage.Set(KeyToken, "stored-token")
	storage.Set(KeyUser, `{"id":3,"email":"bob@corp.test","role":"ROLE_FINANCE"}`)

	store, client := newTestStore(t, nil, storage)

	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "stored-token", client.Token())
	require.NotNil(t, store.Identity())
	assert.Equal(t, "bob@corp.test", store.Identity().Email)
}

func TestStore_CorruptedStoredUserInvalidatesSession(t *testing.T) {
	storage := NewMemoryStorage()
	storage.Set(KeyToken, "stored-token")
	storage.Set(KeyUser, `{not json`)

	store, client := newTestStore(t, nil, storage)

	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, client.Token())
	_, haveToken := storage.Get(KeyToken)
	assert.False(t, haveToken, "corrupted session must be cleared from storage")
	_, haveUser := storage.Get(KeyUser)
	assert.False(t, haveUser)
}

func TestStore_MissingKeyMeansUnauthenticated(t *testing.T) {
	storage := NewMemoryStorage()
	storage.Set(KeyToken, "stored-token")

	store, _ := newTestStore(t, nil, storage)
	assert.False(t, store.IsAuthenticated())
}

func TestStore_IngestCallbackOverwritesSession(t *testing.T) {
	storage := NewMemoryStorage()
	storage.Set(KeyToken, "old-token")
	storage.Set(KeyUser, `{"id":1,"email":"old@corp.test"}`)

	store, client := newTestStore(t, nil, storage)
	require.True(t, store.IsAuthenticated())

	values := url.Values{}
	values.Set("token", "fresh-token")
	values.Set("user", `{"id":2,"email":"fresh@corp.test","role":"ROLE_ADMIN"}`)
	require.True(t, store.IngestCallback(values))

	assert.Equal(t, "fresh-token", client.Token())
	require.NotNil(t, store.Identity())
	assert.Equal(t, "fresh@corp.test", store.Identity().Email)

	token, _ := storage.Get(KeyToken)
	assert.Equal(t, "fresh-token", token)
}

func TestStore_IngestCallbackKeepsOpaqueUser(t *testing.T) {
	storage := NewMemoryStorage()
	store, client := newTestStore(t, nil, storage)

	values := url.Values{}
	values.Set("token", "oauth-token")
	values.Set("user", "not-json-at-all")
	require.True(t, store.IngestCallback(values))

	assert.True(t, store.IsAuthenticated())
	assert.Nil(t, store.Identity())
	assert.Equal(t, "not-json-at-all", store.RawUser())
	assert.Equal(t, "oauth-token", client.Token())
}

func TestStore_IngestCallbackRejectsPartialValues(t *testing.T) {
	store, _ := newTestStore(t, nil, NewMemoryStorage())

	values := url.Values{}
	values.Set("token", "only-token")
	assert.False(t, store.IngestCallback(values))
	assert.False(t, store.IsAuthenticated())
}

func TestStore_LogoutClearsEverything(t *testing.T) {
	storage := NewMemoryStorage()
	storage.Set(KeyToken, "stored-token")
	storage.Set(KeyUser, `{"id":3,"email":"bob@corp.test"}`)

	store, client := newTestStore(t, nil, storage)
	require.True(t, store.IsAuthenticated())

	store.Logout()

	assert.False(t, store.IsAuthenticated())
	assert.Nil(t, store.Identity())
	assert.Empty(t, client.Token())
	_, haveToken := storage.Get(KeyToken)
	assert.False(t, haveToken)
	_, haveUser := storage.Get(KeyUser)
	assert.False(t, haveUser)
}

func TestStore_UnauthorizedResponseForcesLogout(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Session expired"}`))
	})

	storage := NewMemoryStorage()
	storage.Set(KeyToken, "stale-token")
	storage.Set(KeyUser, `{"id":3,"email":"bob@corp.test"}`)

	store, client := newTestStore(t, handler, storage)
	require.True(t, store.IsAuthenticated())

	expenseAPI := api.NewExpenseAPI(client, zap.NewNop())
	_, err := expenseAPI.List(context.Background())
	require.Error(t, err)

	assert.False(t, store.IsAuthenticated())
	_, haveToken := storage.Get(KeyToken)
	assert.False(t, haveToken)
}

func TestStore_TokenClaims(t *testing.T) {
	store, client := newTestStore(t, nil, NewMemoryStorage())

	_, err := store.TokenClaims()
	assert.ErrorIs(t, err, api.ErrUnauthenticated)

	// Unsigned but well-formed token: {"alg":"none"}.{"sub":"alice"}.
	client.SetToken("eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJzdWIiOiJhbGljZSJ9.")
	claims, err := store.TokenClaims()
	require.NoError(t, err)
	assert.Equal(t, "alice", claims["sub"])
}

func TestFileStorage_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewFileStorage(dir)
	require.NoError(t, err)

	_, ok := storage.Get(KeyToken)
	assert.False(t, ok)

	require.NoError(t, storage.Set(KeyToken, "value"))
	got, ok := storage.Get(KeyToken)
	require.True(t, ok)
	assert.Equal(t, "value", got)

	require.NoError(t, storage.Delete(KeyToken))
	_, ok = storage.Get(KeyToken)
	assert.False(t, ok)

	// Deleting an absent key is not an error.
	require.NoError(t, storage.Delete(KeyToken))
}
