package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(Config{
		BaseURL:       srv.URL,
		Timeout:       5 * time.Second,
		RedirectDelay: 20 * time.Millisecond,
	}, zap.NewNop())
	return client, srv
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))

	client.SetToken("t1")
	require.NoError(t, client.getJSON(context.Background(), "/api/dashboard", nil))
	assert.Equal(t, "Bearer t1", gotAuth)
}

func TestClient_NoAuthHeaderWithoutToken(t *testing.T) {
	var sawHeader bool
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawHeader = r.Header["Authorization"]
		w.Write([]byte(`{}`))
	}))

	require.NoError(t, client.getJSON(context.Background(), "/api/dashboard", nil))
	assert.False(t, sawHeader)
}

func TestClient_Unauthorized_GETClearsAndRedirects(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Session expired"}`))
	}))

	var cleared atomic.Bool
	client.OnUnauthorized(func() { cleared.Store(true) })

	redirected := make(chan string, 1)
	client.OnRedirect(func(location string) { redirected <- location })

	err := client.getJSON(context.Background(), "/api/expenses", nil)
	require.Error(t, err)
	assert.Equal(t, "Session expired", UserMessage(err))
	assert.True(t, cleared.Load())

	select {
	case location := <-redirected:
		assert.Equal(t, LoginLocation, location)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected a login redirect after the delay")
	}
}

func TestClient_Forbidden_DELETEDoesNotRedirect(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"Not allowed"}`))
	}))

	var cleared atomic.Bool
	client.OnUnauthorized(func() { cleared.Store(true) })

	redirected := make(chan string, 1)
	client.OnRedirect(func(location string) { redirected <- location })

	err := client.delete(context.Background(), "/api/notifications/7")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "Not allowed", apiErr.Message)
	assert.True(t, cleared.Load(), "credentials must still be cleared")

	select {
	case <-redirected:
		t.Fatal("DELETE must not trigger the delayed redirect")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestClient_Unauthorized_PUTRedirectsOnlyWithHint(t *testing.T) {
	hint := false
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		if hint {
			w.Write([]byte(`{"message":"expired","redirect":"/login"}`))
		} else {
			w.Write([]byte(`{"message":"expired"}`))
		}
	}))

	redirected := make(chan string, 1)
	client.OnRedirect(func(location string) { redirected <- location })

	require.Error(t, client.sendJSON(context.Background(), http.MethodPut, "/api/expenses/1/approve", nil, nil))
	select {
	case <-redirected:
		t.Fatal("PUT without a hint must not redirect")
	case <-time.After(100 * time.Millisecond):
	}

	hint = true
	require.Error(t, client.sendJSON(context.Background(), http.MethodPut, "/api/expenses/1/approve", nil, nil))
	select {
	case location := <-redirected:
		assert.Equal(t, LoginLocation, location)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("PUT with a redirect hint must redirect")
	}
}

func TestClient_BusinessErrorMessageVerbatim(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Amount exceeds category budget"}`))
	}))

	err := client.sendJSON(context.Background(), http.MethodPost, "/api/expenses", nil, nil)
	require.Error(t, err)
	assert.Equal(t, "Amount exceeds category budget", UserMessage(err))
}

func TestUserMessage_TransportErrorIsGeneric(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"}, zap.NewNop())
	err := client.getJSON(context.Background(), "/api/dashboard", nil)
	require.Error(t, err)
	assert.Equal(t, GenericNetworkError, UserMessage(err))
}
