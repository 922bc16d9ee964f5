package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memTokens struct {
	mu      sync.Mutex
	token   string
	cleared bool
}

func (m *memTokens) Token() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memTokens) SetToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *memTokens) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.cleared = true
	return nil
}

func newTestClient(t *testing.T, h http.Handler, tokens TokenSource, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api", tokens, opts...)
}

func TestClient_TimeoutLeavesSharedHTTPClientAlone(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}
	c := NewClient("http://tracker.test/api", &memTokens{}, WithHTTPClient(shared), WithTimeout(2*time.Second))

	assert.Equal(t, time.Minute, shared.Timeout)
	assert.Equal(t, 2*time.Second, c.http.Timeout)
	assert.NotSame(t, shared, c.http)

	c = NewClient("http://tracker.test/api", &memTokens{}, WithHTTPClient(shared))
	assert.Same(t, shared, c.http)
}

func TestClient_SendsBearerAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		_, _ = w.Write([]byte(`{"data":{"id":"3","name":"Ada","email":"ada@example.com","role":"manager"}}`))
	}), &memTokens{token: "abc"})

	user, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, &User{ID: 3, Name: "Ada", Email: "ada@example.com", Role: RoleManager}, user)
}

func TestClient_MeWithoutToken(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler(), &memTokens{})

	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.True(t, IsUnauthorized(err))
}

func TestClient_RefreshesOnceAndRetries(t *testing.T) {
	var refreshes, calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		assert.Equal(t, "Bearer old", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"access_token":"new"}`))
	})
	mux.HandleFunc("/api/users/tasks/edit/status/9", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("Authorization") != "Bearer new" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"status":"completed"}`, string(body))
		w.WriteHeader(http.StatusNoContent)
	})

	tokens := &memTokens{token: "old"}
	c := newTestClient(t, mux, tokens)

	require.NoError(t, c.UpdateTaskStatus(context.Background(), 9, "completed"))
	assert.Equal(t, int32(1), refreshes.Load())
	assert.Equal(t, int32(2), calls.Load())
	tok, _ := tokens.Token()
	assert.Equal(t, "new", tok)
}

func TestClient_RetryIsNotRepeated(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"new"}`))
	})
	mux.HandleFunc("/api/me", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	c := newTestClient(t, mux, &memTokens{token: "old"})

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_ConcurrentUnauthorizedShareRefresh(t *testing.T) {
	var refreshes, rejected atomic.Int32
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		<-release
		_, _ = w.Write([]byte(`{"access_token":"new"}`))
	})
	mux.HandleFunc("/api/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer new" {
			rejected.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"id":1,"role":"user"}}`))
	})

	c := newTestClient(t, mux, &memTokens{token: "old"})

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Me(context.Background())
		}(i)
	}
	require.Eventually(t, func() bool { return rejected.Load() == 5 }, timeout, tick)
	// let every caller reach the shared refresh before it completes
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), refreshes.Load())
}

func TestClient_RefreshFailureExpiresSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/api/projects/index", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Unauthenticated."}`))
	})

	var expired atomic.Bool
	tokens := &memTokens{token: "old"}
	c := newTestClient(t, mux, tokens, WithSessionExpired(func() { expired.Store(true) }))

	_, err := c.Projects(context.Background(), RoleManager)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, "Unauthenticated.", MessageOf(err))
	assert.True(t, expired.Load())
	assert.True(t, tokens.cleared)
}

func TestClient_AnonymousRequestsDoNotRefresh(t *testing.T) {
	var refreshes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
	})
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	c := newTestClient(t, mux, &memTokens{token: "stale"})

	_, err := c.Login(context.Background(), Credentials{Email: "a@b.c", Password: "x"})
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, int32(0), refreshes.Load())
}

func TestClient_Login(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		var creds Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "ada@example.com", creds.Email)
		_, _ = w.Write([]byte(`{"authorization":{"access_token":"tok"}}`))
	}), &memTokens{})

	token, err := c.Login(context.Background(), Credentials{Email: "ada@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
}

func TestError_PermissionDenied(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"not allowed"}`))
	}), &memTokens{token: "t"})

	err := c.UpdateTaskStatus(context.Background(), 1, "todo")
	require.Error(t, err)
	assert.True(t, IsPermissionDenied(err))
	assert.Equal(t, "api: status 400: not allowed", err.Error())

	assert.True(t, IsPermissionDenied(&Error{StatusCode: http.StatusForbidden}))
	assert.False(t, IsPermissionDenied(&Error{StatusCode: http.StatusInternalServerError}))
	assert.False(t, IsNotFound(assert.AnError))
}
