package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/playrank/authd/internal/session"
)

type stubSessions struct {
	resolve func(token string) (string, error)
}

func (s *stubSessions) Create(context.Context, string, string) error { return nil }
func (s *stubSessions) Destroy(context.Context, string) error        { return nil }
func (s *stubSessions) Resolve(_ context.Context, token string) (string, error) {
	return s.resolve(token)
}

func gated(store session.Store) (http.Handler, *string) {
	var seen string
	handler := Middleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserFromContext(r.Context())
		seen = userID
		w.WriteHeader(http.StatusOK)
	}))
	return handler, &seen
}

func TestMiddlewareMissingCookie(t *testing.T) {
	handler, _ := gated(&stubSessions{resolve: func(string) (string, error) {
		t.Fatal("resolve must not be called without a cookie")
		return "", nil
	}})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/session/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareInvalidSession(t *testing.T) {
	handler, _ := gated(&stubSessions{resolve: func(string) (string, error) {
		return "", session.ErrNoSession
	}})

	req := httptest.NewRequest(http.MethodGet, "/session/me", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "stale"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareStoreTimeout(t *testing.T) {
	handler, _ := gated(&stubSessions{resolve: func(string) (string, error) {
		return "", context.DeadlineExceeded
	}})

	req := httptest.NewRequest(http.MethodGet, "/session/me", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "tok"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// A slow store is a 5xx, never mistaken for bad credentials.
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestMiddlewareValidSession(t *testing.T) {
	handler, seen := gated(&stubSessions{resolve: func(token string) (string, error) {
		assert.Equal(t, "tok", token)
		return "alice", nil
	}})

	req := httptest.NewRequest(http.MethodGet, "/session/me", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "tok"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", *seen)
}
