package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/playrank/authd/internal/session"
)

// Middleware gates a handler on a valid session. Requests without a session
// cookie, or whose token no longer resolves, are rejected with 401 before the
// wrapped handler runs. On success the resolved user ID is attached to the
// request context.
func Middleware(store session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := session.TokenFromRequest(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing session")
				return
			}

			userID, err := store.Resolve(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, session.ErrNoSession):
					writeError(w, http.StatusUnauthorized, "invalid session")
				case errors.Is(err, context.DeadlineExceeded):
					writeError(w, http.StatusGatewayTimeout, "session store timeout")
				default:
					writeError(w, http.StatusServiceUnavailable, "session store unavailable")
				}
				return
			}

			ctx := context.WithValue(r.Context(), userKey{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type userKey struct{}

// UserFromContext extracts the authenticated user ID set by Middleware.
func UserFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userKey{}).(string)
	return userID, ok
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
