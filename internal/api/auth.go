package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/playrank/authd/internal/auth"
	"github.com/playrank/authd/internal/session"
	"github.com/playrank/authd/internal/storage"
)

// AuthHandler serves login, signup, and logout. Login and signup share the
// same session-issuance path: a successful signup logs the user in.
type AuthHandler struct {
	users      storage.UserStore
	sessions   session.Store
	cookieOpts func() session.CookieOptions
	logger     *slog.Logger
}

func NewAuthHandler(users storage.UserStore, sessions session.Store, cookieOpts func() session.CookieOptions, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:      users,
		sessions:   sessions,
		cookieOpts: cookieOpts,
		logger:     logger,
	}
}

type credentialsRequest struct {
	ID string `json:"id"`
	PW string `json:"pw"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.Lookup(r.Context(), req.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "no user")
			return
		}
		writeStoreError(w, err)
		return
	}

	if !auth.ParseCredential(user.PasswordHash).Verify(req.PW) {
		writeError(w, http.StatusUnauthorized, "bad pw")
		return
	}

	if !h.issueSession(r.Context(), w, user.ID) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if len(req.ID) < 3 {
		writeError(w, http.StatusBadRequest, "id must be at least 3 characters")
		return
	}
	if len(req.PW) < 4 {
		writeError(w, http.StatusBadRequest, "pw must be at least 4 characters")
		return
	}

	// Friendly pre-check; the primary key on users.id is the authoritative
	// guard when two signups race past this point.
	_, err := h.users.Lookup(r.Context(), req.ID)
	if err == nil {
		writeError(w, http.StatusBadRequest, "id already exists")
		return
	}
	if !errors.Is(err, storage.ErrNotFound) {
		writeStoreError(w, err)
		return
	}

	if err := h.users.Create(r.Context(), req.ID, auth.HashPassword(req.PW)); err != nil {
		if errors.Is(err, storage.ErrDuplicateID) {
			writeError(w, http.StatusBadRequest, "id already exists")
			return
		}
		writeStoreError(w, err)
		return
	}

	h.logger.Info("user created", "user_id", req.ID)

	if !h.issueSession(r.Context(), w, req.ID) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "signup complete"})
}

// Logout never fails: the session delete is best-effort and the cookie is
// always cleared, whatever state the token or the store is in.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if token, ok := session.TokenFromRequest(r); ok {
		if err := h.sessions.Destroy(r.Context(), token); err != nil {
			h.logger.Warn("session destroy failed", "error", err)
		}
	}

	session.ClearCookie(w, h.cookieOpts())
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// issueSession creates a session and attaches the cookie. The cookie is set
// only after the store write succeeds, so a failed creation never leaves the
// client believing it is logged in. Reports whether the caller should write
// its success payload.
func (h *AuthHandler) issueSession(ctx context.Context, w http.ResponseWriter, userID string) bool {
	token, err := session.NewToken()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "session error")
		return false
	}
	if err := h.sessions.Create(ctx, token, userID); err != nil {
		writeStoreError(w, err)
		return false
	}
	session.SetCookie(w, token, h.cookieOpts())
	return true
}
