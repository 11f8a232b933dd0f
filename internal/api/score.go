package api

import (
	"log/slog"
	"net/http"

	"github.com/playrank/authd/internal/auth"
	"github.com/playrank/authd/internal/score"
)

// ScoreHandler accepts score submissions for the authenticated user.
type ScoreHandler struct {
	ledger *score.Ledger
	logger *slog.Logger
}

func NewScoreHandler(ledger *score.Ledger, logger *slog.Logger) *ScoreHandler {
	return &ScoreHandler{ledger: ledger, logger: logger}
}

type scoreRequest struct {
	Score int `json:"score"`
}

func (h *ScoreHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	userID, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	var req scoreRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.ledger.Submit(r.Context(), userID, req.Score)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if updated {
		h.logger.Info("best score updated", "user_id", userID, "score", req.Score)
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
