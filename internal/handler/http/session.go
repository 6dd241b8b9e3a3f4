package http

import (
	"log/slog"
	"net/http"

	"github.com/czy882/sanitary-pads-shop/internal/token"
	"github.com/czy882/sanitary-pads-shop/pkg/httputil"
)

// SessionHandler manages the cart session token used to authenticate against
// the backend. Clearing the token drops back to a guest session.
type SessionHandler struct {
	tokens *token.Store
	logger *slog.Logger
}

// NewSessionHandler creates a new session HTTP handler.
func NewSessionHandler(tokens *token.Store, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{tokens: tokens, logger: logger}
}

// SetTokenRequest is the JSON request body for installing a session token.
type SetTokenRequest struct {
	Token string `json:"token" validate:"required,min=1,max=4096"`
}

// SetToken handles PUT /api/v1/session/token
func (h *SessionHandler) SetToken(w http.ResponseWriter, r *http.Request) {
	var req SetTokenRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.tokens.Set(req.Token)
	h.logger.InfoContext(r.Context(), "cart session token installed")
	httputil.WriteData(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ClearToken handles DELETE /api/v1/session/token
func (h *SessionHandler) ClearToken(w http.ResponseWriter, r *http.Request) {
	h.tokens.Clear()
	h.logger.InfoContext(r.Context(), "cart session token cleared")
	httputil.WriteData(w, http.StatusOK, map[string]string{"status": "ok"})
}
