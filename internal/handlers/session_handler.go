package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/bengalmatrimony/backend/internal/middleware"
	"github.com/bengalmatrimony/backend/internal/models"
	"github.com/bengalmatrimony/backend/internal/session"
)

type SessionHandler struct {
	sessions *session.Manager
}

func NewSessionHandler(sessions *session.Manager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type sessionResponse struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Create exchanges a verified identity token for the session cookie.
// Must run behind middleware.FirebaseAuth.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetVerifiedEmail(r.Context())
	if email == "" {
		writeErr(w, http.StatusUnauthorized, models.KindAuthentication, "Unauthorized")
		return
	}

	token, expiresAt, err := h.sessions.Issue(email)
	if err != nil {
		log.Printf("[Session] issue failed email=%s error=%v", email, err)
		writeErr(w, http.StatusInternalServerError, models.KindInternal, "Failed to create session")
		return
	}

	h.sessions.SetCookie(w, token, expiresAt)
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(sessionResponse{Email: email, ExpiresAt: expiresAt}))
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookie(w)
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"message": "Logged out"}))
}
