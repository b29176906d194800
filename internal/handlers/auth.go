package handlers

import (
	"net/http"

	"github.com/otcheredev/clinic-desk/internal/models"
	"github.com/otcheredev/clinic-desk/internal/session"
)

type AuthHandler struct {
	session *session.Store
	auth    session.Authenticator
}

func NewAuthHandler(store *session.Store, auth session.Authenticator) *AuthHandler {
	return &AuthHandler{session: store, auth: auth}
}

type loginPage struct {
	Page          string `json:"page"`
	Authenticated bool   `json:"authenticated"`
}

type loginResponse struct {
	User models.UserInfo `json:"user"`
}

// LoginPage describes the login view
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, loginPage{Page: "login", Authenticated: h.session.IsAuthenticated()})
}

// Login authenticates against the backend and stores the session
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	sess, err := h.session.Login(r.Context(), h.auth, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{User: sess.User})
}

// Logout forgets the local session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.session.ClearAuth(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
