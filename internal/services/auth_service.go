package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/otcheredev/clinic-desk/internal/apperr"
	"github.com/otcheredev/clinic-desk/internal/gateway"
	"github.com/otcheredev/clinic-desk/internal/models"
)

// AuthService logs staff members in against the backend
type AuthService struct {
	api Doer
}

// NewAuthService creates a new auth service
func NewAuthService(api Doer) *AuthService {
	return &AuthService{api: api}
}

// Login exchanges credentials for a session
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperr.New(apperr.KindValidation, "Email and password are required.")
	}

	var session models.Session
	err := s.api.Do(ctx, gateway.Request{
		Method:    http.MethodPost,
		Path:      "/auth/login",
		Body:      models.LoginRequest{Email: email, Password: password},
		Anonymous: true,
	}, &session)
	if err != nil {
		return nil, normalize(err, "Could not log in. Check the connection or the server.")
	}
	if session.AccessToken == "" {
		return nil, apperr.New(apperr.KindServer, "The server did not return an access token.")
	}
	return &session, nil
}
