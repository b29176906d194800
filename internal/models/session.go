package models

// UserInfo identifies the logged-in staff member
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Aud   string `json:"aud,omitempty"`
}

// Session is the login result persisted between runs
type Session struct {
	User         UserInfo `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
