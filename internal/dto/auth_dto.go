package dto

import "github.com/buildcare/defect-backend/internal/models"

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the access token in the body. The refresh token
// travels only in the HttpOnly cookie, never in JSON.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}
