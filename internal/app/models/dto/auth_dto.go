package dto

import "github.com/yigit/projecthub/internal/app/models"

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"admin@college.edu"`
	Password string `json:"password" binding:"required" example:"changeme123"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64  `json:"expiresIn" example:"43200"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token       TokenResponse       `json:"token"`
	User        UserResponse        `json:"user"`
	Permissions PermissionsResponse `json:"permissions"`
}

// PermissionsResponse is the console access of the caller
type PermissionsResponse struct {
	Role  models.RoleType `json:"role" example:"FACULTY"`
	Level string          `json:"level" example:"LIMITED"`
	Tabs  []models.Tab    `json:"tabs"`
	// Error is "error parsing permissions" when the stored grant was unreadable
	Error string `json:"error,omitempty"`
}
