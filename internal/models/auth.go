package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds the DNI and password pair for authentication.
type LoginRequest struct {
	DNI       string `json:"dni" validate:"required,numeric"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued tokens and the resolved person info.
type LoginResponse struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
	Username     string `json:"username"`
	DNI          string `json:"dni"`
	Role         string `json:"rol"`
	FirstName    string `json:"nombre"`
	LastName     string `json:"apellido"`
	FirstLogin   bool   `json:"primer_login"`
	Message      string `json:"message,omitempty"`
}

// SessionInfo describes the authenticated caller. Role is nil when the
// credential resolves to no person of either variant.
type SessionInfo struct {
	Username   string  `json:"username"`
	DNI        string  `json:"dni"`
	Role       *string `json:"rol"`
	PersonID   *string `json:"person_id,omitempty"`
	FirstName  *string `json:"nombre,omitempty"`
	LastName   *string `json:"apellido,omitempty"`
	FirstLogin *bool   `json:"primer_login,omitempty"`
}

// ChangePasswordRequest carries the replacement password. The minimum
// length is enforced by the identity service from configuration.
type ChangePasswordRequest struct {
	NewPassword string `json:"nueva" validate:"required"`
}

// RefreshTokenRequest exchanges a refresh token for a new access token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh" validate:"required"`
	IP           string `json:"-"`
	UserAgent    string `json:"-"`
}

// RefreshTokenResponse returns the rotated token pair.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
	ExpiresIn    int64  `json:"expires_in"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	DNI      string `json:"dni"`
	Role     string `json:"rol"`
	FullName string `json:"full_name"`
	jwt.RegisteredClaims
}
