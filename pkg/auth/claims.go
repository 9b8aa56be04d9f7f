package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/wardstockhq/wardstock-backend/pkg/enums"
)

// SessionTokenPayload captures the resolved identity minted into a session JWT.
type SessionTokenPayload struct {
	DisplayName string
	PictureURL  string
	LoginMode   enums.LoginMode
	JTI         string
}

// SessionTokenClaims represents the typed JWT issued to the mobile client.
type SessionTokenClaims struct {
	DisplayName string          `json:"display_name"`
	PictureURL  string          `json:"picture_url,omitempty"`
	LoginMode   enums.LoginMode `json:"login_mode"`
	jwt.RegisteredClaims
}
