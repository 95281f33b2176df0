package token

import "github.com/golang-jwt/jwt/v5"

// Kind distinguishes the two token types this service mints.
type Kind string

const (
	// KindAccess tokens authorize API requests for their short lifetime.
	KindAccess Kind = "access"

	// KindRefresh tokens mint new access tokens without re-authentication.
	KindRefresh Kind = "refresh"
)

// Claims is the JWT payload for both token kinds.
type Claims struct {
	UserID int64  `json:"uid"`
	Email  string `json:"email"`
	Kind   Kind   `json:"kind"`
	jwt.RegisteredClaims
}
