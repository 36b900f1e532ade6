package jwt

import (
	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Kind discrimina access de refresh dentro del mismo esquema de claims.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

func (k Kind) Valid() bool { return k == KindAccess || k == KindRefresh }

// Claims es el payload en el cable: {sub, iat, exp, token_type}.
type Claims struct {
	TokenType Kind `json:"token_type"`
	jwtv5.RegisteredClaims
}
