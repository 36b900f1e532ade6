// Package jwt emite y valida bearer tokens HS256 con discriminante de tipo.
package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// RefreshTTL es fijo; no depende de configuración.
const RefreshTTL = 30 * 24 * time.Hour

// signingMethod es el único algoritmo aceptado al validar.
var signingMethod = jwtv5.SigningMethodHS256

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrWrongKind    = errors.New("token kind mismatch")
	ErrEmptySecret  = errors.New("empty signing secret")
)

// Issuer agrupa secreto y TTL de access; Now es inyectable para tests.
type Issuer struct {
	Secret    []byte
	AccessTTL time.Duration
	Now       func() time.Time
}

func NewIssuer(secret string, accessTTL time.Duration) *Issuer {
	return &Issuer{Secret: []byte(secret), AccessTTL: accessTTL, Now: time.Now}
}

func (i *Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

// IssueAccess firma un token kind=access que expira en AccessTTL.
func (i *Issuer) IssueAccess(userID string) (string, time.Time, error) {
	return i.sign(userID, KindAccess, i.AccessTTL)
}

// IssueRefresh firma un token kind=refresh que expira en RefreshTTL.
func (i *Issuer) IssueRefresh(userID string) (string, time.Time, error) {
	return i.sign(userID, KindRefresh, RefreshTTL)
}

func (i *Issuer) sign(sub string, kind Kind, ttl time.Duration) (string, time.Time, error) {
	if len(i.Secret) == 0 {
		return "", time.Time{}, ErrEmptySecret
	}
	now := i.now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		TokenType: kind,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(exp),
		},
	}
	signed, err := jwtv5.NewWithClaims(signingMethod, claims).SignedString(i.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, exp, nil
}

// Verify valida firma (solo HS256), expiración y kind; devuelve el sub.
func (i *Issuer) Verify(raw string, expected Kind) (string, error) {
	if len(i.Secret) == 0 {
		return "", ErrEmptySecret
	}
	var claims Claims
	_, err := jwtv5.ParseWithClaims(raw, &claims,
		func(*jwtv5.Token) (any, error) { return i.Secret, nil },
		jwtv5.WithValidMethods([]string{signingMethod.Alg()}),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithIssuedAt(),
		jwtv5.WithTimeFunc(i.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwtv5.ErrTokenExpired):
		return "", ErrExpiredToken
	default:
		return "", ErrInvalidToken
	}
	if claims.TokenType != expected {
		return "", ErrWrongKind
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// =================================================================================
// Atajos sin estado
// =================================================================================

func CreateAccessToken(userID, secret string, ttlMinutes int) (string, error) {
	tok, _, err := NewIssuer(secret, time.Duration(ttlMinutes)*time.Minute).IssueAccess(userID)
	return tok, err
}

func CreateRefreshToken(userID, secret string) (string, error) {
	tok, _, err := NewIssuer(secret, 0).IssueRefresh(userID)
	return tok, err
}

func VerifyToken(raw, secret string, expected Kind) (string, error) {
	return NewIssuer(secret, 0).Verify(raw, expected)
}
