package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"chatapp/errors"
)

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Authenticator issues and verifies the signed tokens used by both the HTTP
// layer and the realtime connection gate. The signing key comes from
// configuration, never from package state.
type Authenticator struct {
	key      []byte
	duration time.Duration
}

func NewAuthenticator(secret string, duration time.Duration) *Authenticator {
	return &Authenticator{key: []byte(secret), duration: duration}
}

// GenerateToken creates a signed JWT for a specific user using HS256.
func (a *Authenticator) GenerateToken(userID string) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "chatapp",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.key)
}

// Verify parses and validates the signature and expiration of a JWT string,
// returning the subject identity it carries. Any parse or validation problem
// is reported as ErrAuthFailure so callers can map it to a rejection without
// inspecting jwt internals.
func (a *Authenticator) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return a.key, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrAuthFailure, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", errors.ErrAuthFailure
	}
	return claims.UserID, nil
}
