package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var errInvalidToken = errors.New("invalid token")

type tokenClaims struct {
	jwt.RegisteredClaims
	UserID int `json:"user_id"`
}

// issueToken mints a signed HS256 token carrying the user id, valid for ttl
// from now. Tokens are self-contained; there is no revocation before expiry.
func issueToken(userID int, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
	})
	return token.SignedString(secret)
}

// verifyToken checks signature and expiry and returns the embedded user id.
// Any failure, including a structurally malformed token, yields errInvalidToken.
func verifyToken(tokenStr string, secret []byte) (int, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return 0, errInvalidToken
	}
	return claims.UserID, nil
}
