// Package auth issues and validates the session tokens handed out
// after a successful face verification.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// sessionTTL bounds how long a verified session stays usable before
// the user must verify their face again.
const sessionTTL = 30 * time.Minute

// SessionClaims carries the verified identity inside the token.
type SessionClaims struct {
	LoginID string `json:"login_id"`
	jwt.RegisteredClaims
}

// IssueSession mints an HS256 token for a freshly verified user.
func IssueSession(secret, username, loginID string) (string, error) {
	if secret == "" {
		return "", errors.New("missing session secret")
	}
	now := time.Now()
	claims := SessionClaims{
		LoginID: loginID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseSession validates a token and returns its claims.
func ParseSession(secret, tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" || claims.LoginID == "" {
		return nil, errors.New("incomplete session claims")
	}
	return claims, nil
}
