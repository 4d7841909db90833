package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kopinusa/storefront/internal/core/domain"
)

// sessionClaims is what the browser cookie carries. The backend token never
// leaves the server; the cookie only points at the stored session.
type sessionClaims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func signSessionToken(secret []byte, sess *domain.Session) (string, error) {
	claims := sessionClaims{
		Role: sess.Identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   sess.Identity.UserID,
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func parseSessionToken(secret []byte, raw string, now time.Time) (*sessionClaims, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, domain.ErrSessionExpired
	case err != nil:
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, domain.ErrUnauthenticated
	}
	return claims, nil
}
