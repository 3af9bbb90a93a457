// Package auth signs and verifies the session token and manages its cookie.
package auth

import (
	"errors"
	"time"

	"homedish/apperr"
	"homedish/models"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the session lifetime.
const DefaultTTL = 7 * 24 * time.Hour

// JWT claims
type Claims struct {
	UID   string      `json:"uid"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	jwt.RegisteredClaims
}

type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenCodec(secret []byte, ttl time.Duration) *TokenCodec {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TokenCodec{secret: secret, ttl: ttl, now: time.Now}
}

// Issue signs a token for the identity and returns it with its expiry.
func (c *TokenCodec) Issue(uid, email string, role models.Role) (string, time.Time, error) {
	now := c.now()
	expires := now.Add(c.ttl)
	claims := Claims{
		UID:   uid,
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, apperr.Dependency("failed to sign token", err)
	}
	return signed, expires, nil
}

// Parse verifies signature and expiry. Every failure is InvalidToken.
func (c *TokenCodec) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.InvalidToken("token expired")
		}
		return nil, apperr.InvalidToken("invalid token")
	}
	if !token.Valid || claims.Email == "" {
		return nil, apperr.InvalidToken("invalid token")
	}
	return claims, nil
}
