package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/motoshop/auth-service/internal/model"
)

// TokenPayload is the identity a verified token grants.  It is embedded in
// both the access and the refresh JWT; the two differ only in TTL and
// signing secret.
type TokenPayload struct {
	UserID uint64     `json:"userId"`
	Email  string     `json:"email"`
	Role   model.Role `json:"role"`
}

// claims is the on-wire claim set.  Role travels as its string form so the
// token stays readable to other consumers.
type claims struct {
	UserID uint64 `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// signToken builds and signs an HS256 JWT carrying the payload, expiring
// after ttl.  Returns the serialized token and its expiry.
func signToken(secret []byte, p TokenPayload, ttl time.Duration) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	c := claims{
		UserID: p.UserID,
		Email:  p.Email,
		Role:   p.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// parseToken verifies signature and expiry against the given secret and
// returns the embedded payload.  Tokens signed with any non-HMAC method are
// rejected outright.
func parseToken(secret []byte, raw string) (TokenPayload, error) {
	var c claims
	tok, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return secret, nil
	})
	if err != nil {
		return TokenPayload{}, err
	}
	if !tok.Valid {
		return TokenPayload{}, jwt.ErrTokenInvalidClaims
	}
	role, err := model.ParseRole(c.Role)
	if err != nil {
		return TokenPayload{}, err
	}
	return TokenPayload{UserID: c.UserID, Email: c.Email, Role: role}, nil
}
