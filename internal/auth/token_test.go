package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/motoshop/auth-service/internal/model"
)

func TestSignAndParseToken(t *testing.T) {
	secret := []byte("codec-test-secret")
	in := TokenPayload{UserID: 42, Email: "m@x.com", Role: model.RoleMechanic}

	raw, exp, err := signToken(secret, in, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if until := time.Until(exp); until < 55*time.Minute || until > 65*time.Minute {
		t.Fatalf("expiry %v not about an hour away", exp)
	}

	out, err := parseToken(secret, raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if out != in {
		t.Fatalf("payload round trip: got %+v, want %+v", out, in)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	raw, _, err := signToken([]byte("secret-one"), TokenPayload{UserID: 1, Email: "a@x.com", Role: model.RoleAdmin}, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := parseToken([]byte("secret-two"), raw); err == nil {
		t.Fatal("token verified under the wrong secret")
	}
}

func TestParseTokenRejectsUnknownRoleClaim(t *testing.T) {
	// Hand-build a token whose role claim is outside the closed set.
	secret := []byte("codec-test-secret")
	c := claims{
		UserID: 7,
		Email:  "x@x.com",
		Role:   "superuser",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := parseToken(secret, raw); err == nil {
		t.Fatal("token with unknown role parsed successfully")
	}
}

func TestParseTokenRejectsUnsignedToken(t *testing.T) {
	c := claims{
		UserID: 7,
		Email:  "x@x.com",
		Role:   "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, c).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := parseToken([]byte("codec-test-secret"), raw); err == nil {
		t.Fatal("alg=none token was accepted")
	}
}
