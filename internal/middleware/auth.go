package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/motoshop/auth-service/internal/auth"
)

// identityKey is the echo context key holding the verified TokenPayload.
const identityKey = "identity"

// TokenVerifier is the slice of the auth service the gate needs.  Taking an
// interface keeps the middleware testable with a stub verifier.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (auth.TokenPayload, error)
}

// Authenticate returns middleware that extracts a Bearer access token,
// verifies it through the auth service (which re-checks the user's active
// flag against the store), and attaches the payload to the request context.
// Expired, malformed and deactivated-user tokens all answer with the same
// INVALID_TOKEN code so account state never leaks to the caller; the real
// cause is logged server-side.
func Authenticate(v TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return errorJSON(c, http.StatusUnauthorized, "MISSING_TOKEN", "access token not provided")
			}
			payload, err := v.VerifyToken(c.Request().Context(), token)
			if err != nil {
				log.Printf("auth: token rejected: %v", err)
				return errorJSON(c, http.StatusUnauthorized, "INVALID_TOKEN", "invalid or expired token")
			}
			c.Set(identityKey, payload)
			return next(c)
		}
	}
}

// Identity returns the payload stored by Authenticate, and whether one is
// present.
func Identity(c echo.Context) (auth.TokenPayload, bool) {
	p, ok := c.Get(identityKey).(auth.TokenPayload)
	return p, ok
}

// bearerToken pulls the token out of "Authorization: Bearer <token>".
func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// errorJSON writes the error envelope shared with the handler package.
func errorJSON(c echo.Context, status int, code, msg string) error {
	return c.JSON(status, echo.Map{"error": echo.Map{"message": msg, "code": code}})
}
