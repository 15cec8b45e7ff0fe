package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/motoshop/auth-service/internal/auth"
	"github.com/motoshop/auth-service/internal/middleware"
	"github.com/motoshop/auth-service/internal/queue"
	"github.com/motoshop/auth-service/internal/repository"
	queue_publisher "github.com/motoshop/auth-service/internal/service"
)

const dbTimeout = 5 * time.Second

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Svc   *auth.Service
	Store auth.UserStore
}

func NewAuthHandler(svc *auth.Service, store auth.UserStore) *AuthHandler {
	return &AuthHandler{Svc: svc, Store: store}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}
type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Login validates credentials and returns the user with a fresh token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "MISSING_CREDENTIALS", "email and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, pair, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrInactiveAccount) {
			return fail(c, http.StatusUnauthorized, "LOGIN_FAILED", err.Error())
		}
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "login failed")
	}

	// Audit trail; a broker outage must not fail the login.
	ev := queue.LoginEvent{
		UserID:     u.ID,
		Email:      u.Email,
		Role:       u.Role.String(),
		ClientIP:   c.RealIP(),
		LoggedInAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), dbTimeout)
		defer pubCancel()
		_ = queue_publisher.PublishLogin(pubCtx, ev)
	}()

	return success(c, http.StatusOK, echo.Map{
		"user":         u,
		"token":        pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "login successful")
}

// Refresh exchanges a refresh token for a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return fail(c, http.StatusBadRequest, "MISSING_REFRESH_TOKEN", "refresh token is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	pair, err := h.Svc.Refresh(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidRefreshToken) {
			return fail(c, http.StatusUnauthorized, "REFRESH_FAILED", "invalid or expired refresh token")
		}
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "token refresh failed")
	}
	return success(c, http.StatusOK, echo.Map{
		"token":        pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "token refreshed")
}

// Verify checks the bearer access token and returns its payload.  The
// handler extracts the header itself so the route stays reachable without
// the Authenticate middleware.
func (h *AuthHandler) Verify(c echo.Context) error {
	header := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return fail(c, http.StatusUnauthorized, "MISSING_TOKEN", "access token not provided")
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	payload, err := h.Svc.VerifyToken(ctx, token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return fail(c, http.StatusUnauthorized, "INVALID_TOKEN", "invalid or expired token")
		}
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "token verification failed")
	}
	return success(c, http.StatusOK, payload, "token valid")
}

// Logout acknowledges the client.  Tokens are bearer-only with no
// server-side store, so there is nothing to revoke; clients discard their
// pair.
func (h *AuthHandler) Logout(c echo.Context) error {
	return success(c, http.StatusOK, nil, "logout successful")
}

// ChangePassword lets the authenticated user rotate their own password.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	p, ok := middleware.Identity(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "user not authenticated")
	}
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return fail(c, http.StatusBadRequest, "MISSING_PASSWORDS", "current and new password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Svc.ChangePassword(ctx, p.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCurrentPassword):
			return fail(c, http.StatusBadRequest, "INVALID_CURRENT_PASSWORD", "current password is invalid")
		case errors.Is(err, auth.ErrUserNotFound):
			return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
		}
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "password change failed")
	}
	return success(c, http.StatusOK, nil, "password changed")
}

// Profile returns the fresh user record of the authenticated caller.
func (h *AuthHandler) Profile(c echo.Context) error {
	p, ok := middleware.Identity(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "user not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Store.GetByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
		}
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load profile")
	}
	return success(c, http.StatusOK, u, "profile loaded")
}
