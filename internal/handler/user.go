package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/motoshop/auth-service/internal/auth"
	"github.com/motoshop/auth-service/internal/middleware"
	"github.com/motoshop/auth-service/internal/model"
	"github.com/motoshop/auth-service/internal/queue"
	"github.com/motoshop/auth-service/internal/repository"
	queue_publisher "github.com/motoshop/auth-service/internal/service"
)

// UserHandler implements the admin-facing user management endpoints.
// Creation and password resets go through the auth service so hashing stays
// in one place; reads and flag flips hit the store directly.
type UserHandler struct {
	Svc   *auth.Service
	Store auth.UserStore
}

func NewUserHandler(svc *auth.Service, store auth.UserStore) *UserHandler {
	return &UserHandler{Svc: svc, Store: store}
}

type createUserReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}
type updateUserReq struct {
	Email *string `json:"email"`
	Name  *string `json:"name"`
	Role  *string `json:"role"`
}
type resetPasswordReq struct {
	NewPassword string `json:"newPassword"`
}

// Create provisions a new account.  Admin only; there is no
// self-registration.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" || strings.TrimSpace(req.Name) == "" {
		return fail(c, http.StatusBadRequest, "MISSING_FIELDS", "email, password and name are required")
	}
	var role model.Role
	if req.Role != "" {
		parsed, err := model.ParseRole(req.Role)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_ROLE", "role must be one of admin, manager, operator, mechanic")
		}
		role = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Svc.CreateUser(ctx, auth.NewUser{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     role,
	})
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateEmail) {
			return fail(c, http.StatusConflict, "DUPLICATE_EMAIL", "email already in use")
		}
		return fail(c, http.StatusInternalServerError, "CREATE_USER_FAILED", "failed to create user")
	}

	creator, _ := middleware.Identity(c)
	ev := queue.UserCreatedEvent{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role.String(),
		CreatedBy: creator.UserID,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), dbTimeout)
		defer pubCancel()
		_ = queue_publisher.PublishUserCreated(pubCtx, ev)
	}()

	return success(c, http.StatusCreated, u, "user created")
}

// List returns one page of users ordered by name.  ?active=true|false,
// ?role=<role> and ?search=<substring over name/email> narrow the result;
// ?page= and ?limit= select the page (defaults 1 and 10).
func (h *UserHandler) List(c echo.Context) error {
	var f model.UserFilter
	if v := c.QueryParam("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_FILTER", "active must be true or false")
		}
		f.Active = &active
	}
	if v := c.QueryParam("role"); v != "" {
		role, err := model.ParseRole(v)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_FILTER", "unknown role filter")
		}
		f.Role = &role
	}
	f.Search = strings.TrimSpace(c.QueryParam("search"))

	page, err := queryInt(c, "page", 1)
	if err != nil || page < 1 {
		return fail(c, http.StatusBadRequest, "INVALID_FILTER", "page must be a positive integer")
	}
	limit, err := queryInt(c, "limit", 10)
	if err != nil || limit < 1 {
		return fail(c, http.StatusBadRequest, "INVALID_FILTER", "limit must be a positive integer")
	}
	f.Limit = limit
	f.Offset = (page - 1) * limit

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.Store.List(ctx, f)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list users")
	}
	total, err := h.Store.Count(ctx, f)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list users")
	}
	if users == nil {
		users = []model.User{}
	}
	return success(c, http.StatusOK, echo.Map{
		"users":      users,
		"pagination": model.Paginate(page, limit, total),
	}, "users listed")
}

// Show returns a single user by id.
func (h *UserHandler) Show(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "user id must be a positive integer")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
		}
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load user")
	}
	return success(c, http.StatusOK, u, "user loaded")
}

// Update rewrites name, email and role.  Only the provided fields change;
// the unique index catches email collisions.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "user id must be a positive integer")
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
		}
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load user")
	}

	if req.Email != nil {
		if strings.TrimSpace(*req.Email) == "" {
			return fail(c, http.StatusBadRequest, "MISSING_FIELDS", "email cannot be empty")
		}
		u.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return fail(c, http.StatusBadRequest, "MISSING_FIELDS", "name cannot be empty")
		}
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		role, err := model.ParseRole(*req.Role)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_ROLE", "role must be one of admin, manager, operator, mechanic")
		}
		u.Role = role
	}

	if err := h.Store.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return fail(c, http.StatusConflict, "DUPLICATE_EMAIL", "email already in use")
		}
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to update user")
	}
	u.PasswordHash = ""
	return success(c, http.StatusOK, u, "user updated")
}

// Deactivate soft-deletes an account.  The store re-check in the verify
// path makes every outstanding token of the user invalid immediately.
// Admins cannot deactivate themselves.
func (h *UserHandler) Deactivate(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "user id must be a positive integer")
	}
	caller, _ := middleware.Identity(c)
	if caller.UserID == id {
		return fail(c, http.StatusBadRequest, "CANNOT_DEACTIVATE_SELF", "you cannot deactivate your own account")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
		}
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load user")
	}
	if err := h.Store.SetActive(ctx, id, false); err != nil {
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to deactivate user")
	}

	ev := queue.UserDeactivatedEvent{
		UserID:        u.ID,
		Email:         u.Email,
		DeactivatedBy: caller.UserID,
		DeactivatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), dbTimeout)
		defer pubCancel()
		_ = queue_publisher.PublishUserDeactivated(pubCtx, ev)
	}()

	return success(c, http.StatusOK, nil, "user deactivated")
}

// Activate re-enables a deactivated account.
func (h *UserHandler) Activate(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "user id must be a positive integer")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Store.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
		}
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load user")
	}
	if err := h.Store.SetActive(ctx, id, true); err != nil {
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to activate user")
	}
	return success(c, http.StatusOK, nil, "user activated")
}

// ResetPassword sets a new password for a user without their current one.
func (h *UserHandler) ResetPassword(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "user id must be a positive integer")
	}
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil || req.NewPassword == "" {
		return fail(c, http.StatusBadRequest, "MISSING_PASSWORD", "new password is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Svc.ResetPassword(ctx, id, req.NewPassword); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
		}
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to reset password")
	}
	return success(c, http.StatusOK, nil, "password reset")
}

// Stats aggregates user counts for the management dashboard.
func (h *UserHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	stats, err := h.Store.CountByRole(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to compute stats")
	}
	return success(c, http.StatusOK, stats, "stats computed")
}

// Roles returns the role catalog for UI dropdowns.
func (h *UserHandler) Roles(c echo.Context) error {
	type roleJSON struct {
		Value string `json:"value"`
		Label string `json:"label"`
	}
	var out []roleJSON
	for _, r := range model.AllRoles() {
		out = append(out, roleJSON{Value: r.String(), Label: r.Label()})
	}
	return success(c, http.StatusOK, out, "roles listed")
}

func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err == nil && id == 0 {
		return 0, errors.New("id must be positive")
	}
	return id, err
}

// queryInt reads an integer query parameter, returning def when absent.
func queryInt(c echo.Context, name string, def int) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
