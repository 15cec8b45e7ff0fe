// Package auth turns credentials into authorization decisions: it checks
// passwords, issues and verifies the access/refresh token pair, and owns
// the user lifecycle operations that touch credentials.
//
// Tokens are bearer-only with no server-side store.  Deactivating a user is
// the revocation mechanism: VerifyToken and Refresh re-fetch the user and
// reject inactive accounts, so deactivation takes effect immediately while
// password changes and logout leave already-issued tokens valid until they
// expire.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/motoshop/auth-service/internal/model"
	"github.com/motoshop/auth-service/internal/repository"
)

// UserStore is the persistence contract the service depends on.  The MySQL
// implementation lives in internal/repository; tests substitute an
// in-memory fake.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	List(ctx context.Context, f model.UserFilter) ([]model.User, error)
	Count(ctx context.Context, f model.UserFilter) (int, error)
	Update(ctx context.Context, u model.User) error
	UpdatePassword(ctx context.Context, id uint64, hash string) error
	SetActive(ctx context.Context, id uint64, active bool) error
	CountByRole(ctx context.Context) (model.UserStats, error)
}

// Config carries the signing material and knobs the service needs.  The two
// secrets must differ so leaking one does not compromise the other's key.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	BcryptCost    int
}

// TokenPair is one issued access/refresh pair with expiry timestamps.
type TokenPair struct {
	AccessToken    string
	AccessExpires  time.Time
	RefreshToken   string
	RefreshExpires time.Time
}

// Service implements the authentication flow over a UserStore.
type Service struct {
	store UserStore
	cfg   Config
}

func NewService(store UserStore, cfg Config) *Service {
	return &Service{store: store, cfg: cfg}
}

// issuePair signs a fresh access and refresh token for the payload.
func (s *Service) issuePair(p TokenPayload) (TokenPair, error) {
	access, accessExp, err := signToken([]byte(s.cfg.AccessSecret), p, s.cfg.AccessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshExp, err := signToken([]byte(s.cfg.RefreshSecret), p, s.cfg.RefreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:    access,
		AccessExpires:  accessExp,
		RefreshToken:   refresh,
		RefreshExpires: refreshExp,
	}, nil
}

// Login validates credentials and issues a token pair.  Unknown email and
// wrong password both come back as ErrInvalidCredentials; an inactive
// account short-circuits before the password check.
func (s *Service) Login(ctx context.Context, email, password string) (model.User, TokenPair, error) {
	u, err := s.store.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, TokenPair{}, ErrInvalidCredentials
		}
		return model.User{}, TokenPair{}, err
	}
	if !u.Active {
		return model.User{}, TokenPair{}, ErrInactiveAccount
	}
	if !s.VerifyPassword(password, u.PasswordHash) {
		return model.User{}, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issuePair(TokenPayload{UserID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	u.PasswordHash = ""
	return u, pair, nil
}

// Refresh exchanges a valid refresh token for a brand-new pair.  Every
// verification failure, a missing user, and an inactive user all collapse
// to ErrInvalidRefreshToken; the cause is kept on the wrapped error for
// logging.  The new payload is rebuilt from the freshly loaded user, not
// the stale claims, so role and email changes propagate at refresh time.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	payload, err := parseToken([]byte(s.cfg.RefreshSecret), refreshToken)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
	}
	u, err := s.store.GetByID(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, fmt.Errorf("%w: user %d gone", ErrInvalidRefreshToken, payload.UserID)
		}
		return TokenPair{}, err
	}
	if !u.Active {
		return TokenPair{}, fmt.Errorf("%w: user %d deactivated", ErrInvalidRefreshToken, u.ID)
	}
	return s.issuePair(TokenPayload{UserID: u.ID, Email: u.Email, Role: u.Role})
}

// VerifyToken checks an access token and re-fetches the user so that
// deactivation invalidates outstanding tokens immediately instead of
// waiting for expiry.  All failures collapse to ErrInvalidToken.
func (s *Service) VerifyToken(ctx context.Context, token string) (TokenPayload, error) {
	payload, err := parseToken([]byte(s.cfg.AccessSecret), token)
	if err != nil {
		return TokenPayload{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	u, err := s.store.GetByID(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPayload{}, fmt.Errorf("%w: user %d gone", ErrInvalidToken, payload.UserID)
		}
		return TokenPayload{}, err
	}
	if !u.Active {
		return TokenPayload{}, fmt.Errorf("%w: user %d deactivated", ErrInvalidToken, u.ID)
	}
	return payload, nil
}

// NewUser are the fields accepted by CreateUser.  A zero Role defaults to
// operator.
type NewUser struct {
	Email    string
	Password string
	Name     string
	Role     model.Role
}

// CreateUser hashes the password and persists a new active user.
func (s *Service) CreateUser(ctx context.Context, in NewUser) (model.User, error) {
	role := in.Role
	if role == 0 {
		role = model.RoleOperator
	}
	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return model.User{}, err
	}
	u := model.User{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Name:         in.Name,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	if err := s.store.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.User{}, ErrDuplicateEmail
		}
		return model.User{}, err
	}
	u.PasswordHash = ""
	return u, nil
}

// ChangePassword verifies the current password before re-hashing and
// persisting the new one.  Outstanding tokens are not invalidated.
func (s *Service) ChangePassword(ctx context.Context, userID uint64, current, newPassword string) error {
	u, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !s.VerifyPassword(current, u.PasswordHash) {
		return ErrInvalidCurrentPassword
	}
	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.store.UpdatePassword(ctx, u.ID, hash)
}

// ResetPassword sets a new password without requiring the current one.
// Reserved for the admin-gated reset endpoint.
func (s *Service) ResetPassword(ctx context.Context, userID uint64, newPassword string) error {
	u, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.store.UpdatePassword(ctx, u.ID, hash)
}
