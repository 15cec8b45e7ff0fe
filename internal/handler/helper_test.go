package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/motoshop/auth-service/internal/auth"
	"github.com/motoshop/auth-service/internal/config"
	"github.com/motoshop/auth-service/internal/handler"
	"github.com/motoshop/auth-service/internal/middleware"
	"github.com/motoshop/auth-service/internal/model"
	"github.com/motoshop/auth-service/internal/repository"
	"github.com/motoshop/auth-service/internal/router"
)

// memStore is the in-memory UserStore the handler tests run against.
type memStore struct {
	mu     sync.Mutex
	users  map[uint64]model.User
	nextID uint64
}

func newMemStore() *memStore {
	return &memStore{users: make(map[uint64]model.User), nextID: 1}
}

func (s *memStore) Create(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range s.users {
		if existing.Email == email {
			return repository.ErrEmailExists
		}
	}
	u.ID = s.nextID
	s.nextID++
	u.Email = email
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = *u
	return nil
}

func (s *memStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s *memStore) GetByID(ctx context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *memStore) matching(f model.UserFilter) []model.User {
	var out []model.User
	for _, u := range s.users {
		if f.Active != nil && u.Active != *f.Active {
			continue
		}
		if f.Role != nil && u.Role != *f.Role {
			continue
		}
		if f.Search != "" {
			needle := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(u.Name), needle) &&
				!strings.Contains(u.Email, needle) {
				continue
			}
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *memStore) List(ctx context.Context, f model.UserFilter) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.matching(f)
	if f.Limit > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
		if len(out) > f.Limit {
			out = out[:f.Limit]
		}
	}
	return out, nil
}

func (s *memStore) Count(ctx context.Context, f model.UserFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.matching(f)), nil
}

func (s *memStore) Update(ctx context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	email := strings.ToLower(strings.TrimSpace(u.Email))
	for id, other := range s.users {
		if id != u.ID && other.Email == email {
			return repository.ErrEmailExists
		}
	}
	stored.Email = email
	stored.Name = u.Name
	stored.Role = u.Role
	s.users[u.ID] = stored
	return nil
}

func (s *memStore) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	s.users[id] = u
	return nil
}

func (s *memStore) SetActive(ctx context.Context, id uint64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Active = active
	s.users[id] = u
	return nil
}

func (s *memStore) CountByRole(ctx context.Context) (model.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := model.UserStats{ByRole: make(map[string]int)}
	for _, u := range s.users {
		stats.Total++
		stats.ByRole[u.Role.String()]++
		if u.Active {
			stats.Active++
		} else {
			stats.Inactive++
		}
	}
	return stats, nil
}

// testApp is a fully wired service on an in-memory store.
type testApp struct {
	e     *echo.Echo
	svc   *auth.Service
	store *memStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	store := newMemStore()
	svc := auth.NewService(store, auth.Config{
		AccessSecret:  "handler-test-access-secret",
		RefreshSecret: "handler-test-refresh-secret",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
		BcryptCost:    bcrypt.MinCost,
	})
	e := echo.New()
	// No Redis in tests; the disabled limiter is a pass-through.
	limiter := middleware.LoginRateLimit(config.RateLimitConfig{Enabled: false}, nil)
	router.Register(e, handler.NewAuthHandler(svc, store), handler.NewUserHandler(svc, store), limiter)
	return &testApp{e: e, svc: svc, store: store}
}

func (a *testApp) seed(t *testing.T, email, password, name string, role model.Role) model.User {
	t.Helper()
	u, err := a.svc.CreateUser(context.Background(), auth.NewUser{
		Email:    email,
		Password: password,
		Name:     name,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("seed %s: %v", email, err)
	}
	return u
}

// login returns the access token of a seeded user.
func (a *testApp) login(t *testing.T, email, password string) string {
	t.Helper()
	_, pair, err := a.svc.Login(context.Background(), email, password)
	if err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	return pair.AccessToken
}

// request performs an HTTP request against the wired app.
func (a *testApp) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

// envelope mirrors the wire format of both success and failure responses.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return env
}

func wantFailure(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d (%s), want %d", rec.Code, rec.Body.String(), status)
	}
	if env := decode(t, rec); env.Error.Code != code {
		t.Fatalf("error code = %q, want %q", env.Error.Code, code)
	}
}

func wantSuccess(t *testing.T, rec *httptest.ResponseRecorder, status int) envelope {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d (%s), want %d", rec.Code, rec.Body.String(), status)
	}
	env := decode(t, rec)
	if !env.Success {
		t.Fatalf("success flag not set: %s", rec.Body.String())
	}
	return env
}

func mustUnmarshal(t *testing.T, raw json.RawMessage, v any) {
	t.Helper()
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("unmarshal data %q: %v", raw, err)
	}
}
