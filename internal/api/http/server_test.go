package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	gocacheStore "github.com/eko/gocache/store/go_cache/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	gocache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/mente-aberta-api/internal/auth"
	"github.com/spec-kit/mente-aberta-api/internal/config"
	"github.com/spec-kit/mente-aberta-api/internal/domain"
	"github.com/spec-kit/mente-aberta-api/internal/persistence"
	"github.com/spec-kit/mente-aberta-api/internal/repository"
)

type stubUsers struct {
	repository.UserRepository
	mu    sync.Mutex
	byID  map[string]*domain.User
	count int
}

func (s *stubUsers) add(email string) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	u := &domain.User{ID: fmt.Sprintf("user-%d", s.count), Email: email, Status: domain.UserStatusActive, CreatedAt: time.Now()}
	s.byID[u.ID] = u
	return u
}

func (s *stubUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (s *stubUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *stubUsers) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	user.ID = fmt.Sprintf("user-%d", s.count)
	user.CreatedAt = time.Now()
	cp := *user
	s.byID[user.ID] = &cp
	return nil
}

func (s *stubUsers) SetStatus(_ context.Context, id string, status domain.UserStatus) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	u.Status = status
	cp := *u
	return &cp, nil
}

type stubInvites struct {
	repository.InviteCodeRepository
	mu    sync.Mutex
	codes map[string]*domain.InviteCode
	users *stubUsers
}

func (s *stubInvites) GetByCode(_ context.Context, code string) (*domain.InviteCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.codes[code]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (s *stubInvites) Create(_ context.Context, code *domain.InviteCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.codes[code.Code]; ok {
		return &pgconn.PgError{Code: "23505"}
	}
	code.CreatedAt = time.Now()
	cp := *code
	s.codes[code.Code] = &cp
	return nil
}

func (s *stubInvites) SetActive(_ context.Context, code string, active bool) (*domain.InviteCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.codes[code]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c.IsActive = active
	cp := *c
	return &cp, nil
}

func (s *stubInvites) List(_ context.Context, _ repository.InviteCodeFilter) ([]domain.InviteCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.InviteCode
	for _, c := range s.codes {
		out = append(out, *c)
	}
	return out, nil
}

func (s *stubInvites) Redeem(_ context.Context, code, userID string, _ int, _ time.Time) (*domain.InviteCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.codes[code]
	if !ok || !c.IsActive || c.CurrentUses >= c.MaxUses {
		return nil, repository.ErrInviteNotConsumed
	}
	s.users.mu.Lock()
	defer s.users.mu.Unlock()
	u := s.users.byID[userID]
	if u.InviteCodeUsed != nil {
		return nil, repository.ErrUserAlreadyRedeemed
	}
	c.CurrentUses++
	used := c.Code
	u.InviteCodeUsed = &used
	cp := *c
	return &cp, nil
}

type stubFeedback struct {
	repository.FeedbackRepository
	mu    sync.Mutex
	items map[string]*domain.Feedback
}

func (s *stubFeedback) Create(_ context.Context, fb *domain.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fb.ID = fmt.Sprintf("fb-%d", len(s.items)+1)
	fb.CreatedAt = time.Now()
	cp := *fb
	s.items[fb.ID] = &cp
	return nil
}

func (s *stubFeedback) UpdateStatus(_ context.Context, id string, status domain.FeedbackStatus) (*domain.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fb, ok := s.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	fb.Status = status
	cp := *fb
	return &cp, nil
}

type harness struct {
	app      *fiber.App
	users    *stubUsers
	invites  *stubInvites
	feedback *stubFeedback
	tokens   *auth.TokenManager
}

func testConfig() *config.Config {
	return &config.Config{
		App:       config.AppConfig{Name: "mente-aberta-api", Version: "test", CORSOrigins: "*"},
		Auth:      config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 15, BcryptCost: bcrypt.MinCost, PasswordResetTTLMinutes: 30},
		Invite:    config.InviteConfig{DefaultMaxUses: 10, MaxExpiresDays: 365},
		Access:    config.AccessConfig{AdminEmails: []string{"admin@x.com"}, TesterEmails: []string{"beta@x.com"}},
		RateLimit: config.RateLimitConfig{InvitePerMinute: 60, InviteBurst: 100},
	}
}

// newHarness serves the app over in-memory users and invite codes. The remaining repositories
// have no pool unless withFeedback swaps in an in-memory store.
func newHarness(t *testing.T, cfg *config.Config, opts ...func(*harness, *repository.Repositories)) *harness {
	t.Helper()
	users := &stubUsers{byID: map[string]*domain.User{}}
	invites := &stubInvites{codes: map[string]*domain.InviteCode{}, users: users}
	repos := repository.NewRepositories(nil)
	repos.Users = users
	repos.InviteCodes = invites
	h := &harness{
		users:   users,
		invites: invites,
		tokens:  auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
	}
	for _, opt := range opts {
		opt(h, &repos)
	}

	server := NewServer(ServerOptions{
		Config:       cfg,
		Logger:       zap.NewNop(),
		Postgres:     &persistence.Postgres{},
		Redis:        &persistence.Redis{},
		Cache:        cache.New[string](gocacheStore.NewGoCache(gocache.New(time.Minute, time.Minute))),
		Repositories: repos,
		Registerer:   prometheus.NewRegistry(),
	})
	h.app = server.App
	return h
}

func withFeedback(h *harness, repos *repository.Repositories) {
	h.feedback = &stubFeedback{items: map[string]*domain.Feedback{}}
	repos.Feedback = h.feedback
}

func (h *harness) token(t *testing.T, user *domain.User, role domain.Role) string {
	t.Helper()
	session, err := h.tokens.GenerateToken(user, role)
	require.NoError(t, err)
	return session.Token
}

type apiResponse struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func (h *harness) do(t *testing.T, method, path, token, body string) (int, apiResponse, http.Header) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out apiResponse
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out, resp.Header
}

func TestHealth(t *testing.T) {
	h := newHarness(t, testConfig())

	status, _, _ := h.do(t, http.MethodGet, "/health/live", "", "")
	require.Equal(t, http.StatusOK, status)

	status, resp, _ := h.do(t, http.MethodGet, "/health/ready", "", "")
	require.Equal(t, http.StatusServiceUnavailable, status)
	require.Equal(t, "DEPENDENCY_UNAVAILABLE", resp.Error.Code)
	require.Equal(t, map[string]any{"status": "disabled", "latency_ms": float64(0)}, resp.Error.Details["redis"])
	postgres := resp.Error.Details["postgres"].(map[string]any)
	require.Equal(t, "error", postgres["status"])
	require.Equal(t, "backend not configured", postgres["error"])
}

func TestInviteValidateEndpoint(t *testing.T) {
	h := newHarness(t, testConfig())
	h.invites.codes["CORE0001"] = &domain.InviteCode{Code: "CORE0001", MaxUses: 5, CurrentUses: 4, IsActive: true}
	h.invites.codes["OFF23456"] = &domain.InviteCode{Code: "OFF23456", MaxUses: 5, IsActive: false}

	t.Run("valid", func(t *testing.T) {
		status, resp, _ := h.do(t, http.MethodPost, "/invites/validate", "", `{"code":"core-0001"}`)
		require.Equal(t, http.StatusOK, status)
		var data struct {
			Valid         bool   `json:"valid"`
			Code          string `json:"code"`
			RemainingUses int    `json:"remaining_uses"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		require.True(t, data.Valid)
		require.Equal(t, "CORE0001", data.Code)
		require.Equal(t, 1, data.RemainingUses)
	})

	t.Run("disabled", func(t *testing.T) {
		status, resp, _ := h.do(t, http.MethodPost, "/invites/validate", "", `{"code":"OFF23456"}`)
		require.Equal(t, http.StatusUnprocessableEntity, status)
		require.Equal(t, "INVITE_INVALID", resp.Error.Code)
		require.Equal(t, "disabled", resp.Error.Details["reason"])
	})

	t.Run("missing code", func(t *testing.T) {
		status, resp, _ := h.do(t, http.MethodPost, "/invites/validate", "", `{}`)
		require.Equal(t, http.StatusBadRequest, status)
		require.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
		require.Equal(t, map[string]any{"code": "required"}, resp.Error.Details["fields"])
	})
}

func TestInviteRedeemEndpoint(t *testing.T) {
	h := newHarness(t, testConfig())
	h.invites.codes["ABC12345"] = &domain.InviteCode{Code: "ABC12345", MaxUses: 1, IsActive: true}
	user := h.users.add("random@x.com")
	token := h.token(t, user, domain.RoleUser)

	status, _, _ := h.do(t, http.MethodPost, "/invites/redeem", "", `{"code":"ABC12345"}`)
	require.Equal(t, http.StatusUnauthorized, status)

	status, resp, _ := h.do(t, http.MethodPost, "/invites/redeem", token, `{"code":"abc12345"}`)
	require.Equal(t, http.StatusOK, status)
	var data struct {
		User struct {
			Role           string `json:"role"`
			InviteRedeemed bool   `json:"invite_redeemed"`
		} `json:"user"`
		Session struct {
			Token string `json:"token"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Equal(t, "tester", data.User.Role)
	require.True(t, data.User.InviteRedeemed)

	claims, err := h.tokens.ParseToken(data.Session.Token)
	require.NoError(t, err)
	require.Equal(t, domain.RoleTester, claims.Role)

	status, resp, _ = h.do(t, http.MethodGet, "/me", data.Session.Token, "")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(resp.Data), `"invite_redeemed":true`)

	other := h.users.add("other@x.com")
	status, resp, _ = h.do(t, http.MethodPost, "/invites/redeem", h.token(t, other, domain.RoleUser), `{"code":"ABC12345"}`)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.Equal(t, "exhausted", resp.Error.Details["reason"])
}

func TestInviteRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{InvitePerMinute: 1, InviteBurst: 2}
	h := newHarness(t, cfg)

	for i := 0; i < 2; i++ {
		status, _, _ := h.do(t, http.MethodPost, "/invites/validate", "", `{"code":"NOPE2345"}`)
		require.Equal(t, http.StatusUnprocessableEntity, status)
	}
	status, resp, header := h.do(t, http.MethodPost, "/invites/validate", "", `{"code":"NOPE2345"}`)
	require.Equal(t, http.StatusTooManyRequests, status)
	require.Equal(t, "RATE_LIMITED", resp.Error.Code)
	require.NotEmpty(t, header.Get("Retry-After"))
}

func TestFailsClosedWithoutDatabase(t *testing.T) {
	h := newHarness(t, testConfig())
	user := h.users.add("beta@x.com")

	status, resp, _ := h.do(t, http.MethodPost, "/feedback", h.token(t, user, domain.RoleTester), `{"type":"bug","message":"broken"}`)
	require.Equal(t, http.StatusServiceUnavailable, status)
	require.Equal(t, "NOT_CONFIGURED", resp.Error.Code)

	status, resp, _ = h.do(t, http.MethodPost, "/auth/password/reset/request", "", `{"email":"random@x.com"}`)
	require.Equal(t, http.StatusServiceUnavailable, status)
	require.Equal(t, "NOT_CONFIGURED", resp.Error.Code)
}

func TestSignUpSignInSignOut(t *testing.T) {
	h := newHarness(t, testConfig())

	status, _, _ := h.do(t, http.MethodPost, "/auth/signup", "", `{"email":"not-an-email","password":"short"}`)
	require.Equal(t, http.StatusBadRequest, status)

	status, _, _ = h.do(t, http.MethodPost, "/auth/signup", "", `{"name":"Ana","email":"admin@x.com","password":"long-enough"}`)
	require.Equal(t, http.StatusCreated, status)

	status, resp, _ := h.do(t, http.MethodPost, "/auth/signin", "", `{"email":"admin@x.com","password":"long-enough"}`)
	require.Equal(t, http.StatusOK, status)
	var data struct {
		User struct {
			Role    string `json:"role"`
			Premium bool   `json:"premium"`
		} `json:"user"`
		Session struct {
			Token string `json:"token"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Equal(t, "admin", data.User.Role)
	require.True(t, data.User.Premium)
	token := data.Session.Token

	status, _, _ = h.do(t, http.MethodGet, "/admin/invites", token, "")
	require.Equal(t, http.StatusOK, status)

	status, _, _ = h.do(t, http.MethodPost, "/auth/signout", token, "")
	require.Equal(t, http.StatusNoContent, status)

	status, _, _ = h.do(t, http.MethodGet, "/me", token, "")
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	h := newHarness(t, testConfig())
	user := h.users.add("random@x.com")

	status, resp, _ := h.do(t, http.MethodGet, "/admin/testers", h.token(t, user, domain.RoleTester), "")
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "FORBIDDEN", resp.Error.Code)
}

func TestDashboardEndpoint(t *testing.T) {
	h := newHarness(t, testConfig())
	user := h.users.add("random@x.com")

	status, resp, _ := h.do(t, http.MethodGet, "/dashboard", h.token(t, user, domain.RoleUser), "")
	require.Equal(t, http.StatusOK, status)
	var data struct {
		Week struct {
			Number int `json:"number"`
		} `json:"week"`
		Agents []struct {
			ID       string `json:"id"`
			Unlocked bool   `json:"unlocked"`
		} `json:"agents"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Equal(t, 1, data.Week.Number)
	require.Len(t, data.Agents, 4)
	require.True(t, data.Agents[0].Unlocked)
	require.False(t, data.Agents[1].Unlocked)
}

func TestUnknownRouteRendersJSONError(t *testing.T) {
	h := newHarness(t, testConfig())
	status, resp, _ := h.do(t, http.MethodGet, "/nope", "", "")
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestFeedbackRequiresTesterRole(t *testing.T) {
	h := newHarness(t, testConfig(), withFeedback)
	plain := h.users.add("random@x.com")
	tester := h.users.add("beta@x.com")
	body := `{"type":"bug","message":"broken","rating":2}`

	status, resp, _ := h.do(t, http.MethodPost, "/feedback", h.token(t, plain, domain.RoleUser), body)
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "FORBIDDEN", resp.Error.Code)

	// The role comes from the account, not from the claim the client presents.
	status, _, _ = h.do(t, http.MethodPost, "/feedback", h.token(t, plain, domain.RoleTester), body)
	require.Equal(t, http.StatusForbidden, status)
	require.Empty(t, h.feedback.items)

	status, resp, _ = h.do(t, http.MethodPost, "/feedback", h.token(t, tester, domain.RoleUser), body)
	require.Equal(t, http.StatusCreated, status)
	var data struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Equal(t, "pending", data.Status)
}

func TestAdminInviteLifecycle(t *testing.T) {
	h := newHarness(t, testConfig())
	admin := h.users.add("admin@x.com")
	token := h.token(t, admin, domain.RoleAdmin)

	type inviteView struct {
		Code          string `json:"code"`
		DisplayCode   string `json:"display_code"`
		CreatedBy     string `json:"created_by"`
		MaxUses       int    `json:"max_uses"`
		CurrentUses   int    `json:"current_uses"`
		RemainingUses int    `json:"remaining_uses"`
		IsActive      bool   `json:"is_active"`
		Usable        bool   `json:"usable"`
		Description   string `json:"description"`
	}

	status, resp, _ := h.do(t, http.MethodPost, "/admin/invites", token, `{"code":"team-2026","max_uses":3,"description":"launch crew"}`)
	require.Equal(t, http.StatusCreated, status)
	var created inviteView
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	require.Equal(t, inviteView{
		Code:          "TEAM2026",
		DisplayCode:   "TEAM-2026",
		CreatedBy:     "admin@x.com",
		MaxUses:       3,
		RemainingUses: 3,
		IsActive:      true,
		Usable:        true,
		Description:   "launch crew",
	}, created)

	t.Run("duplicate code conflicts", func(t *testing.T) {
		status, resp, _ := h.do(t, http.MethodPost, "/admin/invites", token, `{"code":"TEAM-2026"}`)
		require.Equal(t, http.StatusConflict, status)
		require.Equal(t, "CONFLICT", resp.Error.Code)
	})

	t.Run("malformed code is rejected", func(t *testing.T) {
		status, resp, _ := h.do(t, http.MethodPost, "/admin/invites", token, `{"code":"SHORT"}`)
		require.Equal(t, http.StatusBadRequest, status)
		require.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
	})

	t.Run("listed with usage cap", func(t *testing.T) {
		status, resp, _ := h.do(t, http.MethodGet, "/admin/invites", token, "")
		require.Equal(t, http.StatusOK, status)
		var listed []inviteView
		require.NoError(t, json.Unmarshal(resp.Data, &listed))
		require.Len(t, listed, 1)
		require.Equal(t, "TEAM-2026", listed[0].DisplayCode)
	})

	status, resp, _ = h.do(t, http.MethodPut, "/admin/invites/team-2026/status", token, `{"active":false}`)
	require.Equal(t, http.StatusOK, status)
	var disabled inviteView
	require.NoError(t, json.Unmarshal(resp.Data, &disabled))
	require.False(t, disabled.IsActive)
	require.False(t, disabled.Usable)
	require.Equal(t, 3, disabled.RemainingUses)

	status, resp, _ = h.do(t, http.MethodPost, "/invites/validate", "", `{"code":"TEAM-2026"}`)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.Equal(t, "INVITE_INVALID", resp.Error.Code)
	require.Equal(t, "disabled", resp.Error.Details["reason"])

	status, _, _ = h.do(t, http.MethodPut, "/admin/invites/TEAM2026/status", token, `{"active":true}`)
	require.Equal(t, http.StatusOK, status)
	status, _, _ = h.do(t, http.MethodPost, "/invites/validate", "", `{"code":"team2026"}`)
	require.Equal(t, http.StatusOK, status)

	t.Run("unknown code", func(t *testing.T) {
		status, resp, _ := h.do(t, http.MethodPut, "/admin/invites/NOPE2345/status", token, `{"active":false}`)
		require.Equal(t, http.StatusNotFound, status)
		require.Equal(t, "NOT_FOUND", resp.Error.Code)
	})

	t.Run("active flag is required", func(t *testing.T) {
		status, _, _ := h.do(t, http.MethodPut, "/admin/invites/TEAM2026/status", token, `{}`)
		require.Equal(t, http.StatusBadRequest, status)
	})
}

func TestAdminTesterStatus(t *testing.T) {
	cfg := testConfig()
	cfg.Access.AdminEmails = []string{"admin@x.com", "root@x.com"}
	h := newHarness(t, cfg)
	admin := h.users.add("admin@x.com")
	other := h.users.add("root@x.com")
	tester := h.users.add("beta@x.com")
	token := h.token(t, admin, domain.RoleAdmin)

	status, resp, _ := h.do(t, http.MethodPut, "/admin/testers/"+tester.ID+"/status", token, `{"active":false}`)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, fmt.Sprintf(`{"id":%q,"status":"SUSPENDED"}`, tester.ID), string(resp.Data))

	status, _, _ = h.do(t, http.MethodGet, "/me", h.token(t, tester, domain.RoleTester), "")
	require.Equal(t, http.StatusForbidden, status)

	status, _, _ = h.do(t, http.MethodPut, "/admin/testers/"+tester.ID+"/status", token, `{"active":true}`)
	require.Equal(t, http.StatusOK, status)

	status, resp, _ = h.do(t, http.MethodPut, "/admin/testers/"+other.ID+"/status", token, `{"active":false}`)
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "FORBIDDEN", resp.Error.Code)
	stored, err := h.users.GetByID(context.Background(), other.ID)
	require.NoError(t, err)
	require.Equal(t, domain.UserStatusActive, stored.Status)

	status, resp, _ = h.do(t, http.MethodPut, "/admin/testers/"+admin.ID+"/status", token, `{"active":false}`)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "VALIDATION_FAILED", resp.Error.Code)

	status, _, _ = h.do(t, http.MethodPut, "/admin/testers/user-999/status", token, `{"active":false}`)
	require.Equal(t, http.StatusNotFound, status)
}

func TestAdminFeedbackStatus(t *testing.T) {
	h := newHarness(t, testConfig(), withFeedback)
	admin := h.users.add("admin@x.com")
	h.feedback.items["fb-1"] = &domain.Feedback{ID: "fb-1", UserID: "user-9", Type: domain.FeedbackType("bug"), Message: "broken", Status: domain.FeedbackStatusPending}
	token := h.token(t, admin, domain.RoleAdmin)

	status, resp, _ := h.do(t, http.MethodPut, "/admin/feedback/fb-1/status", token, `{"status":"resolved"}`)
	require.Equal(t, http.StatusOK, status)
	var data struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Equal(t, "fb-1", data.ID)
	require.Equal(t, "resolved", data.Status)

	status, _, _ = h.do(t, http.MethodPut, "/admin/feedback/fb-1/status", token, `{"status":"archived"}`)
	require.Equal(t, http.StatusBadRequest, status)

	status, resp, _ = h.do(t, http.MethodPut, "/admin/feedback/fb-404/status", token, `{"status":"reviewed"}`)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "NOT_FOUND", resp.Error.Code)
}
