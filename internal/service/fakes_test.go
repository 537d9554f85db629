package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	gocacheStore "github.com/eko/gocache/store/go_cache/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/mente-aberta-api/internal/access"
	"github.com/spec-kit/mente-aberta-api/internal/auth"
	"github.com/spec-kit/mente-aberta-api/internal/config"
	"github.com/spec-kit/mente-aberta-api/internal/domain"
	"github.com/spec-kit/mente-aberta-api/internal/events"
	"github.com/spec-kit/mente-aberta-api/internal/repository"
)

// memStore mimics the Postgres repositories. Redeem holds the lock across check and update,
// which is what the conditional UPDATE gives us in SQL.
type memStore struct {
	mu       sync.Mutex
	seq      int
	users    map[string]*domain.User
	codes    map[string]*domain.InviteCode
	feedback map[string]*domain.Feedback
	resets   map[string]*domain.PasswordResetToken
	// failWith, when set, is returned by every repository call.
	failWith error
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]*domain.User{},
		codes:    map[string]*domain.InviteCode{},
		feedback: map[string]*domain.Feedback{},
		resets:   map[string]*domain.PasswordResetToken{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505", Message: "duplicate key value"}
}

func (m *memStore) addCode(code domain.InviteCode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[code.Code] = &code
}

func (m *memStore) code(c string) domain.InviteCode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.codes[c]
}

func (m *memStore) addUser(email string) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &domain.User{ID: m.nextID("user"), Email: email, Status: domain.UserStatusActive, CreatedAt: time.Now()}
	m.users[u.ID] = u
	cp := *u
	return &cp
}

// users

type memUsers struct{ *memStore }

func (r memUsers) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return uniqueViolation()
		}
	}
	user.ID = r.nextID("user")
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r memUsers) UpdateProfile(_ context.Context, id string, update repository.ProfileUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	u, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if update.Name != "" {
		u.Name = update.Name
	}
	u.Age = update.Age
	u.Goals = update.Goals
	u.Plan = update.Plan
	if u.OnboardedAt == nil {
		at := update.OnboardedAt
		u.OnboardedAt = &at
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	u, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	u, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memUsers) SetStatus(_ context.Context, id string, status domain.UserStatus) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	u.Status = status
	cp := *u
	return &cp, nil
}

func (r memUsers) ListTesters(_ context.Context, filter repository.TesterFilter) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	allowed := map[string]bool{}
	for _, e := range filter.Emails {
		allowed[e] = true
	}
	var out []domain.User
	for _, u := range r.users {
		if u.InviteRedeemed() || allowed[strings.ToLower(u.Email)] {
			out = append(out, *u)
		}
	}
	return out, nil
}

// invite codes

type memCodes struct{ *memStore }

func (r memCodes) Create(_ context.Context, code *domain.InviteCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	if _, exists := r.codes[code.Code]; exists {
		return uniqueViolation()
	}
	code.CreatedAt = time.Now()
	code.UpdatedAt = code.CreatedAt
	cp := *code
	r.codes[code.Code] = &cp
	return nil
}

func (r memCodes) GetByCode(_ context.Context, code string) (*domain.InviteCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	c, ok := r.codes[strings.ToUpper(code)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (r memCodes) List(_ context.Context, filter repository.InviteCodeFilter) ([]domain.InviteCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	var out []domain.InviteCode
	for _, c := range r.codes {
		if filter.Active != nil && c.IsActive != *filter.Active {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r memCodes) SetActive(_ context.Context, code string, active bool) (*domain.InviteCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.codes[strings.ToUpper(code)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c.IsActive = active
	cp := *c
	return &cp, nil
}

func (r memCodes) Redeem(_ context.Context, code, userID string, usageCap int, now time.Time) (*domain.InviteCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	c, ok := r.codes[strings.ToUpper(code)]
	if !ok || !c.IsActive || (c.ExpiresAt != nil && c.ExpiresAt.Before(now)) || c.CurrentUses >= c.EffectiveCap(usageCap) {
		return nil, repository.ErrInviteNotConsumed
	}
	u, ok := r.users[userID]
	if !ok || u.InviteCodeUsed != nil {
		return nil, repository.ErrUserAlreadyRedeemed
	}
	c.CurrentUses++
	used := c.Code
	u.InviteCodeUsed = &used
	u.InviteUsedAt = &now
	cp := *c
	return &cp, nil
}

func (r memCodes) DeactivateExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.codes {
		if c.IsActive && c.ExpiresAt != nil && c.ExpiresAt.Before(now) {
			c.IsActive = false
			n++
		}
	}
	return n, nil
}

// feedback

type memFeedback struct{ *memStore }

func (r memFeedback) Create(_ context.Context, fb *domain.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	fb.ID = r.nextID("fb")
	fb.CreatedAt = time.Now()
	cp := *fb
	r.feedback[fb.ID] = &cp
	return nil
}

func (r memFeedback) List(_ context.Context, filter repository.FeedbackFilter) ([]domain.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Feedback
	for _, fb := range r.feedback {
		if filter.Status != nil && fb.Status != *filter.Status {
			continue
		}
		if filter.Type != nil && fb.Type != *filter.Type {
			continue
		}
		out = append(out, *fb)
	}
	return out, nil
}

func (r memFeedback) UpdateStatus(_ context.Context, id string, status domain.FeedbackStatus) (*domain.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fb, ok := r.feedback[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	fb.Status = status
	cp := *fb
	return &cp, nil
}

// password resets

type memResets struct{ *memStore }

func (r memResets) Create(_ context.Context, token *domain.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	token.ID = r.nextID("reset")
	token.CreatedAt = time.Now()
	cp := *token
	r.resets[token.Token] = &cp
	return nil
}

func (r memResets) Consume(_ context.Context, token string, now time.Time) (*domain.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.resets[token]
	if !ok || t.UsedAt != nil || !t.ExpiresAt.After(now) {
		return nil, pgx.ErrNoRows
	}
	t.UsedAt = &now
	cp := *t
	return &cp, nil
}

func (r memResets) PurgeStale(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, t := range r.resets {
		if t.UsedAt != nil || !t.ExpiresAt.After(now) {
			delete(r.resets, k)
			n++
		}
	}
	return n, nil
}

// recordingDispatcher captures published events.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, e events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, e)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) ofType(t events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, e := range d.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// fixture wires every service against one memStore.
type fixture struct {
	store      *memStore
	cfg        config.Config
	tokens     *auth.TokenManager
	denylist   *auth.Denylist
	resolver   *access.Resolver
	dispatcher *recordingDispatcher
	auth       *AuthService
	invites    *InviteService
	feedback   *FeedbackService
	profiles   *ProfileService
	testers    *TesterService
}

func newFixture(usageCap int) *fixture {
	store := newMemStore()
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret",
			AccessTokenTTLMinutes:   15,
			PasswordResetTTLMinutes: 30,
			BcryptCost:              bcrypt.MinCost,
			PasswordResetURL:        "http://localhost/reset",
		},
		Invite: config.InviteConfig{UsageCap: usageCap, DefaultMaxUses: 10, MaxExpiresDays: 365},
	}
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	denylist := auth.NewDenylist(cache.New[string](gocacheStore.NewGoCache(gocache.New(time.Minute, time.Minute))))
	resolver := access.NewResolver([]string{"admin@x.com", "root@x.com"}, []string{"beta@x.com"})
	dispatcher := &recordingDispatcher{}

	return &fixture{
		store:      store,
		cfg:        cfg,
		tokens:     tokens,
		denylist:   denylist,
		resolver:   resolver,
		dispatcher: dispatcher,
		auth: NewAuthService(cfg, AuthDependencies{
			UserRepo:          memUsers{store},
			PasswordResetRepo: memResets{store},
			Tokens:            tokens,
			Denylist:          denylist,
			Resolver:          resolver,
			Dispatcher:        dispatcher,
		}),
		invites: NewInviteService(cfg, InviteDependencies{
			InviteRepo: memCodes{store},
			Tokens:     tokens,
			Resolver:   resolver,
			Dispatcher: dispatcher,
		}),
		feedback: NewFeedbackService(memFeedback{store}, dispatcher),
		profiles: NewProfileService(memUsers{store}, resolver),
		testers:  NewTesterService(memUsers{store}, resolver, nil),
	}
}

func repositoryInviteFilter(active *bool) repository.InviteCodeFilter {
	return repository.InviteCodeFilter{Active: active}
}
