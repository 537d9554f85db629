package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/mente-aberta-api/internal/access"
	"github.com/spec-kit/mente-aberta-api/internal/auth"
	"github.com/spec-kit/mente-aberta-api/internal/config"
	"github.com/spec-kit/mente-aberta-api/internal/domain"
	"github.com/spec-kit/mente-aberta-api/internal/events"
	"github.com/spec-kit/mente-aberta-api/internal/observability"
	"github.com/spec-kit/mente-aberta-api/internal/repository"
	apperrors "github.com/spec-kit/mente-aberta-api/pkg/util"
)

// Authenticator is the account capability used by the HTTP layer.
type Authenticator interface {
	SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error)
	SignIn(ctx context.Context, email, password string) (*AuthResult, error)
	SignOut(ctx context.Context, claims *auth.Claims) error
	CurrentUser(ctx context.Context, userID string) (*Profile, error)
	ResetPassword(ctx context.Context, email string) error
}

// SignUpInput carries registration data.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
}

// AuthResult is returned by sign-up and sign-in.
type AuthResult struct {
	Profile *Profile
	Session *domain.Session
}

// Profile is an account together with its derived access state.
type Profile struct {
	User           *domain.User
	Role           domain.Role
	Plan           string
	Premium        bool
	InviteRedeemed bool
	Onboarded      bool
}

func buildProfile(user *domain.User, role domain.Role) *Profile {
	return &Profile{
		User:           user,
		Role:           role,
		Plan:           access.PlanFor(role, user.Plan),
		Premium:        access.HasPremiumAccess(role),
		InviteRedeemed: user.InviteRedeemed(),
		Onboarded:      user.OnboardedAt != nil,
	}
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	resets     repository.PasswordResetRepository
	tokenMgr   *auth.TokenManager
	denylist   *auth.Denylist
	resolver   *access.Resolver
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	bcryptCost int
	resetTTL   time.Duration
	now        func() time.Time
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo          repository.UserRepository
	PasswordResetRepo repository.PasswordResetRepository
	Tokens            *auth.TokenManager
	Denylist          *auth.Denylist
	Resolver          *access.Resolver
	Dispatcher        events.Dispatcher
	Metrics           *observability.Metrics
	Logger            *zap.Logger
}

var _ Authenticator = (*AuthService)(nil)

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		resets:     deps.PasswordResetRepo,
		tokenMgr:   deps.Tokens,
		denylist:   deps.Denylist,
		resolver:   deps.Resolver,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		bcryptCost: cfg.Auth.BcryptCost,
		resetTTL:   time.Duration(cfg.Auth.PasswordResetTTLMinutes) * time.Minute,
		now:        time.Now,
	}
}

// SignUp creates an account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error) {
	email := access.CanonicalEmail(input.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        email,
		PasswordHash: hash,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("email already registered", nil)
		}
		return nil, apperrors.MapError(err)
	}

	s.metrics.AuthEvent("sign_up")
	return s.issue(user)
}

// SignIn authenticates by email and password and resolves the role for the new session.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, access.CanonicalEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.metrics.AuthEvent("sign_in_failed")
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		s.metrics.AuthEvent("sign_in_failed")
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if user.Status != domain.UserStatusActive {
		return nil, apperrors.NewForbidden("account suspended")
	}

	s.metrics.AuthEvent("sign_in")
	return s.issue(user)
}

// SignOut revokes the presented token until it expires.
func (s *AuthService) SignOut(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || s.denylist == nil {
		return nil
	}
	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.denylist.Revoke(ctx, claims.ID, expiresAt); err != nil {
		return apperrors.MapError(err)
	}
	s.metrics.AuthEvent("sign_out")
	return nil
}

// CurrentUser loads the account and recomputes its role.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return buildProfile(user, s.resolver.ResolveUser(user)), nil
}

// ResetPassword issues a reset token for a known email. Unknown emails succeed silently so the
// endpoint cannot be used to probe for accounts.
func (s *AuthService) ResetPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, access.CanonicalEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return apperrors.MapError(err)
	}

	token := &domain.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return apperrors.MapError(err)
	}

	s.metrics.AuthEvent("password_reset_requested")
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, newEvent(events.EventPasswordResetRequested, user.ID, s.now(), events.PasswordResetRequestedPayload{
			Email:     user.Email,
			Token:     token.Token,
			ExpiresAt: token.ExpiresAt,
		}))
	}
	return nil
}

// ConfirmPasswordReset consumes the reset token and updates the password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	token, err := s.resets.Consume(ctx, tokenStr, s.now())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("reset token expired or already used", nil)
		}
		return apperrors.MapError(err)
	}
	if err := s.users.UpdatePassword(ctx, token.UserID, hash); err != nil {
		return apperrors.MapError(err)
	}
	s.metrics.AuthEvent("password_reset_confirmed")
	return nil
}

// ChangePassword verifies current password before updating to new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := auth.VerifyPassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	role := s.resolver.ResolveUser(user)
	session, err := s.tokenMgr.GenerateToken(user, role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{Profile: buildProfile(user, role), Session: session}, nil
}

func (s *AuthService) hashPassword(password string) (string, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return "", apperrors.NewValidationError("password too long", map[string]any{
			"fields": map[string]any{"password": "max=72 bytes"},
		})
	}
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return hash, nil
}
