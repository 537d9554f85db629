package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/mente-aberta-api/internal/access"
	"github.com/spec-kit/mente-aberta-api/internal/auth"
	"github.com/spec-kit/mente-aberta-api/internal/config"
	"github.com/spec-kit/mente-aberta-api/internal/domain"
	"github.com/spec-kit/mente-aberta-api/internal/events"
	"github.com/spec-kit/mente-aberta-api/internal/invite"
	"github.com/spec-kit/mente-aberta-api/internal/observability"
	"github.com/spec-kit/mente-aberta-api/internal/repository"
	apperrors "github.com/spec-kit/mente-aberta-api/pkg/util"
)

// generateAttempts bounds retries when a generated code collides with an existing one.
const generateAttempts = 5

// InviteService validates, consumes and administers invite codes.
type InviteService struct {
	codes      repository.InviteCodeRepository
	tokens     *auth.TokenManager
	resolver   *access.Resolver
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	cfg        config.InviteConfig
	now        func() time.Time
}

// InviteDependencies encapsulates collaborators for the invite service.
type InviteDependencies struct {
	InviteRepo repository.InviteCodeRepository
	Tokens     *auth.TokenManager
	Resolver   *access.Resolver
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// CreateInviteInput describes an admin request for a new code.
type CreateInviteInput struct {
	// Code is optional; a random code is generated when empty.
	Code          string
	MaxUses       int
	ExpiresInDays int
	Description   string
}

// RedeemResult carries the consumed code and the re-issued session.
type RedeemResult struct {
	Code    *domain.InviteCode
	Profile *Profile
	Session *domain.Session
}

// NewInviteService constructs the service.
func NewInviteService(cfg config.Config, deps InviteDependencies) *InviteService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InviteService{
		codes:      deps.InviteRepo,
		tokens:     deps.Tokens,
		resolver:   deps.Resolver,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		cfg:        cfg.Invite,
		now:        time.Now,
	}
}

// UsageCap returns the configured global cap; zero means per-code limits only.
func (s *InviteService) UsageCap() int {
	return s.cfg.UsageCap
}

// Validate reports whether raw names a usable code. It never mutates the store.
func (s *InviteService) Validate(ctx context.Context, raw string) (*domain.InviteCode, error) {
	code, err := s.lookup(ctx, raw)
	if err == nil {
		err = invite.Check(code, s.now(), s.cfg.UsageCap)
	}
	if err != nil {
		return nil, s.inviteFailure(err, s.metrics.InviteValidated)
	}
	s.metrics.InviteValidated("valid")
	return code, nil
}

// Consume atomically takes one use of the code and records it on the user. Concurrent callers
// racing for the last use see exactly one success; the rest get an exhausted error.
func (s *InviteService) Consume(ctx context.Context, raw, userID string) (*domain.InviteCode, error) {
	normalized := invite.Normalize(raw)
	if !invite.ValidFormat(normalized) {
		return nil, s.inviteFailure(invite.ErrNotFound, s.metrics.InviteRedeemed)
	}

	now := s.now()
	code, err := s.codes.Redeem(ctx, normalized, userID, s.cfg.UsageCap, now)
	switch {
	case err == nil:
		s.metrics.InviteRedeemed("ok")
		return code, nil
	case errors.Is(err, repository.ErrUserAlreadyRedeemed):
		return nil, s.inviteFailure(invite.ErrAlreadyRedeemed, s.metrics.InviteRedeemed)
	case errors.Is(err, repository.ErrInviteNotConsumed):
		return nil, s.inviteFailure(s.explainRejection(ctx, normalized, now), s.metrics.InviteRedeemed)
	default:
		return nil, apperrors.MapError(err)
	}
}

// Redeem consumes a code for the signed-in user and re-issues the session with the new role.
func (s *InviteService) Redeem(ctx context.Context, user *domain.User, raw string) (*RedeemResult, error) {
	if user.InviteRedeemed() {
		return nil, s.inviteFailure(invite.ErrAlreadyRedeemed, s.metrics.InviteRedeemed)
	}

	code, err := s.Consume(ctx, raw, user.ID)
	if err != nil {
		return nil, err
	}

	redeemed := *user
	used := code.Code
	now := s.now()
	redeemed.InviteCodeUsed = &used
	redeemed.InviteUsedAt = &now

	role := s.resolver.ResolveUser(&redeemed)
	session, err := s.tokens.GenerateToken(&redeemed, role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.logger.Info("invite code redeemed",
		zap.String("user_id", user.ID),
		zap.String("code", code.Code),
		zap.Int("current_uses", code.CurrentUses),
	)
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, newEvent(events.EventInviteRedeemed, user.ID, now, events.InviteRedeemedPayload{
			Email:       user.Email,
			Code:        code.Code,
			CurrentUses: code.CurrentUses,
			MaxUses:     code.MaxUses,
		}))
	}

	return &RedeemResult{Code: code, Profile: buildProfile(&redeemed, role), Session: session}, nil
}

// CreateCode stores a new active code on behalf of an admin.
func (s *InviteService) CreateCode(ctx context.Context, actor *domain.User, input CreateInviteInput) (*domain.InviteCode, error) {
	maxUses := input.MaxUses
	if maxUses <= 0 {
		maxUses = s.cfg.DefaultMaxUses
	}
	if input.ExpiresInDays < 0 || (s.cfg.MaxExpiresDays > 0 && input.ExpiresInDays > s.cfg.MaxExpiresDays) {
		return nil, apperrors.NewValidationError("invalid expiry", map[string]any{"max_days": s.cfg.MaxExpiresDays})
	}

	now := s.now()
	record := &domain.InviteCode{
		CreatedBy:   actor.Email,
		MaxUses:     maxUses,
		IsActive:    true,
		Description: strings.TrimSpace(input.Description),
	}
	if input.ExpiresInDays > 0 {
		expires := now.AddDate(0, 0, input.ExpiresInDays)
		record.ExpiresAt = &expires
	}

	if input.Code != "" {
		record.Code = invite.Normalize(input.Code)
		if !invite.ValidFormat(record.Code) {
			return nil, apperrors.NewValidationError("invite code must be 8 letters or digits", nil)
		}
		if err := s.codes.Create(ctx, record); err != nil {
			if apperrors.IsUniqueViolation(err) {
				return nil, apperrors.NewConflict("invite code already exists", map[string]any{"code": record.Code})
			}
			return nil, apperrors.MapError(err)
		}
		return record, nil
	}

	for attempt := 0; attempt < generateAttempts; attempt++ {
		generated, err := invite.Generate()
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		record.Code = generated
		err = s.codes.Create(ctx, record)
		if err == nil {
			s.logger.Info("invite code created", zap.String("code", record.Code), zap.String("created_by", actor.Email))
			return record, nil
		}
		if !apperrors.IsUniqueViolation(err) {
			return nil, apperrors.MapError(err)
		}
	}
	return nil, apperrors.NewConflict("could not generate a unique invite code", nil)
}

// ListCodes returns codes for the admin panel.
func (s *InviteService) ListCodes(ctx context.Context, filter repository.InviteCodeFilter) ([]domain.InviteCode, error) {
	codes, err := s.codes.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return codes, nil
}

// SetActive enables or soft-disables a code.
func (s *InviteService) SetActive(ctx context.Context, raw string, active bool) (*domain.InviteCode, error) {
	code, err := s.codes.SetActive(ctx, invite.Normalize(raw), active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("invite code", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return code, nil
}

// Usable reports whether the code would currently validate.
func (s *InviteService) Usable(code *domain.InviteCode) bool {
	return invite.Check(code, s.now(), s.cfg.UsageCap) == nil
}

// RemainingUses applies the global cap to the code's own limit.
func (s *InviteService) RemainingUses(code *domain.InviteCode) int {
	return code.RemainingUses(s.cfg.UsageCap)
}

func (s *InviteService) lookup(ctx context.Context, raw string) (*domain.InviteCode, error) {
	normalized := invite.Normalize(raw)
	if !invite.ValidFormat(normalized) {
		return nil, invite.ErrNotFound
	}
	code, err := s.codes.GetByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, invite.ErrNotFound
		}
		return nil, err
	}
	return code, nil
}

// explainRejection re-reads a code the conditional update skipped. A code that looks usable again
// lost a race for its last use.
func (s *InviteService) explainRejection(ctx context.Context, normalized string, now time.Time) error {
	code, err := s.codes.GetByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return invite.ErrNotFound
		}
		return err
	}
	if err := invite.Check(code, now, s.cfg.UsageCap); err != nil {
		return err
	}
	return invite.ErrExhausted
}

// inviteFailure converts validation sentinels into user-facing errors and records the outcome.
func (s *InviteService) inviteFailure(err error, record func(string)) error {
	reason := invite.Reason(err)
	if reason == "" {
		return apperrors.MapError(err)
	}
	record(reason)
	if errors.Is(err, invite.ErrAlreadyRedeemed) {
		return apperrors.NewConflict(err.Error(), map[string]any{"reason": reason})
	}
	return apperrors.NewInviteInvalid(reason, err.Error(), err)
}
