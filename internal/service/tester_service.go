package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/mente-aberta-api/internal/access"
	"github.com/spec-kit/mente-aberta-api/internal/domain"
	"github.com/spec-kit/mente-aberta-api/internal/repository"
	apperrors "github.com/spec-kit/mente-aberta-api/pkg/util"
)

// Tester source values.
const (
	TesterSourceInvite    = "invite"
	TesterSourceAllowList = "allow_list"
)

// Tester is an account with tester access and how it got it.
type Tester struct {
	User   domain.User
	Role   domain.Role
	Source string
}

// TesterService backs the admin testers screen.
type TesterService struct {
	users    repository.UserRepository
	resolver *access.Resolver
	logger   *zap.Logger
}

// NewTesterService constructs the service.
func NewTesterService(users repository.UserRepository, resolver *access.Resolver, logger *zap.Logger) *TesterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TesterService{users: users, resolver: resolver, logger: logger}
}

// List returns invite redeemers and allow-listed accounts.
func (s *TesterService) List(ctx context.Context, status *domain.UserStatus, limit, offset int) ([]Tester, error) {
	users, err := s.users.ListTesters(ctx, repository.TesterFilter{
		Emails: s.resolver.TesterEmails(),
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	out := make([]Tester, 0, len(users))
	for _, u := range users {
		source := TesterSourceInvite
		if !u.InviteRedeemed() {
			source = TesterSourceAllowList
		}
		out = append(out, Tester{User: u, Role: s.resolver.ResolveUser(&u), Source: source})
	}
	return out, nil
}

// SetActive suspends or reactivates an account. Testers are never hard-deleted and accounts
// resolving to admin cannot be suspended here.
func (s *TesterService) SetActive(ctx context.Context, actor *domain.User, id string, active bool) (*domain.User, error) {
	if actor != nil && actor.ID == id && !active {
		return nil, apperrors.NewValidationError("admins cannot suspend themselves", nil)
	}
	status := domain.UserStatusActive
	if !active {
		target, err := s.users.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
			}
			return nil, apperrors.MapError(err)
		}
		if s.resolver.ResolveUser(target) == domain.RoleAdmin {
			return nil, apperrors.NewForbidden("admin accounts cannot be suspended from the testers panel")
		}
		status = domain.UserStatusSuspended
	}
	user, err := s.users.SetStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("tester status changed", zap.String("user_id", id), zap.String("status", string(status)))
	return user, nil
}
