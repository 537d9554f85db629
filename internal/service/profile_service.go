package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/mente-aberta-api/internal/access"
	"github.com/spec-kit/mente-aberta-api/internal/content"
	"github.com/spec-kit/mente-aberta-api/internal/domain"
	"github.com/spec-kit/mente-aberta-api/internal/repository"
	apperrors "github.com/spec-kit/mente-aberta-api/pkg/util"
)

// OnboardingInput is the onboarding wizard payload.
type OnboardingInput struct {
	Name  string
	Age   *int
	Goals []string
	Plan  string
}

// AgentView is a catalog agent with its lock state for the caller.
type AgentView struct {
	content.Agent
	Unlocked bool
}

// Dashboard is the week-gated view of the catalog.
type Dashboard struct {
	Profile *Profile
	Week    int
	Content content.Week
	Agents  []AgentView
}

// ProfileService manages onboarding and the dashboard.
type ProfileService struct {
	users    repository.UserRepository
	resolver *access.Resolver
	now      func() time.Time
}

// NewProfileService constructs the service.
func NewProfileService(users repository.UserRepository, resolver *access.Resolver) *ProfileService {
	return &ProfileService{users: users, resolver: resolver, now: time.Now}
}

// CompleteOnboarding stores the wizard answers. Re-running it keeps the first completion time.
func (s *ProfileService) CompleteOnboarding(ctx context.Context, user *domain.User, input OnboardingInput) (*Profile, error) {
	goals := make([]string, 0, len(input.Goals))
	seen := make(map[string]struct{}, len(input.Goals))
	for _, g := range input.Goals {
		g = strings.ToLower(strings.TrimSpace(g))
		if !content.IsGoal(g) {
			return nil, apperrors.NewValidationError("unknown goal", map[string]any{"goal": g})
		}
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		goals = append(goals, g)
	}

	updated, err := s.users.UpdateProfile(ctx, user.ID, repository.ProfileUpdate{
		Name:        strings.TrimSpace(input.Name),
		Age:         input.Age,
		Goals:       goals,
		Plan:        input.Plan,
		OnboardedAt: s.now(),
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return buildProfile(updated, s.resolver.ResolveUser(updated)), nil
}

// Dashboard computes the current week from onboarding (or sign-up) and marks unlocked agents.
func (s *ProfileService) Dashboard(user *domain.User) *Dashboard {
	start := user.CreatedAt
	if user.OnboardedAt != nil {
		start = *user.OnboardedAt
	}
	week := content.CurrentWeek(start, s.now())

	agents := content.Agents()
	views := make([]AgentView, 0, len(agents))
	for _, a := range agents {
		views = append(views, AgentView{Agent: a, Unlocked: a.Unlocked(week)})
	}

	return &Dashboard{
		Profile: buildProfile(user, s.resolver.ResolveUser(user)),
		Week:    week,
		Content: content.WeekContent(week),
		Agents:  views,
	}
}
