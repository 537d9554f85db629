package dto

import (
	"time"

	"github.com/spec-kit/mente-aberta-api/internal/service"
)

// AgentResponse is a catalog agent with its lock state.
type AgentResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	WeekUnlock  int      `json:"week_unlock"`
	Unlocked    bool     `json:"unlocked"`
}

// WeekResponse is the content of the current week.
type WeekResponse struct {
	Number   int      `json:"number"`
	AgentID  string   `json:"agent_id"`
	Features []string `json:"features"`
	Trail    string   `json:"trail"`
}

// DashboardResponse is the week-gated dashboard.
type DashboardResponse struct {
	User   UserResponse    `json:"user"`
	Week   WeekResponse    `json:"week"`
	Agents []AgentResponse `json:"agents"`
}

// NewDashboardResponse maps a dashboard.
func NewDashboardResponse(d *service.Dashboard) DashboardResponse {
	agents := make([]AgentResponse, 0, len(d.Agents))
	for _, a := range d.Agents {
		agents = append(agents, AgentResponse{
			ID:          a.ID,
			Name:        a.Name,
			Title:       a.Title,
			Description: a.Description,
			Features:    a.Features,
			WeekUnlock:  a.WeekUnlock,
			Unlocked:    a.Unlocked,
		})
	}
	return DashboardResponse{
		User: NewUserResponse(d.Profile),
		Week: WeekResponse{
			Number:   d.Content.Number,
			AgentID:  d.Content.AgentID,
			Features: d.Content.Features,
			Trail:    d.Content.Trail,
		},
		Agents: agents,
	}
}

// TesterListQuery filters the testers listing.
type TesterListQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=ACTIVE SUSPENDED"`
	Limit  int    `query:"limit" default:"50" validate:"min=1,max=200"`
	Offset int    `query:"offset" validate:"min=0"`
}

// TesterResponse is an account with tester access.
type TesterResponse struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	Status         string     `json:"status"`
	Role           string     `json:"role"`
	Source         string     `json:"source"`
	InviteCodeUsed string     `json:"invite_code_used,omitempty"`
	InviteUsedAt   *time.Time `json:"invite_used_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// NewTesterResponse maps a tester.
func NewTesterResponse(t service.Tester) TesterResponse {
	return TesterResponse{
		ID:             t.User.ID,
		Email:          t.User.Email,
		Name:           t.User.Name,
		Status:         string(t.User.Status),
		Role:           string(t.Role),
		Source:         t.Source,
		InviteCodeUsed: t.User.UsedInviteCode(),
		InviteUsedAt:   t.User.InviteUsedAt,
		CreatedAt:      t.User.CreatedAt,
	}
}
