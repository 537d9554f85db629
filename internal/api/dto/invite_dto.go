package dto

import (
	"time"

	"github.com/spec-kit/mente-aberta-api/internal/domain"
	"github.com/spec-kit/mente-aberta-api/internal/invite"
)

// InviteCodeRequest carries a code typed by the user.
type InviteCodeRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

// InviteValidationResponse is returned for a usable code.
type InviteValidationResponse struct {
	Valid         bool   `json:"valid"`
	Code          string `json:"code"`
	RemainingUses int    `json:"remaining_uses"`
}

// InviteRedeemResponse carries the refreshed account and session.
type InviteRedeemResponse struct {
	Code    string          `json:"code"`
	User    UserResponse    `json:"user"`
	Session SessionResponse `json:"session"`
}

// CreateInviteRequest is the admin payload for a new code.
type CreateInviteRequest struct {
	Code          string `json:"code" validate:"omitempty,max=16"`
	MaxUses       int    `json:"max_uses" validate:"omitempty,min=1,max=10000"`
	ExpiresInDays int    `json:"expires_in_days" validate:"omitempty,min=1"`
	Description   string `json:"description" validate:"max=280"`
}

// InviteListQuery filters the admin listing.
type InviteListQuery struct {
	Active *bool `query:"active"`
	Limit  int   `query:"limit" default:"50" validate:"min=1,max=200"`
	Offset int   `query:"offset" validate:"min=0"`
}

// ActiveRequest toggles an entity on or off.
type ActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// InviteCodeResponse is the admin view of a code.
type InviteCodeResponse struct {
	Code          string     `json:"code"`
	DisplayCode   string     `json:"display_code"`
	CreatedBy     string     `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	MaxUses       int        `json:"max_uses"`
	CurrentUses   int        `json:"current_uses"`
	RemainingUses int        `json:"remaining_uses"`
	IsActive      bool       `json:"is_active"`
	Usable        bool       `json:"usable"`
	Description   string     `json:"description,omitempty"`
}

// NewInviteCodeResponse maps a code. remaining and usable depend on the configured cap.
func NewInviteCodeResponse(c *domain.InviteCode, remaining int, usable bool) InviteCodeResponse {
	return InviteCodeResponse{
		Code:          c.Code,
		DisplayCode:   invite.Format(c.Code),
		CreatedBy:     c.CreatedBy,
		CreatedAt:     c.CreatedAt,
		ExpiresAt:     c.ExpiresAt,
		MaxUses:       c.MaxUses,
		CurrentUses:   c.CurrentUses,
		RemainingUses: remaining,
		IsActive:      c.IsActive,
		Usable:        usable,
		Description:   c.Description,
	}
}
