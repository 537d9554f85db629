package dto

import (
	"time"

	"github.com/spec-kit/mente-aberta-api/internal/domain"
	"github.com/spec-kit/mente-aberta-api/internal/service"
)

// SignUpRequest payload for new accounts.
type SignUpRequest struct {
	Name     string `json:"name" validate:"max=120"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// SignInRequest payload for sign-in.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PasswordResetRequest asks for a reset link.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetConfirmRequest sets a new password with a reset token.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// PasswordChangeRequest changes the password of the signed-in user.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// OnboardingRequest is the onboarding wizard payload.
type OnboardingRequest struct {
	Name  string   `json:"name" validate:"max=120"`
	Age   *int     `json:"age" validate:"omitempty,min=13,max=120"`
	Goals []string `json:"goals" validate:"required,min=1,max=6,dive,required"`
	Plan  string   `json:"plan" validate:"required,oneof=monthly quarterly annual"`
}

// SessionResponse describes an issued token.
type SessionResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	Role      domain.Role `json:"role"`
}

// UserResponse is the account as the client sees it.
type UserResponse struct {
	ID             string      `json:"id"`
	Email          string      `json:"email"`
	Name           string      `json:"name"`
	Status         string      `json:"status"`
	Role           domain.Role `json:"role"`
	Plan           string      `json:"plan"`
	Premium        bool        `json:"premium"`
	InviteRedeemed bool        `json:"invite_redeemed"`
	Onboarded      bool        `json:"onboarded"`
	Age            *int        `json:"age,omitempty"`
	Goals          []string    `json:"goals"`
	CreatedAt      time.Time   `json:"created_at"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	User    UserResponse    `json:"user"`
	Session SessionResponse `json:"session"`
}

// NewUserResponse maps a profile.
func NewUserResponse(p *service.Profile) UserResponse {
	goals := p.User.Goals
	if goals == nil {
		goals = []string{}
	}
	return UserResponse{
		ID:             p.User.ID,
		Email:          p.User.Email,
		Name:           p.User.Name,
		Status:         string(p.User.Status),
		Role:           p.Role,
		Plan:           p.Plan,
		Premium:        p.Premium,
		InviteRedeemed: p.InviteRedeemed,
		Onboarded:      p.Onboarded,
		Age:            p.User.Age,
		Goals:          goals,
		CreatedAt:      p.User.CreatedAt,
	}
}

// NewSessionResponse maps a session.
func NewSessionResponse(s *domain.Session) SessionResponse {
	return SessionResponse{Token: s.Token, ExpiresAt: s.ExpiresAt, Role: s.Role}
}

// NewAuthResponse maps an auth result.
func NewAuthResponse(r *service.AuthResult) AuthResponse {
	return AuthResponse{User: NewUserResponse(r.Profile), Session: NewSessionResponse(r.Session)}
}
