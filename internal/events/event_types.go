package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventInviteRedeemed         EventType = "invite_redeemed"
	EventFeedbackSubmitted      EventType = "feedback_submitted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// PasswordResetRequestedPayload carries what the mailer needs to send a reset link.
type PasswordResetRequestedPayload struct {
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// InviteRedeemedPayload payload.
type InviteRedeemedPayload struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	CurrentUses int    `json:"current_uses"`
	MaxUses     int    `json:"max_uses"`
}

// FeedbackSubmittedPayload payload.
type FeedbackSubmittedPayload struct {
	FeedbackID string `json:"feedback_id"`
	Email      string `json:"email"`
	Type       string `json:"type"`
	Rating     *int   `json:"rating,omitempty"`
}
