package dto

import (
	"time"

	"github.com/spec-kit/mente-aberta-api/internal/domain"
)

// FeedbackRequest is a user feedback submission.
type FeedbackRequest struct {
	Type    string `json:"type" validate:"required,oneof=bug feature improvement general"`
	Message string `json:"message" validate:"required,max=4000"`
	Rating  *int   `json:"rating" validate:"omitempty,min=1,max=5"`
}

// FeedbackStatusRequest moves feedback through review.
type FeedbackStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending reviewed resolved"`
}

// FeedbackListQuery filters the admin listing.
type FeedbackListQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=pending reviewed resolved"`
	Type   string `query:"type" validate:"omitempty,oneof=bug feature improvement general"`
	Limit  int    `query:"limit" default:"50" validate:"min=1,max=200"`
	Offset int    `query:"offset" validate:"min=0"`
}

// FeedbackResponse is a stored feedback item.
type FeedbackResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserEmail string    `json:"user_email"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Rating    *int      `json:"rating,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// NewFeedbackResponse maps feedback.
func NewFeedbackResponse(fb *domain.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:        fb.ID,
		UserID:    fb.UserID,
		UserEmail: fb.UserEmail,
		Type:      string(fb.Type),
		Message:   fb.Message,
		Rating:    fb.Rating,
		Status:    string(fb.Status),
		CreatedAt: fb.CreatedAt,
	}
}
