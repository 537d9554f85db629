package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/mente-aberta-api/internal/domain"
	"github.com/spec-kit/mente-aberta-api/internal/events"
	"github.com/spec-kit/mente-aberta-api/internal/repository"
	apperrors "github.com/spec-kit/mente-aberta-api/pkg/util"
)

// FeedbackService stores user feedback and lets admins triage it.
type FeedbackService struct {
	feedback   repository.FeedbackRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// SubmitFeedbackInput carries a feedback submission.
type SubmitFeedbackInput struct {
	Type    domain.FeedbackType
	Message string
	Rating  *int
}

// NewFeedbackService constructs the service.
func NewFeedbackService(repo repository.FeedbackRepository, dispatcher events.Dispatcher) *FeedbackService {
	return &FeedbackService{feedback: repo, dispatcher: dispatcher, now: time.Now}
}

// Submit records feedback from the signed-in user as pending.
func (s *FeedbackService) Submit(ctx context.Context, user *domain.User, input SubmitFeedbackInput) (*domain.Feedback, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, apperrors.NewValidationError("message is required", map[string]any{"fields": map[string]any{"message": "required"}})
	}
	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 5) {
		return nil, apperrors.NewValidationError("rating must be between 1 and 5", map[string]any{"fields": map[string]any{"rating": "min=1,max=5"}})
	}

	fb := &domain.Feedback{
		UserID:    user.ID,
		UserEmail: user.Email,
		Type:      input.Type,
		Message:   message,
		Rating:    input.Rating,
		Status:    domain.FeedbackStatusPending,
	}
	if err := s.feedback.Create(ctx, fb); err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, newEvent(events.EventFeedbackSubmitted, user.ID, s.now(), events.FeedbackSubmittedPayload{
			FeedbackID: fb.ID,
			Email:      user.Email,
			Type:       string(fb.Type),
			Rating:     fb.Rating,
		}))
	}
	return fb, nil
}

// List returns feedback for the admin panel.
func (s *FeedbackService) List(ctx context.Context, filter repository.FeedbackFilter) ([]domain.Feedback, error) {
	items, err := s.feedback.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// UpdateStatus moves feedback through pending, reviewed and resolved.
func (s *FeedbackService) UpdateStatus(ctx context.Context, id string, status domain.FeedbackStatus) (*domain.Feedback, error) {
	fb, err := s.feedback.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("feedback", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return fb, nil
}
