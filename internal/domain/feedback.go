package domain

import "time"

// FeedbackType classifies user feedback.
type FeedbackType string

const (
	FeedbackTypeBug         FeedbackType = "bug"
	FeedbackTypeFeature     FeedbackType = "feature"
	FeedbackTypeImprovement FeedbackType = "improvement"
	FeedbackTypeGeneral     FeedbackType = "general"
)

// FeedbackStatus tracks admin review progress.
type FeedbackStatus string

const (
	FeedbackStatusPending  FeedbackStatus = "pending"
	FeedbackStatusReviewed FeedbackStatus = "reviewed"
	FeedbackStatusResolved FeedbackStatus = "resolved"
)

// Feedback is a message submitted by a signed-in user.
type Feedback struct {
	ID        string
	UserID    string
	UserEmail string
	Type      FeedbackType
	Message   string
	Rating    *int
	Status    FeedbackStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
