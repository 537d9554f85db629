package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/mente-aberta-api/internal/events"
)

func newEvent(eventType events.EventType, userID string, at time.Time, payload any) events.Event {
	return events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: at,
		Payload:   payload,
	}
}
