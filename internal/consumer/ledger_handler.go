package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"example.com/recommendation/internal/domain"
	"example.com/recommendation/internal/events"
	"example.com/recommendation/internal/ledger"
)

// LedgerHandler applies session lifecycle events to the ledger.
type LedgerHandler struct {
	ledger *ledger.Service
	logger *log.Logger
}

// NewLedgerHandler constructs a handler over the ledger service.
func NewLedgerHandler(svc *ledger.Service, logger *log.Logger) *LedgerHandler {
	if logger == nil {
		logger = log.New(log.Writer(), "[ledger-handler] ", log.LstdFlags)
	}
	return &LedgerHandler{ledger: svc, logger: logger}
}

// Handle dispatches by event type. Unknown event types are logged and
// committed; retrying them can never succeed.
func (h *LedgerHandler) Handle(ctx context.Context, msg Message) error {
	switch msg.EventType {
	case events.TypeSessionStarted:
		var event events.SessionStarted
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			return fmt.Errorf("unmarshal %s: %w", msg.EventType, err)
		}
		_, err := h.ledger.Start(ctx, ledger.StartInput{
			SessionID:    event.SessionID,
			UserID:       event.UserID,
			WorkoutID:    event.WorkoutID,
			WorkoutType:  event.WorkoutType,
			InstructorID: event.InstructorID,
			StartedAt:    event.StartedAt,
		})
		return err

	case events.TypeSessionEnded:
		var event events.SessionEnded
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			return fmt.Errorf("unmarshal %s: %w", msg.EventType, err)
		}
		return h.ledger.End(ctx, event.SessionID, event.Completed)

	case events.TypeFeedbackSubmitted:
		var event events.FeedbackSubmitted
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			return fmt.Errorf("unmarshal %s: %w", msg.EventType, err)
		}
		err := h.ledger.LogFeedback(ctx, event.SessionID, event.Value)
		if errors.Is(err, domain.ErrSessionNotFound) {
			// Feedback for a session we never saw is a permanent failure.
			h.logger.Printf("dropping feedback for unknown session %s", event.SessionID)
			return nil
		}
		return err

	default:
		h.logger.Printf("ignoring unknown event type %q (topic=%s, offset=%d)", msg.EventType, msg.Topic, msg.Offset)
		return nil
	}
}
