// Package events announces committed settlements to downstream consumers.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Type identifies the settlement an event announces.
type Type string

const (
	ItemApproved   Type = "item.approved"
	ItemRejected   Type = "item.rejected"
	ItemRemoved    Type = "item.removed"
	ItemRedeemed   Type = "item.redeemed"
	SwapAccepted   Type = "swap.accepted"
	SwapCompleted  Type = "swap.completed"
	LedgerPosted   Type = "ledger.posted"
	ReportResolved Type = "report.resolved"
)

// Event describes one committed settlement. UserIDs lists every user whose
// balance or counters the settlement touched.
type Event struct {
	ID           string    `json:"id"`
	Type         Type      `json:"type"`
	UserIDs      []string  `json:"user_ids,omitempty"`
	ItemIDs      []string  `json:"item_ids,omitempty"`
	SwapID       string    `json:"swap_id,omitempty"`
	RedemptionID string    `json:"redemption_id,omitempty"`
	ReportID     string    `json:"report_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// New stamps a fresh event of the given type.
func New(t Type) Event {
	return Event{ID: uuid.NewString(), Type: t, OccurredAt: time.Now().UTC()}
}

// Publisher defines the interface for a component that announces settlements.
type Publisher interface {
	// Publish sends the event. It is called only after the settlement committed.
	Publish(ctx context.Context, event Event) error
}

// NoOpPublisher drops every event. It is used when no queue is configured.
type NoOpPublisher struct{}

var _ Publisher = NoOpPublisher{}

func (NoOpPublisher) Publish(context.Context, Event) error { return nil }

// Announce publishes event and only logs a failure. The settlement has already
// committed, so a lost event must never fail the caller.
func Announce(ctx context.Context, logger *slog.Logger, p Publisher, event Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		logger.ErrorContext(ctx, "CRITICAL: settlement committed but event was not published",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err,
		)
	}
}
