package events

import (
	"context"
	"time"

	"actibook/pkg/model"
)

// Event types carried in the event-type header of booking messages.
const (
	TypeBookingCreated  = "booking.created"
	TypeBookingReplaced = "booking.replaced"
	TypeBookingRemoved  = "booking.removed"
	TypeBookingAttended = "booking.attended"
)

// BookingEvent is the JSON payload published for every committed
// allocator operation. Downstream consumers (notifications, reporting
// warehouses) key on StudentID for per-student ordering.
type BookingEvent struct {
	Type       string        `json:"type"`
	BookingID  string        `json:"booking_id"`
	StudentID  string        `json:"student_id"`
	ActivityID string        `json:"activity_id"`
	Day        model.Weekday `json:"day"`
	// ReplacedID is set on booking.replaced: the ID of the booking
	// that was removed in the same transaction.
	ReplacedID string    `json:"replaced_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher emits booking lifecycle events after the ledger commit.
// Publishing is best-effort: a failed publish never rolls back a
// committed booking.
type Publisher interface {
	Publish(ctx context.Context, event BookingEvent) error
	Close() error
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event BookingEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }
