package domain

import "time"

type BookingEventType string

const (
	EventBookingCreated   BookingEventType = "created"
	EventBookingApproved  BookingEventType = "approved"
	EventBookingRejected  BookingEventType = "rejected"
	EventBookingCancelled BookingEventType = "cancelled"
	EventBookingCompleted BookingEventType = "completed"
)

// BookingEvent is an append-only audit record of a booking transition.
// Rows are never updated or deleted.
type BookingEvent struct {
	ID        int64            `json:"id"`
	BookingID int64            `json:"booking_id" gorm:"index"`
	Type      BookingEventType `json:"type"`
	ActorID   int64            `json:"actor_id"`
	Payload   string           `json:"payload,omitempty" gorm:"type:text"`
	CreatedAt time.Time        `json:"created_at"`
}
