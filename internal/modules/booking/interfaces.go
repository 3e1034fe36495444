package booking

import (
	"context"
	"time"

	"homelet/internal/domain"
	"homelet/internal/repository"
)

// BookingRepository is the storage surface the availability engine
// needs. The engine holds no in-process state of its own; every
// durable fact lives behind this interface.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	CountBlockingOverlaps(ctx context.Context, propertyID int64, start, end time.Time, excludeBookingID int64, sameDayTurnover bool) (int64, error)
	GetBookedPeriods(ctx context.Context, propertyID int64, from, to time.Time) ([]domain.BookedPeriod, error)
	UpdateStatusFrom(ctx context.Context, bookingID int64, from []domain.BookingStatus, to domain.BookingStatus, appendNotes string) (int64, error)
	List(ctx context.Context, scope repository.ListScope) ([]domain.Booking, error)
}

// PropertyReader is the read-only collaborator for property
// existence, ownership and availability.
type PropertyReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Property, error)
}

// EventRecorder appends audit rows for booking transitions.
type EventRecorder interface {
	Append(ctx context.Context, e *domain.BookingEvent) error
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.BookingEvent, error)
}

// Notifier persists a notification for the counterparty of a
// transition. Failures are logged, never surfaced to the caller.
type Notifier interface {
	Create(ctx context.Context, n *domain.Notification) error
}
