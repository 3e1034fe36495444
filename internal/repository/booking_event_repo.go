package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"homelet/internal/domain"
)

type BookingEventRepository struct {
	db *gorm.DB
}

func NewBookingEventRepository(db *gorm.DB) *BookingEventRepository {
	return &BookingEventRepository{db: db}
}

type bookingEventModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	BookingID int64     `gorm:"column:booking_id;index"`
	Type      string    `gorm:"column:type"`
	ActorID   int64     `gorm:"column:actor_id"`
	Payload   *string   `gorm:"column:payload"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (bookingEventModel) TableName() string { return "booking_events" }

// Append writes one audit row. Events are insert-only.
func (r *BookingEventRepository) Append(ctx context.Context, e *domain.BookingEvent) error {
	var payload *string
	if e.Payload != "" {
		v := e.Payload
		payload = &v
	}

	m := bookingEventModel{
		BookingID: e.BookingID,
		Type:      string(e.Type),
		ActorID:   e.ActorID,
		Payload:   payload,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	e.ID = m.ID
	e.CreatedAt = m.CreatedAt
	return nil
}

func (r *BookingEventRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.BookingEvent, error) {
	var rows []bookingEventModel
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.BookingEvent, 0, len(rows))
	for _, m := range rows {
		var payload string
		if m.Payload != nil {
			payload = *m.Payload
		}
		out = append(out, domain.BookingEvent{
			ID:        m.ID,
			BookingID: m.BookingID,
			Type:      domain.BookingEventType(m.Type),
			ActorID:   m.ActorID,
			Payload:   payload,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}
