package domain

import "time"

type NotificationType string

const (
	NotifyBookingRequested NotificationType = "booking_requested"
	NotifyBookingApproved  NotificationType = "booking_approved"
	NotifyBookingRejected  NotificationType = "booking_rejected"
	NotifyBookingCancelled NotificationType = "booking_cancelled"
)

type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id" gorm:"index"`
	Type      NotificationType `json:"type"`
	BookingID int64            `json:"booking_id,omitempty"`
	Message   string           `json:"message"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
