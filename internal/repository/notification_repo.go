package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"homelet/internal/domain"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

type notificationModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	UserID    int64     `gorm:"column:user_id;index"`
	Type      string    `gorm:"column:type"`
	BookingID int64     `gorm:"column:booking_id"`
	Message   string    `gorm:"column:message"`
	IsRead    bool      `gorm:"column:is_read"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (notificationModel) TableName() string { return "notifications" }

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	m := notificationModel{
		UserID:    n.UserID,
		Type:      string(n.Type),
		BookingID: n.BookingID,
		Message:   n.Message,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	n.ID = m.ID
	n.CreatedAt = m.CreatedAt
	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var rows []notificationModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Notification, 0, len(rows))
	for _, m := range rows {
		out = append(out, domain.Notification{
			ID:        m.ID,
			UserID:    m.UserID,
			Type:      domain.NotificationType(m.Type),
			BookingID: m.BookingID,
			Message:   m.Message,
			IsRead:    m.IsRead,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID, notificationID int64) error {
	return r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true).Error
}
