package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"homelet/internal/domain"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID              int64     `gorm:"column:id;primaryKey"`
	Reference       string    `gorm:"column:reference;index"`
	PropertyID      int64     `gorm:"column:property_id;index"`
	TenantID        int64     `gorm:"column:tenant_id;index"`
	LandlordID      int64     `gorm:"column:landlord_id;index"`
	StartDate       time.Time `gorm:"column:start_date"`
	EndDate         time.Time `gorm:"column:end_date"`
	RentAmount      float64   `gorm:"column:rent_amount"`
	SecurityDeposit float64   `gorm:"column:security_deposit"`
	TotalPrice      float64   `gorm:"column:total_price"`
	Status          string    `gorm:"column:status;index"`
	Notes           *string   `gorm:"column:notes"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	var notes string
	if m.Notes != nil {
		notes = *m.Notes
	}

	return &domain.Booking{
		ID:              m.ID,
		Reference:       m.Reference,
		PropertyID:      m.PropertyID,
		TenantID:        m.TenantID,
		LandlordID:      m.LandlordID,
		StartDate:       m.StartDate,
		EndDate:         m.EndDate,
		RentAmount:      m.RentAmount,
		SecurityDeposit: m.SecurityDeposit,
		TotalPrice:      m.TotalPrice,
		Status:          domain.BookingStatus(m.Status),
		Notes:           notes,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	var notes *string
	if b.Notes != "" {
		v := b.Notes
		notes = &v
	}

	return bookingModel{
		ID:              b.ID,
		Reference:       b.Reference,
		PropertyID:      b.PropertyID,
		TenantID:        b.TenantID,
		LandlordID:      b.LandlordID,
		StartDate:       b.StartDate,
		EndDate:         b.EndDate,
		RentAmount:      b.RentAmount,
		SecurityDeposit: b.SecurityDeposit,
		TotalPrice:      b.TotalPrice,
		Status:          string(b.Status),
		Notes:           notes,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	b.ID = m.ID
	b.CreatedAt = m.CreatedAt
	b.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

// CountBlockingOverlaps is the single overlap query: how many bookings
// in a blocking status intersect [start, end] on this property. Dates
// are inclusive on both bounds; with sameDayTurnover a booking ending
// on the candidate's start day (or vice versa) does not count.
// excludeBookingID skips one booking so an approval re-check does not
// conflict with the booking being approved.
func (r *BookingRepository) CountBlockingOverlaps(
	ctx context.Context,
	propertyID int64,
	start, end time.Time,
	excludeBookingID int64,
	sameDayTurnover bool,
) (int64, error) {
	q := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("property_id = ?", propertyID).
		Where("status IN ?", blockingStatusStrings())

	if sameDayTurnover {
		q = q.Where("start_date < ? AND end_date > ?", end, start)
	} else {
		q = q.Where("start_date <= ? AND end_date >= ?", end, start)
	}

	if excludeBookingID > 0 {
		q = q.Where("id <> ?", excludeBookingID)
	}

	var cnt int64
	if err := q.Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}

func blockingStatusStrings() []string {
	out := make([]string, 0, len(domain.BlockingStatuses))
	for _, s := range domain.BlockingStatuses {
		out = append(out, string(s))
	}
	return out
}

// GetBookedPeriods returns the blocking bookings intersecting
// [from, to], ordered by start date, for calendar display.
func (r *BookingRepository) GetBookedPeriods(ctx context.Context, propertyID int64, from, to time.Time) ([]domain.BookedPeriod, error) {
	type row struct {
		StartDate time.Time `gorm:"column:start_date"`
		EndDate   time.Time `gorm:"column:end_date"`
		Status    string    `gorm:"column:status"`
	}

	var rows []row
	err := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Select("start_date, end_date, status").
		Where("property_id = ?", propertyID).
		Where("status IN ?", blockingStatusStrings()).
		Where("start_date <= ? AND end_date >= ?", to, from).
		Order("start_date").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.BookedPeriod, 0, len(rows))
	for _, rr := range rows {
		out = append(out, domain.BookedPeriod{
			Start:  rr.StartDate,
			End:    rr.EndDate,
			Status: domain.BookingStatus(rr.Status),
		})
	}
	return out, nil
}

// UpdateStatusFrom performs the conditional transition write. The
// WHERE on the current status makes two concurrent transitions race
// safely: the loser sees zero rows affected. appendNotes, when
// non-empty, is concatenated onto the notes column in the same
// statement.
func (r *BookingRepository) UpdateStatusFrom(
	ctx context.Context,
	bookingID int64,
	from []domain.BookingStatus,
	to domain.BookingStatus,
	appendNotes string,
) (int64, error) {
	fromStrs := make([]string, 0, len(from))
	for _, s := range from {
		fromStrs = append(fromStrs, string(s))
	}

	updates := map[string]any{
		"status":     string(to),
		"updated_at": time.Now().UTC(),
	}
	if appendNotes != "" {
		updates["notes"] = gorm.Expr("COALESCE(notes, '') || ?", appendNotes)
	}

	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ? AND status IN ?", bookingID, fromStrs).
		Updates(updates)
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}

// ListScope narrows List to what the viewer may see. Filters are
// applied in the query, not as a post-filter.
type ListScope struct {
	ViewerID   int64
	ViewerRole domain.UserRole
	PropertyID int64
	Status     domain.BookingStatus
	Limit      int
	Offset     int
}

func (r *BookingRepository) List(ctx context.Context, scope ListScope) ([]domain.Booking, error) {
	if scope.Limit <= 0 || scope.Limit > 100 {
		scope.Limit = 20
	}
	if scope.Offset < 0 {
		scope.Offset = 0
	}

	q := r.db.WithContext(ctx).Model(&bookingModel{})

	switch scope.ViewerRole {
	case domain.RoleAdmin:
		// no scoping
	case domain.RoleLandlord:
		q = q.Where("tenant_id = ? OR landlord_id = ?", scope.ViewerID, scope.ViewerID)
	default:
		q = q.Where("tenant_id = ?", scope.ViewerID)
	}

	if scope.PropertyID > 0 {
		q = q.Where("property_id = ?", scope.PropertyID)
	}
	if scope.Status != "" {
		q = q.Where("status = ?", string(scope.Status))
	}

	var rows []bookingModel
	if err := q.Order("created_at DESC").Limit(scope.Limit).Offset(scope.Offset).Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

// CompleteExpired moves blocking bookings whose end date has passed to
// completed and returns their IDs for audit logging.
func (r *BookingRepository) CompleteExpired(ctx context.Context, today time.Time) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("status IN ?", blockingStatusStrings()).
		Where("end_date < ?", today).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"status":     string(domain.BookingCompleted),
			"updated_at": time.Now().UTC(),
		})
	if tx.Error != nil {
		return nil, tx.Error
	}
	return ids, nil
}

func (r *BookingRepository) DB() *gorm.DB {
	return r.db
}
