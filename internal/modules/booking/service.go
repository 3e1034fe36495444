package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"homelet/internal/domain"
	"homelet/internal/repository"
)

// Config carries the engine's policy knobs.
type Config struct {
	// AllowSameDayTurnover loosens the boundary policy: a lease ending
	// on day N stops conflicting with one starting on day N.
	AllowSameDayTurnover bool

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

type Service struct {
	bookings   BookingRepository
	properties PropertyReader
	events     EventRecorder
	notifs     Notifier
	cfg        Config
}

func NewService(
	bookings BookingRepository,
	properties PropertyReader,
	events EventRecorder,
	notifs Notifier,
	cfg Config,
) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		bookings:   bookings,
		properties: properties,
		events:     events,
		notifs:     notifs,
		cfg:        cfg,
	}
}

// dateOnly truncates to UTC midnight; all interval arithmetic is in
// whole days.
func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// monthsSpanned counts the calendar months the interval touches.
// [Jan 10, Mar 2] spans Jan, Feb, Mar = 3.
func monthsSpanned(start, end time.Time) int {
	return (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month()) + 1
}

func (s *Service) validateInterval(start, end time.Time) error {
	if !start.Before(end) {
		return ErrInvalidInterval
	}
	if start.Before(dateOnly(s.cfg.Now())) {
		return ErrPastStartDate
	}
	return nil
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStorage, err)
}

// isDoubleBookingViolation matches the postgres no_double_booking
// exclusion constraint: 23P01 on the gist range exclusion, 23505 kept
// for schemas still carrying the older unique-index form.
func isDoubleBookingViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return (pgErr.Code == "23P01" || pgErr.Code == "23505") &&
		pgErr.ConstraintName == "no_double_booking"
}

func (s *Service) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	start := dateOnly(req.StartDate)
	end := dateOnly(req.EndDate)

	if err := s.validateInterval(start, end); err != nil {
		return nil, err
	}

	prop, err := s.properties.GetByID(ctx, req.PropertyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, storageErr(err)
	}
	if !prop.IsAvailable || prop.Status != domain.ListingApproved {
		return nil, ErrPropertyUnavailable
	}
	if prop.OwnerID == req.TenantID {
		return nil, ErrSelfBooking
	}

	cnt, err := s.bookings.CountBlockingOverlaps(ctx, req.PropertyID, start, end, 0, s.cfg.AllowSameDayTurnover)
	if err != nil {
		return nil, storageErr(err)
	}
	if cnt > 0 {
		return nil, ErrOverlapConflict
	}

	rent := req.RentAmount
	if rent == 0 {
		rent = prop.MonthlyRent
	}

	b := &domain.Booking{
		Reference:       uuid.NewString(),
		PropertyID:      req.PropertyID,
		TenantID:        req.TenantID,
		LandlordID:      prop.OwnerID,
		StartDate:       start,
		EndDate:         end,
		RentAmount:      rent,
		SecurityDeposit: req.SecurityDeposit,
		TotalPrice:      rent * float64(monthsSpanned(start, end)),
		Status:          domain.BookingPending,
		Notes:           req.Notes,
	}

	if err := s.bookings.Create(ctx, b); err != nil {
		if isDoubleBookingViolation(err) {
			return nil, ErrOverlapConflict
		}
		return nil, storageErr(err)
	}

	s.record(ctx, b.ID, domain.EventBookingCreated, req.TenantID, "")
	s.notify(ctx, prop.OwnerID, domain.NotifyBookingRequested, b.ID,
		fmt.Sprintf("New booking request %s for property %d", b.Reference, b.PropertyID))

	return b, nil
}

// loadVisible applies the uniform not-found policy: a booking a viewer
// may not see is reported exactly like an absent one.
func (s *Service) loadVisible(ctx context.Context, bookingID, viewerID int64, role domain.UserRole) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageErr(err)
	}
	if role != domain.RoleAdmin && b.TenantID != viewerID && b.LandlordID != viewerID {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *Service) GetBooking(ctx context.Context, bookingID, viewerID int64, role domain.UserRole) (*domain.Booking, error) {
	return s.loadVisible(ctx, bookingID, viewerID, role)
}

func (s *Service) ListBookings(ctx context.Context, scope repository.ListScope) ([]domain.Booking, error) {
	out, err := s.bookings.List(ctx, scope)
	if err != nil {
		return nil, storageErr(err)
	}
	return out, nil
}

func (s *Service) GetBookingEvents(ctx context.Context, bookingID, viewerID int64, role domain.UserRole) ([]domain.BookingEvent, error) {
	if _, err := s.loadVisible(ctx, bookingID, viewerID, role); err != nil {
		return nil, err
	}
	events, err := s.events.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, storageErr(err)
	}
	return events, nil
}

// ApproveBooking moves a pending booking to approved. The overlap
// check runs again here, excluding the booking itself, to catch
// anything approved since the request was created; the write is a
// conditional update so racing transitions of the same booking lose
// cleanly. Two interleaved approvals of different overlapping bookings
// pass both rechecks; on postgres the no_double_booking constraint
// rejects the second write.
func (s *Service) ApproveBooking(ctx context.Context, bookingID, actorID int64, role domain.UserRole, notes string) (*domain.Booking, error) {
	b, err := s.loadVisible(ctx, bookingID, actorID, role)
	if err != nil {
		return nil, err
	}
	if role != domain.RoleAdmin && b.LandlordID != actorID {
		return nil, ErrAccessDenied
	}
	if b.Status != domain.BookingPending {
		return nil, transitionErr(b.Status, domain.BookingApproved)
	}

	cnt, err := s.bookings.CountBlockingOverlaps(ctx, b.PropertyID, b.StartDate, b.EndDate, b.ID, s.cfg.AllowSameDayTurnover)
	if err != nil {
		return nil, storageErr(err)
	}
	if cnt > 0 {
		return nil, ErrOverlapConflict
	}

	annotation := "\napproved"
	if notes != "" {
		annotation = "\napproved: " + notes
	}

	rows, err := s.bookings.UpdateStatusFrom(ctx, b.ID,
		[]domain.BookingStatus{domain.BookingPending}, domain.BookingApproved, annotation)
	if err != nil {
		if isDoubleBookingViolation(err) {
			return nil, ErrOverlapConflict
		}
		return nil, storageErr(err)
	}
	if rows == 0 {
		return nil, transitionErr(b.Status, domain.BookingApproved)
	}

	s.record(ctx, b.ID, domain.EventBookingApproved, actorID, notes)
	s.notify(ctx, b.TenantID, domain.NotifyBookingApproved, b.ID,
		fmt.Sprintf("Booking %s was approved", b.Reference))

	return s.reload(ctx, b.ID)
}

// RejectBooking moves a pending booking to rejected; the reason is
// mandatory and appended to the notes.
func (s *Service) RejectBooking(ctx context.Context, bookingID, actorID int64, role domain.UserRole, reason string) (*domain.Booking, error) {
	if reason == "" {
		return nil, ErrMissingReason
	}

	b, err := s.loadVisible(ctx, bookingID, actorID, role)
	if err != nil {
		return nil, err
	}
	if role != domain.RoleAdmin && b.LandlordID != actorID {
		return nil, ErrAccessDenied
	}
	if b.Status != domain.BookingPending {
		return nil, transitionErr(b.Status, domain.BookingRejected)
	}

	rows, err := s.bookings.UpdateStatusFrom(ctx, b.ID,
		[]domain.BookingStatus{domain.BookingPending}, domain.BookingRejected, "\nrejected: "+reason)
	if err != nil {
		return nil, storageErr(err)
	}
	if rows == 0 {
		return nil, transitionErr(b.Status, domain.BookingRejected)
	}

	s.record(ctx, b.ID, domain.EventBookingRejected, actorID, reason)
	s.notify(ctx, b.TenantID, domain.NotifyBookingRejected, b.ID,
		fmt.Sprintf("Booking %s was rejected: %s", b.Reference, reason))

	return s.reload(ctx, b.ID)
}

// CancelBooking is allowed from pending or approved, by the tenant,
// the landlord, or an admin. Cancellation is a status update; nothing
// is deleted.
func (s *Service) CancelBooking(ctx context.Context, bookingID, actorID int64, role domain.UserRole) (*domain.Booking, error) {
	b, err := s.loadVisible(ctx, bookingID, actorID, role)
	if err != nil {
		return nil, err
	}

	rows, err := s.bookings.UpdateStatusFrom(ctx, b.ID,
		[]domain.BookingStatus{domain.BookingPending, domain.BookingApproved}, domain.BookingCancelled, "")
	if err != nil {
		return nil, storageErr(err)
	}
	if rows == 0 {
		return nil, transitionErr(b.Status, domain.BookingCancelled)
	}

	s.record(ctx, b.ID, domain.EventBookingCancelled, actorID, "")

	// the actor already knows; an admin cancel notifies both parties
	for _, party := range []int64{b.TenantID, b.LandlordID} {
		if party != actorID {
			s.notify(ctx, party, domain.NotifyBookingCancelled, b.ID,
				fmt.Sprintf("Booking %s was cancelled", b.Reference))
		}
	}

	return s.reload(ctx, b.ID)
}

// GetBookedPeriods is the public calendar query; only blocking
// bookings are returned.
func (s *Service) GetBookedPeriods(ctx context.Context, propertyID int64, from, to time.Time) ([]domain.BookedPeriod, error) {
	from = dateOnly(from)
	to = dateOnly(to)
	if to.Before(from) {
		return nil, ErrInvalidInterval
	}

	if _, err := s.properties.GetByID(ctx, propertyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, storageErr(err)
	}

	periods, err := s.bookings.GetBookedPeriods(ctx, propertyID, from, to)
	if err != nil {
		return nil, storageErr(err)
	}
	return periods, nil
}

func transitionErr(from, to domain.BookingStatus) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

func (s *Service) reload(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	return b, nil
}

func (s *Service) record(ctx context.Context, bookingID int64, typ domain.BookingEventType, actorID int64, payload string) {
	if s.events == nil {
		return
	}
	_ = s.events.Append(ctx, &domain.BookingEvent{
		BookingID: bookingID,
		Type:      typ,
		ActorID:   actorID,
		Payload:   payload,
	})
}

func (s *Service) notify(ctx context.Context, userID int64, typ domain.NotificationType, bookingID int64, msg string) {
	if s.notifs == nil {
		return
	}
	_ = s.notifs.Create(ctx, &domain.Notification{
		UserID:    userID,
		Type:      typ,
		BookingID: bookingID,
		Message:   msg,
	})
}
