package booking

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"homelet/internal/domain"
	"homelet/internal/repository"
)

// Mock repositories

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	if b != nil {
		b.ID = 999 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) CountBlockingOverlaps(ctx context.Context, propertyID int64, start, end time.Time, excludeBookingID int64, sameDayTurnover bool) (int64, error) {
	args := m.Called(ctx, propertyID, start, end, excludeBookingID, sameDayTurnover)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingRepository) GetBookedPeriods(ctx context.Context, propertyID int64, from, to time.Time) ([]domain.BookedPeriod, error) {
	args := m.Called(ctx, propertyID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BookedPeriod), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatusFrom(ctx context.Context, bookingID int64, from []domain.BookingStatus, to domain.BookingStatus, appendNotes string) (int64, error) {
	args := m.Called(ctx, bookingID, from, to, appendNotes)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingRepository) List(ctx context.Context, scope repository.ListScope) ([]domain.Booking, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockPropertyReader struct {
	mock.Mock
}

func (m *MockPropertyReader) GetByID(ctx context.Context, id int64) (*domain.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Property), args.Error(1)
}

type MockEventRecorder struct {
	mock.Mock
}

func (m *MockEventRecorder) Append(ctx context.Context, e *domain.BookingEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEventRecorder) ListByBooking(ctx context.Context, bookingID int64) ([]domain.BookingEvent, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BookingEvent), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

const (
	landlordID = int64(1)
	tenantID   = int64(2)
	strangerID = int64(77)
	adminID    = int64(100)
	propertyID = int64(10)
)

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	}
}

func approvedListing() *domain.Property {
	return &domain.Property{
		ID:          propertyID,
		OwnerID:     landlordID,
		MonthlyRent: 1200,
		IsAvailable: true,
		Status:      domain.ListingApproved,
	}
}

func newTestService(bookings *MockBookingRepository, props *MockPropertyReader, cfg Config) *Service {
	if cfg.Now == nil {
		cfg.Now = fixedClock()
	}
	events := new(MockEventRecorder)
	events.On("Append", mock.Anything, mock.Anything).Return(nil).Maybe()
	notifs := new(MockNotifier)
	notifs.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	return NewService(bookings, props, events, notifs, cfg)
}

func TestCreateBooking_Success(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockProps := new(MockPropertyReader)

	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	mockProps.On("GetByID", mock.Anything, propertyID).Return(approvedListing(), nil)
	mockBookings.On("CountBlockingOverlaps", mock.Anything, propertyID, start, end, int64(0), false).Return(int64(0), nil)
	mockBookings.On("Create", mock.Anything, mock.Anything).Return(nil)

	service := newTestService(mockBookings, mockProps, Config{})

	b, err := service.CreateBooking(context.Background(), CreateBookingRequest{
		PropertyID: propertyID,
		TenantID:   tenantID,
		StartDate:  start,
		EndDate:    end,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingPending, b.Status)
	assert.Equal(t, landlordID, b.LandlordID)
	assert.NotEmpty(t, b.Reference)
	// one calendar month spanned, rent defaulted from the listing
	assert.Equal(t, 1200.0, b.TotalPrice)
	mockBookings.AssertExpectations(t)
}

func TestCreateBooking_InvalidInterval(t *testing.T) {
	service := newTestService(new(MockBookingRepository), new(MockPropertyReader), Config{})

	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	// start == end
	_, err := service.CreateBooking(context.Background(), CreateBookingRequest{
		PropertyID: propertyID, TenantID: tenantID, StartDate: day, EndDate: day,
	})
	assert.ErrorIs(t, err, ErrInvalidInterval)

	// start > end
	_, err = service.CreateBooking(context.Background(), CreateBookingRequest{
		PropertyID: propertyID, TenantID: tenantID, StartDate: day, EndDate: day.AddDate(0, 0, -5),
	})
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestCreateBooking_PastStartDate(t *testing.T) {
	service := newTestService(new(MockBookingRepository), new(MockPropertyReader), Config{})

	_, err := service.CreateBooking(context.Background(), CreateBookingRequest{
		PropertyID: propertyID,
		TenantID:   tenantID,
		StartDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrPastStartDate)
}

func TestCreateBooking_PropertyNotFound(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockProps := new(MockPropertyReader)
	mockProps.On("GetByID", mock.Anything, propertyID).Return(nil, gorm.ErrRecordNotFound)

	service := newTestService(mockBookings, mockProps, Config{})

	_, err := service.CreateBooking(context.Background(), CreateBookingRequest{
		PropertyID: propertyID,
		TenantID:   tenantID,
		StartDate:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestCreateBooking_PropertyUnavailable(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockProps := new(MockPropertyReader)

	p := approvedListing()
	p.IsAvailable = false
	mockProps.On("GetByID", mock.Anything, propertyID).Return(p, nil)

	service := newTestService(mockBookings, mockProps, Config{})

	_, err := service.CreateBooking(context.Background(), CreateBookingRequest{
		PropertyID: propertyID,
		TenantID:   tenantID,
		StartDate:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrPropertyUnavailable)
}

func TestCreateBooking_SelfBooking(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockProps := new(MockPropertyReader)
	mockProps.On("GetByID", mock.Anything, propertyID).Return(approvedListing(), nil)

	service := newTestService(mockBookings, mockProps, Config{})

	_, err := service.CreateBooking(context.Background(), CreateBookingRequest{
		PropertyID: propertyID,
		TenantID:   landlordID,
		StartDate:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrSelfBooking)
}

func TestCreateBooking_OverlapConflict(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockProps := new(MockPropertyReader)

	mockProps.On("GetByID", mock.Anything, propertyID).Return(approvedListing(), nil)
	mockBookings.On("CountBlockingOverlaps", mock.Anything, propertyID, mock.Anything, mock.Anything, int64(0), false).
		Return(int64(1), nil)

	service := newTestService(mockBookings, mockProps, Config{})

	_, err := service.CreateBooking(context.Background(), CreateBookingRequest{
		PropertyID: propertyID,
		TenantID:   tenantID,
		StartDate:  time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrOverlapConflict)
}

func TestCreateBooking_SameDayTurnoverFlagReachesQuery(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockProps := new(MockPropertyReader)

	mockProps.On("GetByID", mock.Anything, propertyID).Return(approvedListing(), nil)
	mockBookings.On("CountBlockingOverlaps", mock.Anything, propertyID, mock.Anything, mock.Anything, int64(0), true).
		Return(int64(0), nil)
	mockBookings.On("Create", mock.Anything, mock.Anything).Return(nil)

	service := newTestService(mockBookings, mockProps, Config{AllowSameDayTurnover: true})

	_, err := service.CreateBooking(context.Background(), CreateBookingRequest{
		PropertyID: propertyID,
		TenantID:   tenantID,
		StartDate:  time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC),
	})
	assert.NoError(t, err)
	mockBookings.AssertExpectations(t)
}

// The storage-layer exclusion constraint is the last line of defense;
// its violation must read as an overlap conflict, not a storage error.
func TestCreateBooking_ConstraintViolationMapsToConflict(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockProps := new(MockPropertyReader)

	mockProps.On("GetByID", mock.Anything, propertyID).Return(approvedListing(), nil)
	mockBookings.On("CountBlockingOverlaps", mock.Anything, propertyID, mock.Anything, mock.Anything, int64(0), false).
		Return(int64(0), nil)
	mockBookings.On("Create", mock.Anything, mock.Anything).
		Return(&pgconn.PgError{Code: "23P01", ConstraintName: "no_double_booking"})

	service := newTestService(mockBookings, mockProps, Config{})

	_, err := service.CreateBooking(context.Background(), CreateBookingRequest{
		PropertyID: propertyID,
		TenantID:   tenantID,
		StartDate:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrOverlapConflict)
}

func pendingBooking() *domain.Booking {
	return &domain.Booking{
		ID:         55,
		Reference:  "ref-55",
		PropertyID: propertyID,
		TenantID:   tenantID,
		LandlordID: landlordID,
		StartDate:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		Status:     domain.BookingPending,
	}
}

func TestApproveBooking_Success(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockProps := new(MockPropertyReader)

	b := pendingBooking()
	approved := *b
	approved.Status = domain.BookingApproved

	mockBookings.On("GetByID", mock.Anything, b.ID).Return(b, nil).Once()
	mockBookings.On("CountBlockingOverlaps", mock.Anything, propertyID, b.StartDate, b.EndDate, b.ID, false).
		Return(int64(0), nil)
	mockBookings.On("UpdateStatusFrom", mock.Anything, b.ID,
		[]domain.BookingStatus{domain.BookingPending}, domain.BookingApproved, mock.Anything).
		Return(int64(1), nil)
	mockBookings.On("GetByID", mock.Anything, b.ID).Return(&approved, nil).Once()

	service := newTestService(mockBookings, mockProps, Config{})

	result, err := service.ApproveBooking(context.Background(), b.ID, landlordID, domain.RoleLandlord, "keys at reception")

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingApproved, result.Status)
	mockBookings.AssertExpectations(t)
}

// Two tenants hold pending requests for overlapping dates; one was
// approved first, so approving the second must fail on the re-check.
func TestApproveBooking_ConflictWithEarlierApproval(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockProps := new(MockPropertyReader)

	b := pendingBooking()
	mockBookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)
	mockBookings.On("CountBlockingOverlaps", mock.Anything, propertyID, b.StartDate, b.EndDate, b.ID, false).
		Return(int64(1), nil)

	service := newTestService(mockBookings, mockProps, Config{})

	_, err := service.ApproveBooking(context.Background(), b.ID, landlordID, domain.RoleLandlord, "")
	assert.ErrorIs(t, err, ErrOverlapConflict)
}

// The conditional update lost the race: someone else changed the
// status between the read and the write.
func TestApproveBooking_RaceLoser(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockProps := new(MockPropertyReader)

	b := pendingBooking()
	mockBookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)
	mockBookings.On("CountBlockingOverlaps", mock.Anything, propertyID, b.StartDate, b.EndDate, b.ID, false).
		Return(int64(0), nil)
	mockBookings.On("UpdateStatusFrom", mock.Anything, b.ID,
		[]domain.BookingStatus{domain.BookingPending}, domain.BookingApproved, mock.Anything).
		Return(int64(0), nil)

	service := newTestService(mockBookings, mockProps, Config{})

	_, err := service.ApproveBooking(context.Background(), b.ID, landlordID, domain.RoleLandlord, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

// Two overlapping pending bookings with different start dates can both
// pass the recheck under concurrency; the exclusion constraint rejects
// the losing write and the service reports the conflict.
func TestApproveBooking_ConstraintViolationMapsToConflict(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockProps := new(MockPropertyReader)

	b := pendingBooking()
	mockBookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)
	mockBookings.On("CountBlockingOverlaps", mock.Anything, propertyID, b.StartDate, b.EndDate, b.ID, false).
		Return(int64(0), nil)
	mockBookings.On("UpdateStatusFrom", mock.Anything, b.ID,
		[]domain.BookingStatus{domain.BookingPending}, domain.BookingApproved, mock.Anything).
		Return(int64(0), &pgconn.PgError{Code: "23P01", ConstraintName: "no_double_booking"})

	service := newTestService(mockBookings, mockProps, Config{})

	_, err := service.ApproveBooking(context.Background(), b.ID, landlordID, domain.RoleLandlord, "")
	assert.ErrorIs(t, err, ErrOverlapConflict)
}

func TestApproveBooking_TenantForbidden(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockProps := new(MockPropertyReader)

	b := pendingBooking()
	mockBookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)

	service := newTestService(mockBookings, mockProps, Config{})

	_, err := service.ApproveBooking(context.Background(), b.ID, tenantID, domain.RoleTenant, "")
	assert.ErrorIs(t, err, ErrAccessDenied)
}

// A viewer with no relation to the booking gets the same not-found as
// a truly absent booking, so existence is not leaked.
func TestApproveBooking_StrangerGetsNotFound(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockProps := new(MockPropertyReader)

	b := pendingBooking()
	mockBookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)

	service := newTestService(mockBookings, mockProps, Config{})

	_, err := service.ApproveBooking(context.Background(), b.ID, strangerID, domain.RoleTenant, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApproveBooking_NotPending(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockProps := new(MockPropertyReader)

	b := pendingBooking()
	b.Status = domain.BookingCancelled
	mockBookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)

	service := newTestService(mockBookings, mockProps, Config{})

	_, err := service.ApproveBooking(context.Background(), b.ID, landlordID, domain.RoleLandlord, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRejectBooking_MissingReason(t *testing.T) {
	service := newTestService(new(MockBookingRepository), new(MockPropertyReader), Config{})

	_, err := service.RejectBooking(context.Background(), 55, landlordID, domain.RoleLandlord, "")
	assert.ErrorIs(t, err, ErrMissingReason)
}

// Rejecting twice is an error, not a silent no-op.
func TestRejectBooking_AlreadyRejected(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockProps := new(MockPropertyReader)

	b := pendingBooking()
	b.Status = domain.BookingRejected
	mockBookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)

	service := newTestService(mockBookings, mockProps, Config{})

	_, err := service.RejectBooking(context.Background(), b.ID, landlordID, domain.RoleLandlord, "too late")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelBooking_ByTenant(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockProps := new(MockPropertyReader)

	b := pendingBooking()
	cancelled := *b
	cancelled.Status = domain.BookingCancelled

	mockBookings.On("GetByID", mock.Anything, b.ID).Return(b, nil).Once()
	mockBookings.On("UpdateStatusFrom", mock.Anything, b.ID,
		[]domain.BookingStatus{domain.BookingPending, domain.BookingApproved}, domain.BookingCancelled, "").
		Return(int64(1), nil)
	mockBookings.On("GetByID", mock.Anything, b.ID).Return(&cancelled, nil).Once()

	service := newTestService(mockBookings, mockProps, Config{})

	result, err := service.CancelBooking(context.Background(), b.ID, tenantID, domain.RoleTenant)

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, result.Status)
}

// An admin cancel notifies both the tenant and the landlord.
func TestCancelBooking_ByAdminNotifiesBothParties(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockProps := new(MockPropertyReader)

	events := new(MockEventRecorder)
	events.On("Append", mock.Anything, mock.Anything).Return(nil)

	var notified []int64
	notifs := new(MockNotifier)
	notifs.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		notified = append(notified, args.Get(1).(*domain.Notification).UserID)
	}).Return(nil)

	b := pendingBooking()
	cancelled := *b
	cancelled.Status = domain.BookingCancelled

	mockBookings.On("GetByID", mock.Anything, b.ID).Return(b, nil).Once()
	mockBookings.On("UpdateStatusFrom", mock.Anything, b.ID,
		[]domain.BookingStatus{domain.BookingPending, domain.BookingApproved}, domain.BookingCancelled, "").
		Return(int64(1), nil)
	mockBookings.On("GetByID", mock.Anything, b.ID).Return(&cancelled, nil).Once()

	service := NewService(mockBookings, mockProps, events, notifs, Config{Now: fixedClock()})

	_, err := service.CancelBooking(context.Background(), b.ID, adminID, domain.RoleAdmin)
	assert.NoError(t, err)
	assert.ElementsMatch(t, []int64{tenantID, landlordID}, notified)
}

// Cancel, then approve: the approval must fail because the booking is
// no longer pending.
func TestApproveAfterCancel(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockProps := new(MockPropertyReader)

	b := pendingBooking()
	b.Status = domain.BookingCancelled
	mockBookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)

	service := newTestService(mockBookings, mockProps, Config{})

	_, err := service.ApproveBooking(context.Background(), b.ID, landlordID, domain.RoleLandlord, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestGetBooking_AccessControl(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockProps := new(MockPropertyReader)

	b := pendingBooking()
	mockBookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)

	service := newTestService(mockBookings, mockProps, Config{})

	_, err := service.GetBooking(context.Background(), b.ID, strangerID, domain.RoleTenant)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := service.GetBooking(context.Background(), b.ID, adminID, domain.RoleAdmin)
	assert.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
}

func TestGetBookedPeriods(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockProps := new(MockPropertyReader)

	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	mockProps.On("GetByID", mock.Anything, propertyID).Return(approvedListing(), nil)
	mockBookings.On("GetBookedPeriods", mock.Anything, propertyID, from, to).Return([]domain.BookedPeriod{
		{Start: from, End: from.AddDate(0, 0, 9), Status: domain.BookingApproved},
	}, nil)

	service := newTestService(mockBookings, mockProps, Config{})

	periods, err := service.GetBookedPeriods(context.Background(), propertyID, from, to)
	assert.NoError(t, err)
	assert.Len(t, periods, 1)

	_, err = service.GetBookedPeriods(context.Background(), propertyID, to, from)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestMonthsSpanned(t *testing.T) {
	cases := []struct {
		start, end time.Time
		want       int
	}{
		{time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), 1},
		{time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), 3},
		{time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), 3},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, monthsSpanned(tc.start, tc.end))
	}
}
