package domain

import "time"

type BookingStatus string

// One canonical status set. Blocking statuses reserve the property;
// pending requests never block each other.
const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
	BookingActive    BookingStatus = "active"
	BookingCompleted BookingStatus = "completed"
)

// BlockingStatuses are the statuses that participate in the
// non-overlap invariant for a property.
var BlockingStatuses = []BookingStatus{BookingApproved, BookingActive}

func (s BookingStatus) IsBlocking() bool {
	return s == BookingApproved || s == BookingActive
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingRejected || s == BookingCancelled || s == BookingCompleted
}

type Booking struct {
	ID              int64         `json:"id"`
	Reference       string        `json:"reference" gorm:"index"`
	PropertyID      int64         `json:"property_id" gorm:"index" validate:"required"`
	TenantID        int64         `json:"tenant_id" gorm:"index" validate:"required"`
	LandlordID      int64         `json:"landlord_id" gorm:"index"`
	StartDate       time.Time     `json:"start_date" validate:"required"`
	EndDate         time.Time     `json:"end_date" validate:"required"`
	RentAmount      float64       `json:"rent_amount" validate:"gte=0"`
	SecurityDeposit float64       `json:"security_deposit,omitempty"`
	TotalPrice      float64       `json:"total_price"`
	Status          BookingStatus `json:"status" gorm:"index"`
	Notes           string        `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`

	Tenant   *User     `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
	Property *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
}

// BookedPeriod is the calendar projection of a blocking booking.
type BookedPeriod struct {
	Start  time.Time     `json:"start"`
	End    time.Time     `json:"end"`
	Status BookingStatus `json:"status"`
}
