package domain

import "time"

type ListingStatus string

const (
	ListingPending  ListingStatus = "pending"
	ListingApproved ListingStatus = "approved"
	ListingRejected ListingStatus = "rejected"
)

type Property struct {
	ID              int64         `json:"id"`
	OwnerID         int64         `json:"owner_id" gorm:"index"`
	ProjectID       *int64        `json:"project_id,omitempty" gorm:"index"`
	Title           string        `json:"title" validate:"required"`
	Description     string        `json:"description,omitempty"`
	Address         string        `json:"address"`
	City            string        `json:"city" gorm:"index"`
	MonthlyRent     float64       `json:"monthly_rent" validate:"gte=0"`
	SecurityDeposit float64       `json:"security_deposit,omitempty"`
	IsAvailable     bool          `json:"is_available"`
	Status          ListingStatus `json:"status" gorm:"index"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`

	Owner *User `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}
