package domain

import "time"

type ProjectStatus string

const (
	ProjectPlanned  ProjectStatus = "planned"
	ProjectActive   ProjectStatus = "active"
	ProjectArchived ProjectStatus = "archived"
)

// Project groups properties of one landlord into a development
// (e.g. an apartment block rented out unit by unit).
type Project struct {
	ID          int64         `json:"id"`
	OwnerID     int64         `json:"owner_id" gorm:"index"`
	Name        string        `json:"name" validate:"required"`
	Description string        `json:"description,omitempty"`
	City        string        `json:"city"`
	Status      ProjectStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
