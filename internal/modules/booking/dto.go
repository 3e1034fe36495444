package booking

import "time"

type CreateBookingRequest struct {
	PropertyID      int64     `json:"property_id" binding:"required"`
	StartDate       time.Time `json:"start_date" binding:"required"`
	EndDate         time.Time `json:"end_date" binding:"required"`
	RentAmount      float64   `json:"rent_amount"`
	SecurityDeposit float64   `json:"security_deposit"`
	Notes           string    `json:"notes"`

	// set from auth claims, not from the body
	TenantID int64 `json:"-"`
}

type DecisionRequest struct {
	Notes  string `json:"notes"`
	Reason string `json:"reason"`
}

type BookedPeriodsResponse struct {
	PropertyID int64       `json:"property_id"`
	From       string      `json:"from"`
	To         string      `json:"to"`
	Periods    []PeriodDTO `json:"periods"`
}

type PeriodDTO struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Status string `json:"status"`
}
