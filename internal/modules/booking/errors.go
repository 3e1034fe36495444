package booking

import "errors"

var (
	ErrInvalidInterval     = errors.New("invalid_interval")
	ErrPastStartDate       = errors.New("past_start_date")
	ErrPropertyNotFound    = errors.New("property_not_found")
	ErrPropertyUnavailable = errors.New("property_unavailable")
	ErrSelfBooking         = errors.New("self_booking")
	ErrOverlapConflict     = errors.New("overlap_conflict")
	ErrNotFound            = errors.New("booking_not_found")
	ErrAccessDenied        = errors.New("access_denied")
	ErrInvalidTransition   = errors.New("invalid_status_transition")
	ErrMissingReason       = errors.New("missing_reason")
	ErrStorage             = errors.New("storage_unavailable")
)
