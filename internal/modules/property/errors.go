package property

import "errors"

var (
	ErrNotFound     = errors.New("property_not_found")
	ErrAccessDenied = errors.New("access_denied")
	ErrValidation   = errors.New("validation error")
)
