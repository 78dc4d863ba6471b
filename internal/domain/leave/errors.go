package leave

import "errors"

var (
	ErrLeaveQuotaNotFound = errors.New("leave quota not found")
	ErrInvalidLeaveRange  = errors.New("leave end date is before start date")
	ErrMissingEmployee    = errors.New("leave request has no employee")
)
