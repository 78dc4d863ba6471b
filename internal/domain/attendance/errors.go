package attendance

import "errors"

var (
	ErrAttendanceFetchFailed = errors.New("failed to fetch attendance records")
	ErrInvalidDateRange      = errors.New("attendance range end is before start")
)
