package attendance

import (
	"time"
)

// AttendanceRecord is one clock-in row. Several rows may share a date; aggregation counts each date once.
type AttendanceRecord struct {
	ID         string
	EmployeeID string
	Date       time.Time
	ClockIn    *time.Time
	ClockOut   *time.Time
	CreatedAt  time.Time
}
