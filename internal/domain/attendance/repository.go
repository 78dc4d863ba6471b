package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	// ListByEmployeeAndRange returns rows whose date falls within [from, to], both inclusive.
	ListByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]AttendanceRecord, error)
}
