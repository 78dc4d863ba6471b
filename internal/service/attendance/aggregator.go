package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/calendar"
)

type AggregatorImpl struct {
	attendanceRepo attendance.AttendanceRepository
}

func NewAggregator(attendanceRepo attendance.AttendanceRepository) attendance.Aggregator {
	return &AggregatorImpl{attendanceRepo: attendanceRepo}
}

// PresentDays returns 0, not an error, when the employee has no rows in the period.
func (a *AggregatorImpl) PresentDays(ctx context.Context, employeeID string, period calendar.Period) (int, error) {
	start, end := period.Start(), period.End()

	records, err := a.attendanceRepo.ListByEmployeeAndRange(ctx, employeeID, start, end)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", attendance.ErrAttendanceFetchFailed, err)
	}

	return CountDistinctDates(records, start, end), nil
}

// CountDistinctDates counts unique calendar dates of records falling inside [start, end].
func CountDistinctDates(records []attendance.AttendanceRecord, start, end time.Time) int {
	start, end = calendar.DateOnly(start), calendar.DateOnly(end)

	dates := make(map[time.Time]struct{}, len(records))
	for _, rec := range records {
		day := calendar.DateOnly(rec.Date)
		if day.Before(start) || day.After(end) {
			continue
		}
		dates[day] = struct{}{}
	}
	return len(dates)
}
