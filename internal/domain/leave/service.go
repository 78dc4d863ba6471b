package leave

import (
	"context"

	"github.com/cmlabs-hris/hris-payroll/internal/pkg/calendar"
)

type Aggregator interface {
	// ApprovedPaidLeaveDays sums approved, paid leave overlapping the period, capped at the monthly quota.
	ApprovedPaidLeaveDays(ctx context.Context, employeeID string, period calendar.Period) (int, error)
}
