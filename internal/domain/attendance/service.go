package attendance

import (
	"context"

	"github.com/cmlabs-hris/hris-payroll/internal/pkg/calendar"
)

type Aggregator interface {
	// PresentDays counts distinct dates with attendance inside the period.
	PresentDays(ctx context.Context, employeeID string, period calendar.Period) (int, error)
}
