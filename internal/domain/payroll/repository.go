package payroll

import (
	"context"

	"github.com/cmlabs-hris/hris-payroll/internal/pkg/calendar"
)

type CompensationRepository interface {
	// GetActiveByEmployeeID returns ErrCompensationNotFound when no active profile exists.
	GetActiveByEmployeeID(ctx context.Context, employeeID string) (CompensationProfile, error)
	ListActiveEmployeeIDs(ctx context.Context) ([]string, error)
}

// PayrollRepository is backed by a store with a unique key on (employee_id, period).
type PayrollRepository interface {
	ExistsByEmployeePeriod(ctx context.Context, employeeID string, period calendar.Period) (bool, error)
	// Create returns ErrPayrollRecordAlreadyExists on a unique-key violation.
	Create(ctx context.Context, record PayrollRecord) (PayrollRecord, error)
	// Replace atomically swaps any existing record of the same employee and period for record.
	Replace(ctx context.Context, record PayrollRecord) (PayrollRecord, error)
	GetByID(ctx context.Context, id string) (PayrollRecord, error)
	GetByEmployeePeriod(ctx context.Context, employeeID string, period calendar.Period) (PayrollRecord, error)
	List(ctx context.Context, filter PayrollFilter) ([]PayrollRecord, int64, error)
}

// Notifier receives fire-and-forget notices after a record is persisted.
type Notifier interface {
	PayrollGenerated(ctx context.Context, record PayrollRecord) error
}
