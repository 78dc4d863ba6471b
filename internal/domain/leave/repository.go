package leave

import "context"

type LeaveRequestRepository interface {
	// GetApprovedByEmployee returns every approved request of the employee, without a date filter.
	GetApprovedByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)
}

type LeaveQuotaRepository interface {
	// GetByEmployee returns ErrLeaveQuotaNotFound when the employee has no quota row.
	GetByEmployee(ctx context.Context, employeeID string) (EmployeeLeaveQuota, error)
}
