package payroll

import "context"

type PayrollService interface {
	// Preview computes drafts without persisting anything.
	Preview(ctx context.Context, req GeneratePayrollRequest) (PreviewPayrollResponse, error)
	GeneratePayroll(ctx context.Context, req GeneratePayrollRequest) (GeneratePayrollResponse, error)
	GetPayrollRecord(ctx context.Context, id string) (PayrollRecordResponse, error)
	ListPayrollRecords(ctx context.Context, filter PayrollFilter) (ListPayrollRecordResponse, error)
}
