package payroll

import "errors"

var (
	ErrCompensationNotFound       = errors.New("no active salary data")
	ErrNegativeCompensation       = errors.New("compensation components must be non-negative")
	ErrPayrollRecordNotFound      = errors.New("payroll record not found")
	ErrPayrollRecordAlreadyExists = errors.New("payroll record already exists for this period")
	ErrNoEmployeesSelected        = errors.New("no employees selected")
	ErrMissingActor               = errors.New("generated_by is required")
)
