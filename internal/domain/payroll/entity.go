package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/pkg/calendar"
	"github.com/shopspring/decimal"
)

// CompensationProfile - Salary structure of an employee. At most one is active per employee.
type CompensationProfile struct {
	ID              string
	EmployeeID      string
	BasicSalary     decimal.Decimal
	HRA             decimal.Decimal
	Allowances      decimal.Decimal
	ProfessionalTax decimal.Decimal
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Gross is basic + HRA + allowances.
func (c CompensationProfile) Gross() decimal.Decimal {
	return c.BasicSalary.Add(c.HRA).Add(c.Allowances)
}

func (c CompensationProfile) Validate() error {
	for _, v := range []decimal.Decimal{c.BasicSalary, c.HRA, c.Allowances, c.ProfessionalTax} {
		if v.IsNegative() {
			return ErrNegativeCompensation
		}
	}
	return nil
}

// PayrollStatus enum
type PayrollStatus string

const (
	PayrollStatusGenerated PayrollStatus = "generated"
)

// PayrollRecord - Generated payroll result, unique per (EmployeeID, Period)
type PayrollRecord struct {
	ID                   string
	EmployeeID           string
	Period               calendar.Period
	BasicSalary          decimal.Decimal
	HRA                  decimal.Decimal
	Allowances           decimal.Decimal
	ProfessionalTax      decimal.Decimal
	AdditionalDeductions decimal.Decimal
	LOPDays              decimal.Decimal
	LOPAmount            decimal.Decimal
	TotalDaysInPeriod    int // calendar days, the per-day rate divisor
	WorkingDays          int // weekday pool, informational once overridden
	PresentDays          int
	LeaveDays            int
	NetSalary            decimal.Decimal
	GeneratedBy          string
	Status               PayrollStatus
	CreatedAt            time.Time
}

func (r PayrollRecord) Gross() decimal.Decimal {
	return r.BasicSalary.Add(r.HRA).Add(r.Allowances)
}

// HasNegativeNet flags deductions exceeding gross pay. The value is kept as computed.
func (r PayrollRecord) HasNegativeNet() bool {
	return r.NetSalary.IsNegative()
}

// Outcome of one employee inside a generation batch
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// Skip reasons reported back to the caller
const (
	ReasonAlreadyExists  = "already exists"
	ReasonNoActiveSalary = "no active salary data"
)

// Warning codes attached to otherwise successful outcomes
const (
	WarningNegativeNet = "negative_net_salary"
)

type EmployeeOutcome struct {
	EmployeeID string
	Outcome    Outcome
	Reason     string
	Warnings   []string
	Record     *PayrollRecord
}

// BatchResult keeps outcomes in the order employees were processed.
type BatchResult struct {
	BatchID  string
	Period   calendar.Period
	Outcomes []EmployeeOutcome
}

func (b BatchResult) Count(o Outcome) int {
	n := 0
	for _, out := range b.Outcomes {
		if out.Outcome == o {
			n++
		}
	}
	return n
}
