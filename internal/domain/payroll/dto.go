package payroll

import (
	"fmt"
	"sort"

	"github.com/cmlabs-hris/hris-payroll/internal/pkg/calendar"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== GENERATION DTOs ==========

// PayrollOverride holds manual edits made on a previewed draft before commit.
// PresentDays, LeaveDays and WorkingDays are informational and never feed back into LOP.
// LOPDays recomputes the LOP amount and net salary; AdditionalDeductions recomputes net salary.
type PayrollOverride struct {
	PresentDays          *int             `json:"present_days,omitempty"`
	LeaveDays            *int             `json:"leave_days,omitempty"`
	LOPDays              *decimal.Decimal `json:"lop_days,omitempty"`
	WorkingDays          *int             `json:"working_days,omitempty"`
	AdditionalDeductions *decimal.Decimal `json:"additional_deductions,omitempty"`
}

func (o PayrollOverride) validate(prefix string, errs *validator.ValidationErrors) {
	if o.PresentDays != nil && *o.PresentDays < 0 {
		errs.Add(prefix+".present_days", "must be non-negative")
	}
	if o.LeaveDays != nil && *o.LeaveDays < 0 {
		errs.Add(prefix+".leave_days", "must be non-negative")
	}
	if o.LOPDays != nil {
		if o.LOPDays.IsNegative() {
			errs.Add(prefix+".lop_days", "must be non-negative")
		} else if !hasAtMostTwoDecimals(*o.LOPDays) {
			errs.Add(prefix+".lop_days", "must have at most 2 decimal places")
		}
	}
	if o.WorkingDays != nil && *o.WorkingDays < 0 {
		errs.Add(prefix+".working_days", "must be non-negative")
	}
	if o.AdditionalDeductions != nil {
		if o.AdditionalDeductions.IsNegative() {
			errs.Add(prefix+".additional_deductions", "must be non-negative")
		} else if !hasAtMostTwoDecimals(*o.AdditionalDeductions) {
			errs.Add(prefix+".additional_deductions", "must have at most 2 decimal places")
		}
	}
}

// Stored amounts and day counts carry two decimal places.
func hasAtMostTwoDecimals(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

type GeneratePayrollRequest struct {
	PeriodMonth int                        `json:"period_month"`
	PeriodYear  int                        `json:"period_year"`
	EmployeeIDs []string                   `json:"employee_ids"` // processed in this order
	Overrides   map[string]PayrollOverride `json:"overrides,omitempty"`
	// ReplaceExisting swaps an existing record for the period instead of skipping the employee.
	ReplaceExisting bool   `json:"replace_existing,omitempty"`
	GeneratedBy     string `json:"-"`
}

func (r *GeneratePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.PeriodMonth == 0 {
		errs.Add("period_month", "is required")
	} else if r.PeriodMonth < 1 || r.PeriodMonth > 12 {
		errs.Add("period_month", "must be between 1 and 12")
	}
	if r.PeriodYear == 0 {
		errs.Add("period_year", "is required")
	} else if r.PeriodYear < 1000 || r.PeriodYear > 9999 {
		errs.Add("period_year", "must be a 4-digit year")
	}

	if len(r.EmployeeIDs) == 0 {
		errs.Add("employee_ids", "at least one employee is required")
	}
	selected := make(map[string]struct{}, len(r.EmployeeIDs))
	for _, id := range r.EmployeeIDs {
		if validator.IsEmpty(id) {
			errs.Add("employee_ids", "must not contain empty ids")
			break
		}
		selected[id] = struct{}{}
	}
	if validator.HasDuplicates(r.EmployeeIDs) {
		errs.Add("employee_ids", "must not contain duplicates")
	}

	overrideIDs := make([]string, 0, len(r.Overrides))
	for id := range r.Overrides {
		overrideIDs = append(overrideIDs, id)
	}
	sort.Strings(overrideIDs)
	for _, id := range overrideIDs {
		o := r.Overrides[id]
		prefix := fmt.Sprintf("overrides.%s", id)
		if _, ok := selected[id]; !ok {
			errs.Add(prefix, "employee is not selected")
			continue
		}
		o.validate(prefix, &errs)
	}

	return errs.OrNil()
}

// Period must only be called after Validate succeeded.
func (r *GeneratePayrollRequest) Period() (calendar.Period, error) {
	return calendar.NewPeriod(r.PeriodMonth, r.PeriodYear)
}

// ========== RESPONSE DTOs ==========

type PayrollRecordResponse struct {
	ID                   string          `json:"id,omitempty"`
	EmployeeID           string          `json:"employee_id"`
	Period               string          `json:"period"`
	BasicSalary          decimal.Decimal `json:"basic_salary"`
	HRA                  decimal.Decimal `json:"hra"`
	Allowances           decimal.Decimal `json:"allowances"`
	GrossSalary          decimal.Decimal `json:"gross_salary"`
	ProfessionalTax      decimal.Decimal `json:"professional_tax"`
	AdditionalDeductions decimal.Decimal `json:"additional_deductions"`
	LOPDays              decimal.Decimal `json:"lop_days"`
	LOPAmount            decimal.Decimal `json:"lop_amount"`
	TotalDaysInPeriod    int             `json:"total_days_in_period"`
	WorkingDays          int             `json:"working_days"`
	PresentDays          int             `json:"present_days"`
	LeaveDays            int             `json:"leave_days"`
	NetSalary            decimal.Decimal `json:"net_salary"`
	NegativeNet          bool            `json:"negative_net,omitempty"`
	GeneratedBy          string          `json:"generated_by,omitempty"`
	Status               string          `json:"status,omitempty"`
	CreatedAt            *string         `json:"created_at,omitempty"`
}

type EmployeeOutcomeResponse struct {
	EmployeeID string   `json:"employee_id"`
	Reason     string   `json:"reason,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

type GeneratePayrollResponse struct {
	BatchID        string                    `json:"batch_id"`
	Period         string                    `json:"period"`
	SucceededCount int                       `json:"succeeded_count"`
	SkippedCount   int                       `json:"skipped_count"`
	FailedCount    int                       `json:"failed_count"`
	Succeeded      []PayrollRecordResponse   `json:"succeeded"`
	Skipped        []EmployeeOutcomeResponse `json:"skipped"`
	Failed         []EmployeeOutcomeResponse `json:"failed"`
	Warnings       []EmployeeOutcomeResponse `json:"warnings,omitempty"`
}

type PreviewPayrollResponse struct {
	Period  string                    `json:"period"`
	Drafts  []PayrollRecordResponse   `json:"drafts"`
	Skipped []EmployeeOutcomeResponse `json:"skipped"`
	Failed  []EmployeeOutcomeResponse `json:"failed"`
}

// ========== LIST DTOs ==========

type PayrollFilter struct {
	Period     *calendar.Period
	EmployeeID *string
	Page       int
	Limit      int
}

// Normalize applies pagination defaults.
func (f *PayrollFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type ListPayrollRecordResponse struct {
	Data       []PayrollRecordResponse `json:"data"`
	TotalCount int64                   `json:"total_count"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
}
