package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/calendar"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Options tunes per-employee processing of a batch.
type Options struct {
	// EmployeeTimeout bounds all data source calls made for one employee. Zero disables it.
	EmployeeTimeout time.Duration
	// DegradeOnFetchError counts 0 present or leave days instead of failing the employee
	// when attendance or leave data cannot be read.
	DegradeOnFetchError bool
}

type PayrollServiceImpl struct {
	compensationRepo payroll.CompensationRepository
	payrollRepo      payroll.PayrollRepository
	attendance       attendance.Aggregator
	leave            leave.Aggregator
	notifier         payroll.Notifier
	opts             Options
}

func NewPayrollService(
	compensationRepo payroll.CompensationRepository,
	payrollRepo payroll.PayrollRepository,
	attendanceAggregator attendance.Aggregator,
	leaveAggregator leave.Aggregator,
	notifier payroll.Notifier,
	opts Options,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		compensationRepo: compensationRepo,
		payrollRepo:      payrollRepo,
		attendance:       attendanceAggregator,
		leave:            leaveAggregator,
		notifier:         notifier,
		opts:             opts,
	}
}

// calendarFacts are computed once per batch.
type calendarFacts struct {
	period       calendar.Period
	weekdayPool  int
	calendarDays int
}

func newCalendarFacts(p calendar.Period) calendarFacts {
	return calendarFacts{
		period:       p,
		weekdayPool:  p.WorkingWeekdays(),
		calendarDays: p.TotalCalendarDays(),
	}
}

// ========== PAYROLL GENERATION ==========

func (s *PayrollServiceImpl) Preview(ctx context.Context, req payroll.GeneratePayrollRequest) (payroll.PreviewPayrollResponse, error) {
	facts, err := s.prepare(req, false)
	if err != nil {
		return payroll.PreviewPayrollResponse{}, err
	}

	result := s.runBatch(ctx, req, facts, false)

	resp := payroll.PreviewPayrollResponse{
		Period:  facts.period.String(),
		Drafts:  []payroll.PayrollRecordResponse{},
		Skipped: []payroll.EmployeeOutcomeResponse{},
		Failed:  []payroll.EmployeeOutcomeResponse{},
	}
	for _, o := range result.Outcomes {
		switch o.Outcome {
		case payroll.OutcomeSucceeded:
			resp.Drafts = append(resp.Drafts, mapToRecordResponse(*o.Record))
		case payroll.OutcomeSkipped:
			resp.Skipped = append(resp.Skipped, mapToOutcomeResponse(o))
		case payroll.OutcomeFailed:
			resp.Failed = append(resp.Failed, mapToOutcomeResponse(o))
		}
	}
	return resp, nil
}

func (s *PayrollServiceImpl) GeneratePayroll(ctx context.Context, req payroll.GeneratePayrollRequest) (payroll.GeneratePayrollResponse, error) {
	facts, err := s.prepare(req, true)
	if err != nil {
		return payroll.GeneratePayrollResponse{}, err
	}

	result := s.runBatch(ctx, req, facts, true)

	slog.Info("Payroll batch finished",
		"batch_id", result.BatchID,
		"period", facts.period.String(),
		"succeeded", result.Count(payroll.OutcomeSucceeded),
		"skipped", result.Count(payroll.OutcomeSkipped),
		"failed", result.Count(payroll.OutcomeFailed),
	)

	return mapToBatchResponse(result), nil
}

// prepare validates the request and computes the calendar facts shared by the batch.
func (s *PayrollServiceImpl) prepare(req payroll.GeneratePayrollRequest, requireActor bool) (calendarFacts, error) {
	if len(req.EmployeeIDs) == 0 {
		return calendarFacts{}, payroll.ErrNoEmployeesSelected
	}
	if err := req.Validate(); err != nil {
		return calendarFacts{}, err
	}
	if requireActor && req.GeneratedBy == "" {
		return calendarFacts{}, payroll.ErrMissingActor
	}

	period, err := req.Period()
	if err != nil {
		return calendarFacts{}, err
	}
	return newCalendarFacts(period), nil
}

// runBatch processes employees one at a time in request order. No employee's failure stops the batch.
func (s *PayrollServiceImpl) runBatch(ctx context.Context, req payroll.GeneratePayrollRequest, facts calendarFacts, persist bool) payroll.BatchResult {
	result := payroll.BatchResult{
		BatchID:  uuid.New().String(),
		Period:   facts.period,
		Outcomes: make([]payroll.EmployeeOutcome, 0, len(req.EmployeeIDs)),
	}

	for _, employeeID := range req.EmployeeIDs {
		override, hasOverride := req.Overrides[employeeID]
		var o *payroll.PayrollOverride
		if hasOverride {
			o = &override
		}

		outcome := s.processEmployee(ctx, employeeID, facts, o, req, persist)

		slog.Info("Payroll employee processed",
			"batch_id", result.BatchID,
			"employee_id", employeeID,
			"period", facts.period.String(),
			"outcome", string(outcome.Outcome),
			"reason", outcome.Reason,
		)
		result.Outcomes = append(result.Outcomes, outcome)
	}

	return result
}

func (s *PayrollServiceImpl) processEmployee(
	ctx context.Context,
	employeeID string,
	facts calendarFacts,
	override *payroll.PayrollOverride,
	req payroll.GeneratePayrollRequest,
	persist bool,
) payroll.EmployeeOutcome {
	if s.opts.EmployeeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.EmployeeTimeout)
		defer cancel()
	}

	skipped := func(reason string) payroll.EmployeeOutcome {
		return payroll.EmployeeOutcome{EmployeeID: employeeID, Outcome: payroll.OutcomeSkipped, Reason: reason}
	}
	failed := func(err error) payroll.EmployeeOutcome {
		return payroll.EmployeeOutcome{EmployeeID: employeeID, Outcome: payroll.OutcomeFailed, Reason: err.Error()}
	}

	// 1. Check existing
	exists, err := s.payrollRepo.ExistsByEmployeePeriod(ctx, employeeID, facts.period)
	if err != nil {
		return failed(fmt.Errorf("failed to check existing payroll record: %w", err))
	}
	if exists && !req.ReplaceExisting {
		return skipped(payroll.ReasonAlreadyExists)
	}

	// 2. Load compensation
	profile, err := s.compensationRepo.GetActiveByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, payroll.ErrCompensationNotFound) {
			return skipped(payroll.ReasonNoActiveSalary)
		}
		return failed(fmt.Errorf("failed to get compensation profile: %w", err))
	}
	if err := profile.Validate(); err != nil {
		return failed(err)
	}

	// 3. Compute
	record, err := s.compute(ctx, employeeID, profile, facts)
	if err != nil {
		return failed(err)
	}
	record.GeneratedBy = req.GeneratedBy

	// 4. Manual override
	if override != nil {
		applyOverride(&record, *override)
	}

	outcome := payroll.EmployeeOutcome{EmployeeID: employeeID, Outcome: payroll.OutcomeSucceeded}
	if record.HasNegativeNet() {
		outcome.Warnings = append(outcome.Warnings, payroll.WarningNegativeNet)
	}

	if !persist {
		outcome.Record = &record
		return outcome
	}

	// 5. Persist
	var saved payroll.PayrollRecord
	if exists {
		saved, err = s.payrollRepo.Replace(ctx, record)
	} else {
		saved, err = s.payrollRepo.Create(ctx, record)
	}
	if err != nil {
		// Another session inserted between the check and the write.
		if errors.Is(err, payroll.ErrPayrollRecordAlreadyExists) {
			return skipped(payroll.ReasonAlreadyExists)
		}
		return failed(fmt.Errorf("failed to save payroll record: %w", err))
	}
	outcome.Record = &saved

	if s.notifier != nil {
		if err := s.notifier.PayrollGenerated(ctx, saved); err != nil {
			slog.Warn("Failed to notify employee of payroll", "employee_id", employeeID, "period", facts.period.String(), "error", err)
		}
	}

	return outcome
}

// compute derives the draft record. Attendance and leave are independent and fetched concurrently.
func (s *PayrollServiceImpl) compute(ctx context.Context, employeeID string, profile payroll.CompensationProfile, facts calendarFacts) (payroll.PayrollRecord, error) {
	var presentDays, leaveDays int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.attendance.PresentDays(gctx, employeeID, facts.period)
		if err != nil {
			if s.opts.DegradeOnFetchError {
				slog.Warn("Counting zero present days", "employee_id", employeeID, "error", err)
				return nil
			}
			return fmt.Errorf("failed to count present days: %w", err)
		}
		presentDays = n
		return nil
	})
	g.Go(func() error {
		n, err := s.leave.ApprovedPaidLeaveDays(gctx, employeeID, facts.period)
		if err != nil {
			if s.opts.DegradeOnFetchError {
				slog.Warn("Counting zero leave days", "employee_id", employeeID, "error", err)
				return nil
			}
			return fmt.Errorf("failed to count leave days: %w", err)
		}
		leaveDays = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return payroll.PayrollRecord{}, err
	}

	lopDays := LOPDays(facts.weekdayPool, presentDays, leaveDays)
	lopAmount := LOPAmount(profile.BasicSalary, profile.HRA, profile.Allowances, facts.calendarDays, lopDays)
	net := NetSalary(profile.BasicSalary, profile.HRA, profile.Allowances, profile.ProfessionalTax, decimal.Zero, lopAmount)

	return payroll.PayrollRecord{
		EmployeeID:           employeeID,
		Period:               facts.period,
		BasicSalary:          profile.BasicSalary,
		HRA:                  profile.HRA,
		Allowances:           profile.Allowances,
		ProfessionalTax:      profile.ProfessionalTax,
		AdditionalDeductions: decimal.Zero,
		LOPDays:              lopDays,
		LOPAmount:            lopAmount,
		TotalDaysInPeriod:    facts.calendarDays,
		WorkingDays:          facts.weekdayPool,
		PresentDays:          presentDays,
		LeaveDays:            leaveDays,
		NetSalary:            net,
		Status:               payroll.PayrollStatusGenerated,
	}, nil
}

// applyOverride edits a draft. Present, leave and working days are display values only;
// LOP days reprice against the unchanged calendar-day divisor.
func applyOverride(r *payroll.PayrollRecord, o payroll.PayrollOverride) {
	if o.PresentDays != nil {
		r.PresentDays = *o.PresentDays
	}
	if o.LeaveDays != nil {
		r.LeaveDays = *o.LeaveDays
	}
	if o.WorkingDays != nil {
		r.WorkingDays = *o.WorkingDays
	}
	if o.LOPDays != nil {
		r.LOPDays = *o.LOPDays
		r.LOPAmount = LOPAmount(r.BasicSalary, r.HRA, r.Allowances, r.TotalDaysInPeriod, r.LOPDays)
	}
	if o.AdditionalDeductions != nil {
		r.AdditionalDeductions = *o.AdditionalDeductions
	}
	r.NetSalary = NetSalary(r.BasicSalary, r.HRA, r.Allowances, r.ProfessionalTax, r.AdditionalDeductions, r.LOPAmount)
}

// ========== READ SIDE ==========

func (s *PayrollServiceImpl) GetPayrollRecord(ctx context.Context, id string) (payroll.PayrollRecordResponse, error) {
	record, err := s.payrollRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	return mapToRecordResponse(record), nil
}

func (s *PayrollServiceImpl) ListPayrollRecords(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollRecordResponse, error) {
	filter.Normalize()

	records, totalCount, err := s.payrollRepo.List(ctx, filter)
	if err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}

	return payroll.ListPayrollRecordResponse{
		Data:       mapToRecordResponses(records),
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// ========== HELPERS ==========

func mapToRecordResponse(r payroll.PayrollRecord) payroll.PayrollRecordResponse {
	var createdAtStr *string
	if !r.CreatedAt.IsZero() {
		str := r.CreatedAt.Format(time.RFC3339)
		createdAtStr = &str
	}

	return payroll.PayrollRecordResponse{
		ID:                   r.ID,
		EmployeeID:           r.EmployeeID,
		Period:               r.Period.String(),
		BasicSalary:          r.BasicSalary,
		HRA:                  r.HRA,
		Allowances:           r.Allowances,
		GrossSalary:          r.Gross(),
		ProfessionalTax:      r.ProfessionalTax,
		AdditionalDeductions: r.AdditionalDeductions,
		LOPDays:              r.LOPDays,
		LOPAmount:            r.LOPAmount,
		TotalDaysInPeriod:    r.TotalDaysInPeriod,
		WorkingDays:          r.WorkingDays,
		PresentDays:          r.PresentDays,
		LeaveDays:            r.LeaveDays,
		NetSalary:            r.NetSalary,
		NegativeNet:          r.HasNegativeNet(),
		GeneratedBy:          r.GeneratedBy,
		Status:               string(r.Status),
		CreatedAt:            createdAtStr,
	}
}

func mapToRecordResponses(records []payroll.PayrollRecord) []payroll.PayrollRecordResponse {
	result := make([]payroll.PayrollRecordResponse, 0, len(records))
	for _, r := range records {
		result = append(result, mapToRecordResponse(r))
	}
	return result
}

func mapToOutcomeResponse(o payroll.EmployeeOutcome) payroll.EmployeeOutcomeResponse {
	return payroll.EmployeeOutcomeResponse{
		EmployeeID: o.EmployeeID,
		Reason:     o.Reason,
		Warnings:   o.Warnings,
	}
}

func mapToBatchResponse(b payroll.BatchResult) payroll.GeneratePayrollResponse {
	resp := payroll.GeneratePayrollResponse{
		BatchID:   b.BatchID,
		Period:    b.Period.String(),
		Succeeded: []payroll.PayrollRecordResponse{},
		Skipped:   []payroll.EmployeeOutcomeResponse{},
		Failed:    []payroll.EmployeeOutcomeResponse{},
	}
	for _, o := range b.Outcomes {
		switch o.Outcome {
		case payroll.OutcomeSucceeded:
			resp.Succeeded = append(resp.Succeeded, mapToRecordResponse(*o.Record))
			if len(o.Warnings) > 0 {
				resp.Warnings = append(resp.Warnings, mapToOutcomeResponse(o))
			}
		case payroll.OutcomeSkipped:
			resp.Skipped = append(resp.Skipped, mapToOutcomeResponse(o))
		case payroll.OutcomeFailed:
			resp.Failed = append(resp.Failed, mapToOutcomeResponse(o))
		}
	}
	resp.SucceededCount = len(resp.Succeeded)
	resp.SkippedCount = len(resp.Skipped)
	resp.FailedCount = len(resp.Failed)
	return resp
}
