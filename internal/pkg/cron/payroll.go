package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/calendar"
)

// PayrollJobs generates last month's payroll for every employee with an active salary.
type PayrollJobs struct {
	payrollService   payroll.PayrollService
	compensationRepo payroll.CompensationRepository
	actor            string
	now              func() time.Time
}

func NewPayrollJobs(payrollService payroll.PayrollService, compensationRepo payroll.CompensationRepository, actor string) *PayrollJobs {
	return &PayrollJobs{
		payrollService:   payrollService,
		compensationRepo: compensationRepo,
		actor:            actor,
		now:              time.Now,
	}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler, spec string) error {
	return scheduler.AddJob("generate_previous_period_payroll", spec, j.GeneratePreviousPeriod)
}

func (j *PayrollJobs) GeneratePreviousPeriod(ctx context.Context) error {
	period := calendar.PeriodOf(j.now().UTC()).Previous()

	employeeIDs, err := j.compensationRepo.ListActiveEmployeeIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active employees: %w", err)
	}
	if len(employeeIDs) == 0 {
		slog.Info("Cron: No employees with active salary", "period", period.String())
		return nil
	}

	resp, err := j.payrollService.GeneratePayroll(ctx, payroll.GeneratePayrollRequest{
		PeriodMonth: int(period.Month),
		PeriodYear:  period.Year,
		EmployeeIDs: employeeIDs,
		GeneratedBy: j.actor,
	})
	if err != nil {
		return fmt.Errorf("failed to generate payroll for %s: %w", period, err)
	}

	slog.Info("Cron: Generated payroll",
		"batch_id", resp.BatchID,
		"period", resp.Period,
		"succeeded", resp.SucceededCount,
		"skipped", resp.SkippedCount,
		"failed", resp.FailedCount,
	)
	return nil
}
