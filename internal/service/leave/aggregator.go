package leave

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/calendar"
)

type AggregatorImpl struct {
	leaveRequestRepo leave.LeaveRequestRepository
	leaveQuotaRepo   leave.LeaveQuotaRepository
	defaultQuota     int
}

// NewAggregator uses defaultQuota for employees without a configured monthly quota.
func NewAggregator(
	leaveRequestRepo leave.LeaveRequestRepository,
	leaveQuotaRepo leave.LeaveQuotaRepository,
	defaultQuota int,
) leave.Aggregator {
	if defaultQuota < 0 {
		defaultQuota = leave.DefaultMonthlyLeaveQuota
	}
	return &AggregatorImpl{
		leaveRequestRepo: leaveRequestRepo,
		leaveQuotaRepo:   leaveQuotaRepo,
		defaultQuota:     defaultQuota,
	}
}

func (a *AggregatorImpl) ApprovedPaidLeaveDays(ctx context.Context, employeeID string, period calendar.Period) (int, error) {
	requests, err := a.leaveRequestRepo.GetApprovedByEmployee(ctx, employeeID)
	if err != nil {
		return 0, fmt.Errorf("failed to get approved leave requests: %w", err)
	}

	quota, err := a.monthlyQuota(ctx, employeeID)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, req := range requests {
		if !req.IsApproved() || req.IsLossOfPay() {
			continue
		}
		// leave bounds are calendar dates in the zone they were recorded in
		total += OverlapDays(calendar.DateOnly(req.FromDate), calendar.DateOnly(req.ToDate), period.Start(), period.End())
	}

	// Approved leave above the quota is unpaid and falls through to LOP.
	if total > quota {
		return quota, nil
	}
	return total, nil
}

func (a *AggregatorImpl) monthlyQuota(ctx context.Context, employeeID string) (int, error) {
	q, err := a.leaveQuotaRepo.GetByEmployee(ctx, employeeID)
	if err != nil {
		if errors.Is(err, leave.ErrLeaveQuotaNotFound) {
			return a.defaultQuota, nil
		}
		return 0, fmt.Errorf("failed to get leave quota: %w", err)
	}
	return q.Effective(a.defaultQuota), nil
}

// OverlapDays counts days of [from, to] falling inside [periodStart, periodEnd] as
// ceil(span in days) + 1. An empty overlap yields 0.
func OverlapDays(from, to, periodStart, periodEnd time.Time) int {
	start := from
	if periodStart.After(start) {
		start = periodStart
	}
	end := to
	if periodEnd.Before(end) {
		end = periodEnd
	}
	if start.After(end) {
		return 0
	}

	span := end.Sub(start).Hours() / 24
	return int(math.Ceil(span)) + 1
}
