package leave

import (
	"strings"
	"time"
)

// LeaveStatus enum
type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "pending"
	LeaveStatusApproved LeaveStatus = "approved"
	LeaveStatusRejected LeaveStatus = "rejected"
)

// DefaultMonthlyLeaveQuota applies when an employee has no quota configured.
const DefaultMonthlyLeaveQuota = 3

// lossOfPayPrefix marks a leave as unpaid regardless of its leave type.
const lossOfPayPrefix = "loss of pay"

// LeaveRequest - Employee leave application. FromDate and ToDate are inclusive.
type LeaveRequest struct {
	ID         string
	EmployeeID string
	LeaveType  string
	FromDate   time.Time
	ToDate     time.Time
	Status     LeaveStatus
	Reason     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsLossOfPay reports whether the reason starts with "loss of pay", ignoring case.
func (r LeaveRequest) IsLossOfPay() bool {
	return strings.HasPrefix(strings.ToLower(r.Reason), lossOfPayPrefix)
}

func (r LeaveRequest) IsApproved() bool {
	return r.Status == LeaveStatusApproved
}

func (r LeaveRequest) Validate() error {
	if r.EmployeeID == "" {
		return ErrMissingEmployee
	}
	if r.ToDate.Before(r.FromDate) {
		return ErrInvalidLeaveRange
	}
	return nil
}

// EmployeeLeaveQuota - cap on paid leave days countable per month.
type EmployeeLeaveQuota struct {
	EmployeeID        string
	MonthlyLeaveQuota *int
}

// Effective returns the configured quota, or fallback when unset or negative.
func (q EmployeeLeaveQuota) Effective(fallback int) int {
	if q.MonthlyLeaveQuota == nil || *q.MonthlyLeaveQuota < 0 {
		return fallback
	}
	return *q.MonthlyLeaveQuota
}
