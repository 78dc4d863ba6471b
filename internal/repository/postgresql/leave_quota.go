package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveQuotaRepository struct {
	db *database.DB
}

func NewLeaveQuotaRepository(db *database.DB) leave.LeaveQuotaRepository {
	return &leaveQuotaRepository{db: db}
}

func (r *leaveQuotaRepository) GetByEmployee(ctx context.Context, employeeID string) (leave.EmployeeLeaveQuota, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, monthly_leave_quota
		FROM employee_leave_quotas
		WHERE employee_id = $1
	`

	var quota leave.EmployeeLeaveQuota
	err := q.QueryRow(ctx, query, employeeID).Scan(&quota.EmployeeID, &quota.MonthlyLeaveQuota)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.EmployeeLeaveQuota{}, leave.ErrLeaveQuotaNotFound
		}
		return leave.EmployeeLeaveQuota{}, fmt.Errorf("failed to get leave quota: %w", err)
	}

	return quota, nil
}
