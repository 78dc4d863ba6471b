package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/notification"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/calendar"
	"github.com/cmlabs-hris/hris-payroll/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var march2025 = calendar.Period{Month: time.March, Year: 2025}

func sampleRecord(employeeID string, net int64) payroll.PayrollRecord {
	return payroll.PayrollRecord{
		EmployeeID:           employeeID,
		Period:               march2025,
		BasicSalary:          decimal.NewFromInt(30000),
		HRA:                  decimal.NewFromInt(12000),
		Allowances:           decimal.NewFromInt(3000),
		ProfessionalTax:      decimal.NewFromInt(200),
		AdditionalDeductions: decimal.Zero,
		LOPDays:              decimal.NewFromInt(1),
		LOPAmount:            decimal.NewFromInt(1452),
		TotalDaysInPeriod:    31,
		WorkingDays:          21,
		PresentDays:          18,
		LeaveDays:            2,
		NetSalary:            decimal.NewFromInt(net),
		GeneratedBy:          "manager-1",
		Status:               payroll.PayrollStatusGenerated,
	}
}

func TestPayrollRepository_CreateRejectsDuplicate(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewPayrollRepository(setup.DB)
	ctx := context.Background()

	created, err := repo.Create(ctx, sampleRecord("emp-a", 43348))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, march2025, created.Period)
	assert.True(t, decimal.NewFromInt(43348).Equal(created.NetSalary))

	exists, err := repo.ExistsByEmployeePeriod(ctx, "emp-a", march2025)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.Create(ctx, sampleRecord("emp-a", 1))
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordAlreadyExists)

	got, err := repo.GetByEmployeePeriod(ctx, "emp-a", march2025)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, decimal.NewFromInt(43348).Equal(got.NetSalary))
}

func TestPayrollRepository_Replace(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewPayrollRepository(setup.DB)
	ctx := context.Background()

	first, err := repo.Create(ctx, sampleRecord("emp-a", 43348))
	require.NoError(t, err)

	replaced, err := repo.Replace(ctx, sampleRecord("emp-a", 40000))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, replaced.ID)

	_, err = repo.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordNotFound)

	records, total, err := repo.List(ctx, payroll.PayrollFilter{Period: &march2025})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, records, 1)
	assert.True(t, decimal.NewFromInt(40000).Equal(records[0].NetSalary))
}

func TestPayrollRepository_WithTransactionRollsBack(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewPayrollRepository(setup.DB)
	ctx := context.Background()

	boom := errors.New("boom")
	err := postgresql.WithTransaction(ctx, setup.DB, func(txCtx context.Context) error {
		if _, err := repo.Create(txCtx, sampleRecord("emp-a", 1)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	exists, err := repo.ExistsByEmployeePeriod(ctx, "emp-a", march2025)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAggregationSources(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()

	_, err := setup.DB.Exec(ctx, `
		INSERT INTO compensation_profiles (employee_id, basic_salary, hra, allowances, professional_tax, is_active)
		VALUES ('emp-a', 30000, 12000, 3000, 200, TRUE), ('emp-b', 10000, 0, 0, 0, FALSE)
	`)
	require.NoError(t, err)
	_, err = setup.DB.Exec(ctx, `
		INSERT INTO attendances (employee_id, date) VALUES
			('emp-a', '2025-03-03'), ('emp-a', '2025-03-03'), ('emp-a', '2025-03-04'), ('emp-a', '2025-04-01')
	`)
	require.NoError(t, err)
	_, err = setup.DB.Exec(ctx, `
		INSERT INTO leave_requests (employee_id, leave_type, start_date, end_date, status, reason) VALUES
			('emp-a', 'annual', '2025-03-10', '2025-03-11', 'approved', 'trip'),
			('emp-a', 'annual', '2025-03-12', '2025-03-12', 'pending', 'trip')
	`)
	require.NoError(t, err)
	_, err = setup.DB.Exec(ctx, `INSERT INTO employee_leave_quotas (employee_id, monthly_leave_quota) VALUES ('emp-a', 5)`)
	require.NoError(t, err)

	comp := postgresql.NewCompensationRepository(setup.DB)
	profile, err := comp.GetActiveByEmployeeID(ctx, "emp-a")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(45000).Equal(profile.Gross()))

	_, err = comp.GetActiveByEmployeeID(ctx, "emp-b")
	assert.ErrorIs(t, err, payroll.ErrCompensationNotFound)

	ids, err := comp.ListActiveEmployeeIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"emp-a"}, ids)

	rows, err := postgresql.NewAttendanceRepository(setup.DB).ListByEmployeeAndRange(ctx, "emp-a", march2025.Start(), march2025.End())
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	leaves, err := postgresql.NewLeaveRequestRepository(setup.DB).GetApprovedByEmployee(ctx, "emp-a")
	require.NoError(t, err)
	require.Len(t, leaves, 1)
	assert.Equal(t, leave.LeaveStatusApproved, leaves[0].Status)

	quotas := postgresql.NewLeaveQuotaRepository(setup.DB)
	q, err := quotas.GetByEmployee(ctx, "emp-a")
	require.NoError(t, err)
	assert.Equal(t, 5, q.Effective(leave.DefaultMonthlyLeaveQuota))

	_, err = quotas.GetByEmployee(ctx, "emp-z")
	assert.ErrorIs(t, err, leave.ErrLeaveQuotaNotFound)
}

func TestNotificationRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewNotificationRepository(setup.DB)
	ctx := context.Background()

	enabled, err := repo.IsNotificationEnabled(ctx, "emp-a", notification.TypePayrollGenerated)
	require.NoError(t, err)
	assert.True(t, enabled)

	_, err = setup.DB.Exec(ctx, `
		INSERT INTO notification_preferences (user_id, notification_type, push_enabled)
		VALUES ('emp-b', 'payroll_generated', FALSE)
	`)
	require.NoError(t, err)
	enabled, err = repo.IsNotificationEnabled(ctx, "emp-b", notification.TypePayrollGenerated)
	require.NoError(t, err)
	assert.False(t, enabled)

	now := time.Now().UTC()
	batch := []*notification.Notification{
		{RecipientID: "emp-a", Type: notification.TypePayrollGenerated, Title: "t1", Message: "m1", Data: map[string]any{"period": "March 2025"}, CreatedAt: now},
		{RecipientID: "emp-c", Type: notification.TypePayrollGenerated, Title: "t2", Message: "m2", CreatedAt: now},
	}
	require.NoError(t, repo.CreateBatch(ctx, batch))
	assert.NotEmpty(t, batch[0].ID)

	var count int
	require.NoError(t, setup.DB.QueryRow(ctx, `SELECT COUNT(*) FROM notifications`).Scan(&count))
	assert.Equal(t, 2, count)
}
