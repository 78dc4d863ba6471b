package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/calendar"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// Name of the unique key on (employee_id, period_month, period_year).
const payrollPeriodConstraint = "uk_payroll_employee_period"

const payrollColumns = `
	id, employee_id, period_month, period_year, basic_salary, hra, allowances,
	professional_tax, additional_deductions, lop_days, lop_amount,
	total_days_in_period, working_days, present_days, leave_days,
	net_salary, generated_by, status, created_at
`

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

func scanPayrollRecord(row pgx.Row) (payroll.PayrollRecord, error) {
	var rec payroll.PayrollRecord
	var month, year int
	var status string
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &month, &year, &rec.BasicSalary, &rec.HRA, &rec.Allowances,
		&rec.ProfessionalTax, &rec.AdditionalDeductions, &rec.LOPDays, &rec.LOPAmount,
		&rec.TotalDaysInPeriod, &rec.WorkingDays, &rec.PresentDays, &rec.LeaveDays,
		&rec.NetSalary, &rec.GeneratedBy, &status, &rec.CreatedAt,
	)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}
	rec.Period = calendar.Period{Month: time.Month(month), Year: year}
	rec.Status = payroll.PayrollStatus(status)
	return rec, nil
}

func (r *payrollRepository) ExistsByEmployeePeriod(ctx context.Context, employeeID string, period calendar.Period) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM payroll_records
			WHERE employee_id = $1 AND period_month = $2 AND period_year = $3
		)
	`, employeeID, int(period.Month), period.Year).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check payroll record: %w", err)
	}
	return exists, nil
}

func (r *payrollRepository) Create(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_records (
			employee_id, period_month, period_year, basic_salary, hra, allowances,
			professional_tax, additional_deductions, lop_days, lop_amount,
			total_days_in_period, working_days, present_days, leave_days,
			net_salary, generated_by, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING ` + payrollColumns

	rec, err := scanPayrollRecord(q.QueryRow(ctx, query,
		record.EmployeeID, int(record.Period.Month), record.Period.Year,
		record.BasicSalary, record.HRA, record.Allowances,
		record.ProfessionalTax, record.AdditionalDeductions, record.LOPDays, record.LOPAmount,
		record.TotalDaysInPeriod, record.WorkingDays, record.PresentDays, record.LeaveDays,
		record.NetSalary, record.GeneratedBy, string(record.Status),
	))
	if err != nil {
		if isUniqueViolation(err, payrollPeriodConstraint) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyExists
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to create payroll record: %w", err)
	}

	return rec, nil
}

func (r *payrollRepository) Replace(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	var saved payroll.PayrollRecord
	err := WithTransaction(ctx, r.db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, r.db)
		if _, err := q.Exec(txCtx, `
			DELETE FROM payroll_records
			WHERE employee_id = $1 AND period_month = $2 AND period_year = $3
		`, record.EmployeeID, int(record.Period.Month), record.Period.Year); err != nil {
			return fmt.Errorf("failed to delete payroll record: %w", err)
		}

		var err error
		saved, err = r.Create(txCtx, record)
		return err
	})
	if err != nil {
		return payroll.PayrollRecord{}, err
	}
	return saved, nil
}

func (r *payrollRepository) GetByID(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	rec, err := scanPayrollRecord(q.QueryRow(ctx, `SELECT `+payrollColumns+` FROM payroll_records WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}
	return rec, nil
}

func (r *payrollRepository) GetByEmployeePeriod(ctx context.Context, employeeID string, period calendar.Period) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollColumns + `
		FROM payroll_records
		WHERE employee_id = $1 AND period_month = $2 AND period_year = $3`

	rec, err := scanPayrollRecord(q.QueryRow(ctx, query, employeeID, int(period.Month), period.Year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}
	return rec, nil
}

func (r *payrollRepository) List(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	q := GetQuerier(ctx, r.db)
	filter.Normalize()

	baseQuery := ` FROM payroll_records WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.Period != nil {
		baseQuery += fmt.Sprintf(" AND period_month = $%d AND period_year = $%d", argIdx, argIdx+1)
		args = append(args, int(filter.Period.Month), filter.Period.Year)
		argIdx += 2
	}
	if filter.EmployeeID != nil {
		baseQuery += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*)"+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	selectQuery := fmt.Sprintf(`SELECT %s %s
		ORDER BY period_year DESC, period_month DESC, employee_id ASC
		LIMIT $%d OFFSET $%d`, payrollColumns, baseQuery, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		rec, err := scanPayrollRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate payroll records: %w", err)
	}

	return records, totalCount, nil
}
