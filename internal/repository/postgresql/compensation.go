package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type compensationRepository struct {
	db *database.DB
}

func NewCompensationRepository(db *database.DB) payroll.CompensationRepository {
	return &compensationRepository{db: db}
}

func (r *compensationRepository) GetActiveByEmployeeID(ctx context.Context, employeeID string) (payroll.CompensationProfile, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, basic_salary, hra, allowances, professional_tax, is_active, created_at, updated_at
		FROM compensation_profiles
		WHERE employee_id = $1 AND is_active = TRUE
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var p payroll.CompensationProfile
	err := q.QueryRow(ctx, query, employeeID).Scan(
		&p.ID, &p.EmployeeID, &p.BasicSalary, &p.HRA, &p.Allowances, &p.ProfessionalTax,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.CompensationProfile{}, payroll.ErrCompensationNotFound
		}
		return payroll.CompensationProfile{}, fmt.Errorf("failed to get compensation profile: %w", err)
	}

	return p, nil
}

func (r *compensationRepository) ListActiveEmployeeIDs(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT DISTINCT employee_id
		FROM compensation_profiles
		WHERE is_active = TRUE
		ORDER BY employee_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active compensation profiles: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan employee id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate compensation profiles: %w", err)
	}

	return ids, nil
}
