package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sewtrack/sewtrack/internal/reporting/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// filtered builds the shared WHERE clause. Tenant scoping comes first;
// a query without it would cross workshop boundaries.
func filtered(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter domain.Filter) *gorm.DB {
	stmt := db.WithContext(ctx).
		Table("work_records").
		Where("work_records.tenant_id = ?", tenantID)

	if filter.From != nil {
		stmt = stmt.Where("work_date >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("work_date <= ?", *filter.To)
	}
	if filter.EmployeeID != 0 {
		stmt = stmt.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	return stmt
}

const summaryColumns = `
	COUNT(*) AS record_count,
	COALESCE(SUM(quantity), 0) AS total_quantity,
	COALESCE(SUM(total_payment), 0) AS total_payment,
	COALESCE(SUM(CASE WHEN status = 'APPROVED' THEN total_payment ELSE 0 END), 0) AS payable_total`

func (r *repo) Summary(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter domain.Filter) (*domain.SummaryRow, error) {
	var row domain.SummaryRow
	err := filtered(ctx, db, tenantID, filter).
		Select(summaryColumns + `,
	COUNT(DISTINCT employee_id) AS distinct_employees`).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repo) GroupByEmployee(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter domain.Filter) ([]domain.EmployeeRow, error) {
	var rows []domain.EmployeeRow
	err := filtered(ctx, db, tenantID, filter).
		Select(`work_records.employee_id AS employee_id,
	employees.full_name AS employee_name,` + summaryColumns).
		Joins("JOIN employees ON employees.id = work_records.employee_id").
		Group("work_records.employee_id, employees.full_name").
		Order("payable_total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) GroupByDay(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter domain.Filter) ([]domain.DailyRow, error) {
	var rows []domain.DailyRow
	err := filtered(ctx, db, tenantID, filter).
		Select(`work_date AS work_date,` + summaryColumns).
		Group("work_date").
		Order("work_date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) CountByStatus(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, status string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Table("work_records").
		Where("tenant_id = ? AND status = ?", tenantID, status).
		Count(&count).Error
	return count, err
}

func (r *repo) CountTransitionsSince(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, action string, since time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Table("audit_logs").
		Where("tenant_id = ? AND action = ? AND created_at >= ?", tenantID, action, since).
		Count(&count).Error
	return count, err
}

func (r *repo) TopPerformers(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, from, to time.Time, limit int) ([]domain.EmployeeRow, error) {
	var rows []domain.EmployeeRow
	err := filtered(ctx, db, tenantID, domain.Filter{From: &from, To: &to, Status: "APPROVED"}).
		Select(`work_records.employee_id AS employee_id,
	employees.full_name AS employee_name,` + summaryColumns).
		Joins("JOIN employees ON employees.id = work_records.employee_id").
		Group("work_records.employee_id, employees.full_name").
		Order("payable_total DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) RecentActivity(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, limit int) ([]domain.ActivityRow, error) {
	var rows []domain.ActivityRow
	err := db.WithContext(ctx).
		Table("audit_logs").
		Select("action, entity_id, actor_id, created_at").
		Where("tenant_id = ?", tenantID).
		Order("id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
