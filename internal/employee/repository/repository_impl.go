package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sewtrack/sewtrack/internal/employee/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, employee *domain.Employee) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO employees (id, tenant_id, actor_id, full_name, phone, position, employment_type, hourly_rate, active, hired_at, terminated_at, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		employee.ID,
		employee.TenantID,
		employee.ActorID,
		employee.FullName,
		employee.Phone,
		employee.Position,
		employee.EmploymentType,
		employee.HourlyRate,
		employee.Active,
		employee.HiredAt,
		employee.TerminatedAt,
		employee.Notes,
		employee.CreatedAt,
		employee.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, employee *domain.Employee) error {
	if employee == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE employees
		 SET full_name = ?, phone = ?, position = ?, employment_type = ?, hourly_rate = ?, active = ?, terminated_at = ?, notes = ?, updated_at = ?
		 WHERE tenant_id = ? AND id = ?`,
		employee.FullName,
		employee.Phone,
		employee.Position,
		employee.EmploymentType,
		employee.HourlyRate,
		employee.Active,
		employee.TerminatedAt,
		employee.Notes,
		employee.UpdatedAt,
		employee.TenantID,
		employee.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.Employee, error) {
	var e domain.Employee
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM employees WHERE tenant_id = ? AND id = ?`,
		tenantID, id,
	).Scan(&e).Error
	if err != nil {
		return nil, err
	}
	if e.ID == 0 {
		return nil, nil
	}
	return &e, nil
}

func (r *repo) FindByActor(ctx context.Context, db *gorm.DB, tenantID, actorID snowflake.ID) (*domain.Employee, error) {
	var e domain.Employee
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM employees WHERE tenant_id = ? AND actor_id = ?`,
		tenantID, actorID,
	).Scan(&e).Error
	if err != nil {
		return nil, err
	}
	if e.ID == 0 {
		return nil, nil
	}
	return &e, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter domain.ListFilter) ([]domain.Employee, error) {
	var items []domain.Employee
	stmt := db.WithContext(ctx).
		Model(&domain.Employee{}).
		Where("tenant_id = ?", tenantID)

	if filter.Active != nil {
		stmt = stmt.Where("active = ?", *filter.Active)
	}
	if filter.Position != "" {
		stmt = stmt.Where("position = ?", filter.Position)
	}

	if err := stmt.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
