package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sewtrack/sewtrack/internal/task/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, task *domain.Task) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tasks (id, tenant_id, code, name, description, category, sequence_order, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.TenantID,
		task.Code,
		task.Name,
		task.Description,
		task.Category,
		task.SequenceOrder,
		task.Active,
		task.CreatedAt,
		task.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, task *domain.Task) error {
	if task == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE tasks
		 SET name = ?, description = ?, category = ?, sequence_order = ?, active = ?, updated_at = ?
		 WHERE tenant_id = ? AND id = ?`,
		task.Name,
		task.Description,
		task.Category,
		task.SequenceOrder,
		task.Active,
		task.UpdatedAt,
		task.TenantID,
		task.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.Task, error) {
	var t domain.Task
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM tasks WHERE tenant_id = ? AND id = ?`,
		tenantID, id,
	).Scan(&t).Error
	if err != nil {
		return nil, err
	}
	if t.ID == 0 {
		return nil, nil
	}
	return &t, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter domain.ListFilter) ([]domain.Task, error) {
	var items []domain.Task
	stmt := db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("tenant_id = ?", tenantID)

	if filter.Active != nil {
		stmt = stmt.Where("active = ?", *filter.Active)
	}
	if filter.Category != "" {
		stmt = stmt.Where("category = ?", filter.Category)
	}

	if err := stmt.Order("sequence_order ASC, code ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
