package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sewtrack/sewtrack/internal/ratecard/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, entry *domain.ProductTask) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO product_tasks (id, tenant_id, product_id, task_id, base_price, premium_price, default_tier, estimated_minutes, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.TenantID,
		entry.ProductID,
		entry.TaskID,
		entry.BasePrice,
		entry.PremiumPrice,
		entry.DefaultTier,
		entry.EstimatedMinutes,
		entry.Active,
		entry.CreatedAt,
		entry.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, entry *domain.ProductTask) error {
	if entry == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE product_tasks
		 SET base_price = ?, premium_price = ?, default_tier = ?, estimated_minutes = ?, active = ?, updated_at = ?
		 WHERE tenant_id = ? AND id = ?`,
		entry.BasePrice,
		entry.PremiumPrice,
		entry.DefaultTier,
		entry.EstimatedMinutes,
		entry.Active,
		entry.UpdatedAt,
		entry.TenantID,
		entry.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`DELETE FROM product_tasks WHERE tenant_id = ? AND id = ?`,
		tenantID, id,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.ProductTask, error) {
	var pt domain.ProductTask
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM product_tasks WHERE tenant_id = ? AND id = ?`,
		tenantID, id,
	).Scan(&pt).Error
	if err != nil {
		return nil, err
	}
	if pt.ID == 0 {
		return nil, nil
	}
	return &pt, nil
}

func (r *repo) FindByPair(ctx context.Context, db *gorm.DB, tenantID, productID, taskID snowflake.ID) (*domain.ProductTask, error) {
	var pt domain.ProductTask
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM product_tasks WHERE tenant_id = ? AND product_id = ? AND task_id = ?`,
		tenantID, productID, taskID,
	).Scan(&pt).Error
	if err != nil {
		return nil, err
	}
	if pt.ID == 0 {
		return nil, nil
	}
	return &pt, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter domain.ListFilter) ([]domain.ProductTask, error) {
	var items []domain.ProductTask
	stmt := db.WithContext(ctx).
		Model(&domain.ProductTask{}).
		Where("tenant_id = ?", tenantID)

	if filter.ProductID != 0 {
		stmt = stmt.Where("product_id = ?", filter.ProductID)
	}
	if filter.TaskID != 0 {
		stmt = stmt.Where("task_id = ?", filter.TaskID)
	}
	if filter.Active != nil {
		stmt = stmt.Where("active = ?", *filter.Active)
	}

	if err := stmt.Order("created_at ASC, id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
