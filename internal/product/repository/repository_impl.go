package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sewtrack/sewtrack/internal/product/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO products (id, tenant_id, article_code, name, category, description, metadata, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.TenantID,
		product.ArticleCode,
		product.Name,
		product.Category,
		product.Description,
		product.Metadata,
		product.Active,
		product.CreatedAt,
		product.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	if product == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE products
		 SET name = ?, category = ?, description = ?, metadata = ?, active = ?, updated_at = ?
		 WHERE tenant_id = ? AND id = ?`,
		product.Name,
		product.Category,
		product.Description,
		product.Metadata,
		product.Active,
		product.UpdatedAt,
		product.TenantID,
		product.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM products WHERE tenant_id = ? AND id = ?`,
		tenantID, id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter domain.ListFilter) ([]domain.Product, error) {
	var items []domain.Product
	stmt := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("tenant_id = ?", tenantID)

	if filter.Active != nil {
		stmt = stmt.Where("active = ?", *filter.Active)
	}
	if filter.Category != "" {
		stmt = stmt.Where("category = ?", filter.Category)
	}

	if err := stmt.Order("article_code ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
