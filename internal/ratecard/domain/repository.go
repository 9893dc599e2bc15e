package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	ProductID snowflake.ID
	TaskID    snowflake.ID
	Active    *bool
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, entry *ProductTask) error
	Update(ctx context.Context, db *gorm.DB, entry *ProductTask) error
	Delete(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (int64, error)
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*ProductTask, error)
	FindByPair(ctx context.Context, db *gorm.DB, tenantID, productID, taskID snowflake.ID) (*ProductTask, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter ListFilter) ([]ProductTask, error)
}
