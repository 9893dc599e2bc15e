package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	Active   *bool
	Position string
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, employee *Employee) error
	Update(ctx context.Context, db *gorm.DB, employee *Employee) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Employee, error)
	FindByActor(ctx context.Context, db *gorm.DB, tenantID, actorID snowflake.ID) (*Employee, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter ListFilter) ([]Employee, error)
}
