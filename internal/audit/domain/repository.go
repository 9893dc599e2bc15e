package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	Action   string
	EntityID snowflake.ID
	BatchRef string
	Limit    int
	Cursor   snowflake.ID
}

type Repository interface {
	Append(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter ListFilter) ([]AuditLog, error)
}
