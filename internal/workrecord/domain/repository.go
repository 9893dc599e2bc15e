package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ListFilter struct {
	Status     string
	EmployeeID snowflake.ID
	ProductID  snowflake.ID
	From       *time.Time
	To         *time.Time
	IsPaid     *bool
	Limit      int
	Offset     int
}

// Repository performs all ledger writes. Every transition method is a
// single conditional UPDATE whose WHERE clause carries the expected
// current state; the returned count is RowsAffected. Zero rows means
// the precondition no longer held when the write landed.
type Repository interface {
	Create(ctx context.Context, db *gorm.DB, record *WorkRecord) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*WorkRecord, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter ListFilter) ([]WorkRecord, error)

	UpdatePending(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, quantity int, total decimal.Decimal, notes string, at time.Time) (int64, error)
	DeletePending(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (int64, error)

	Approve(ctx context.Context, db *gorm.DB, tenantID, id, approverID snowflake.ID, at time.Time) (int64, error)
	Reject(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, notes string, at time.Time) (int64, error)
	ResetToPending(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, fromStatus, notes string, at time.Time) (int64, error)
	MarkPaid(ctx context.Context, db *gorm.DB, tenantID, id, payerID snowflake.ID, at time.Time) (int64, error)
	UnmarkPaid(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, at time.Time) (int64, error)
}
