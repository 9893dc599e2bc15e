package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Filter struct {
	From       *time.Time
	To         *time.Time
	EmployeeID snowflake.ID
	Status     string
}

type SummaryRow struct {
	RecordCount       int64
	TotalQuantity     int64
	TotalPayment      decimal.Decimal
	PayableTotal      decimal.Decimal
	DistinctEmployees int64
}

type EmployeeRow struct {
	EmployeeID    snowflake.ID
	EmployeeName  string
	RecordCount   int64
	TotalQuantity int64
	TotalPayment  decimal.Decimal
	PayableTotal  decimal.Decimal
}

type DailyRow struct {
	WorkDate      time.Time
	RecordCount   int64
	TotalQuantity int64
	TotalPayment  decimal.Decimal
	PayableTotal  decimal.Decimal
}

type ActivityRow struct {
	Action    string
	EntityID  snowflake.ID
	ActorID   snowflake.ID
	CreatedAt time.Time
}

type Repository interface {
	Summary(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter Filter) (*SummaryRow, error)
	GroupByEmployee(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter Filter) ([]EmployeeRow, error)
	GroupByDay(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter Filter) ([]DailyRow, error)

	CountByStatus(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, status string) (int64, error)
	CountTransitionsSince(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, action string, since time.Time) (int64, error)
	TopPerformers(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, from, to time.Time, limit int) ([]EmployeeRow, error)
	RecentActivity(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, limit int) ([]ActivityRow, error)
}
