package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Service is the read side of the ledger. It never mutates anything;
// every query is scoped to the resolved tenant before any other
// predicate is applied.
type Service interface {
	Summary(ctx context.Context, req Query) (*Summary, error)
	PerEmployee(ctx context.Context, req Query) ([]EmployeeSummary, error)
	Daily(ctx context.Context, req Query) ([]DailySummary, error)
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type Query struct {
	From       string
	To         string
	EmployeeID string
	Status     string
}

// Summary is the aggregation primitive: every report variant is this
// shape under a different grouping. PayableTotal only counts APPROVED
// records.
type Summary struct {
	RecordCount       int64           `json:"record_count"`
	TotalQuantity     int64           `json:"total_quantity"`
	TotalPayment      decimal.Decimal `json:"total_payment"`
	PayableTotal      decimal.Decimal `json:"payable_total"`
	DistinctEmployees int64           `json:"distinct_employees"`
}

type EmployeeSummary struct {
	EmployeeID    string          `json:"employee_id"`
	EmployeeName  string          `json:"employee_name"`
	RecordCount   int64           `json:"record_count"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalPayment  decimal.Decimal `json:"total_payment"`
	PayableTotal  decimal.Decimal `json:"payable_total"`
}

type DailySummary struct {
	WorkDate      string          `json:"work_date"`
	RecordCount   int64           `json:"record_count"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalPayment  decimal.Decimal `json:"total_payment"`
	PayableTotal  decimal.Decimal `json:"payable_total"`
}

// Dashboard is the supervisor landing view.
type Dashboard struct {
	PendingCount   int64             `json:"pending_count"`
	ApprovedToday  int64             `json:"approved_today"`
	RejectedToday  int64             `json:"rejected_today"`
	QuantityToday  int64             `json:"quantity_today"`
	PaymentToday   decimal.Decimal   `json:"payment_today"`
	TopPerformers  []EmployeeSummary `json:"top_performers"`
	RecentActivity []Activity        `json:"recent_activity"`
	GeneratedAt    time.Time         `json:"generated_at"`
}

type Activity struct {
	Action    string    `json:"action"`
	EntityID  string    `json:"entity_id"`
	ActorID   string    `json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	ErrNoTenantContext = errors.New("no_tenant_context")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidRange    = errors.New("invalid_range")
)
