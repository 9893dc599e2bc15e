package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*Response, error)
	UpdateWhilePending(ctx context.Context, req UpdateRequest) (*Response, error)
	DeleteWhilePending(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)

	Approve(ctx context.Context, id string) (*Response, error)
	Reject(ctx context.Context, id string, reason string) (*Response, error)
	ResetToPending(ctx context.Context, id string, reason string) (*Response, error)
	MarkPaid(ctx context.Context, id string) (*Response, error)
	UnmarkPaid(ctx context.Context, id string) (*Response, error)

	BulkApprove(ctx context.Context, ids []string) (*BulkResult, error)
	BulkReject(ctx context.Context, ids []string, reason string) (*BulkResult, error)
}

type SubmitRequest struct {
	// EmployeeID is optional; when empty the submitting actor's own
	// employee profile is used.
	EmployeeID string `json:"employee_id"`
	ProductID  string `json:"product_id"`
	TaskID     string `json:"task_id"`
	Quantity   int    `json:"quantity"`
	WorkDate   string `json:"work_date"`
	Notes      string `json:"notes"`
}

type UpdateRequest struct {
	ID       string
	Quantity *int    `json:"quantity"`
	Notes    *string `json:"notes"`
}

type ListRequest struct {
	Status     string
	EmployeeID string
	ProductID  string
	From       string
	To         string
	IsPaid     *bool
	Limit      int
	Offset     int
}

type Response struct {
	ID            string          `json:"id"`
	TenantID      string          `json:"tenant_id"`
	EmployeeID    string          `json:"employee_id"`
	ProductID     string          `json:"product_id"`
	TaskID        string          `json:"task_id"`
	ProductTaskID string          `json:"product_task_id"`
	Quantity      int             `json:"quantity"`
	Tier          string          `json:"tier"`
	PricePerUnit  decimal.Decimal `json:"price_per_unit"`
	TotalPayment  decimal.Decimal `json:"total_payment"`
	Status        string          `json:"status"`
	WorkDate      string          `json:"work_date"`
	Notes         string          `json:"notes,omitempty"`
	SubmittedBy   string          `json:"submitted_by"`
	ApprovedBy    string          `json:"approved_by,omitempty"`
	ApprovedAt    *time.Time      `json:"approved_at,omitempty"`
	IsPaid        bool            `json:"is_paid"`
	PaidBy        string          `json:"paid_by,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// BulkResult reports a skip-not-fail bulk run. Records whose state no
// longer matched when processed are listed in SkippedIDs; the call
// itself always completes.
type BulkResult struct {
	Count      int      `json:"count"`
	SkippedIDs []string `json:"skipped_ids"`
	BatchRef   string   `json:"batch_ref"`
}

var (
	ErrNoTenantContext      = errors.New("no_tenant_context")
	ErrNoActor              = errors.New("no_actor")
	ErrNoEmployee           = errors.New("no_employee_profile")
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidQuantity      = errors.New("invalid_quantity")
	ErrInvalidWorkDate      = errors.New("invalid_work_date")
	ErrInvalidState         = errors.New("invalid_state")
	ErrMissingReason        = errors.New("missing_reason")
	ErrNotFound             = errors.New("not_found")
	ErrCrossTenantReference = errors.New("cross_tenant_reference")
	ErrBulkLimitExceeded    = errors.New("bulk_limit_exceeded")
)
