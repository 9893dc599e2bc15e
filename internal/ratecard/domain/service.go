package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	Link(ctx context.Context, req LinkRequest) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Unlink(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)

	// Resolve returns the rate card entry for a product and task pair
	// together with the piece rate for the requested tier. It is the
	// single pricing authority for work record submission.
	Resolve(ctx context.Context, productID, taskID snowflake.ID, tier string) (*ResolvedPrice, error)
}

type LinkRequest struct {
	ProductID        string `json:"product_id"`
	TaskID           string `json:"task_id"`
	BasePrice        string `json:"base_price"`
	PremiumPrice     string `json:"premium_price"`
	DefaultTier      string `json:"default_tier"`
	EstimatedMinutes int    `json:"estimated_minutes"`
}

type UpdateRequest struct {
	ID               string
	BasePrice        *string `json:"base_price"`
	PremiumPrice     *string `json:"premium_price"`
	DefaultTier      *string `json:"default_tier"`
	EstimatedMinutes *int    `json:"estimated_minutes"`
	Active           *bool   `json:"active"`
}

type ListRequest struct {
	ProductID string
	TaskID    string
	Active    *bool
}

type Response struct {
	ID               string          `json:"id"`
	TenantID         string          `json:"tenant_id"`
	ProductID        string          `json:"product_id"`
	TaskID           string          `json:"task_id"`
	BasePrice        decimal.Decimal `json:"base_price"`
	PremiumPrice     decimal.Decimal `json:"premium_price"`
	DefaultTier      string          `json:"default_tier"`
	EstimatedMinutes int             `json:"estimated_minutes"`
	Active           bool            `json:"active"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ResolvedPrice is the snapshot a work record copies at submission
// time. Tier is the tier that was actually applied.
type ResolvedPrice struct {
	EntryID      snowflake.ID
	ProductID    snowflake.ID
	TaskID       snowflake.ID
	Tier         string
	PricePerUnit decimal.Decimal
}

var (
	ErrNoTenantContext = errors.New("no_tenant_context")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidPricing  = errors.New("invalid_pricing")
	ErrInvalidTier     = errors.New("invalid_tier")
	ErrDuplicateLink   = errors.New("duplicate_link")
	ErrNotFound        = errors.New("not_found")
	ErrNoRateCard      = errors.New("no_rate_card")

	// ErrCrossTenantReference is returned when a link names a product or
	// task outside the tenant's own catalog.
	ErrCrossTenantReference = errors.New("cross_tenant_reference")
)
