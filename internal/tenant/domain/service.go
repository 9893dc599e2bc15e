package domain

import (
	"context"
	"errors"
	"time"
)

// Service is the tenant registry contract. Every tenant-scoped entry point
// resolves a tenant through it before touching catalog or ledger state.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	List(ctx context.Context) ([]Response, error)
	// Resolve returns the tenant the calling actor operates in, following the
	// fixed resolution order: employee profile, cached session selection,
	// auto-select first accessible tenant.
	Resolve(ctx context.Context) (*Response, error)
	Switch(ctx context.Context, tenantID string) (*Response, error)
	Deactivate(ctx context.Context, tenantID string) (*Response, error)
	Activate(ctx context.Context, tenantID string) (*Response, error)
	RoleOf(ctx context.Context, tenantID string) (string, error)
}

type CreateRequest struct {
	Name     string         `json:"name"`
	Slug     string         `json:"slug"`
	Address  string         `json:"address"`
	Phone    string         `json:"phone"`
	Email    string         `json:"email"`
	Settings map[string]any `json:"settings"`
}

type UpdateRequest struct {
	ID       string
	Name     *string        `json:"name"`
	Address  *string        `json:"address"`
	Phone    *string        `json:"phone"`
	Email    *string        `json:"email"`
	Settings map[string]any `json:"settings"`
	Notes    *string        `json:"notes"`
}

type Response struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	OwnerID     string         `json:"owner_id"`
	Address     string         `json:"address,omitempty"`
	Phone       string         `json:"phone,omitempty"`
	Email       string         `json:"email,omitempty"`
	Settings    map[string]any `json:"settings,omitempty"`
	Active      bool           `json:"active"`
	ActivatedAt *time.Time     `json:"activated_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

var (
	ErrNoActor         = errors.New("no_actor")
	ErrNoTenantContext = errors.New("no_tenant_context")
	ErrAccessDenied    = errors.New("access_denied")
	ErrNotFound        = errors.New("not_found")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidName     = errors.New("invalid_name")
	ErrTenantInactive  = errors.New("tenant_inactive")
)
