package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	// Current returns the employee profile of the calling actor in the active
	// tenant, or ErrNotFound when the actor has none.
	Current(ctx context.Context) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Deactivate(ctx context.Context, id string, terminatedAt *time.Time) (*Response, error)
	Activate(ctx context.Context, id string) (*Response, error)
}

type CreateRequest struct {
	ActorID        string  `json:"actor_id"`
	FullName       string  `json:"full_name"`
	Phone          string  `json:"phone"`
	Position       string  `json:"position"`
	EmploymentType string  `json:"employment_type"`
	HourlyRate     *string `json:"hourly_rate"`
	HiredAt        string  `json:"hired_at"`
	Notes          string  `json:"notes"`
}

type UpdateRequest struct {
	ID             string
	FullName       *string `json:"full_name"`
	Phone          *string `json:"phone"`
	Position       *string `json:"position"`
	EmploymentType *string `json:"employment_type"`
	HourlyRate     *string `json:"hourly_rate"`
	Notes          *string `json:"notes"`
}

type ListRequest struct {
	Active   *bool
	Position string
}

type Response struct {
	ID             string     `json:"id"`
	TenantID       string     `json:"tenant_id"`
	ActorID        string     `json:"actor_id"`
	FullName       string     `json:"full_name"`
	Phone          string     `json:"phone,omitempty"`
	Position       string     `json:"position"`
	EmploymentType string     `json:"employment_type"`
	HourlyRate     string     `json:"hourly_rate,omitempty"`
	Active         bool       `json:"active"`
	HiredAt        time.Time  `json:"hired_at"`
	TerminatedAt   *time.Time `json:"terminated_at,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

var (
	ErrNoTenantContext       = errors.New("no_tenant_context")
	ErrNotFound              = errors.New("not_found")
	ErrInvalidID             = errors.New("invalid_id")
	ErrInvalidName           = errors.New("invalid_name")
	ErrInvalidPosition       = errors.New("invalid_position")
	ErrInvalidEmploymentType = errors.New("invalid_employment_type")
	ErrInvalidRate           = errors.New("invalid_rate")
	ErrInvalidHireDate       = errors.New("invalid_hire_date")
	ErrActorAlreadyEmployee  = errors.New("actor_already_employee")
)
