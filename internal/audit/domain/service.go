package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Recorder appends transition entries. Ledger services call it inline
// with the transition so a recorded transition always has a trail row.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

type Entry struct {
	TenantID   snowflake.ID
	ActorID    snowflake.ID
	Action     string
	EntityType string
	EntityID   snowflake.ID
	BatchRef   string
	Detail     map[string]interface{}
}

type Service interface {
	Recorder
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
}

type ListRequest struct {
	Action   string
	EntityID string
	BatchRef string
	Limit    int
	Cursor   string
}

type ListResponse struct {
	Items      []Response `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

type Response struct {
	ID         string                 `json:"id"`
	TenantID   string                 `json:"tenant_id"`
	ActorID    string                 `json:"actor_id"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id"`
	BatchRef   string                 `json:"batch_ref,omitempty"`
	Detail     map[string]interface{} `json:"detail,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

var (
	ErrNoTenantContext = errors.New("no_tenant_context")
	ErrInvalidCursor   = errors.New("invalid_cursor")
)
