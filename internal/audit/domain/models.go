package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	ActionApprove    = "work_record.approve"
	ActionReject     = "work_record.reject"
	ActionReset      = "work_record.reset"
	ActionMarkPaid   = "work_record.mark_paid"
	ActionUnmarkPaid = "work_record.unmark_paid"
	ActionBulkSkip   = "work_record.bulk_skip"
)

// AuditLog is an append-only transition record. Rows are never updated
// or deleted.
type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	TenantID   snowflake.ID      `gorm:"index" json:"tenant_id"`
	ActorID    snowflake.ID      `json:"actor_id"`
	Action     string            `gorm:"size:64;index" json:"action"`
	EntityType string            `gorm:"size:32" json:"entity_type"`
	EntityID   snowflake.ID      `gorm:"index" json:"entity_id"`
	BatchRef   string            `gorm:"size:32;index" json:"batch_ref"`
	Detail     datatypes.JSONMap `json:"detail"`
	CreatedAt  time.Time         `json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
