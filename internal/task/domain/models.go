package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Task categories.
const (
	CategoryCutting      = "cutting"
	CategorySewing       = "sewing"
	CategoryIroning      = "ironing"
	CategoryPackaging    = "packaging"
	CategoryQualityCheck = "quality_check"
	CategoryOther        = "other"
)

// Task is a tenant-scoped operation performed on products. SequenceOrder is
// advisory only; it reflects typical production order and is never enforced.
type Task struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID      snowflake.ID `gorm:"not null;index:ux_tasks_tenant_code,priority:1,unique" json:"tenant_id"`
	Code          string       `gorm:"type:text;not null;index:ux_tasks_tenant_code,priority:2,unique" json:"code"`
	Name          string       `gorm:"type:text;not null" json:"name"`
	Description   string       `gorm:"type:text" json:"description"`
	Category      string       `gorm:"type:text;not null;default:'sewing'" json:"category"`
	SequenceOrder int          `gorm:"column:sequence_order;not null;default:0" json:"sequence_order"`
	Active        bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Task) TableName() string { return "tasks" }

func ValidCategory(category string) bool {
	switch category {
	case CategoryCutting, CategorySewing, CategoryIroning, CategoryPackaging, CategoryQualityCheck, CategoryOther:
		return true
	default:
		return false
	}
}
