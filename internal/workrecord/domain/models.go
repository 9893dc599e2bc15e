package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Work record lifecycle states. COMPLETED is an optional intermediate
// some workshops use between submission and review; nothing downstream
// depends on it.
const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCompleted = "COMPLETED"
)

// WorkRecord is one unit of submitted, priced piece-work.
//
// PricePerUnit is snapshotted from the rate card at submission and is
// never recomputed afterwards. TotalPayment always equals
// Quantity x PricePerUnit for the current quantity.
type WorkRecord struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	TenantID      snowflake.ID    `gorm:"not null;index;index:ix_work_records_tenant_status,priority:1" json:"tenant_id"`
	EmployeeID    snowflake.ID    `gorm:"not null;index" json:"employee_id"`
	ProductID     snowflake.ID    `gorm:"not null" json:"product_id"`
	TaskID        snowflake.ID    `gorm:"not null" json:"task_id"`
	ProductTaskID snowflake.ID    `gorm:"not null" json:"product_task_id"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	Tier          string          `gorm:"size:16;not null" json:"tier"`
	PricePerUnit  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price_per_unit"`
	TotalPayment  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_payment"`
	Status        string          `gorm:"size:16;not null;default:'PENDING';index:ix_work_records_tenant_status,priority:2" json:"status"`
	WorkDate      time.Time       `gorm:"column:work_date;not null;index" json:"work_date"`
	Notes         string          `gorm:"type:text" json:"notes"`
	SubmittedBy   snowflake.ID    `gorm:"column:submitted_by;not null" json:"submitted_by"`
	ApprovedBy    *snowflake.ID   `gorm:"column:approved_by" json:"approved_by,omitempty"`
	ApprovedAt    *time.Time      `gorm:"column:approved_at" json:"approved_at,omitempty"`
	IsPaid        bool            `gorm:"column:is_paid;not null;default:false" json:"is_paid"`
	PaidBy        *snowflake.ID   `gorm:"column:paid_by" json:"paid_by,omitempty"`
	PaidAt        *time.Time      `gorm:"column:paid_at" json:"paid_at,omitempty"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (WorkRecord) TableName() string { return "work_records" }

// Resettable reports whether a reset-to-pending may start from status.
func Resettable(status string) bool {
	return status == StatusApproved || status == StatusRejected
}
