// Package domain contains persistence models for the employee directory.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Positions an employee can hold inside a workshop.
const (
	PositionWorker            = "worker"
	PositionMaster            = "master"
	PositionQualityController = "quality_controller"
	PositionSupervisor        = "supervisor"
)

// Employment types.
const (
	EmploymentFullTime  = "full_time"
	EmploymentPartTime  = "part_time"
	EmploymentContract  = "contract"
	EmploymentTemporary = "temporary"
)

// Employee is an actor's profile within exactly one tenant.
type Employee struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	TenantID       snowflake.ID    `gorm:"not null;index;index:ix_employees_tenant_active,priority:1" json:"tenant_id"`
	ActorID        snowflake.ID    `gorm:"column:actor_id;not null;uniqueIndex:ux_employees_actor" json:"actor_id"`
	FullName       string          `gorm:"type:text;not null" json:"full_name"`
	Phone          string          `gorm:"type:text" json:"phone"`
	Position       string          `gorm:"type:text;not null;default:'worker'" json:"position"`
	EmploymentType string          `gorm:"type:text;not null;default:'full_time'" json:"employment_type"`
	HourlyRate     decimal.Decimal `gorm:"type:decimal(12,2)" json:"hourly_rate"`
	Active         bool            `gorm:"not null;default:true;index:ix_employees_tenant_active,priority:2" json:"active"`
	HiredAt        time.Time       `gorm:"column:hired_at;not null" json:"hired_at"`
	TerminatedAt   *time.Time      `gorm:"column:terminated_at" json:"terminated_at,omitempty"`
	Notes          string          `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Employee) TableName() string { return "employees" }

// IsSupervisory reports whether the position may approve work records.
func (e *Employee) IsSupervisory() bool {
	return e.Position == PositionMaster || e.Position == PositionSupervisor
}

func ValidPosition(position string) bool {
	switch position {
	case PositionWorker, PositionMaster, PositionQualityController, PositionSupervisor:
		return true
	default:
		return false
	}
}

func ValidEmploymentType(employmentType string) bool {
	switch employmentType {
	case EmploymentFullTime, EmploymentPartTime, EmploymentContract, EmploymentTemporary:
		return true
	default:
		return false
	}
}
