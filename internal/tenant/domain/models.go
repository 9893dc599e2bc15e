// Package domain contains persistence models for the tenant registry.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Membership roles inside a workshop.
const (
	RoleOwner      = "owner"
	RoleAdmin      = "admin"
	RoleMaster     = "master"
	RoleAccountant = "accountant"
	RoleViewer     = "viewer"
)

// Tenant represents one workshop. All catalog and ledger data is partitioned
// by tenant ID.
type Tenant struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name        string            `gorm:"type:text;not null" json:"name"`
	Slug        string            `gorm:"type:text;not null;uniqueIndex:ux_tenants_slug" json:"slug"`
	OwnerID     snowflake.ID      `gorm:"column:owner_id;not null;index" json:"owner_id"`
	Address     string            `gorm:"type:text" json:"address"`
	Phone       string            `gorm:"type:text" json:"phone"`
	Email       string            `gorm:"type:text" json:"email"`
	Settings    datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"settings"`
	Active      bool              `gorm:"not null;default:true" json:"active"`
	ActivatedAt *time.Time        `gorm:"column:activated_at" json:"activated_at,omitempty"`
	Notes       string            `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Tenant) TableName() string { return "tenants" }

// Membership grants an actor a role inside a tenant. Unique per
// (tenant, actor).
type Membership struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID snowflake.ID `gorm:"not null;index;uniqueIndex:ux_tenant_actor,priority:1" json:"tenant_id"`
	ActorID  snowflake.ID `gorm:"column:actor_id;not null;index;uniqueIndex:ux_tenant_actor,priority:2" json:"actor_id"`
	Role     string       `gorm:"type:text;not null" json:"role"`
	Active   bool         `gorm:"not null;default:true" json:"active"`
	JoinedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"joined_at"`
}

// TableName sets the database table name.
func (Membership) TableName() string { return "tenant_memberships" }
