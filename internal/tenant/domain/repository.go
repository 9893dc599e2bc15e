package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	CreateTenant(ctx context.Context, db *gorm.DB, tenant *Tenant) error
	UpdateTenant(ctx context.Context, db *gorm.DB, tenant *Tenant) error
	FindTenantByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tenant, error)
	SlugExists(ctx context.Context, db *gorm.DB, slug string) (bool, error)
	ListAccessible(ctx context.Context, db *gorm.DB, actorID snowflake.ID) ([]Tenant, error)
	FirstOwnedActive(ctx context.Context, db *gorm.DB, actorID snowflake.ID) (*Tenant, error)
	FirstMembershipTenant(ctx context.Context, db *gorm.DB, actorID snowflake.ID) (*Tenant, error)
	HasAccess(ctx context.Context, db *gorm.DB, actorID, tenantID snowflake.ID) (bool, error)
	CreateMembership(ctx context.Context, db *gorm.DB, membership *Membership) error
	FindMembership(ctx context.Context, db *gorm.DB, tenantID, actorID snowflake.ID) (*Membership, error)
	// EmployeeTenant returns the tenant an actor's employee profile pins them
	// to, or nil when the actor has no employee profile.
	EmployeeTenant(ctx context.Context, db *gorm.DB, actorID snowflake.ID) (*Tenant, error)
}
