package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sewtrack/sewtrack/internal/tenant/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) CreateTenant(ctx context.Context, db *gorm.DB, tenant *domain.Tenant) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tenants (id, name, slug, owner_id, address, phone, email, settings, active, activated_at, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tenant.ID,
		tenant.Name,
		tenant.Slug,
		tenant.OwnerID,
		tenant.Address,
		tenant.Phone,
		tenant.Email,
		tenant.Settings,
		tenant.Active,
		tenant.ActivatedAt,
		tenant.Notes,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	).Error
}

func (r *repo) UpdateTenant(ctx context.Context, db *gorm.DB, tenant *domain.Tenant) error {
	if tenant == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE tenants
		 SET name = ?, address = ?, phone = ?, email = ?, settings = ?, active = ?, activated_at = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		tenant.Name,
		tenant.Address,
		tenant.Phone,
		tenant.Email,
		tenant.Settings,
		tenant.Active,
		tenant.ActivatedAt,
		tenant.Notes,
		tenant.UpdatedAt,
		tenant.ID,
	).Error
}

func (r *repo) FindTenantByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Tenant, error) {
	var t domain.Tenant
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM tenants WHERE id = ?`, id,
	).Scan(&t).Error
	if err != nil {
		return nil, err
	}
	if t.ID == 0 {
		return nil, nil
	}
	return &t, nil
}

func (r *repo) SlugExists(ctx context.Context, db *gorm.DB, slug string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Tenant{}).
		Where("slug = ?", slug).
		Count(&count).Error
	return count > 0, err
}

func (r *repo) ListAccessible(ctx context.Context, db *gorm.DB, actorID snowflake.ID) ([]domain.Tenant, error) {
	var items []domain.Tenant
	err := db.WithContext(ctx).Raw(
		`SELECT DISTINCT t.* FROM tenants t
		 LEFT JOIN tenant_memberships m ON m.tenant_id = t.id AND m.actor_id = ? AND m.active = ?
		 WHERE t.owner_id = ? OR m.id IS NOT NULL
		 ORDER BY t.name ASC`,
		actorID, true, actorID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FirstOwnedActive(ctx context.Context, db *gorm.DB, actorID snowflake.ID) (*domain.Tenant, error) {
	var t domain.Tenant
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM tenants WHERE owner_id = ? AND active = ? ORDER BY created_at ASC LIMIT 1`,
		actorID, true,
	).Scan(&t).Error
	if err != nil {
		return nil, err
	}
	if t.ID == 0 {
		return nil, nil
	}
	return &t, nil
}

func (r *repo) FirstMembershipTenant(ctx context.Context, db *gorm.DB, actorID snowflake.ID) (*domain.Tenant, error) {
	var t domain.Tenant
	err := db.WithContext(ctx).Raw(
		`SELECT t.* FROM tenants t
		 JOIN tenant_memberships m ON m.tenant_id = t.id
		 WHERE m.actor_id = ? AND m.active = ? AND t.active = ?
		 ORDER BY m.joined_at ASC LIMIT 1`,
		actorID, true, true,
	).Scan(&t).Error
	if err != nil {
		return nil, err
	}
	if t.ID == 0 {
		return nil, nil
	}
	return &t, nil
}

func (r *repo) HasAccess(ctx context.Context, db *gorm.DB, actorID, tenantID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM tenants t
		 LEFT JOIN tenant_memberships m ON m.tenant_id = t.id AND m.actor_id = ? AND m.active = ?
		 WHERE t.id = ? AND (t.owner_id = ? OR m.id IS NOT NULL)`,
		actorID, true, tenantID, actorID,
	).Scan(&count).Error
	return count > 0, err
}

func (r *repo) CreateMembership(ctx context.Context, db *gorm.DB, membership *domain.Membership) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tenant_memberships (id, tenant_id, actor_id, role, active, joined_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		membership.ID,
		membership.TenantID,
		membership.ActorID,
		membership.Role,
		membership.Active,
		membership.JoinedAt,
	).Error
}

func (r *repo) FindMembership(ctx context.Context, db *gorm.DB, tenantID, actorID snowflake.ID) (*domain.Membership, error) {
	var m domain.Membership
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM tenant_memberships WHERE tenant_id = ? AND actor_id = ? LIMIT 1`,
		tenantID, actorID,
	).Scan(&m).Error
	if err != nil {
		return nil, err
	}
	if m.ID == 0 {
		return nil, nil
	}
	return &m, nil
}

func (r *repo) EmployeeTenant(ctx context.Context, db *gorm.DB, actorID snowflake.ID) (*domain.Tenant, error) {
	var t domain.Tenant
	err := db.WithContext(ctx).Raw(
		`SELECT t.* FROM tenants t
		 JOIN employees e ON e.tenant_id = t.id
		 WHERE e.actor_id = ? LIMIT 1`,
		actorID,
	).Scan(&t).Error
	if err != nil {
		return nil, err
	}
	if t.ID == 0 {
		return nil, nil
	}
	return &t, nil
}
