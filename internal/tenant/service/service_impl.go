package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/sewtrack/sewtrack/internal/clock"
	"github.com/sewtrack/sewtrack/internal/tenant/domain"
	"github.com/sewtrack/sewtrack/internal/tenant/session"
	"github.com/sewtrack/sewtrack/internal/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	GenID    *snowflake.Node
	Repo     domain.Repository
	Sessions session.Store
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	genID    *snowflake.Node
	repo     domain.Repository
	sessions session.Store
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("tenant.service"),
		clock:    p.Clock,
		genID:    p.GenID,
		repo:     p.Repo,
		sessions: p.Sessions,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	actorID, ok := tenantctx.ActorIDFromContext(ctx)
	if !ok || actorID == 0 {
		return nil, domain.ErrNoActor
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	slugValue := strings.TrimSpace(req.Slug)
	if slugValue == "" {
		slugValue = slug.Make(name)
	} else {
		slugValue = slug.Make(slugValue)
	}
	slugValue, err := s.uniqueSlug(ctx, slugValue)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	t := &domain.Tenant{
		ID:          s.genID.Generate(),
		Name:        name,
		Slug:        slugValue,
		OwnerID:     actorID,
		Address:     strings.TrimSpace(req.Address),
		Phone:       strings.TrimSpace(req.Phone),
		Email:       strings.TrimSpace(req.Email),
		Active:      true,
		ActivatedAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Settings != nil {
		t.Settings = datatypes.JSONMap(req.Settings)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.CreateTenant(ctx, tx, t); err != nil {
			return err
		}
		return s.repo.CreateMembership(ctx, tx, &domain.Membership{
			ID:       s.genID.Generate(),
			TenantID: t.ID,
			ActorID:  actorID,
			Role:     domain.RoleOwner,
			Active:   true,
			JoinedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("tenant created",
		zap.String("tenant_id", t.ID.String()),
		zap.String("slug", t.Slug),
	)
	resp := s.toResponse(t)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	actorID, ok := tenantctx.ActorIDFromContext(ctx)
	if !ok || actorID == 0 {
		return nil, domain.ErrNoActor
	}

	t, err := s.ownedTenant(ctx, req.ID, actorID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		t.Name = name
	}
	if req.Address != nil {
		t.Address = strings.TrimSpace(*req.Address)
	}
	if req.Phone != nil {
		t.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		t.Email = strings.TrimSpace(*req.Email)
	}
	if req.Notes != nil {
		t.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.Settings != nil {
		t.Settings = datatypes.JSONMap(req.Settings)
	}

	t.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateTenant(ctx, s.db, t); err != nil {
		return nil, err
	}
	resp := s.toResponse(t)
	return &resp, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Response, error) {
	actorID, ok := tenantctx.ActorIDFromContext(ctx)
	if !ok || actorID == 0 {
		return nil, domain.ErrNoActor
	}

	items, err := s.repo.ListAccessible(ctx, s.db, actorID)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, s.toResponse(&item))
	}
	return resp, nil
}

// Resolve implements the fixed resolution order: an employee profile pins the
// actor to its tenant, then a cached session selection is honored if access
// still holds, then the first accessible tenant is auto-selected and cached.
func (s *Service) Resolve(ctx context.Context) (*domain.Response, error) {
	actorID, ok := tenantctx.ActorIDFromContext(ctx)
	if !ok || actorID == 0 {
		return nil, domain.ErrNoActor
	}

	if t, err := s.repo.EmployeeTenant(ctx, s.db, actorID); err != nil {
		return nil, err
	} else if t != nil {
		resp := s.toResponse(t)
		return &resp, nil
	}

	if selected, found, err := s.sessions.Get(ctx, int64(actorID)); err != nil {
		s.log.Warn("session store read failed", zap.Error(err))
	} else if found {
		tenantID := snowflake.ID(selected)
		t, err := s.repo.FindTenantByID(ctx, s.db, tenantID)
		if err != nil {
			return nil, err
		}
		if t != nil && t.Active {
			hasAccess, err := s.repo.HasAccess(ctx, s.db, actorID, tenantID)
			if err != nil {
				return nil, err
			}
			if hasAccess {
				resp := s.toResponse(t)
				return &resp, nil
			}
		}
		// Stale selection: the tenant vanished, was deactivated, or access
		// was revoked.
		_ = s.sessions.Clear(ctx, int64(actorID))
	}

	t, err := s.repo.FirstOwnedActive(ctx, s.db, actorID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		t, err = s.repo.FirstMembershipTenant(ctx, s.db, actorID)
		if err != nil {
			return nil, err
		}
	}
	if t == nil {
		return nil, domain.ErrNoTenantContext
	}

	if err := s.sessions.Set(ctx, int64(actorID), int64(t.ID)); err != nil {
		s.log.Warn("session store write failed", zap.Error(err))
	}
	resp := s.toResponse(t)
	return &resp, nil
}

func (s *Service) Switch(ctx context.Context, tenantID string) (*domain.Response, error) {
	actorID, ok := tenantctx.ActorIDFromContext(ctx)
	if !ok || actorID == 0 {
		return nil, domain.ErrNoActor
	}

	id, err := snowflake.ParseString(strings.TrimSpace(tenantID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	t, err := s.repo.FindTenantByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	if !t.Active {
		return nil, domain.ErrTenantInactive
	}

	hasAccess, err := s.repo.HasAccess(ctx, s.db, actorID, id)
	if err != nil {
		return nil, err
	}
	if !hasAccess {
		return nil, domain.ErrAccessDenied
	}

	if err := s.sessions.Set(ctx, int64(actorID), int64(id)); err != nil {
		return nil, err
	}
	resp := s.toResponse(t)
	return &resp, nil
}

func (s *Service) Deactivate(ctx context.Context, tenantID string) (*domain.Response, error) {
	actorID, ok := tenantctx.ActorIDFromContext(ctx)
	if !ok || actorID == 0 {
		return nil, domain.ErrNoActor
	}

	t, err := s.ownedTenant(ctx, tenantID, actorID)
	if err != nil {
		return nil, err
	}

	t.Active = false
	t.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateTenant(ctx, s.db, t); err != nil {
		return nil, err
	}
	resp := s.toResponse(t)
	return &resp, nil
}

func (s *Service) Activate(ctx context.Context, tenantID string) (*domain.Response, error) {
	actorID, ok := tenantctx.ActorIDFromContext(ctx)
	if !ok || actorID == 0 {
		return nil, domain.ErrNoActor
	}

	t, err := s.ownedTenant(ctx, tenantID, actorID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	t.Active = true
	t.ActivatedAt = &now
	t.UpdatedAt = now
	if err := s.repo.UpdateTenant(ctx, s.db, t); err != nil {
		return nil, err
	}
	resp := s.toResponse(t)
	return &resp, nil
}

func (s *Service) RoleOf(ctx context.Context, tenantID string) (string, error) {
	actorID, ok := tenantctx.ActorIDFromContext(ctx)
	if !ok || actorID == 0 {
		return "", domain.ErrNoActor
	}

	id, err := snowflake.ParseString(strings.TrimSpace(tenantID))
	if err != nil {
		return "", domain.ErrInvalidID
	}

	t, err := s.repo.FindTenantByID(ctx, s.db, id)
	if err != nil {
		return "", err
	}
	if t == nil {
		return "", domain.ErrNotFound
	}
	if t.OwnerID == actorID {
		return domain.RoleOwner, nil
	}

	m, err := s.repo.FindMembership(ctx, s.db, id, actorID)
	if err != nil {
		return "", err
	}
	if m == nil || !m.Active {
		return "", domain.ErrAccessDenied
	}
	return m.Role, nil
}

func (s *Service) ownedTenant(ctx context.Context, tenantID string, actorID snowflake.ID) (*domain.Tenant, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(tenantID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	t, err := s.repo.FindTenantByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	if t.OwnerID != actorID {
		return nil, domain.ErrAccessDenied
	}
	return t, nil
}

func (s *Service) uniqueSlug(ctx context.Context, base string) (string, error) {
	candidate := base
	for counter := 1; ; counter++ {
		exists, err := s.repo.SlugExists(ctx, s.db, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}

func (s *Service) toResponse(t *domain.Tenant) domain.Response {
	resp := domain.Response{
		ID:          t.ID.String(),
		Name:        t.Name,
		Slug:        t.Slug,
		OwnerID:     t.OwnerID.String(),
		Address:     t.Address,
		Phone:       t.Phone,
		Email:       t.Email,
		Active:      t.Active,
		ActivatedAt: t.ActivatedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if len(t.Settings) > 0 {
		resp.Settings = map[string]any(t.Settings)
	}
	return resp
}
