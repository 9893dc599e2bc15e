package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/sewtrack/sewtrack/internal/clock"
	"github.com/sewtrack/sewtrack/internal/task/domain"
	"github.com/sewtrack/sewtrack/internal/tenantctx"
	"github.com/sewtrack/sewtrack/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("task.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrNoTenantContext
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, domain.ErrInvalidCode
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = domain.CategorySewing
	}
	if !domain.ValidCategory(category) {
		return nil, domain.ErrInvalidCategory
	}

	now := s.clock.Now()
	t := &domain.Task{
		ID:            s.genID.Generate(),
		TenantID:      tenantID,
		Code:          code,
		Name:          name,
		Description:   strings.TrimSpace(req.Description),
		Category:      category,
		SequenceOrder: req.SequenceOrder,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, s.db, t); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateCode
		}
		return nil, err
	}
	resp := s.toResponse(t)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	t, err := s.tenantTask(ctx, req.ID)
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
	if req.Description != nil {
		t.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		if !domain.ValidCategory(*req.Category) {
			return nil, domain.ErrInvalidCategory
		}
		t.Category = *req.Category
	}
	if req.SequenceOrder != nil {
		t.SequenceOrder = *req.SequenceOrder
	}
	if req.Active != nil {
		t.Active = *req.Active
	}

	t.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, t); err != nil {
		return nil, err
	}
	resp := s.toResponse(t)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	t, err := s.tenantTask(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(t)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrNoTenantContext
	}

	items, err := s.repo.List(ctx, s.db, tenantID, domain.ListFilter{
		Active:   req.Active,
		Category: strings.TrimSpace(req.Category),
	})
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, s.toResponse(&item))
	}
	return resp, nil
}

func (s *Service) Archive(ctx context.Context, id string) (*domain.Response, error) {
	t, err := s.tenantTask(ctx, id)
	if err != nil {
		return nil, err
	}

	t.Active = false
	t.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, t); err != nil {
		return nil, err
	}
	resp := s.toResponse(t)
	return &resp, nil
}

func (s *Service) tenantTask(ctx context.Context, id string) (*domain.Task, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrNoTenantContext
	}

	taskID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	t, err := s.repo.FindByID(ctx, s.db, tenantID, taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (s *Service) toResponse(t *domain.Task) domain.Response {
	return domain.Response{
		ID:            t.ID.String(),
		TenantID:      t.TenantID.String(),
		Code:          t.Code,
		Name:          t.Name,
		Description:   t.Description,
		Category:      t.Category,
		SequenceOrder: t.SequenceOrder,
		Active:        t.Active,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}
