package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/sewtrack/sewtrack/internal/clock"
	"github.com/sewtrack/sewtrack/internal/employee/domain"
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
		log:   p.Log.Named("employee.service"),
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

	actorID, err := snowflake.ParseString(strings.TrimSpace(req.ActorID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, domain.ErrInvalidName
	}

	position := strings.TrimSpace(req.Position)
	if position == "" {
		position = domain.PositionWorker
	}
	if !domain.ValidPosition(position) {
		return nil, domain.ErrInvalidPosition
	}

	employmentType := strings.TrimSpace(req.EmploymentType)
	if employmentType == "" {
		employmentType = domain.EmploymentFullTime
	}
	if !domain.ValidEmploymentType(employmentType) {
		return nil, domain.ErrInvalidEmploymentType
	}

	now := s.clock.Now()
	hiredAt := now
	if raw := strings.TrimSpace(req.HiredAt); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, domain.ErrInvalidHireDate
		}
		hiredAt = parsed
	}

	rate := decimal.Zero
	if req.HourlyRate != nil && strings.TrimSpace(*req.HourlyRate) != "" {
		parsed, err := decimal.NewFromString(strings.TrimSpace(*req.HourlyRate))
		if err != nil || parsed.IsNegative() {
			return nil, domain.ErrInvalidRate
		}
		rate = parsed
	}

	e := &domain.Employee{
		ID:             s.genID.Generate(),
		TenantID:       tenantID,
		ActorID:        actorID,
		FullName:       fullName,
		Phone:          strings.TrimSpace(req.Phone),
		Position:       position,
		EmploymentType: employmentType,
		HourlyRate:     rate,
		Active:         true,
		HiredAt:        hiredAt,
		Notes:          strings.TrimSpace(req.Notes),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, s.db, e); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrActorAlreadyEmployee
		}
		return nil, err
	}

	resp := s.toResponse(e)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	e, err := s.tenantEmployee(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		fullName := strings.TrimSpace(*req.FullName)
		if fullName == "" {
			return nil, domain.ErrInvalidName
		}
		e.FullName = fullName
	}
	if req.Phone != nil {
		e.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Position != nil {
		if !domain.ValidPosition(*req.Position) {
			return nil, domain.ErrInvalidPosition
		}
		e.Position = *req.Position
	}
	if req.EmploymentType != nil {
		if !domain.ValidEmploymentType(*req.EmploymentType) {
			return nil, domain.ErrInvalidEmploymentType
		}
		e.EmploymentType = *req.EmploymentType
	}
	if req.HourlyRate != nil {
		parsed, err := decimal.NewFromString(strings.TrimSpace(*req.HourlyRate))
		if err != nil || parsed.IsNegative() {
			return nil, domain.ErrInvalidRate
		}
		e.HourlyRate = parsed
	}
	if req.Notes != nil {
		e.Notes = strings.TrimSpace(*req.Notes)
	}

	e.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, e); err != nil {
		return nil, err
	}
	resp := s.toResponse(e)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	e, err := s.tenantEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(e)
	return &resp, nil
}

func (s *Service) Current(ctx context.Context) (*domain.Response, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrNoTenantContext
	}
	actorID, ok := tenantctx.ActorIDFromContext(ctx)
	if !ok || actorID == 0 {
		return nil, domain.ErrNotFound
	}

	e, err := s.repo.FindByActor(ctx, s.db, tenantID, actorID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrNotFound
	}
	resp := s.toResponse(e)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrNoTenantContext
	}

	items, err := s.repo.List(ctx, s.db, tenantID, domain.ListFilter{
		Active:   req.Active,
		Position: strings.TrimSpace(req.Position),
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

func (s *Service) Deactivate(ctx context.Context, id string, terminatedAt *time.Time) (*domain.Response, error) {
	e, err := s.tenantEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	termination := now
	if terminatedAt != nil {
		termination = terminatedAt.UTC()
	}

	e.Active = false
	e.TerminatedAt = &termination
	e.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, e); err != nil {
		return nil, err
	}
	resp := s.toResponse(e)
	return &resp, nil
}

// Activate re-hires a terminated employee and clears the termination date.
func (s *Service) Activate(ctx context.Context, id string) (*domain.Response, error) {
	e, err := s.tenantEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	e.Active = true
	e.TerminatedAt = nil
	e.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, e); err != nil {
		return nil, err
	}
	resp := s.toResponse(e)
	return &resp, nil
}

func (s *Service) tenantEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrNoTenantContext
	}

	employeeID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	e, err := s.repo.FindByID(ctx, s.db, tenantID, employeeID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (s *Service) toResponse(e *domain.Employee) domain.Response {
	resp := domain.Response{
		ID:             e.ID.String(),
		TenantID:       e.TenantID.String(),
		ActorID:        e.ActorID.String(),
		FullName:       e.FullName,
		Phone:          e.Phone,
		Position:       e.Position,
		EmploymentType: e.EmploymentType,
		Active:         e.Active,
		HiredAt:        e.HiredAt,
		TerminatedAt:   e.TerminatedAt,
		Notes:          e.Notes,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
	if !e.HourlyRate.IsZero() {
		resp.HourlyRate = e.HourlyRate.StringFixed(2)
	}
	return resp
}
