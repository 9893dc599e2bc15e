package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/sewtrack/sewtrack/internal/audit/domain"
	"github.com/sewtrack/sewtrack/internal/clock"
	"github.com/sewtrack/sewtrack/internal/config"
	employeedomain "github.com/sewtrack/sewtrack/internal/employee/domain"
	ratecarddomain "github.com/sewtrack/sewtrack/internal/ratecard/domain"
	"github.com/sewtrack/sewtrack/internal/tenantctx"
	"github.com/sewtrack/sewtrack/internal/workrecord/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const workDateLayout = "2006-01-02"

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	GenID     *snowflake.Node
	Repo      domain.Repository
	RateCard  ratecarddomain.Service
	Employees employeedomain.Repository
	Audit     auditdomain.Service
	Workflow  *config.WorkflowConfigHolder
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	genID     *snowflake.Node
	repo      domain.Repository
	rateCard  ratecarddomain.Service
	employees employeedomain.Repository
	audit     auditdomain.Service
	workflow  *config.WorkflowConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("workrecord.service"),
		clock:     p.Clock,
		genID:     p.GenID,
		repo:      p.Repo,
		rateCard:  p.RateCard,
		employees: p.Employees,
		audit:     p.Audit,
		workflow:  p.Workflow,
	}
}

func (s *Service) Submit(ctx context.Context, req domain.SubmitRequest) (*domain.Response, error) {
	tenantID, actorID, err := s.scope(ctx)
	if err != nil {
		return nil, err
	}

	if req.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	employee, err := s.submissionEmployee(ctx, tenantID, actorID, req.EmployeeID)
	if err != nil {
		return nil, err
	}

	productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	taskID, err := snowflake.ParseString(strings.TrimSpace(req.TaskID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	now := s.clock.Now()
	workDate, err := parseWorkDate(req.WorkDate, now)
	if err != nil {
		return nil, err
	}

	// The rate card lookup is tenant-scoped, so a product/task pair from
	// another tenant resolves to no entry rather than a foreign price.
	price, err := s.rateCard.Resolve(ctx, productID, taskID, "")
	if err != nil {
		return nil, err
	}

	record := &domain.WorkRecord{
		ID:            s.genID.Generate(),
		TenantID:      tenantID,
		EmployeeID:    employee.ID,
		ProductID:     productID,
		TaskID:        taskID,
		ProductTaskID: price.EntryID,
		Quantity:      req.Quantity,
		Tier:          price.Tier,
		PricePerUnit:  price.PricePerUnit,
		TotalPayment:  price.PricePerUnit.Mul(decimal.NewFromInt(int64(req.Quantity))),
		Status:        domain.StatusPending,
		WorkDate:      workDate,
		Notes:         strings.TrimSpace(req.Notes),
		SubmittedBy:   actorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, s.db, record); err != nil {
		return nil, err
	}

	resp := s.toResponse(record)
	return &resp, nil
}

func (s *Service) UpdateWhilePending(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	tenantID, _, err := s.scope(ctx)
	if err != nil {
		return nil, err
	}

	record, err := s.tenantRecord(ctx, tenantID, req.ID)
	if err != nil {
		return nil, err
	}

	quantity := record.Quantity
	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		quantity = *req.Quantity
	}
	notes := record.Notes
	if req.Notes != nil {
		notes = strings.TrimSpace(*req.Notes)
	}

	total := record.PricePerUnit.Mul(decimal.NewFromInt(int64(quantity)))
	now := s.clock.Now()

	affected, err := s.repo.UpdatePending(ctx, s.db, tenantID, record.ID, quantity, total, notes, now)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.ErrInvalidState
	}

	record.Quantity = quantity
	record.TotalPayment = total
	record.Notes = notes
	record.UpdatedAt = now
	resp := s.toResponse(record)
	return &resp, nil
}

func (s *Service) DeleteWhilePending(ctx context.Context, id string) error {
	tenantID, _, err := s.scope(ctx)
	if err != nil {
		return err
	}

	record, err := s.tenantRecord(ctx, tenantID, id)
	if err != nil {
		return err
	}

	affected, err := s.repo.DeletePending(ctx, s.db, tenantID, record.ID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	tenantID, _, err := s.scope(ctx)
	if err != nil {
		return nil, err
	}

	record, err := s.tenantRecord(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(record)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	tenantID, _, err := s.scope(ctx)
	if err != nil {
		return nil, err
	}

	filter := domain.ListFilter{
		Status: strings.TrimSpace(req.Status),
		IsPaid: req.IsPaid,
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if req.EmployeeID != "" {
		employeeID, err := snowflake.ParseString(req.EmployeeID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		filter.EmployeeID = employeeID
	}
	if req.ProductID != "" {
		productID, err := snowflake.ParseString(req.ProductID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		filter.ProductID = productID
	}
	if req.From != "" {
		from, err := time.Parse(workDateLayout, req.From)
		if err != nil {
			return nil, domain.ErrInvalidWorkDate
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := time.Parse(workDateLayout, req.To)
		if err != nil {
			return nil, domain.ErrInvalidWorkDate
		}
		filter.To = &to
	}

	items, err := s.repo.List(ctx, s.db, tenantID, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, s.toResponse(&item))
	}
	return resp, nil
}

func (s *Service) scope(ctx context.Context) (snowflake.ID, snowflake.ID, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return 0, 0, domain.ErrNoTenantContext
	}
	actorID, ok := tenantctx.ActorIDFromContext(ctx)
	if !ok || actorID == 0 {
		return 0, 0, domain.ErrNoActor
	}
	return tenantID, actorID, nil
}

// submissionEmployee resolves who the work is recorded for. Without an
// explicit employee_id the submitting actor must have their own
// profile; with one, the referenced employee must live in the same
// tenant.
func (s *Service) submissionEmployee(ctx context.Context, tenantID, actorID snowflake.ID, employeeID string) (*employeedomain.Employee, error) {
	if strings.TrimSpace(employeeID) == "" {
		employee, err := s.employees.FindByActor(ctx, s.db, tenantID, actorID)
		if err != nil {
			return nil, err
		}
		if employee == nil || !employee.Active {
			return nil, domain.ErrNoEmployee
		}
		return employee, nil
	}

	id, err := snowflake.ParseString(strings.TrimSpace(employeeID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	employee, err := s.employees.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, domain.ErrCrossTenantReference
	}
	if !employee.Active {
		return nil, domain.ErrNoEmployee
	}
	return employee, nil
}

func (s *Service) tenantRecord(ctx context.Context, tenantID snowflake.ID, id string) (*domain.WorkRecord, error) {
	recordID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	record, err := s.repo.FindByID(ctx, s.db, tenantID, recordID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}
	return record, nil
}

func (s *Service) toResponse(record *domain.WorkRecord) domain.Response {
	resp := domain.Response{
		ID:            record.ID.String(),
		TenantID:      record.TenantID.String(),
		EmployeeID:    record.EmployeeID.String(),
		ProductID:     record.ProductID.String(),
		TaskID:        record.TaskID.String(),
		ProductTaskID: record.ProductTaskID.String(),
		Quantity:      record.Quantity,
		Tier:          record.Tier,
		PricePerUnit:  record.PricePerUnit,
		TotalPayment:  record.TotalPayment,
		Status:        record.Status,
		WorkDate:      record.WorkDate.Format(workDateLayout),
		Notes:         record.Notes,
		SubmittedBy:   record.SubmittedBy.String(),
		ApprovedAt:    record.ApprovedAt,
		IsPaid:        record.IsPaid,
		PaidAt:        record.PaidAt,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
	if record.ApprovedBy != nil {
		resp.ApprovedBy = record.ApprovedBy.String()
	}
	if record.PaidBy != nil {
		resp.PaidBy = record.PaidBy.String()
	}
	return resp
}

func parseWorkDate(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	workDate, err := time.Parse(workDateLayout, raw)
	if err != nil {
		return time.Time{}, domain.ErrInvalidWorkDate
	}
	return workDate, nil
}
