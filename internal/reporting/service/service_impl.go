package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/sewtrack/sewtrack/internal/audit/domain"
	"github.com/sewtrack/sewtrack/internal/clock"
	"github.com/sewtrack/sewtrack/internal/config"
	"github.com/sewtrack/sewtrack/internal/reporting/domain"
	"github.com/sewtrack/sewtrack/internal/tenantctx"
	workrecorddomain "github.com/sewtrack/sewtrack/internal/workrecord/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	Repo     domain.Repository
	Workflow *config.WorkflowConfigHolder
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	repo     domain.Repository
	workflow *config.WorkflowConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("reporting.service"),
		clock:    p.Clock,
		repo:     p.Repo,
		workflow: p.Workflow,
	}
}

func (s *Service) Summary(ctx context.Context, req domain.Query) (*domain.Summary, error) {
	tenantID, filter, err := s.scopeAndFilter(ctx, req)
	if err != nil {
		return nil, err
	}

	row, err := s.repo.Summary(ctx, s.db, tenantID, filter)
	if err != nil {
		return nil, err
	}
	return &domain.Summary{
		RecordCount:       row.RecordCount,
		TotalQuantity:     row.TotalQuantity,
		TotalPayment:      row.TotalPayment,
		PayableTotal:      row.PayableTotal,
		DistinctEmployees: row.DistinctEmployees,
	}, nil
}

func (s *Service) PerEmployee(ctx context.Context, req domain.Query) ([]domain.EmployeeSummary, error) {
	tenantID, filter, err := s.scopeAndFilter(ctx, req)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.GroupByEmployee(ctx, s.db, tenantID, filter)
	if err != nil {
		return nil, err
	}
	return employeeSummaries(rows), nil
}

func (s *Service) Daily(ctx context.Context, req domain.Query) ([]domain.DailySummary, error) {
	tenantID, filter, err := s.scopeAndFilter(ctx, req)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.GroupByDay(ctx, s.db, tenantID, filter)
	if err != nil {
		return nil, err
	}

	out := make([]domain.DailySummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.DailySummary{
			WorkDate:      row.WorkDate.Format(dateLayout),
			RecordCount:   row.RecordCount,
			TotalQuantity: row.TotalQuantity,
			TotalPayment:  row.TotalPayment,
			PayableTotal:  row.PayableTotal,
		})
	}
	return out, nil
}

func (s *Service) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrNoTenantContext
	}

	now := s.clock.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	cfg := s.workflow.Get()

	pending, err := s.repo.CountByStatus(ctx, s.db, tenantID, workrecorddomain.StatusPending)
	if err != nil {
		return nil, err
	}
	approvedToday, err := s.repo.CountTransitionsSince(ctx, s.db, tenantID, auditdomain.ActionApprove, startOfDay)
	if err != nil {
		return nil, err
	}
	rejectedToday, err := s.repo.CountTransitionsSince(ctx, s.db, tenantID, auditdomain.ActionReject, startOfDay)
	if err != nil {
		return nil, err
	}

	today, err := s.repo.Summary(ctx, s.db, tenantID, domain.Filter{
		From:   &startOfDay,
		To:     &startOfDay,
		Status: workrecorddomain.StatusApproved,
	})
	if err != nil {
		return nil, err
	}

	top, err := s.repo.TopPerformers(ctx, s.db, tenantID, startOfMonth, startOfDay, cfg.TopPerformerCount)
	if err != nil {
		return nil, err
	}
	activity, err := s.repo.RecentActivity(ctx, s.db, tenantID, cfg.RecentActivityLimit)
	if err != nil {
		return nil, err
	}

	dashboard := &domain.Dashboard{
		PendingCount:   pending,
		ApprovedToday:  approvedToday,
		RejectedToday:  rejectedToday,
		QuantityToday:  today.TotalQuantity,
		PaymentToday:   today.TotalPayment,
		TopPerformers:  employeeSummaries(top),
		RecentActivity: make([]domain.Activity, 0, len(activity)),
		GeneratedAt:    now,
	}
	for _, row := range activity {
		dashboard.RecentActivity = append(dashboard.RecentActivity, domain.Activity{
			Action:    row.Action,
			EntityID:  row.EntityID.String(),
			ActorID:   row.ActorID.String(),
			CreatedAt: row.CreatedAt,
		})
	}
	return dashboard, nil
}

func (s *Service) scopeAndFilter(ctx context.Context, req domain.Query) (snowflake.ID, domain.Filter, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return 0, domain.Filter{}, domain.ErrNoTenantContext
	}

	filter := domain.Filter{Status: strings.TrimSpace(req.Status)}
	if req.From != "" {
		from, err := time.Parse(dateLayout, req.From)
		if err != nil {
			return 0, domain.Filter{}, domain.ErrInvalidRange
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := time.Parse(dateLayout, req.To)
		if err != nil {
			return 0, domain.Filter{}, domain.ErrInvalidRange
		}
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return 0, domain.Filter{}, domain.ErrInvalidRange
	}
	if req.EmployeeID != "" {
		employeeID, err := snowflake.ParseString(req.EmployeeID)
		if err != nil {
			return 0, domain.Filter{}, domain.ErrInvalidID
		}
		filter.EmployeeID = employeeID
	}
	return tenantID, filter, nil
}

func employeeSummaries(rows []domain.EmployeeRow) []domain.EmployeeSummary {
	out := make([]domain.EmployeeSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.EmployeeSummary{
			EmployeeID:    row.EmployeeID.String(),
			EmployeeName:  row.EmployeeName,
			RecordCount:   row.RecordCount,
			TotalQuantity: row.TotalQuantity,
			TotalPayment:  row.TotalPayment,
			PayableTotal:  row.PayableTotal,
		})
	}
	return out
}
