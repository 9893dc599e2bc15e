package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sewtrack/sewtrack/internal/audit"
	auditdomain "github.com/sewtrack/sewtrack/internal/audit/domain"
	"github.com/sewtrack/sewtrack/internal/authorization"
	"github.com/sewtrack/sewtrack/internal/config"
	"github.com/sewtrack/sewtrack/internal/employee"
	employeedomain "github.com/sewtrack/sewtrack/internal/employee/domain"
	"github.com/sewtrack/sewtrack/internal/logger"
	obsmetrics "github.com/sewtrack/sewtrack/internal/observability/metrics"
	obstracing "github.com/sewtrack/sewtrack/internal/observability/tracing"
	"github.com/sewtrack/sewtrack/internal/product"
	productdomain "github.com/sewtrack/sewtrack/internal/product/domain"
	"github.com/sewtrack/sewtrack/internal/ratecard"
	ratecarddomain "github.com/sewtrack/sewtrack/internal/ratecard/domain"
	"github.com/sewtrack/sewtrack/internal/reporting"
	reportingdomain "github.com/sewtrack/sewtrack/internal/reporting/domain"
	"github.com/sewtrack/sewtrack/internal/task"
	taskdomain "github.com/sewtrack/sewtrack/internal/task/domain"
	"github.com/sewtrack/sewtrack/internal/tenant"
	tenantdomain "github.com/sewtrack/sewtrack/internal/tenant/domain"
	"github.com/sewtrack/sewtrack/internal/workrecord"
	workrecorddomain "github.com/sewtrack/sewtrack/internal/workrecord/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	config.Module,
	authorization.Module,
	audit.Module,
	tenant.Module,
	employee.Module,
	product.Module,
	task.Module,
	ratecard.Module,
	workrecord.Module,
	reporting.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(logger.GinMiddleware(log))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(log, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	genID         *snowflake.Node
	authzSvc      authorization.Service
	auditSvc      auditdomain.Service
	tenantSvc     tenantdomain.Service
	employeeSvc   employeedomain.Service
	productSvc    productdomain.Service
	taskSvc       taskdomain.Service
	rateCardSvc   ratecarddomain.Service
	workRecordSvc workrecorddomain.Service
	reportingSvc  reportingdomain.Service
	obsMetrics    *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	GenID         *snowflake.Node
	AuthzSvc      authorization.Service
	AuditSvc      auditdomain.Service
	TenantSvc     tenantdomain.Service
	EmployeeSvc   employeedomain.Service
	ProductSvc    productdomain.Service
	TaskSvc       taskdomain.Service
	RateCardSvc   ratecarddomain.Service
	WorkRecordSvc workrecorddomain.Service
	ReportingSvc  reportingdomain.Service
	ObsMetrics    *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		genID:         p.GenID,
		authzSvc:      p.AuthzSvc,
		auditSvc:      p.AuditSvc,
		tenantSvc:     p.TenantSvc,
		employeeSvc:   p.EmployeeSvc,
		productSvc:    p.ProductSvc,
		taskSvc:       p.TaskSvc,
		rateCardSvc:   p.RateCardSvc,
		workRecordSvc: p.WorkRecordSvc,
		reportingSvc:  p.ReportingSvc,
		obsMetrics:    p.ObsMetrics,
	}

	svc.registerRoutes()
	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/v1")
	v1.Use(s.ActorRequired())

	// Tenant registry endpoints run before tenant resolution: they are
	// how an actor obtains a tenant in the first place.
	v1.POST("/tenants", s.CreateTenant)
	v1.GET("/tenants", s.ListTenants)
	v1.GET("/tenants/current", s.CurrentTenant)
	v1.POST("/tenants/:id/switch", s.SwitchTenant)

	scoped := v1.Group("")
	scoped.Use(s.TenantContext())

	scoped.PATCH("/tenants/:id", s.authorize(authorization.ObjectTenant, authorization.ActionTenantManage), s.UpdateTenant)
	scoped.POST("/tenants/:id/deactivate", s.authorize(authorization.ObjectTenant, authorization.ActionTenantManage), s.DeactivateTenant)
	scoped.POST("/tenants/:id/activate", s.authorize(authorization.ObjectTenant, authorization.ActionTenantManage), s.ActivateTenant)

	// -------- Employees --------
	scoped.GET("/employees", s.authorize(authorization.ObjectEmployee, authorization.ActionView), s.ListEmployees)
	scoped.POST("/employees", s.authorize(authorization.ObjectEmployee, authorization.ActionCreate), s.CreateEmployee)
	scoped.GET("/employees/current", s.CurrentEmployee)
	scoped.GET("/employees/:id", s.authorize(authorization.ObjectEmployee, authorization.ActionView), s.GetEmployee)
	scoped.PATCH("/employees/:id", s.authorize(authorization.ObjectEmployee, authorization.ActionUpdate), s.UpdateEmployee)
	scoped.POST("/employees/:id/deactivate", s.authorize(authorization.ObjectEmployee, authorization.ActionUpdate), s.DeactivateEmployee)
	scoped.POST("/employees/:id/activate", s.authorize(authorization.ObjectEmployee, authorization.ActionUpdate), s.ActivateEmployee)

	// -------- Catalog --------
	scoped.GET("/products", s.authorize(authorization.ObjectProduct, authorization.ActionView), s.ListProducts)
	scoped.POST("/products", s.authorize(authorization.ObjectProduct, authorization.ActionCreate), s.CreateProduct)
	scoped.GET("/products/:id", s.authorize(authorization.ObjectProduct, authorization.ActionView), s.GetProduct)
	scoped.PATCH("/products/:id", s.authorize(authorization.ObjectProduct, authorization.ActionUpdate), s.UpdateProduct)
	scoped.POST("/products/:id/archive", s.authorize(authorization.ObjectProduct, authorization.ActionUpdate), s.ArchiveProduct)

	scoped.GET("/tasks", s.authorize(authorization.ObjectTask, authorization.ActionView), s.ListTasks)
	scoped.POST("/tasks", s.authorize(authorization.ObjectTask, authorization.ActionCreate), s.CreateTask)
	scoped.GET("/tasks/:id", s.authorize(authorization.ObjectTask, authorization.ActionView), s.GetTask)
	scoped.PATCH("/tasks/:id", s.authorize(authorization.ObjectTask, authorization.ActionUpdate), s.UpdateTask)
	scoped.POST("/tasks/:id/archive", s.authorize(authorization.ObjectTask, authorization.ActionUpdate), s.ArchiveTask)

	// -------- Rate card --------
	scoped.GET("/products/:id/tasks", s.authorize(authorization.ObjectRateCard, authorization.ActionView), s.ListRateCardEntries)
	scoped.POST("/products/:id/tasks", s.authorize(authorization.ObjectRateCard, authorization.ActionCreate), s.LinkProductTask)
	scoped.PATCH("/rate-cards/:id", s.authorize(authorization.ObjectRateCard, authorization.ActionUpdate), s.UpdateRateCardEntry)
	scoped.DELETE("/rate-cards/:id", s.authorize(authorization.ObjectRateCard, authorization.ActionDelete), s.UnlinkProductTask)
	scoped.GET("/rate-cards/resolve", s.authorize(authorization.ObjectRateCard, authorization.ActionView), s.ResolvePrice)

	// -------- Work records --------
	scoped.POST("/work-records", s.authorize(authorization.ObjectWorkRecord, authorization.ActionWorkRecordSubmit), s.SubmitWorkRecord)
	scoped.GET("/work-records", s.authorize(authorization.ObjectWorkRecord, authorization.ActionView), s.ListWorkRecords)
	scoped.GET("/work-records/:id", s.authorize(authorization.ObjectWorkRecord, authorization.ActionView), s.GetWorkRecord)
	scoped.PATCH("/work-records/:id", s.authorize(authorization.ObjectWorkRecord, authorization.ActionWorkRecordUpdate), s.UpdateWorkRecord)
	scoped.DELETE("/work-records/:id", s.authorize(authorization.ObjectWorkRecord, authorization.ActionWorkRecordDelete), s.DeleteWorkRecord)

	scoped.POST("/work-records/:id/approve", s.authorize(authorization.ObjectWorkRecord, authorization.ActionWorkRecordApprove), s.ApproveWorkRecord)
	scoped.POST("/work-records/:id/reject", s.authorize(authorization.ObjectWorkRecord, authorization.ActionWorkRecordReject), s.RejectWorkRecord)
	scoped.POST("/work-records/:id/reset", s.authorize(authorization.ObjectWorkRecord, authorization.ActionWorkRecordReset), s.ResetWorkRecord)
	scoped.POST("/work-records/:id/mark-paid", s.authorize(authorization.ObjectWorkRecord, authorization.ActionWorkRecordMarkPaid), s.MarkWorkRecordPaid)
	scoped.POST("/work-records/:id/unmark-paid", s.authorize(authorization.ObjectWorkRecord, authorization.ActionWorkRecordUnmarkPaid), s.UnmarkWorkRecordPaid)

	scoped.POST("/work-records/bulk/approve", s.authorize(authorization.ObjectWorkRecord, authorization.ActionWorkRecordApprove), s.BulkApproveWorkRecords)
	scoped.POST("/work-records/bulk/reject", s.authorize(authorization.ObjectWorkRecord, authorization.ActionWorkRecordReject), s.BulkRejectWorkRecords)

	// -------- Reports --------
	scoped.GET("/reports/summary", s.authorize(authorization.ObjectReport, authorization.ActionReportView), s.ReportSummary)
	scoped.GET("/reports/employees", s.authorize(authorization.ObjectReport, authorization.ActionReportView), s.ReportPerEmployee)
	scoped.GET("/reports/daily", s.authorize(authorization.ObjectReport, authorization.ActionReportView), s.ReportDaily)
	scoped.GET("/dashboard", s.authorize(authorization.ObjectReport, authorization.ActionReportView), s.GetDashboard)

	scoped.GET("/audit-logs", s.authorize(authorization.ObjectAuditLog, authorization.ActionAuditLogView), s.ListAuditLogs)
}
