package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/sewtrack/sewtrack/internal/audit/domain"
	"github.com/sewtrack/sewtrack/internal/clock"
	"github.com/sewtrack/sewtrack/internal/config"
	employeedomain "github.com/sewtrack/sewtrack/internal/employee/domain"
	"github.com/sewtrack/sewtrack/internal/reporting/domain"
	"github.com/sewtrack/sewtrack/internal/reporting/repository"
	"github.com/sewtrack/sewtrack/internal/tenantctx"
	workrecorddomain "github.com/sewtrack/sewtrack/internal/workrecord/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type reportFixture struct {
	svc      domain.Service
	db       *gorm.DB
	node     *snowflake.Node
	clk      *clock.FakeClock
	tenantID snowflake.ID
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	stmts := []string{
		`CREATE TABLE work_records (
			id BIGINT PRIMARY KEY,
			tenant_id BIGINT NOT NULL,
			employee_id BIGINT NOT NULL,
			product_id BIGINT NOT NULL,
			task_id BIGINT NOT NULL,
			product_task_id BIGINT NOT NULL,
			quantity INTEGER NOT NULL,
			tier TEXT NOT NULL,
			price_per_unit NUMERIC NOT NULL,
			total_payment NUMERIC NOT NULL,
			status TEXT NOT NULL DEFAULT 'PENDING',
			work_date DATETIME NOT NULL,
			notes TEXT,
			submitted_by BIGINT NOT NULL,
			approved_by BIGINT,
			approved_at DATETIME,
			is_paid BOOLEAN NOT NULL DEFAULT false,
			paid_by BIGINT,
			paid_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE employees (
			id BIGINT PRIMARY KEY,
			tenant_id BIGINT NOT NULL,
			actor_id BIGINT NOT NULL,
			full_name TEXT NOT NULL,
			phone TEXT,
			position TEXT NOT NULL DEFAULT 'worker',
			employment_type TEXT NOT NULL DEFAULT 'full_time',
			hourly_rate NUMERIC,
			active BOOLEAN NOT NULL DEFAULT true,
			hired_at DATETIME,
			terminated_at DATETIME,
			notes TEXT,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE audit_logs (
			id BIGINT PRIMARY KEY,
			tenant_id BIGINT NOT NULL,
			actor_id BIGINT NOT NULL,
			action TEXT NOT NULL,
			entity_type TEXT,
			entity_id BIGINT,
			batch_ref TEXT,
			detail TEXT,
			created_at DATETIME
		)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("prepare schema: %v", err)
		}
	}

	clk := clock.NewFakeClock(time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		Clock:    clk,
		Repo:     repository.Provide(),
		Workflow: config.NewStaticWorkflowConfigHolder(config.DefaultWorkflowConfig()),
	})

	return &reportFixture{
		svc:      svc,
		db:       db,
		node:     node,
		clk:      clk,
		tenantID: node.Generate(),
	}
}

func (f *reportFixture) ctx() context.Context {
	return tenantctx.WithTenantID(context.Background(), int64(f.tenantID))
}

func (f *reportFixture) seedEmployee(t *testing.T, tenantID snowflake.ID, name string) snowflake.ID {
	t.Helper()
	employee := &employeedomain.Employee{
		ID:             f.node.Generate(),
		TenantID:       tenantID,
		ActorID:        f.node.Generate(),
		FullName:       name,
		Position:       employeedomain.PositionWorker,
		EmploymentType: employeedomain.EmploymentFullTime,
		Active:         true,
		HiredAt:        f.clk.Now(),
	}
	if err := f.db.Create(employee).Error; err != nil {
		t.Fatalf("seed employee: %v", err)
	}
	return employee.ID
}

func (f *reportFixture) seedRecord(t *testing.T, tenantID, employeeID snowflake.ID, status string, quantity int, total int64, workDate time.Time) snowflake.ID {
	t.Helper()
	record := &workrecorddomain.WorkRecord{
		ID:            f.node.Generate(),
		TenantID:      tenantID,
		EmployeeID:    employeeID,
		ProductID:     f.node.Generate(),
		TaskID:        f.node.Generate(),
		ProductTaskID: f.node.Generate(),
		Quantity:      quantity,
		Tier:          "base",
		PricePerUnit:  decimal.NewFromInt(total / int64(quantity)),
		TotalPayment:  decimal.NewFromInt(total),
		Status:        status,
		WorkDate:      workDate,
		SubmittedBy:   f.node.Generate(),
		CreatedAt:     f.clk.Now(),
		UpdatedAt:     f.clk.Now(),
	}
	if err := f.db.Create(record).Error; err != nil {
		t.Fatalf("seed record: %v", err)
	}
	return record.ID
}

func TestSummaryCountsOnlyTenantRows(t *testing.T) {
	f := newReportFixture(t)
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	employeeID := f.seedEmployee(t, f.tenantID, "Dilnoza")
	f.seedRecord(t, f.tenantID, employeeID, workrecorddomain.StatusApproved, 10, 20000, day)
	f.seedRecord(t, f.tenantID, employeeID, workrecorddomain.StatusPending, 5, 10000, day)

	otherTenant := f.node.Generate()
	otherEmployee := f.seedEmployee(t, otherTenant, "Elsewhere")
	f.seedRecord(t, otherTenant, otherEmployee, workrecorddomain.StatusApproved, 99, 99000, day)

	summary, err := f.svc.Summary(f.ctx(), domain.Query{})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.RecordCount != 2 {
		t.Fatalf("expected 2 records, got %d", summary.RecordCount)
	}
	if summary.TotalQuantity != 15 {
		t.Fatalf("expected quantity 15, got %d", summary.TotalQuantity)
	}
	if !summary.TotalPayment.Equal(decimal.NewFromInt(30000)) {
		t.Fatalf("expected total payment 30000, got %s", summary.TotalPayment)
	}
	if !summary.PayableTotal.Equal(decimal.NewFromInt(20000)) {
		t.Fatalf("expected payable total from approved only, got %s", summary.PayableTotal)
	}
	if summary.DistinctEmployees != 1 {
		t.Fatalf("expected 1 distinct employee, got %d", summary.DistinctEmployees)
	}
}

func TestSummaryEmptyTenant(t *testing.T) {
	f := newReportFixture(t)

	summary, err := f.svc.Summary(f.ctx(), domain.Query{})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.RecordCount != 0 || !summary.TotalPayment.IsZero() || !summary.PayableTotal.IsZero() {
		t.Fatalf("expected zeroed summary, got %+v", summary)
	}
}

func TestSummaryRejectsInvertedRange(t *testing.T) {
	f := newReportFixture(t)

	_, err := f.svc.Summary(f.ctx(), domain.Query{From: "2026-03-10", To: "2026-03-01"})
	if !errors.Is(err, domain.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}

	_, err = f.svc.Summary(f.ctx(), domain.Query{From: "March 10"})
	if !errors.Is(err, domain.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange for unparseable date, got %v", err)
	}
}

func TestPerEmployeeOrdersByPayable(t *testing.T) {
	f := newReportFixture(t)
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	low := f.seedEmployee(t, f.tenantID, "Low Earner")
	high := f.seedEmployee(t, f.tenantID, "High Earner")
	f.seedRecord(t, f.tenantID, low, workrecorddomain.StatusApproved, 5, 5000, day)
	f.seedRecord(t, f.tenantID, high, workrecorddomain.StatusApproved, 10, 50000, day)
	f.seedRecord(t, f.tenantID, high, workrecorddomain.StatusRejected, 4, 8000, day)

	rows, err := f.svc.PerEmployee(f.ctx(), domain.Query{})
	if err != nil {
		t.Fatalf("per employee: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].EmployeeName != "High Earner" {
		t.Fatalf("expected High Earner first, got %s", rows[0].EmployeeName)
	}
	if !rows[0].PayableTotal.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("expected payable 50000 excluding rejected, got %s", rows[0].PayableTotal)
	}
	if rows[0].RecordCount != 2 {
		t.Fatalf("expected both records counted, got %d", rows[0].RecordCount)
	}
}

func TestDailyGroupsByWorkDate(t *testing.T) {
	f := newReportFixture(t)
	employeeID := f.seedEmployee(t, f.tenantID, "Dilnoza")
	day1 := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	f.seedRecord(t, f.tenantID, employeeID, workrecorddomain.StatusApproved, 3, 6000, day1)
	f.seedRecord(t, f.tenantID, employeeID, workrecorddomain.StatusApproved, 4, 8000, day2)
	f.seedRecord(t, f.tenantID, employeeID, workrecorddomain.StatusPending, 2, 4000, day2)

	rows, err := f.svc.Daily(f.ctx(), domain.Query{})
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 days, got %d", len(rows))
	}
	if rows[0].WorkDate != "2026-03-09" || rows[1].WorkDate != "2026-03-10" {
		t.Fatalf("expected ascending dates, got %s then %s", rows[0].WorkDate, rows[1].WorkDate)
	}
	if rows[1].RecordCount != 2 || !rows[1].PayableTotal.Equal(decimal.NewFromInt(8000)) {
		t.Fatalf("unexpected second day aggregate: %+v", rows[1])
	}
}

func TestDashboardCounters(t *testing.T) {
	f := newReportFixture(t)
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	employeeID := f.seedEmployee(t, f.tenantID, "Dilnoza")
	f.seedRecord(t, f.tenantID, employeeID, workrecorddomain.StatusPending, 2, 4000, today)
	approvedID := f.seedRecord(t, f.tenantID, employeeID, workrecorddomain.StatusApproved, 6, 12000, today)

	trail := &auditdomain.AuditLog{
		ID:         f.node.Generate(),
		TenantID:   f.tenantID,
		ActorID:    f.node.Generate(),
		Action:     auditdomain.ActionApprove,
		EntityType: "work_record",
		EntityID:   approvedID,
		CreatedAt:  f.clk.Now(),
	}
	if err := f.db.Create(trail).Error; err != nil {
		t.Fatalf("seed trail: %v", err)
	}

	dashboard, err := f.svc.Dashboard(f.ctx())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dashboard.PendingCount != 1 {
		t.Fatalf("expected 1 pending, got %d", dashboard.PendingCount)
	}
	if dashboard.ApprovedToday != 1 || dashboard.RejectedToday != 0 {
		t.Fatalf("unexpected transition counts: %+v", dashboard)
	}
	if dashboard.QuantityToday != 6 || !dashboard.PaymentToday.Equal(decimal.NewFromInt(12000)) {
		t.Fatalf("expected approved-only today figures, got %+v", dashboard)
	}
	if len(dashboard.TopPerformers) != 1 || dashboard.TopPerformers[0].EmployeeName != "Dilnoza" {
		t.Fatalf("unexpected top performers: %+v", dashboard.TopPerformers)
	}
	if len(dashboard.RecentActivity) != 1 || dashboard.RecentActivity[0].Action != auditdomain.ActionApprove {
		t.Fatalf("unexpected recent activity: %+v", dashboard.RecentActivity)
	}
}

func TestReportsRequireTenant(t *testing.T) {
	f := newReportFixture(t)

	if _, err := f.svc.Summary(context.Background(), domain.Query{}); !errors.Is(err, domain.ErrNoTenantContext) {
		t.Fatalf("expected ErrNoTenantContext, got %v", err)
	}
	if _, err := f.svc.Dashboard(context.Background()); !errors.Is(err, domain.ErrNoTenantContext) {
		t.Fatalf("expected ErrNoTenantContext, got %v", err)
	}
}
