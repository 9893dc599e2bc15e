package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditrepository "github.com/sewtrack/sewtrack/internal/audit/repository"
	auditservice "github.com/sewtrack/sewtrack/internal/audit/service"
	"github.com/sewtrack/sewtrack/internal/clock"
	"github.com/sewtrack/sewtrack/internal/config"
	employeedomain "github.com/sewtrack/sewtrack/internal/employee/domain"
	employeerepository "github.com/sewtrack/sewtrack/internal/employee/repository"
	productdomain "github.com/sewtrack/sewtrack/internal/product/domain"
	productrepository "github.com/sewtrack/sewtrack/internal/product/repository"
	ratecarddomain "github.com/sewtrack/sewtrack/internal/ratecard/domain"
	ratecardrepository "github.com/sewtrack/sewtrack/internal/ratecard/repository"
	ratecardservice "github.com/sewtrack/sewtrack/internal/ratecard/service"
	taskdomain "github.com/sewtrack/sewtrack/internal/task/domain"
	taskrepository "github.com/sewtrack/sewtrack/internal/task/repository"
	"github.com/sewtrack/sewtrack/internal/tenantctx"
	"github.com/sewtrack/sewtrack/internal/workrecord/domain"
	"github.com/sewtrack/sewtrack/internal/workrecord/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc       domain.Service
	rateCards ratecarddomain.Service
	db        *gorm.DB
	node      *snowflake.Node
	clk       *clock.FakeClock
	tenantID  snowflake.ID

	workerActor snowflake.ID
	masterActor snowflake.ID
	worker      *employeedomain.Employee
	master      *employeedomain.Employee

	productID snowflake.ID
	taskID    snowflake.ID
	entryID   string
}

func newFixture(t *testing.T) *fixture {
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
	_ = db.Exec("PRAGMA busy_timeout = 5000").Error
	prepareLedgerSchema(t, db)

	clk := clock.NewFakeClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))

	rateCardSvc := ratecardservice.New(ratecardservice.Params{
		DB:       db,
		Log:      zap.NewNop(),
		Clock:    clk,
		GenID:    node,
		Repo:     ratecardrepository.Provide(),
		Products: productrepository.Provide(),
		Tasks:    taskrepository.Provide(),
	})
	auditSvc := auditservice.New(auditservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clk,
		GenID: node,
		Repo:  auditrepository.Provide(),
	})

	f := &fixture{
		rateCards:   rateCardSvc,
		db:          db,
		node:        node,
		clk:         clk,
		tenantID:    node.Generate(),
		workerActor: node.Generate(),
		masterActor: node.Generate(),
		productID:   node.Generate(),
		taskID:      node.Generate(),
	}

	f.svc = New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		Clock:     clk,
		GenID:     node,
		Repo:      repository.Provide(),
		RateCard:  rateCardSvc,
		Employees: employeerepository.Provide(),
		Audit:     auditSvc,
		Workflow:  config.NewStaticWorkflowConfigHolder(config.DefaultWorkflowConfig()),
	})

	f.worker = f.seedEmployee(t, f.workerActor, employeedomain.PositionWorker)
	f.master = f.seedEmployee(t, f.masterActor, employeedomain.PositionMaster)
	f.seedCatalog(t)

	entry, err := rateCardSvc.Link(f.ctx(f.workerActor), ratecarddomain.LinkRequest{
		ProductID:    f.productID.String(),
		TaskID:       f.taskID.String(),
		BasePrice:    "2000",
		PremiumPrice: "2500",
	})
	if err != nil {
		t.Fatalf("seed rate card: %v", err)
	}
	f.entryID = entry.ID

	return f
}

func (f *fixture) seedCatalog(t *testing.T) {
	t.Helper()
	if err := f.db.Create(&productdomain.Product{
		ID:          f.productID,
		TenantID:    f.tenantID,
		ArticleCode: "ART-" + f.productID.String(),
		Name:        "Shirt",
		Category:    productdomain.CategoryOther,
		Active:      true,
		CreatedAt:   f.clk.Now(),
		UpdatedAt:   f.clk.Now(),
	}).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if err := f.db.Create(&taskdomain.Task{
		ID:        f.taskID,
		TenantID:  f.tenantID,
		Code:      "OP-" + f.taskID.String(),
		Name:      "Collar stitch",
		Category:  taskdomain.CategorySewing,
		Active:    true,
		CreatedAt: f.clk.Now(),
		UpdatedAt: f.clk.Now(),
	}).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}
}

func (f *fixture) ctx(actorID snowflake.ID) context.Context {
	ctx := tenantctx.WithTenantID(context.Background(), int64(f.tenantID))
	return tenantctx.WithActorID(ctx, int64(actorID))
}

func (f *fixture) seedEmployee(t *testing.T, actorID snowflake.ID, position string) *employeedomain.Employee {
	t.Helper()
	employee := &employeedomain.Employee{
		ID:             f.node.Generate(),
		TenantID:       f.tenantID,
		ActorID:        actorID,
		FullName:       "Test " + position,
		Position:       position,
		EmploymentType: employeedomain.EmploymentFullTime,
		Active:         true,
		HiredAt:        f.clk.Now(),
		CreatedAt:      f.clk.Now(),
		UpdatedAt:      f.clk.Now(),
	}
	if err := f.db.Create(employee).Error; err != nil {
		t.Fatalf("seed employee: %v", err)
	}
	return employee
}

func (f *fixture) submit(t *testing.T, quantity int) *domain.Response {
	t.Helper()
	resp, err := f.svc.Submit(f.ctx(f.workerActor), domain.SubmitRequest{
		ProductID: f.productID.String(),
		TaskID:    f.taskID.String(),
		Quantity:  quantity,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return resp
}

func prepareLedgerSchema(t *testing.T, db *gorm.DB) {
	t.Helper()
	stmts := []string{
		`CREATE TABLE product_tasks (
			id BIGINT PRIMARY KEY,
			tenant_id BIGINT NOT NULL,
			product_id BIGINT NOT NULL,
			task_id BIGINT NOT NULL,
			base_price NUMERIC NOT NULL,
			premium_price NUMERIC NOT NULL,
			default_tier TEXT NOT NULL DEFAULT 'base',
			estimated_minutes INTEGER NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at DATETIME,
			updated_at DATETIME,
			UNIQUE (tenant_id, product_id, task_id)
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
		`CREATE TABLE products (
			id BIGINT PRIMARY KEY,
			tenant_id BIGINT NOT NULL,
			article_code TEXT NOT NULL,
			name TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT 'other',
			description TEXT,
			metadata TEXT,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at DATETIME,
			updated_at DATETIME,
			UNIQUE (tenant_id, article_code)
		)`,
		`CREATE TABLE tasks (
			id BIGINT PRIMARY KEY,
			tenant_id BIGINT NOT NULL,
			code TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			category TEXT NOT NULL DEFAULT 'sewing',
			sequence_order INTEGER NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at DATETIME,
			updated_at DATETIME,
			UNIQUE (tenant_id, code)
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
}

func TestSubmitSnapshotsPriceAndTotal(t *testing.T) {
	f := newFixture(t)

	resp := f.submit(t, 12)

	if resp.Status != domain.StatusPending {
		t.Fatalf("expected PENDING, got %s", resp.Status)
	}
	if resp.Tier != ratecarddomain.TierBase {
		t.Fatalf("expected base tier applied, got %s", resp.Tier)
	}
	if !resp.PricePerUnit.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("expected snapshotted price 2000, got %s", resp.PricePerUnit)
	}
	if !resp.TotalPayment.Equal(decimal.NewFromInt(24000)) {
		t.Fatalf("expected total 24000, got %s", resp.TotalPayment)
	}
	if resp.EmployeeID != f.worker.ID.String() {
		t.Fatalf("expected worker employee, got %s", resp.EmployeeID)
	}
	if resp.WorkDate != "2026-03-10" {
		t.Fatalf("expected work date defaulted to today, got %s", resp.WorkDate)
	}
}

func TestRecordKeepsSnapshotAfterRateCardEdit(t *testing.T) {
	f := newFixture(t)
	record := f.submit(t, 12)

	// Raising the rate afterwards must not touch records already written.
	newBase := "3500"
	newPremium := "4000"
	if _, err := f.rateCards.Update(f.ctx(f.masterActor), ratecarddomain.UpdateRequest{
		ID:           f.entryID,
		BasePrice:    &newBase,
		PremiumPrice: &newPremium,
	}); err != nil {
		t.Fatalf("update rate card: %v", err)
	}

	if _, err := f.svc.Approve(f.ctx(f.masterActor), record.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	got, err := f.svc.Get(f.ctx(f.workerActor), record.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.StatusApproved {
		t.Fatalf("expected APPROVED, got %s", got.Status)
	}
	if !got.PricePerUnit.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("expected snapshotted price 2000 to survive the edit, got %s", got.PricePerUnit)
	}
	if !got.TotalPayment.Equal(decimal.NewFromInt(24000)) {
		t.Fatalf("expected total 24000 to survive the edit, got %s", got.TotalPayment)
	}

	// New submissions pick up the edited rate.
	fresh := f.submit(t, 1)
	if !fresh.PricePerUnit.Equal(decimal.NewFromInt(3500)) {
		t.Fatalf("expected fresh submission at 3500, got %s", fresh.PricePerUnit)
	}
}

func TestSubmitRejectsInvalidQuantity(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Submit(f.ctx(f.workerActor), domain.SubmitRequest{
		ProductID: f.productID.String(),
		TaskID:    f.taskID.String(),
		Quantity:  0,
	})
	if !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestSubmitWithoutEmployeeProfile(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Submit(f.ctx(f.node.Generate()), domain.SubmitRequest{
		ProductID: f.productID.String(),
		TaskID:    f.taskID.String(),
		Quantity:  1,
	})
	if !errors.Is(err, domain.ErrNoEmployee) {
		t.Fatalf("expected ErrNoEmployee, got %v", err)
	}
}

func TestSubmitForEmployeeInAnotherTenant(t *testing.T) {
	f := newFixture(t)

	other := &employeedomain.Employee{
		ID:             f.node.Generate(),
		TenantID:       f.node.Generate(),
		ActorID:        f.node.Generate(),
		FullName:       "Elsewhere",
		Position:       employeedomain.PositionWorker,
		EmploymentType: employeedomain.EmploymentFullTime,
		Active:         true,
		HiredAt:        f.clk.Now(),
	}
	if err := f.db.Create(other).Error; err != nil {
		t.Fatalf("seed foreign employee: %v", err)
	}

	_, err := f.svc.Submit(f.ctx(f.workerActor), domain.SubmitRequest{
		EmployeeID: other.ID.String(),
		ProductID:  f.productID.String(),
		TaskID:     f.taskID.String(),
		Quantity:   1,
	})
	if !errors.Is(err, domain.ErrCrossTenantReference) {
		t.Fatalf("expected ErrCrossTenantReference, got %v", err)
	}
}

func TestSubmitWithoutRateCard(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Submit(f.ctx(f.workerActor), domain.SubmitRequest{
		ProductID: f.node.Generate().String(),
		TaskID:    f.taskID.String(),
		Quantity:  1,
	})
	if !errors.Is(err, ratecarddomain.ErrNoRateCard) {
		t.Fatalf("expected ErrNoRateCard, got %v", err)
	}
}

func TestUpdateWhilePendingRecomputesTotal(t *testing.T) {
	f := newFixture(t)
	record := f.submit(t, 5)

	quantity := 8
	updated, err := f.svc.UpdateWhilePending(f.ctx(f.workerActor), domain.UpdateRequest{
		ID:       record.ID,
		Quantity: &quantity,
	})
	if err != nil {
		t.Fatalf("update pending: %v", err)
	}
	if !updated.TotalPayment.Equal(decimal.NewFromInt(16000)) {
		t.Fatalf("expected recomputed total 16000, got %s", updated.TotalPayment)
	}
}

func TestUpdateAfterApprovalFails(t *testing.T) {
	f := newFixture(t)
	record := f.submit(t, 5)

	if _, err := f.svc.Approve(f.ctx(f.masterActor), record.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	quantity := 9
	_, err := f.svc.UpdateWhilePending(f.ctx(f.workerActor), domain.UpdateRequest{
		ID:       record.ID,
		Quantity: &quantity,
	})
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestDeleteWhilePendingOnly(t *testing.T) {
	f := newFixture(t)
	record := f.submit(t, 3)

	if err := f.svc.DeleteWhilePending(f.ctx(f.workerActor), record.ID); err != nil {
		t.Fatalf("delete pending: %v", err)
	}
	if _, err := f.svc.Get(f.ctx(f.workerActor), record.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	record = f.submit(t, 3)
	if _, err := f.svc.Approve(f.ctx(f.masterActor), record.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := f.svc.DeleteWhilePending(f.ctx(f.workerActor), record.ID); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState deleting approved record, got %v", err)
	}
}

func TestListScopedToTenant(t *testing.T) {
	f := newFixture(t)
	f.submit(t, 1)
	f.submit(t, 2)

	// A record in another tenant must never show up.
	foreign := &domain.WorkRecord{
		ID:           f.node.Generate(),
		TenantID:     f.node.Generate(),
		EmployeeID:   f.node.Generate(),
		ProductID:    f.productID,
		TaskID:       f.taskID,
		Quantity:     7,
		Tier:         ratecarddomain.TierBase,
		PricePerUnit: decimal.NewFromInt(2000),
		TotalPayment: decimal.NewFromInt(14000),
		Status:       domain.StatusPending,
		WorkDate:     f.clk.Now(),
		SubmittedBy:  f.workerActor,
		CreatedAt:    f.clk.Now(),
		UpdatedAt:    f.clk.Now(),
	}
	if err := f.db.Create(foreign).Error; err != nil {
		t.Fatalf("seed foreign record: %v", err)
	}

	items, err := f.svc.List(f.ctx(f.workerActor), domain.ListRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 records, got %d", len(items))
	}
	for _, item := range items {
		if item.TenantID != f.tenantID.String() {
			t.Fatalf("foreign tenant record leaked: %s", item.ID)
		}
	}
}
