package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/sewtrack/sewtrack/internal/clock"
	"github.com/sewtrack/sewtrack/internal/employee/domain"
	"github.com/sewtrack/sewtrack/internal/employee/repository"
	"github.com/sewtrack/sewtrack/internal/tenantctx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupEmployeeService(t *testing.T) (domain.Service, *snowflake.Node, *clock.FakeClock) {
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

	if err := db.Exec(`CREATE TABLE employees (
		id BIGINT PRIMARY KEY,
		tenant_id BIGINT NOT NULL,
		actor_id BIGINT NOT NULL UNIQUE,
		full_name TEXT NOT NULL,
		phone TEXT,
		position TEXT NOT NULL DEFAULT 'worker',
		employment_type TEXT NOT NULL DEFAULT 'full_time',
		hourly_rate NUMERIC NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL DEFAULT true,
		hired_at DATETIME,
		terminated_at DATETIME,
		notes TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`).Error; err != nil {
		t.Fatalf("create employees: %v", err)
	}

	clk := clock.NewFakeClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clk,
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, node, clk
}

func employeeContext(tenantID, actorID snowflake.ID) context.Context {
	ctx := tenantctx.WithTenantID(context.Background(), int64(tenantID))
	return tenantctx.WithActorID(ctx, int64(actorID))
}

func TestCreateDefaultsPositionAndHireDate(t *testing.T) {
	svc, node, clk := setupEmployeeService(t)
	ctx := employeeContext(node.Generate(), node.Generate())

	resp, err := svc.Create(ctx, domain.CreateRequest{
		ActorID:  node.Generate().String(),
		FullName: "Dilnoza Karimova",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if resp.Position != domain.PositionWorker {
		t.Fatalf("expected default position worker, got %s", resp.Position)
	}
	if resp.EmploymentType != domain.EmploymentFullTime {
		t.Fatalf("expected default full_time, got %s", resp.EmploymentType)
	}
	if !resp.HiredAt.Equal(clk.Now()) {
		t.Fatalf("expected hire date to default to now, got %s", resp.HiredAt)
	}
	if !resp.Active {
		t.Fatal("expected new employee active")
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc, node, _ := setupEmployeeService(t)
	ctx := employeeContext(node.Generate(), node.Generate())

	if _, err := svc.Create(ctx, domain.CreateRequest{ActorID: "nope", FullName: "X"}); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreateRequest{ActorID: node.Generate().String(), FullName: "  "}); !errors.Is(err, domain.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreateRequest{ActorID: node.Generate().String(), FullName: "X", Position: "janitor"}); !errors.Is(err, domain.ErrInvalidPosition) {
		t.Fatalf("expected ErrInvalidPosition, got %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreateRequest{ActorID: node.Generate().String(), FullName: "X", HiredAt: "March 1"}); !errors.Is(err, domain.ErrInvalidHireDate) {
		t.Fatalf("expected ErrInvalidHireDate, got %v", err)
	}
	negative := "-5"
	if _, err := svc.Create(ctx, domain.CreateRequest{ActorID: node.Generate().String(), FullName: "X", HourlyRate: &negative}); !errors.Is(err, domain.ErrInvalidRate) {
		t.Fatalf("expected ErrInvalidRate, got %v", err)
	}
}

func TestCreateDuplicateActor(t *testing.T) {
	svc, node, _ := setupEmployeeService(t)
	ctx := employeeContext(node.Generate(), node.Generate())
	actor := node.Generate().String()

	if _, err := svc.Create(ctx, domain.CreateRequest{ActorID: actor, FullName: "First"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreateRequest{ActorID: actor, FullName: "Second"}); !errors.Is(err, domain.ErrActorAlreadyEmployee) {
		t.Fatalf("expected ErrActorAlreadyEmployee, got %v", err)
	}
}

func TestCurrentFindsOwnProfile(t *testing.T) {
	svc, node, _ := setupEmployeeService(t)
	tenantID := node.Generate()
	actorID := node.Generate()
	ctx := employeeContext(tenantID, actorID)

	if _, err := svc.Current(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before create, got %v", err)
	}

	created, err := svc.Create(ctx, domain.CreateRequest{ActorID: actorID.String(), FullName: "Self"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	current, err := svc.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current.ID != created.ID {
		t.Fatalf("expected own profile %s, got %s", created.ID, current.ID)
	}
}

func TestListFiltersActiveAndPosition(t *testing.T) {
	svc, node, _ := setupEmployeeService(t)
	ctx := employeeContext(node.Generate(), node.Generate())

	worker, err := svc.Create(ctx, domain.CreateRequest{ActorID: node.Generate().String(), FullName: "Worker"})
	if err != nil {
		t.Fatalf("create worker: %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreateRequest{
		ActorID:  node.Generate().String(),
		FullName: "Master",
		Position: domain.PositionMaster,
	}); err != nil {
		t.Fatalf("create master: %v", err)
	}
	if _, err := svc.Deactivate(ctx, worker.ID, nil); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	active := true
	items, err := svc.List(ctx, domain.ListRequest{Active: &active})
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(items) != 1 || items[0].Position != domain.PositionMaster {
		t.Fatalf("expected only the active master, got %+v", items)
	}

	items, err = svc.List(ctx, domain.ListRequest{Position: domain.PositionWorker})
	if err != nil {
		t.Fatalf("list workers: %v", err)
	}
	if len(items) != 1 || items[0].ID != worker.ID {
		t.Fatalf("expected the worker, got %+v", items)
	}
}

func TestDeactivateAndRehire(t *testing.T) {
	svc, node, clk := setupEmployeeService(t)
	ctx := employeeContext(node.Generate(), node.Generate())

	created, err := svc.Create(ctx, domain.CreateRequest{ActorID: node.Generate().String(), FullName: "Seasonal"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	termination := clk.Now().Add(-24 * time.Hour)
	deactivated, err := svc.Deactivate(ctx, created.ID, &termination)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if deactivated.Active {
		t.Fatal("expected inactive after termination")
	}
	if deactivated.TerminatedAt == nil || !deactivated.TerminatedAt.Equal(termination) {
		t.Fatalf("expected explicit termination date, got %v", deactivated.TerminatedAt)
	}

	rehired, err := svc.Activate(ctx, created.ID)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !rehired.Active || rehired.TerminatedAt != nil {
		t.Fatalf("expected rehire to clear termination, got %+v", rehired)
	}
}

func TestGetFromAnotherTenant(t *testing.T) {
	svc, node, _ := setupEmployeeService(t)
	ctx := employeeContext(node.Generate(), node.Generate())

	created, err := svc.Create(ctx, domain.CreateRequest{ActorID: node.Generate().String(), FullName: "Hidden"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	foreignCtx := employeeContext(node.Generate(), node.Generate())
	if _, err := svc.Get(foreignCtx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound across tenants, got %v", err)
	}
}
