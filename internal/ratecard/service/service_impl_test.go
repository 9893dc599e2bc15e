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
	productdomain "github.com/sewtrack/sewtrack/internal/product/domain"
	productrepository "github.com/sewtrack/sewtrack/internal/product/repository"
	"github.com/sewtrack/sewtrack/internal/ratecard/domain"
	"github.com/sewtrack/sewtrack/internal/ratecard/repository"
	taskdomain "github.com/sewtrack/sewtrack/internal/task/domain"
	taskrepository "github.com/sewtrack/sewtrack/internal/task/repository"
	"github.com/sewtrack/sewtrack/internal/tenantctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return node
}

func setupRateCardService(t *testing.T, node *snowflake.Node, clk clock.Clock) (domain.Service, *gorm.DB) {
	t.Helper()

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
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("prepare schema: %v", err)
		}
	}

	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		Clock:    clk,
		GenID:    node,
		Repo:     repository.Provide(),
		Products: productrepository.Provide(),
		Tasks:    taskrepository.Provide(),
	})
	return svc, db
}

func tenantContext(tenantID snowflake.ID) context.Context {
	return tenantctx.WithTenantID(context.Background(), int64(tenantID))
}

// seedCatalogPair puts one product and one task into the tenant's
// catalog and returns their IDs.
func seedCatalogPair(t *testing.T, db *gorm.DB, node *snowflake.Node, tenantID snowflake.ID) (snowflake.ID, snowflake.ID) {
	t.Helper()
	productID := node.Generate()
	taskID := node.Generate()
	if err := db.Create(&productdomain.Product{
		ID:          productID,
		TenantID:    tenantID,
		ArticleCode: "ART-" + productID.String(),
		Name:        "Shirt",
		Category:    productdomain.CategoryOther,
		Active:      true,
	}).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if err := db.Create(&taskdomain.Task{
		ID:       taskID,
		TenantID: tenantID,
		Code:     "OP-" + taskID.String(),
		Name:     "Collar stitch",
		Category: taskdomain.CategorySewing,
		Active:   true,
	}).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}
	return productID, taskID
}

func TestLinkDefaultsPremiumToBase(t *testing.T) {
	node := mustNode(t)
	svc, db := setupRateCardService(t, node, clock.NewFakeClock(time.Now()))
	tenantID := node.Generate()
	ctx := tenantContext(tenantID)
	productID, taskID := seedCatalogPair(t, db, node, tenantID)

	resp, err := svc.Link(ctx, domain.LinkRequest{
		ProductID: productID.String(),
		TaskID:    taskID.String(),
		BasePrice: "2000",
	})
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if !resp.PremiumPrice.Equal(resp.BasePrice) {
		t.Fatalf("expected premium to default to base, got %s vs %s", resp.PremiumPrice, resp.BasePrice)
	}
	if resp.DefaultTier != domain.TierBase {
		t.Fatalf("expected default tier base, got %s", resp.DefaultTier)
	}
}

func TestLinkRejectsPremiumBelowBase(t *testing.T) {
	node := mustNode(t)
	svc, db := setupRateCardService(t, node, clock.NewFakeClock(time.Now()))
	tenantID := node.Generate()
	ctx := tenantContext(tenantID)
	productID, taskID := seedCatalogPair(t, db, node, tenantID)

	_, err := svc.Link(ctx, domain.LinkRequest{
		ProductID:    productID.String(),
		TaskID:       taskID.String(),
		BasePrice:    "2000",
		PremiumPrice: "1500",
	})
	if !errors.Is(err, domain.ErrInvalidPricing) {
		t.Fatalf("expected ErrInvalidPricing, got %v", err)
	}
}

func TestLinkRejectsUnknownCatalogIDs(t *testing.T) {
	node := mustNode(t)
	svc, _ := setupRateCardService(t, node, clock.NewFakeClock(time.Now()))
	ctx := tenantContext(node.Generate())

	_, err := svc.Link(ctx, domain.LinkRequest{
		ProductID: node.Generate().String(),
		TaskID:    node.Generate().String(),
		BasePrice: "1000",
	})
	if !errors.Is(err, domain.ErrCrossTenantReference) {
		t.Fatalf("expected ErrCrossTenantReference for unknown catalog ids, got %v", err)
	}
}

func TestLinkRejectsForeignCatalogPair(t *testing.T) {
	node := mustNode(t)
	svc, db := setupRateCardService(t, node, clock.NewFakeClock(time.Now()))
	tenantID := node.Generate()
	otherTenant := node.Generate()
	foreignProduct, foreignTask := seedCatalogPair(t, db, node, otherTenant)
	ownProduct, _ := seedCatalogPair(t, db, node, tenantID)
	ctx := tenantContext(tenantID)

	_, err := svc.Link(ctx, domain.LinkRequest{
		ProductID: foreignProduct.String(),
		TaskID:    foreignTask.String(),
		BasePrice: "1000",
	})
	if !errors.Is(err, domain.ErrCrossTenantReference) {
		t.Fatalf("expected ErrCrossTenantReference for foreign pair, got %v", err)
	}

	// A mixed pair is just as invalid: own product, foreign task.
	_, err = svc.Link(ctx, domain.LinkRequest{
		ProductID: ownProduct.String(),
		TaskID:    foreignTask.String(),
		BasePrice: "1000",
	})
	if !errors.Is(err, domain.ErrCrossTenantReference) {
		t.Fatalf("expected ErrCrossTenantReference for foreign task, got %v", err)
	}
}

func TestLinkDuplicatePair(t *testing.T) {
	node := mustNode(t)
	svc, db := setupRateCardService(t, node, clock.NewFakeClock(time.Now()))
	tenantID := node.Generate()
	ctx := tenantContext(tenantID)
	productID, taskID := seedCatalogPair(t, db, node, tenantID)

	req := domain.LinkRequest{
		ProductID: productID.String(),
		TaskID:    taskID.String(),
		BasePrice: "1000",
	}
	if _, err := svc.Link(ctx, req); err != nil {
		t.Fatalf("first link: %v", err)
	}
	if _, err := svc.Link(ctx, req); !errors.Is(err, domain.ErrDuplicateLink) {
		t.Fatalf("expected ErrDuplicateLink, got %v", err)
	}
}

func TestResolveAppliesDefaultAndExplicitTier(t *testing.T) {
	node := mustNode(t)
	svc, db := setupRateCardService(t, node, clock.NewFakeClock(time.Now()))
	tenantID := node.Generate()
	ctx := tenantContext(tenantID)
	productID, taskID := seedCatalogPair(t, db, node, tenantID)

	if _, err := svc.Link(ctx, domain.LinkRequest{
		ProductID:    productID.String(),
		TaskID:       taskID.String(),
		BasePrice:    "2000",
		PremiumPrice: "2500",
	}); err != nil {
		t.Fatalf("link: %v", err)
	}

	resolved, err := svc.Resolve(ctx, productID, taskID, "")
	if err != nil {
		t.Fatalf("resolve default: %v", err)
	}
	if resolved.Tier != domain.TierBase {
		t.Fatalf("expected applied tier base, got %s", resolved.Tier)
	}
	if !resolved.PricePerUnit.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("expected base price 2000, got %s", resolved.PricePerUnit)
	}

	resolved, err = svc.Resolve(ctx, productID, taskID, domain.TierPremium)
	if err != nil {
		t.Fatalf("resolve premium: %v", err)
	}
	if !resolved.PricePerUnit.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("expected premium price 2500, got %s", resolved.PricePerUnit)
	}
}

func TestResolveMissingOrInactiveEntry(t *testing.T) {
	node := mustNode(t)
	svc, db := setupRateCardService(t, node, clock.NewFakeClock(time.Now()))
	tenantID := node.Generate()
	ctx := tenantContext(tenantID)

	if _, err := svc.Resolve(ctx, node.Generate(), node.Generate(), ""); !errors.Is(err, domain.ErrNoRateCard) {
		t.Fatalf("expected ErrNoRateCard for missing entry, got %v", err)
	}

	productID, taskID := seedCatalogPair(t, db, node, tenantID)
	resp, err := svc.Link(ctx, domain.LinkRequest{
		ProductID: productID.String(),
		TaskID:    taskID.String(),
		BasePrice: "1000",
	})
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	inactive := false
	if _, err := svc.Update(ctx, domain.UpdateRequest{ID: resp.ID, Active: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := svc.Resolve(ctx, productID, taskID, ""); !errors.Is(err, domain.ErrNoRateCard) {
		t.Fatalf("expected ErrNoRateCard for inactive entry, got %v", err)
	}
}

func TestResolveCachesUntilTTL(t *testing.T) {
	node := mustNode(t)
	clk := clock.NewFakeClock(time.Now())
	svc, db := setupRateCardService(t, node, clk)
	tenantID := node.Generate()
	ctx := tenantContext(tenantID)
	productID, taskID := seedCatalogPair(t, db, node, tenantID)

	if _, err := svc.Link(ctx, domain.LinkRequest{
		ProductID: productID.String(),
		TaskID:    taskID.String(),
		BasePrice: "1000",
	}); err != nil {
		t.Fatalf("link: %v", err)
	}
	if _, err := svc.Resolve(ctx, productID, taskID, ""); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	// Change the price behind the service's back; the cached entry keeps
	// serving until the TTL passes.
	if err := db.Exec(`UPDATE product_tasks SET base_price = 9999 WHERE tenant_id = ?`, tenantID).Error; err != nil {
		t.Fatalf("update price: %v", err)
	}

	resolved, err := svc.Resolve(ctx, productID, taskID, "")
	if err != nil {
		t.Fatalf("resolve cached: %v", err)
	}
	if !resolved.PricePerUnit.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected cached price 1000, got %s", resolved.PricePerUnit)
	}

	clk.Advance(resolveCacheTTL + time.Second)
	resolved, err = svc.Resolve(ctx, productID, taskID, "")
	if err != nil {
		t.Fatalf("resolve after ttl: %v", err)
	}
	if !resolved.PricePerUnit.Equal(decimal.NewFromInt(9999)) {
		t.Fatalf("expected refreshed price 9999, got %s", resolved.PricePerUnit)
	}
}

func TestUpdateInvalidatesResolveCache(t *testing.T) {
	node := mustNode(t)
	svc, db := setupRateCardService(t, node, clock.NewFakeClock(time.Now()))
	tenantID := node.Generate()
	ctx := tenantContext(tenantID)
	productID, taskID := seedCatalogPair(t, db, node, tenantID)

	resp, err := svc.Link(ctx, domain.LinkRequest{
		ProductID: productID.String(),
		TaskID:    taskID.String(),
		BasePrice: "1000",
	})
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if _, err := svc.Resolve(ctx, productID, taskID, ""); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	newBase := "1200"
	if _, err := svc.Update(ctx, domain.UpdateRequest{ID: resp.ID, BasePrice: &newBase}); err != nil {
		t.Fatalf("update: %v", err)
	}

	resolved, err := svc.Resolve(ctx, productID, taskID, "")
	if err != nil {
		t.Fatalf("resolve after update: %v", err)
	}
	if !resolved.PricePerUnit.Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("expected updated price 1200, got %s", resolved.PricePerUnit)
	}
}

func TestResolveRequiresTenant(t *testing.T) {
	node := mustNode(t)
	svc, _ := setupRateCardService(t, node, clock.NewFakeClock(time.Now()))

	if _, err := svc.Resolve(context.Background(), node.Generate(), node.Generate(), ""); !errors.Is(err, domain.ErrNoTenantContext) {
		t.Fatalf("expected ErrNoTenantContext, got %v", err)
	}
}
