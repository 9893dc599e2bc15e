package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sewtrack/sewtrack/internal/clock"
	productdomain "github.com/sewtrack/sewtrack/internal/product/domain"
	"github.com/sewtrack/sewtrack/internal/ratecard/domain"
	taskdomain "github.com/sewtrack/sewtrack/internal/task/domain"
	"github.com/sewtrack/sewtrack/internal/tenantctx"
	"github.com/sewtrack/sewtrack/pkg/db"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const resolveCacheTTL = 30 * time.Second

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	GenID    *snowflake.Node
	Repo     domain.Repository
	Products productdomain.Repository
	Tasks    taskdomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	genID    *snowflake.Node
	repo     domain.Repository
	products productdomain.Repository
	tasks    taskdomain.Repository
	cache    *resolveCache
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("ratecard.service"),
		clock:    p.Clock,
		genID:    p.GenID,
		repo:     p.Repo,
		products: p.Products,
		tasks:    p.Tasks,
		cache:    newResolveCache(resolveCacheTTL),
	}
}

func (s *Service) Link(ctx context.Context, req domain.LinkRequest) (*domain.Response, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrNoTenantContext
	}

	productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	taskID, err := snowflake.ParseString(strings.TrimSpace(req.TaskID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	// Both sides of the pair must come from the tenant's own catalog. A
	// scoped lookup miss covers foreign and nonexistent IDs alike.
	product, err := s.products.FindByID(ctx, s.db, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrCrossTenantReference
	}
	task, err := s.tasks.FindByID(ctx, s.db, tenantID, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrCrossTenantReference
	}

	basePrice, premiumPrice, err := parsePrices(req.BasePrice, req.PremiumPrice)
	if err != nil {
		return nil, err
	}

	defaultTier := strings.TrimSpace(req.DefaultTier)
	if defaultTier == "" {
		defaultTier = domain.TierBase
	}
	if !domain.ValidTier(defaultTier) {
		return nil, domain.ErrInvalidTier
	}
	if req.EstimatedMinutes < 0 {
		return nil, domain.ErrInvalidPricing
	}

	now := s.clock.Now()
	entry := &domain.ProductTask{
		ID:               s.genID.Generate(),
		TenantID:         tenantID,
		ProductID:        productID,
		TaskID:           taskID,
		BasePrice:        basePrice,
		PremiumPrice:     premiumPrice,
		DefaultTier:      defaultTier,
		EstimatedMinutes: req.EstimatedMinutes,
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, s.db, entry); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateLink
		}
		return nil, err
	}

	s.cache.invalidateTenant(tenantID)
	resp := s.toResponse(entry)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	entry, err := s.tenantEntry(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.BasePrice != nil {
		price, err := parsePrice(*req.BasePrice)
		if err != nil {
			return nil, err
		}
		entry.BasePrice = price
	}
	if req.PremiumPrice != nil {
		price, err := parsePrice(*req.PremiumPrice)
		if err != nil {
			return nil, err
		}
		entry.PremiumPrice = price
	}
	if entry.PremiumPrice.LessThan(entry.BasePrice) {
		return nil, domain.ErrInvalidPricing
	}
	if req.DefaultTier != nil {
		if !domain.ValidTier(*req.DefaultTier) {
			return nil, domain.ErrInvalidTier
		}
		entry.DefaultTier = *req.DefaultTier
	}
	if req.EstimatedMinutes != nil {
		if *req.EstimatedMinutes < 0 {
			return nil, domain.ErrInvalidPricing
		}
		entry.EstimatedMinutes = *req.EstimatedMinutes
	}
	if req.Active != nil {
		entry.Active = *req.Active
	}

	entry.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, entry); err != nil {
		return nil, err
	}

	s.cache.invalidateTenant(entry.TenantID)
	resp := s.toResponse(entry)
	return &resp, nil
}

func (s *Service) Unlink(ctx context.Context, id string) error {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.ErrNoTenantContext
	}

	entryID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.ErrInvalidID
	}

	affected, err := s.repo.Delete(ctx, s.db, tenantID, entryID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	s.cache.invalidateTenant(tenantID)
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	entry, err := s.tenantEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(entry)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrNoTenantContext
	}

	filter := domain.ListFilter{Active: req.Active}
	if req.ProductID != "" {
		productID, err := snowflake.ParseString(req.ProductID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		filter.ProductID = productID
	}
	if req.TaskID != "" {
		taskID, err := snowflake.ParseString(req.TaskID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		filter.TaskID = taskID
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

func (s *Service) Resolve(ctx context.Context, productID, taskID snowflake.ID, tier string) (*domain.ResolvedPrice, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrNoTenantContext
	}
	if tier != "" && !domain.ValidTier(tier) {
		return nil, domain.ErrInvalidTier
	}

	key := cacheKey{tenantID: tenantID, productID: productID, taskID: taskID}
	now := s.clock.Now()

	entry, hit := s.cache.get(key, now)
	if !hit {
		found, err := s.repo.FindByPair(ctx, s.db, tenantID, productID, taskID)
		if err != nil {
			return nil, err
		}
		if found == nil || !found.Active {
			return nil, domain.ErrNoRateCard
		}
		s.cache.put(key, *found, now)
		entry = found
	}

	applied := tier
	if applied == "" {
		applied = entry.DefaultTier
	}
	price, err := entry.PriceFor(applied)
	if err != nil {
		return nil, err
	}

	return &domain.ResolvedPrice{
		EntryID:      entry.ID,
		ProductID:    entry.ProductID,
		TaskID:       entry.TaskID,
		Tier:         applied,
		PricePerUnit: price,
	}, nil
}

func (s *Service) tenantEntry(ctx context.Context, id string) (*domain.ProductTask, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrNoTenantContext
	}

	entryID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	entry, err := s.repo.FindByID(ctx, s.db, tenantID, entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.ErrNotFound
	}
	return entry, nil
}

func (s *Service) toResponse(entry *domain.ProductTask) domain.Response {
	return domain.Response{
		ID:               entry.ID.String(),
		TenantID:         entry.TenantID.String(),
		ProductID:        entry.ProductID.String(),
		TaskID:           entry.TaskID.String(),
		BasePrice:        entry.BasePrice,
		PremiumPrice:     entry.PremiumPrice,
		DefaultTier:      entry.DefaultTier,
		EstimatedMinutes: entry.EstimatedMinutes,
		Active:           entry.Active,
		CreatedAt:        entry.CreatedAt,
		UpdatedAt:        entry.UpdatedAt,
	}
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || price.IsNegative() {
		return decimal.Zero, domain.ErrInvalidPricing
	}
	return price, nil
}

func parsePrices(base, premium string) (decimal.Decimal, decimal.Decimal, error) {
	basePrice, err := parsePrice(base)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	premiumPrice := basePrice
	if strings.TrimSpace(premium) != "" {
		premiumPrice, err = parsePrice(premium)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
	}
	if premiumPrice.LessThan(basePrice) {
		return decimal.Zero, decimal.Zero, domain.ErrInvalidPricing
	}
	return basePrice, premiumPrice, nil
}
