package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/sewtrack/sewtrack/internal/audit/domain"
	"github.com/sewtrack/sewtrack/internal/clock"
	"github.com/sewtrack/sewtrack/internal/tenantctx"
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
		log:   p.Log.Named("audit.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

// Record appends one trail entry. Failures are logged but do not fail
// the caller's transition: the conditional update is the source of
// truth, the trail is derived.
func (s *Service) Record(ctx context.Context, entry domain.Entry) error {
	row := &domain.AuditLog{
		ID:         s.genID.Generate(),
		TenantID:   entry.TenantID,
		ActorID:    entry.ActorID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		BatchRef:   entry.BatchRef,
		Detail:     entry.Detail,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.repo.Append(ctx, s.db, row); err != nil {
		s.log.Error("append audit entry",
			zap.String("action", entry.Action),
			zap.Int64("entity_id", int64(entry.EntityID)),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrNoTenantContext
	}

	filter := domain.ListFilter{
		Action:   strings.TrimSpace(req.Action),
		BatchRef: strings.TrimSpace(req.BatchRef),
		Limit:    req.Limit,
	}
	if req.EntityID != "" {
		entityID, err := snowflake.ParseString(req.EntityID)
		if err != nil {
			return nil, domain.ErrInvalidCursor
		}
		filter.EntityID = entityID
	}
	if req.Cursor != "" {
		cursor, err := snowflake.ParseString(req.Cursor)
		if err != nil {
			return nil, domain.ErrInvalidCursor
		}
		filter.Cursor = cursor
	}

	items, err := s.repo.List(ctx, s.db, tenantID, filter)
	if err != nil {
		return nil, err
	}

	resp := &domain.ListResponse{Items: make([]domain.Response, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, domain.Response{
			ID:         item.ID.String(),
			TenantID:   item.TenantID.String(),
			ActorID:    item.ActorID.String(),
			Action:     item.Action,
			EntityType: item.EntityType,
			EntityID:   item.EntityID.String(),
			BatchRef:   item.BatchRef,
			Detail:     item.Detail,
			CreatedAt:  item.CreatedAt,
		})
	}
	if len(items) > 0 && len(items) == filterLimit(filter.Limit) {
		resp.NextCursor = items[len(items)-1].ID.String()
	}
	return resp, nil
}

func filterLimit(limit int) int {
	if limit <= 0 || limit > 200 {
		return 50
	}
	return limit
}
