package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

const (
	TierBase    = "base"
	TierPremium = "premium"
)

func ValidTier(tier string) bool {
	switch tier {
	case TierBase, TierPremium:
		return true
	}
	return false
}

// ProductTask is a rate card entry: it links a task to a product and
// carries the piece rates for both pricing tiers. A product may carry
// each task at most once.
type ProductTask struct {
	ID               snowflake.ID    `gorm:"primaryKey" json:"id"`
	TenantID         snowflake.ID    `gorm:"index;index:ux_product_task,priority:1,unique" json:"tenant_id"`
	ProductID        snowflake.ID    `gorm:"index:ux_product_task,priority:2,unique" json:"product_id"`
	TaskID           snowflake.ID    `gorm:"index:ux_product_task,priority:3,unique" json:"task_id"`
	BasePrice        decimal.Decimal `gorm:"type:decimal(12,2)" json:"base_price"`
	PremiumPrice     decimal.Decimal `gorm:"type:decimal(12,2)" json:"premium_price"`
	DefaultTier      string          `gorm:"size:16;default:base" json:"default_tier"`
	EstimatedMinutes int             `json:"estimated_minutes"`
	Active           bool            `gorm:"default:true" json:"active"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (ProductTask) TableName() string {
	return "product_tasks"
}

// PriceFor returns the piece rate for the given tier, falling back to
// the entry's default tier when tier is empty.
func (pt *ProductTask) PriceFor(tier string) (decimal.Decimal, error) {
	if tier == "" {
		tier = pt.DefaultTier
	}
	switch tier {
	case TierBase:
		return pt.BasePrice, nil
	case TierPremium:
		return pt.PremiumPrice, nil
	}
	return decimal.Zero, ErrInvalidTier
}
