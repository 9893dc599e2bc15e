package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Product categories.
const (
	CategoryMens        = "mens"
	CategoryWomens      = "womens"
	CategoryKids        = "kids"
	CategoryAccessories = "accessories"
	CategoryOther       = "other"
)

// Product is a tenant-scoped catalog item identified by its article code.
type Product struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	TenantID    snowflake.ID      `gorm:"not null;index:ux_products_tenant_code,priority:1,unique" json:"tenant_id"`
	ArticleCode string            `gorm:"column:article_code;type:text;not null;index:ux_products_tenant_code,priority:2,unique" json:"article_code"`
	Name        string            `gorm:"type:text;not null" json:"name"`
	Category    string            `gorm:"type:text;not null;default:'other'" json:"category"`
	Description string            `gorm:"type:text" json:"description"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	Active      bool              `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Product) TableName() string { return "products" }

func ValidCategory(category string) bool {
	switch category {
	case CategoryMens, CategoryWomens, CategoryKids, CategoryAccessories, CategoryOther:
		return true
	default:
		return false
	}
}
