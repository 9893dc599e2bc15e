// Package seed provisions a small demo workshop for evaluation
// environments. It is idempotent: an existing demo tenant short
// circuits the whole routine.
package seed

import (
	"time"

	"github.com/bwmarrin/snowflake"
	employeedomain "github.com/sewtrack/sewtrack/internal/employee/domain"
	productdomain "github.com/sewtrack/sewtrack/internal/product/domain"
	ratecarddomain "github.com/sewtrack/sewtrack/internal/ratecard/domain"
	taskdomain "github.com/sewtrack/sewtrack/internal/task/domain"
	tenantdomain "github.com/sewtrack/sewtrack/internal/tenant/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const demoSlug = "demo-workshop"

// Fixed actor IDs so the demo can be driven with predictable
// X-Actor-ID headers.
const (
	demoOwnerActor  snowflake.ID = 1001
	demoMasterActor snowflake.ID = 1002
	demoWorkerActor snowflake.ID = 1003
)

func EnsureDemoWorkshop(db *gorm.DB, genID *snowflake.Node) error {
	var existing tenantdomain.Tenant
	if err := db.Raw(`SELECT * FROM tenants WHERE slug = ?`, demoSlug).Scan(&existing).Error; err != nil {
		return err
	}
	if existing.ID != 0 {
		return nil
	}

	now := time.Now().UTC()

	return db.Transaction(func(tx *gorm.DB) error {
		tenant := tenantdomain.Tenant{
			ID:          genID.Generate(),
			Name:        "Demo Workshop",
			Slug:        demoSlug,
			OwnerID:     demoOwnerActor,
			Email:       "demo@sewtrack.local",
			Settings:    map[string]interface{}{"demo": true},
			Active:      true,
			ActivatedAt: &now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Create(&tenant).Error; err != nil {
			return err
		}

		memberships := []tenantdomain.Membership{
			{ID: genID.Generate(), TenantID: tenant.ID, ActorID: demoOwnerActor, Role: tenantdomain.RoleOwner, Active: true, JoinedAt: now},
			{ID: genID.Generate(), TenantID: tenant.ID, ActorID: demoMasterActor, Role: tenantdomain.RoleMaster, Active: true, JoinedAt: now},
		}
		if err := tx.Create(&memberships).Error; err != nil {
			return err
		}

		employees := []employeedomain.Employee{
			{
				ID:             genID.Generate(),
				TenantID:       tenant.ID,
				ActorID:        demoMasterActor,
				FullName:       "Dilnoza Karimova",
				Position:       employeedomain.PositionMaster,
				EmploymentType: employeedomain.EmploymentFullTime,
				Active:         true,
				HiredAt:        now.AddDate(-1, 0, 0),
				CreatedAt:      now,
				UpdatedAt:      now,
			},
			{
				ID:             genID.Generate(),
				TenantID:       tenant.ID,
				ActorID:        demoWorkerActor,
				FullName:       "Aziz Rahimov",
				Position:       employeedomain.PositionWorker,
				EmploymentType: employeedomain.EmploymentFullTime,
				Active:         true,
				HiredAt:        now.AddDate(0, -6, 0),
				CreatedAt:      now,
				UpdatedAt:      now,
			},
		}
		if err := tx.Create(&employees).Error; err != nil {
			return err
		}

		product := productdomain.Product{
			ID:          genID.Generate(),
			TenantID:    tenant.ID,
			ArticleCode: "SHIRT-001",
			Name:        "Classic Shirt",
			Category:    productdomain.CategoryMens,
			Active:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Create(&product).Error; err != nil {
			return err
		}

		tasks := []taskdomain.Task{
			{ID: genID.Generate(), TenantID: tenant.ID, Code: "CUT-01", Name: "Cutting", Category: taskdomain.CategoryCutting, SequenceOrder: 10, Active: true, CreatedAt: now, UpdatedAt: now},
			{ID: genID.Generate(), TenantID: tenant.ID, Code: "SEW-01", Name: "Sewing", Category: taskdomain.CategorySewing, SequenceOrder: 20, Active: true, CreatedAt: now, UpdatedAt: now},
			{ID: genID.Generate(), TenantID: tenant.ID, Code: "IRN-01", Name: "Ironing", Category: taskdomain.CategoryIroning, SequenceOrder: 30, Active: true, CreatedAt: now, UpdatedAt: now},
		}
		if err := tx.Create(&tasks).Error; err != nil {
			return err
		}

		rates := []struct {
			task    taskdomain.Task
			base    string
			premium string
			minutes int
		}{
			{tasks[0], "2000", "2500", 8},
			{tasks[1], "5000", "6500", 25},
			{tasks[2], "1500", "1500", 5},
		}
		for _, rate := range rates {
			base, _ := decimal.NewFromString(rate.base)
			premium, _ := decimal.NewFromString(rate.premium)
			entry := ratecarddomain.ProductTask{
				ID:               genID.Generate(),
				TenantID:         tenant.ID,
				ProductID:        product.ID,
				TaskID:           rate.task.ID,
				BasePrice:        base,
				PremiumPrice:     premium,
				DefaultTier:      ratecarddomain.TierBase,
				EstimatedMinutes: rate.minutes,
				Active:           true,
				CreatedAt:        now,
				UpdatedAt:        now,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
