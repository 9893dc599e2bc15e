package migration

import (
	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/sewtrack/sewtrack/internal/audit/domain"
	"github.com/sewtrack/sewtrack/internal/config"
	employeedomain "github.com/sewtrack/sewtrack/internal/employee/domain"
	productdomain "github.com/sewtrack/sewtrack/internal/product/domain"
	ratecarddomain "github.com/sewtrack/sewtrack/internal/ratecard/domain"
	"github.com/sewtrack/sewtrack/internal/seed"
	taskdomain "github.com/sewtrack/sewtrack/internal/task/domain"
	tenantdomain "github.com/sewtrack/sewtrack/internal/tenant/domain"
	workrecorddomain "github.com/sewtrack/sewtrack/internal/workrecord/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger, genID *snowflake.Node) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			version, err := RunMigrations(sqlDB)
			if err != nil {
				return err
			}
			log.Info("schema migrated", zap.Uint("version", version))
		} else {
			// mysql and sqlite setups derive their schema from the
			// models directly.
			if err := conn.AutoMigrate(
				&tenantdomain.Tenant{},
				&tenantdomain.Membership{},
				&employeedomain.Employee{},
				&productdomain.Product{},
				&taskdomain.Task{},
				&ratecarddomain.ProductTask{},
				&workrecorddomain.WorkRecord{},
				&auditdomain.AuditLog{},
			); err != nil {
				return err
			}
		}

		if cfg.SeedDemoData {
			return seed.EnsureDemoWorkshop(conn, genID)
		}
		return nil
	}),
)
