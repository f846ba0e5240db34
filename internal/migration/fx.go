package migration

import (
	activitydomain "github.com/dealdesk/dealdesk/internal/activity/domain"
	catalogdomain "github.com/dealdesk/dealdesk/internal/catalog/domain"
	"github.com/dealdesk/dealdesk/internal/config"
	customerdomain "github.com/dealdesk/dealdesk/internal/customer/domain"
	proposaldomain "github.com/dealdesk/dealdesk/internal/proposal/domain"
	taskdomain "github.com/dealdesk/dealdesk/internal/task/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}

		return AutoMigrate(conn)
	}),
)

// AutoMigrate creates the schema from the gorm models. Used for sqlite
// installs and in-memory test databases.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&customerdomain.Customer{},
		&catalogdomain.Product{},
		&proposaldomain.Proposal{},
		&proposaldomain.LineItem{},
		&proposaldomain.EngineeringEntry{},
		&proposaldomain.ExpenseEntry{},
		&proposaldomain.CustomTax{},
		&taskdomain.Task{},
		&activitydomain.Activity{},
	)
}
