// Package seed populates a fresh install with a small demo catalog so the
// app is usable before any import.
package seed

import (
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/dealdesk/dealdesk/internal/catalog/domain"
	"github.com/dealdesk/dealdesk/internal/config"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("seed",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger, genID *snowflake.Node) error {
		if !cfg.SeedDemoData {
			return nil
		}
		return EnsureDemoCatalog(conn, log, genID)
	}),
)

// EnsureDemoCatalog inserts demo products when the catalog is empty.
func EnsureDemoCatalog(conn *gorm.DB, log *zap.Logger, genID *snowflake.Node) error {
	var count int64
	if err := conn.Model(&catalogdomain.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	products := []catalogdomain.Product{
		{Code: "SRV-BASE", Name: "Base Server", Category: "Hardware", ListPrice: decimal.NewFromInt(4200), PartnerPrice: decimal.NewFromInt(3100)},
		{Code: "LIC-STD", Name: "Standard License", Category: "Software", ListPrice: decimal.NewFromInt(950), PartnerPrice: decimal.NewFromInt(600)},
		{Code: "LIC-ENT", Name: "Enterprise License", Category: "Software", ListPrice: decimal.NewFromInt(2400), PartnerPrice: decimal.NewFromInt(1500)},
		{Code: "SUP-1Y", Name: "Support, 1 Year", Category: "Services", ListPrice: decimal.NewFromInt(1200), PartnerPrice: decimal.NewFromInt(800)},
	}
	for i := range products {
		products[i].ID = genID.Generate().Int64()
		products[i].Active = true
		products[i].CreatedAt = now
		products[i].UpdatedAt = now
	}

	if err := conn.Create(&products).Error; err != nil {
		return err
	}

	log.Info("seeded demo catalog", zap.Int("products", len(products)))
	return nil
}
