package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"buildhub/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "29082026_create_marketplace_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.User{}, &models.LayoutSend{},
					&models.EstimateDraft{}, &models.Estimate{})
			},
		},
		{
			ID: "29082026_backfill_estimate_status",
			Migrate: func(tx *gorm.DB) error {
				// Rows written before the status column carried a
				// default stay visible to the homeowner workflow.
				return tx.Exec("UPDATE estimates SET status = 'pending' WHERE status IS NULL OR status = ''").Error
			},
		},
	})
	return m.Migrate()
}
