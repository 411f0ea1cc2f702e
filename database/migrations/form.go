package migrations

import (
	"formulier.link/configs/configslog"
	"formulier.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateFormsTables(db *gorm.DB) error {
	configslog.SLog.Info("Migrating forms, form_definitions & form_steps tables...")
	err := db.AutoMigrate(&models.FormDefinition{}, &models.Form{}, &models.FormStep{})
	if err != nil {
		configslog.Log.Error("Failed to migrate forms tables", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Forms tables migrated successfully")
	return nil
}

func MigrateFormVersionsTable(db *gorm.DB) error {
	configslog.SLog.Info("Migrating form_versions table...")
	err := db.AutoMigrate(&models.FormVersion{})
	if err != nil {
		configslog.Log.Error("Failed to migrate form_versions table", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Form_versions table migrated successfully")
	return nil
}
