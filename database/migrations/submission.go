package migrations

import (
	"formulier.link/configs/configslog"
	"formulier.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateSubmissionsTables(db *gorm.DB) error {
	configslog.SLog.Info("Migrating submissions, submission_payments & submission_reports tables...")
	err := db.AutoMigrate(&models.Submission{}, &models.SubmissionPayment{}, &models.SubmissionReport{})
	if err != nil {
		configslog.Log.Error("Failed to migrate submissions tables", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Submissions tables migrated successfully")
	return nil
}
