package db

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	dbmodels "hr-timesheet-backend/models/db"
)

func AutoMigrateDB() error {
	log.Info("Запуск миграций")
	if err := DB.AutoMigrate(&dbmodels.TimesheetUser{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры TimesheetUser")
	}
	if err := DB.AutoMigrate(&dbmodels.Project{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры Project")
	}
	if err := DB.AutoMigrate(&dbmodels.Timesheet{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры Timesheet")
	}
	if err := DB.AutoMigrate(&dbmodels.TimesheetEntry{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры TimesheetEntry")
	}
	if err := DB.AutoMigrate(&dbmodels.TimesheetApprovalToken{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры TimesheetApprovalToken")
	}
	log.Info("Миграция прошла успешно")
	return nil
}
