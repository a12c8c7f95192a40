package entrystore

import (
	"gorm.io/gorm"
	dbmodels "hr-timesheet-backend/models/db"
)

type Provider interface {
	// ReplaceForTimesheet удаляет прежние строки табеля и сохраняет новые
	ReplaceForTimesheet(timesheetID string, entries []dbmodels.TimesheetEntry) error
	ListByTimesheet(timesheetID string) (list []dbmodels.TimesheetEntry, err error)
	DeleteByTimesheet(timesheetID string) error
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) ReplaceForTimesheet(timesheetID string, entries []dbmodels.TimesheetEntry) error {
	err := i.DeleteByTimesheet(timesheetID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	for idx := range entries {
		entries[idx].TimesheetID = timesheetID
	}
	return i.db.
		Create(&entries).
		Error
}

func (i impl) ListByTimesheet(timesheetID string) (list []dbmodels.TimesheetEntry, err error) {
	list = []dbmodels.TimesheetEntry{}
	err = i.db.
		Where("timesheet_id = ?", timesheetID).
		Order("date").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) DeleteByTimesheet(timesheetID string) error {
	return i.db.
		Where("timesheet_id = ?", timesheetID).
		Delete(&dbmodels.TimesheetEntry{}).
		Error
}
