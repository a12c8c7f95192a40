package timesheetstore

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"hr-timesheet-backend/models"
	dbmodels "hr-timesheet-backend/models/db"
)

type Provider interface {
	Create(rec dbmodels.Timesheet) (id string, err error)
	GetByID(id string) (rec *dbmodels.Timesheet, err error)
	GetByToken(token string) (rec *dbmodels.Timesheet, err error)
	// SupersedeToken сохраняет токен прошлой отправки перед выпуском нового
	SupersedeToken(timesheetID, token string, at time.Time) error
	// GetBySupersededToken табель, которому принадлежал замененный токен
	GetBySupersededToken(token string) (rec *dbmodels.Timesheet, err error)
	Update(id string, updMap map[string]interface{}) error
	// UpdateWithStatus применяет изменения, только если текущий статус один из expected.
	// changed=false означает, что статус уже другой (запись обработана параллельно)
	UpdateWithStatus(id string, expected []models.TimesheetStatus, updMap map[string]interface{}) (changed bool, err error)
	Delete(id string) error
	List(filter Filter) (list []dbmodels.Timesheet, err error)
	ListCount(filter Filter) (rowCount int64, err error)
}

type Filter struct {
	ContractorID string
	Status       models.TimesheetStatus
	// очередь руководителя: все табели на согласовании и табели, где он указан руководителем
	SupervisorQueue bool
	SupervisorEmail string
	PeriodFrom      *time.Time
	PeriodTo        *time.Time
	Offset          int
	Limit           int
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.Timesheet) (id string, err error) {
	err = i.db.
		Omit(clause.Associations).
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(id string) (*dbmodels.Timesheet, error) {
	rec := dbmodels.Timesheet{}
	err := i.withRelations(i.db).
		Where("id = ?", id).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) GetByToken(token string) (*dbmodels.Timesheet, error) {
	if token == "" {
		return nil, nil
	}
	rec := dbmodels.Timesheet{}
	err := i.withRelations(i.db).
		Where("approval_token = ?", token).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) SupersedeToken(timesheetID, token string, at time.Time) error {
	if token == "" {
		return nil
	}
	rec := dbmodels.TimesheetApprovalToken{
		Token:        token,
		TimesheetID:  timesheetID,
		SupersededAt: at,
	}
	return i.db.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rec).
		Error
}

func (i impl) GetBySupersededToken(token string) (*dbmodels.Timesheet, error) {
	if token == "" {
		return nil, nil
	}
	row := dbmodels.TimesheetApprovalToken{}
	err := i.db.
		Where("token = ?", token).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return i.GetByID(row.TimesheetID)
}

func (i impl) Update(id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	err := i.db.
		Model(&dbmodels.Timesheet{}).
		Where("id = ?", id).
		Updates(updMap).
		Error
	if err != nil {
		return err
	}
	return nil
}

func (i impl) UpdateWithStatus(id string, expected []models.TimesheetStatus, updMap map[string]interface{}) (bool, error) {
	if len(updMap) == 0 || len(expected) == 0 {
		return false, nil
	}
	tx := i.db.
		Model(&dbmodels.Timesheet{}).
		Where("id = ?", id).
		Where("status IN ?", expected).
		Updates(updMap)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected != 0, nil
}

func (i impl) Delete(id string) error {
	err := i.db.
		Where("id = ?", id).
		Delete(&dbmodels.Timesheet{}).
		Error
	if err != nil {
		return err
	}
	return nil
}

func (i impl) List(filter Filter) (list []dbmodels.Timesheet, err error) {
	list = []dbmodels.Timesheet{}
	tx := i.applyFilter(i.db.Model(&dbmodels.Timesheet{}), filter).
		Preload("Contractor").
		Order("period_start desc").
		Order("created_at desc")
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit).Offset(filter.Offset)
	}
	err = tx.Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) ListCount(filter Filter) (rowCount int64, err error) {
	err = i.applyFilter(i.db.Model(&dbmodels.Timesheet{}), filter).
		Count(&rowCount).
		Error
	if err != nil {
		return 0, err
	}
	return rowCount, nil
}

func (i impl) applyFilter(tx *gorm.DB, filter Filter) *gorm.DB {
	if filter.ContractorID != "" {
		tx = tx.Where("contractor_id = ?", filter.ContractorID)
	}
	if filter.SupervisorQueue {
		if filter.SupervisorEmail != "" {
			tx = tx.Where("(status = ? OR lower(supervisor_email) = lower(?))", models.TimesheetStatusSubmitted, filter.SupervisorEmail)
		} else {
			tx = tx.Where("status = ?", models.TimesheetStatusSubmitted)
		}
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", filter.Status)
	}
	if filter.PeriodFrom != nil {
		tx = tx.Where("period_start >= ?", *filter.PeriodFrom)
	}
	if filter.PeriodTo != nil {
		tx = tx.Where("period_start <= ?", *filter.PeriodTo)
	}
	return tx
}

func (i impl) withRelations(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Contractor").
		Preload("Approver").
		Preload("Project").
		Preload("Entries", func(db *gorm.DB) *gorm.DB {
			return db.Order("date")
		})
}
