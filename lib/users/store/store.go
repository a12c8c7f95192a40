package usersstore

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"hr-timesheet-backend/models"
	dbmodels "hr-timesheet-backend/models/db"
)

type Provider interface {
	Create(rec dbmodels.TimesheetUser) (id string, err error)
	GetByID(id string) (rec *dbmodels.TimesheetUser, err error)
	FindByEmail(email string) (rec *dbmodels.TimesheetUser, err error)
	Update(id string, updMap map[string]interface{}) error
	List(filter Filter) (list []dbmodels.TimesheetUser, err error)
	ListCount(filter Filter) (rowCount int64, err error)
}

type Filter struct {
	Role     models.UserRole
	IsActive *bool
	Search   string
	Offset   int
	Limit    int
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.TimesheetUser) (id string, err error) {
	err = rec.Validate()
	if err != nil {
		return "", err
	}
	err = i.db.
		Omit(clause.Associations).
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(id string) (*dbmodels.TimesheetUser, error) {
	rec := dbmodels.TimesheetUser{}
	err := i.db.
		Preload("Supervisor").
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

func (i impl) FindByEmail(email string) (*dbmodels.TimesheetUser, error) {
	rec := dbmodels.TimesheetUser{}
	err := i.db.
		Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))).
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

func (i impl) Update(id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	err := i.db.
		Model(&dbmodels.TimesheetUser{}).
		Where("id = ?", id).
		Updates(updMap).
		Error
	if err != nil {
		return err
	}
	return nil
}

func (i impl) List(filter Filter) (list []dbmodels.TimesheetUser, err error) {
	list = []dbmodels.TimesheetUser{}
	tx := i.applyFilter(i.db.Model(&dbmodels.TimesheetUser{}), filter).
		Preload("Supervisor").
		Order("name")
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
	err = i.applyFilter(i.db.Model(&dbmodels.TimesheetUser{}), filter).
		Count(&rowCount).
		Error
	if err != nil {
		return 0, err
	}
	return rowCount, nil
}

func (i impl) applyFilter(tx *gorm.DB, filter Filter) *gorm.DB {
	if filter.Role != "" {
		tx = tx.Where("role = ?", filter.Role)
	}
	if filter.IsActive != nil {
		tx = tx.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		tx = tx.Where("(lower(name) like ? OR lower(email) like ?)", search, search)
	}
	return tx
}
