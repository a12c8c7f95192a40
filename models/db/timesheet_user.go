package dbmodels

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"hr-timesheet-backend/models"
)

type TimesheetUser struct {
	BaseModel
	Email        string          `gorm:"type:varchar(255);uniqueIndex"`
	Name         string          `gorm:"type:varchar(255)"`
	Role         models.UserRole `gorm:"type:varchar(20);index"`
	CompanyName  string          `gorm:"type:varchar(255)"`
	Department   string          `gorm:"type:varchar(255)"`
	Phone        string          `gorm:"type:varchar(50)"`
	Password     string          `gorm:"type:varchar(255)"`
	SupervisorID *string         `gorm:"type:varchar(36)"`
	Supervisor   *TimesheetUser  `gorm:"foreignKey:SupervisorID"`
	IsActive     bool
	LastLogin    *time.Time
}

func (r TimesheetUser) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return errors.New("отсутсвует почта пользователя")
	}
	if !r.Role.IsValid() {
		return errors.Errorf("некорректная роль пользователя: %v", r.Role)
	}
	return nil
}
