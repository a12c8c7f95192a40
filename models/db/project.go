package dbmodels

import (
	"strings"

	"github.com/pkg/errors"
)

type Project struct {
	BaseModel
	Name        string `gorm:"type:varchar(255);uniqueIndex"`
	ClientName  string `gorm:"type:varchar(255)"`
	Description string `gorm:"type:text"`
	IsActive    bool
}

func (r Project) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("отсутсвует наименование проекта")
	}
	return nil
}
