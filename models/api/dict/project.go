package dictapimodels

import (
	apimodels "hr-timesheet-backend/models/api"
	dbmodels "hr-timesheet-backend/models/db"
)

type ProjectData struct {
	Name        string `json:"name" validate:"required,max=255"`
	ClientName  string `json:"client_name" validate:"max=255"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

func (r ProjectData) Validate() error {
	return apimodels.ValidateStruct(r)
}

type ProjectFind struct {
	Name       string `json:"name" query:"name"`
	OnlyActive bool   `json:"only_active" query:"only_active"`
}

type ProjectView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ClientName  string `json:"client_name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

func ProjectConvert(rec dbmodels.Project) ProjectView {
	return ProjectView{
		ID:          rec.ID,
		Name:        rec.Name,
		ClientName:  rec.ClientName,
		Description: rec.Description,
		IsActive:    rec.IsActive,
	}
}
