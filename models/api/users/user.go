package usersapimodels

import (
	"strings"
	"time"

	"hr-timesheet-backend/models"
	apimodels "hr-timesheet-backend/models/api"
	dbmodels "hr-timesheet-backend/models/db"
)

type UserData struct {
	Email        string          `json:"email" validate:"required,email"`
	Name         string          `json:"name" validate:"required"`
	Role         models.UserRole `json:"role" validate:"required,oneof=contractor supervisor admin"`
	CompanyName  string          `json:"company_name"`
	Department   string          `json:"department"`
	Phone        string          `json:"phone"`
	SupervisorID *string         `json:"supervisor_id"`
	Password     string          `json:"password"` // при обновлении пустой пароль не меняется
}

func (r UserData) Validate() error {
	return apimodels.ValidateStruct(r)
}

// ValidateCreate при создании пароль обязателен
func (r UserData) ValidateCreate() error {
	if err := r.Validate(); err != nil {
		return err
	}
	if len(r.Password) < 8 {
		return models.NewValidationError("пароль должен содержать не менее 8 символов")
	}
	return nil
}

type UserFilter struct {
	apimodels.Pagination
	Role     models.UserRole `json:"role" query:"role"`
	IsActive *bool           `json:"is_active" query:"is_active"`
	Search   string          `json:"search" query:"search"`
}

func (r UserFilter) Validate() error {
	if r.Role != "" && !r.Role.IsValid() {
		return models.NewValidationErrorf("неизвестная роль: %v", r.Role)
	}
	return nil
}

type UserView struct {
	ID             string          `json:"id"`
	Email          string          `json:"email"`
	Name           string          `json:"name"`
	Role           models.UserRole `json:"role"`
	RoleName       string          `json:"role_name"`
	CompanyName    string          `json:"company_name"`
	Department     string          `json:"department"`
	Phone          string          `json:"phone"`
	SupervisorID   *string         `json:"supervisor_id"`
	SupervisorName string          `json:"supervisor_name,omitempty"`
	IsActive       bool            `json:"is_active"`
	LastLogin      *time.Time      `json:"last_login"`
	CreatedAt      time.Time       `json:"created_at"`
}

func UserConvert(rec dbmodels.TimesheetUser) UserView {
	result := UserView{
		ID:           rec.ID,
		Email:        rec.Email,
		Name:         rec.Name,
		Role:         rec.Role,
		RoleName:     rec.Role.ToHuman(),
		CompanyName:  rec.CompanyName,
		Department:   rec.Department,
		Phone:        rec.Phone,
		SupervisorID: rec.SupervisorID,
		IsActive:     rec.IsActive,
		LastLogin:    rec.LastLogin,
		CreatedAt:    rec.CreatedAt,
	}
	if rec.Supervisor != nil {
		result.SupervisorName = rec.Supervisor.Name
	}
	return result
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
