package authapimodels

import (
	"strings"

	"hr-timesheet-backend/models"
	apimodels "hr-timesheet-backend/models/api"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	if !apimodels.ValidateVar(r.Email, "required,email") {
		return models.NewValidationError("почта имеет неправильный формат")
	}
	if r.Password == "" {
		return models.NewValidationError("не указан пароль")
	}
	return nil
}

// RegisterRequest самостоятельная регистрация подрядчика
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
	Department  string `json:"department"`
	Phone       string `json:"phone"`
}

func (r RegisterRequest) Validate() error {
	if !apimodels.ValidateVar(r.Email, "required,email") {
		return models.NewValidationError("почта имеет неправильный формат")
	}
	if len(r.Password) < 8 {
		return models.NewValidationError("пароль должен содержать не менее 8 символов")
	}
	if strings.TrimSpace(r.Name) == "" {
		return models.NewValidationError("не указано имя")
	}
	return nil
}
