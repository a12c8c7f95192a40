package timesheetapimodels

import (
	"strings"
	"time"

	"hr-timesheet-backend/models"
	apimodels "hr-timesheet-backend/models/api"
	dbmodels "hr-timesheet-backend/models/db"
)

type EntryData struct {
	Date         string  `json:"date" validate:"required,datetime=2006-01-02"` // дата в формате 2006-01-02
	StartTime    string  `json:"start_time" validate:"omitempty,datetime=15:04"`
	EndTime      string  `json:"end_time" validate:"omitempty,datetime=15:04"`
	BreakHours   float64 `json:"break_hours" validate:"gte=0,lte=24"`
	HoursWorked  float64 `json:"hours_worked" validate:"gte=0,lte=24"`
	Description  string  `json:"description"`
	Location     string  `json:"location"`
}

type TimesheetData struct {
	ID                  string            `json:"id"` // ИД существующего черновика или отклоненного табеля
	ProjectID           *string           `json:"project_id"`
	PeriodStart         string            `json:"period_start" validate:"required,datetime=2006-01-02"`
	PeriodType          models.PeriodType `json:"period_type" validate:"required,oneof=weekly monthly"`
	RateType            models.RateType   `json:"rate_type" validate:"required,oneof=hourly daily"`
	Currency            string            `json:"currency" validate:"omitempty,len=3"`
	WorkDescription     string            `json:"work_description"`
	Location            string            `json:"location"`
	CompanyName         string            `json:"company_name"`
	Department          string            `json:"department"`
	JobTitle            string            `json:"job_title"`
	SupervisorName      string            `json:"supervisor_name"`
	SupervisorEmail     string            `json:"supervisor_email" validate:"omitempty,email"`
	AdditionalEmails    string            `json:"additional_emails"` // через запятую
	ContractorSignature string            `json:"contractor_signature"`
	Entries             []EntryData       `json:"entries" validate:"dive"`
	// итоги клиента не используются, пересчитываются на сервере
	TotalHours float64 `json:"total_hours"`
	TotalDays  int     `json:"total_days"`
}

// ValidateDraft проверка формы черновика: только формат полей
func (r TimesheetData) ValidateDraft() error {
	if err := apimodels.ValidateStruct(r); err != nil {
		return err
	}
	for _, email := range dbmodels.SplitEmails(r.AdditionalEmails) {
		if !apimodels.ValidateVar(email, "email") {
			return models.NewValidationErrorf("некорректная почта для уведомлений: %v", email)
		}
	}
	return nil
}

// ValidateSubmit проверка перед отправкой на согласование.
// signedElsewhere: подпись уже есть вне формы (подписанный PDF или сохраненная подпись)
func (r TimesheetData) ValidateSubmit(signedElsewhere bool) error {
	if err := r.ValidateDraft(); err != nil {
		return err
	}
	required := []struct {
		value string
		name  string
	}{
		{r.SupervisorName, "ФИО руководителя"},
		{r.SupervisorEmail, "почта руководителя"},
		{r.CompanyName, "компания"},
		{r.Department, "подразделение"},
		{r.JobTitle, "должность"},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return models.NewValidationErrorf("не заполнено обязательное поле: %v", field.name)
		}
	}
	if strings.TrimSpace(r.ContractorSignature) == "" && !signedElsewhere {
		return models.NewValidationError("необходимо подписать табель или приложить подписанный PDF")
	}
	if len(r.Entries) == 0 {
		return models.NewValidationError("табель не содержит ни одного рабочего дня")
	}
	return nil
}

func (r TimesheetData) GetPeriodStart() (time.Time, error) {
	periodStart, err := time.Parse(models.DateLayout, r.PeriodStart)
	if err != nil {
		return time.Time{}, models.NewValidationError("некорректная дата начала периода")
	}
	return periodStart, nil
}

type ApproveRequest struct {
	SupervisorSignature string `json:"supervisor_signature"`
	ApproverName        string `json:"approver_name"`
	Comment             string `json:"comment"`
}

// Validate для согласования по ссылке подпись обязательна
func (r ApproveRequest) Validate(signatureRequired bool) error {
	if signatureRequired && strings.TrimSpace(r.SupervisorSignature) == "" {
		return models.NewValidationError("для согласования необходима подпись руководителя")
	}
	return nil
}

type RejectRequest struct {
	Reason       string `json:"reason"`
	RejectorName string `json:"rejector_name"`
	Comment      string `json:"comment"`
}

func (r RejectRequest) Validate() error {
	if strings.TrimSpace(r.Reason) == "" {
		return models.NewValidationError("не указана причина отклонения")
	}
	return nil
}

type TimesheetFilter struct {
	apimodels.Pagination
	Status       models.TimesheetStatus `json:"status" query:"status"`
	PeriodFrom   string                 `json:"period_from" query:"period_from"`
	PeriodTo     string                 `json:"period_to" query:"period_to"`
	ContractorID string                 `json:"contractor_id" query:"contractor_id"`
}

func (r TimesheetFilter) Validate() error {
	if r.Status != "" && !r.Status.IsValid() {
		return models.NewValidationErrorf("неизвестный статус: %v", r.Status)
	}
	if r.PeriodFrom != "" && !apimodels.ValidateVar(r.PeriodFrom, "datetime=2006-01-02") {
		return models.NewValidationError("некорректная дата period_from")
	}
	if r.PeriodTo != "" && !apimodels.ValidateVar(r.PeriodTo, "datetime=2006-01-02") {
		return models.NewValidationError("некорректная дата period_to")
	}
	return nil
}
