package timesheetapimodels

import (
	"time"

	"hr-timesheet-backend/models"
	dbmodels "hr-timesheet-backend/models/db"
)

type EntryView struct {
	Date         string  `json:"date"`
	StartTime    string  `json:"start_time,omitempty"`
	EndTime      string  `json:"end_time,omitempty"`
	BreakHours   float64 `json:"break_hours,omitempty"`
	HoursWorked  float64 `json:"hours_worked"`
	Description  string  `json:"description,omitempty"`
	Location     string  `json:"location,omitempty"`
}

type TimesheetView struct {
	ID                  string                 `json:"id"`
	ContractorID        string                 `json:"contractor_id"`
	ContractorName      string                 `json:"contractor_name"`
	ContractorEmail     string                 `json:"contractor_email"`
	ProjectID           *string                `json:"project_id"`
	ProjectName         string                 `json:"project_name,omitempty"`
	PeriodStart         string                 `json:"period_start"`
	PeriodEnd           string                 `json:"period_end"`
	PeriodType          models.PeriodType      `json:"period_type"`
	RateType            models.RateType        `json:"rate_type"`
	TotalHours          float64                `json:"total_hours"`
	TotalDays           int                    `json:"total_days"`
	Currency            string                 `json:"currency,omitempty"`
	WorkDescription     string                 `json:"work_description"`
	Location            string                 `json:"location"`
	CompanyName         string                 `json:"company_name"`
	Department          string                 `json:"department"`
	JobTitle            string                 `json:"job_title"`
	SupervisorName      string                 `json:"supervisor_name"`
	SupervisorEmail     string                 `json:"supervisor_email"`
	AdditionalEmails    string                 `json:"additional_emails"`
	Status              models.TimesheetStatus `json:"status"`
	StatusName          string                 `json:"status_name"`
	ContractorSignature string                 `json:"contractor_signature,omitempty"`
	ContractorSignedAt  *time.Time             `json:"contractor_signed_at"`
	SupervisorSignature string                 `json:"supervisor_signature,omitempty"`
	SupervisorSignedAt  *time.Time             `json:"supervisor_signed_at"`
	SupervisorComment   string                 `json:"supervisor_comment,omitempty"`
	ApproverID          *string                `json:"approver_id"`
	ApproverName        string                 `json:"approver_name,omitempty"`
	SubmittedAt         *time.Time             `json:"submitted_at"`
	ApprovedAt          *time.Time             `json:"approved_at"`
	RejectedAt          *time.Time             `json:"rejected_at"`
	RejectionReason     string                 `json:"rejection_reason,omitempty"`
	HasSignedPdf        bool                   `json:"has_signed_pdf"`
	Entries             []EntryView            `json:"entries"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

// TimesheetShortView строка списка табелей
type TimesheetShortView struct {
	ID              string                 `json:"id"`
	ContractorID    string                 `json:"contractor_id"`
	ContractorName  string                 `json:"contractor_name"`
	PeriodStart     string                 `json:"period_start"`
	PeriodEnd       string                 `json:"period_end"`
	PeriodType      models.PeriodType      `json:"period_type"`
	RateType        models.RateType        `json:"rate_type"`
	TotalHours      float64                `json:"total_hours"`
	TotalDays       int                    `json:"total_days"`
	SupervisorName  string                 `json:"supervisor_name"`
	SupervisorEmail string                 `json:"supervisor_email"`
	Status          models.TimesheetStatus `json:"status"`
	StatusName      string                 `json:"status_name"`
	SubmittedAt     *time.Time             `json:"submitted_at"`
	ApprovedAt      *time.Time             `json:"approved_at"`
	RejectionReason string                 `json:"rejection_reason,omitempty"`
}

func TimesheetConvert(rec dbmodels.Timesheet) TimesheetView {
	result := TimesheetView{
		ID:                  rec.ID,
		ContractorID:        rec.ContractorID,
		ContractorName:      rec.ContractorName(),
		ContractorEmail:     rec.ContractorEmail(),
		ProjectID:           rec.ProjectID,
		PeriodStart:         rec.PeriodStart.Format(models.DateLayout),
		PeriodEnd:           rec.PeriodEnd().Format(models.DateLayout),
		PeriodType:          rec.PeriodType,
		RateType:            rec.RateType,
		TotalHours:          rec.TotalHours,
		TotalDays:           rec.TotalDays,
		Currency:            rec.Currency,
		WorkDescription:     rec.WorkDescription,
		Location:            rec.Location,
		CompanyName:         rec.CompanyName,
		Department:          rec.Department,
		JobTitle:            rec.JobTitle,
		SupervisorName:      rec.SupervisorName,
		SupervisorEmail:     rec.SupervisorEmail,
		AdditionalEmails:    rec.AdditionalEmails,
		Status:              rec.Status,
		StatusName:          rec.Status.ToHuman(),
		ContractorSignature: rec.ContractorSignature,
		ContractorSignedAt:  rec.ContractorSignedAt,
		SupervisorSignature: rec.SupervisorSignature,
		SupervisorSignedAt:  rec.SupervisorSignedAt,
		SupervisorComment:   rec.SupervisorComment,
		ApproverID:          rec.ApproverID,
		ApproverName:        rec.ApproverName,
		SubmittedAt:         rec.SubmittedAt,
		ApprovedAt:          rec.ApprovedAt,
		RejectedAt:          rec.RejectedAt,
		RejectionReason:     rec.RejectionReason,
		HasSignedPdf:        rec.SignedPdfPath != "",
		Entries:             EntriesConvert(rec),
		CreatedAt:           rec.CreatedAt,
		UpdatedAt:           rec.UpdatedAt,
	}
	if rec.Project != nil {
		result.ProjectName = rec.Project.Name
	}
	return result
}

func TimesheetShortConvert(rec dbmodels.Timesheet) TimesheetShortView {
	return TimesheetShortView{
		ID:              rec.ID,
		ContractorID:    rec.ContractorID,
		ContractorName:  rec.ContractorName(),
		PeriodStart:     rec.PeriodStart.Format(models.DateLayout),
		PeriodEnd:       rec.PeriodEnd().Format(models.DateLayout),
		PeriodType:      rec.PeriodType,
		RateType:        rec.RateType,
		TotalHours:      rec.TotalHours,
		TotalDays:       rec.TotalDays,
		SupervisorName:  rec.SupervisorName,
		SupervisorEmail: rec.SupervisorEmail,
		Status:          rec.Status,
		StatusName:      rec.Status.ToHuman(),
		SubmittedAt:     rec.SubmittedAt,
		ApprovedAt:      rec.ApprovedAt,
		RejectionReason: rec.RejectionReason,
	}
}

func EntriesConvert(rec dbmodels.Timesheet) []EntryView {
	result := []EntryView{}
	for _, item := range rec.EntryRows() {
		result = append(result, EntryView{
			Date:         item.Date,
			StartTime:    item.StartTime,
			EndTime:      item.EndTime,
			BreakHours:   item.BreakHours,
			HoursWorked:  item.HoursWorked,
			Description:  item.Description,
			Location:     item.Location,
		})
	}
	return result
}
