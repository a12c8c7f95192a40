package dbmodels

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
	"hr-timesheet-backend/models"
)

type Timesheet struct {
	BaseModel
	ContractorID        string                 `gorm:"type:varchar(36);index"`
	Contractor          *TimesheetUser         `gorm:"foreignKey:ContractorID"`
	ProjectID           *string                `gorm:"type:varchar(36)"`
	Project             *Project               `gorm:"foreignKey:ProjectID;constraint:OnDelete:SET NULL"`
	PeriodStart         time.Time              `gorm:"type:date;index"`
	PeriodType          models.PeriodType      `gorm:"type:varchar(20)"`
	RateType            models.RateType        `gorm:"type:varchar(20)"`
	TotalHours          float64                `gorm:"type:numeric(10,2)"`
	TotalDays           int                    `gorm:"type:int"`
	Currency            string                 `gorm:"type:varchar(3)"`
	WorkDescription     string                 `gorm:"type:text"`
	Location            string                 `gorm:"type:varchar(255)"`
	CompanyName         string                 `gorm:"type:varchar(255)"`
	Department          string                 `gorm:"type:varchar(255)"`
	JobTitle            string                 `gorm:"type:varchar(255)"`
	SupervisorName      string                 `gorm:"type:varchar(255)"`
	SupervisorEmail     string                 `gorm:"type:varchar(255);index"`
	AdditionalEmails    string                 `gorm:"type:text"`
	Status              models.TimesheetStatus `gorm:"type:varchar(20);index"`
	ContractorSignature string                 `gorm:"type:text"`
	ContractorSignedAt  *time.Time
	SupervisorSignature string `gorm:"type:text"`
	SupervisorSignedAt  *time.Time
	SupervisorComment   string         `gorm:"type:text"`
	ApproverID          *string        `gorm:"type:varchar(36)"`
	Approver            *TimesheetUser `gorm:"foreignKey:ApproverID"`
	ApproverName        string         `gorm:"type:varchar(255)"`
	SubmittedAt         *time.Time
	ApprovedAt          *time.Time
	RejectedAt          *time.Time
	RejectionReason     string                   `gorm:"type:text"`
	ApprovalToken       *string                  `gorm:"type:varchar(64);uniqueIndex"`
	EntriesSnapshot     EntriesSnapshot          `gorm:"type:jsonb"`
	SignedPdfPath       string                   `gorm:"type:varchar(255)"`
	Entries             []TimesheetEntry         `gorm:"foreignKey:TimesheetID;constraint:OnDelete:CASCADE"`
	SupersededTokens    []TimesheetApprovalToken `gorm:"foreignKey:TimesheetID;constraint:OnDelete:CASCADE"`
}

// TimesheetApprovalToken токен прошлой отправки, замененный при повторной отправке табеля.
// По такой ссылке табель доступен только как "уже обработан"
type TimesheetApprovalToken struct {
	Token        string `gorm:"type:varchar(64);primaryKey"`
	TimesheetID  string `gorm:"type:varchar(36);index"`
	SupersededAt time.Time
}

// PeriodEnd последний день отчетного периода
func (r Timesheet) PeriodEnd() time.Time {
	return r.PeriodType.PeriodEnd(r.PeriodStart)
}

// AdditionalEmailList дополнительные адреса для уведомлений
func (r Timesheet) AdditionalEmailList() []string {
	return SplitEmails(r.AdditionalEmails)
}

func (r Timesheet) IsOwner(userID string) bool {
	return userID != "" && r.ContractorID == userID
}

func (r Timesheet) ContractorName() string {
	if r.Contractor != nil {
		return r.Contractor.Name
	}
	return ""
}

func (r Timesheet) ContractorEmail() string {
	if r.Contractor != nil {
		return r.Contractor.Email
	}
	return ""
}

// EntryRows строки табеля: снимок на момент отправки, иначе сохраненные строки
func (r Timesheet) EntryRows() []EntrySnapshot {
	if len(r.EntriesSnapshot) != 0 {
		return r.EntriesSnapshot
	}
	result := make([]EntrySnapshot, 0, len(r.Entries))
	for _, item := range r.Entries {
		result = append(result, item.ToSnapshot())
	}
	return result
}

type TimesheetEntry struct {
	BaseModel
	TimesheetID  string    `gorm:"type:varchar(36);index"`
	Date         time.Time `gorm:"type:date"`
	StartTime    string    `gorm:"type:varchar(5)"`
	EndTime      string    `gorm:"type:varchar(5)"`
	BreakHours   float64   `gorm:"type:numeric(4,2)"`
	HoursWorked  float64   `gorm:"type:numeric(5,2)"`
	Description  string    `gorm:"type:text"`
	Location     string    `gorm:"type:varchar(255)"`
}

func (r TimesheetEntry) ToSnapshot() EntrySnapshot {
	return EntrySnapshot{
		Date:         r.Date.Format(models.DateLayout),
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		BreakHours:   r.BreakHours,
		HoursWorked:  r.HoursWorked,
		Description:  r.Description,
		Location:     r.Location,
	}
}

// EntrySnapshot строка табеля в том виде, в котором она была отправлена на согласование
type EntrySnapshot struct {
	Date         string  `json:"date"`
	StartTime    string  `json:"start_time,omitempty"`
	EndTime      string  `json:"end_time,omitempty"`
	BreakHours   float64 `json:"break_hours,omitempty"`
	HoursWorked  float64 `json:"hours_worked"`
	Description  string  `json:"description,omitempty"`
	Location     string  `json:"location,omitempty"`
}

type EntriesSnapshot []EntrySnapshot

func (j EntriesSnapshot) Value() (driver.Value, error) {
	if j == nil {
		j = EntriesSnapshot{}
	}
	valueString, err := json.Marshal(j)
	return string(valueString), err
}

func (j *EntriesSnapshot) Scan(value any) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*j = EntriesSnapshot{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.Errorf("неподдерживаемый тип для EntriesSnapshot: %T", value)
	}
	return json.Unmarshal(data, j)
}

func SplitEmails(value string) []string {
	result := []string{}
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
