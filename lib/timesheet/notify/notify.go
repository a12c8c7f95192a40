package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"hr-timesheet-backend/lib/smtp"
	"hr-timesheet-backend/models"
	dbmodels "hr-timesheet-backend/models/db"
)

//go:embed templates
var templatesFS embed.FS

// Provider уведомления о смене статуса табеля.
// Ошибки отправки только логируются, на результат запроса не влияют
type Provider interface {
	TimesheetSubmitted(ctx context.Context, rec dbmodels.Timesheet, link string) bool
	TimesheetApproved(ctx context.Context, rec dbmodels.Timesheet) bool
	TimesheetRejected(ctx context.Context, rec dbmodels.Timesheet) bool
}

func NewInstance(sender smtp.Provider, siteName string) Provider {
	return impl{
		sender:   sender,
		siteName: siteName,
	}
}

type impl struct {
	sender   smtp.Provider
	siteName string
}

type templateData struct {
	SiteName        string
	ContractorName  string
	SupervisorName  string
	CompanyName     string
	Department      string
	JobTitle        string
	PeriodName      string
	PeriodStart     string
	PeriodEnd       string
	RateName        string
	TotalText       string
	Link            string
	ApproverName    string
	DecisionDate    string
	RejectionReason string
	Comment         string
}

func (i impl) TimesheetSubmitted(ctx context.Context, rec dbmodels.Timesheet, link string) bool {
	data := i.getData(rec)
	data.Link = link
	subject := fmt.Sprintf("Timesheet for approval: %s, %s - %s", data.ContractorName, data.PeriodStart, data.PeriodEnd)
	return i.send(ctx, rec, "submitted", []string{rec.SupervisorEmail}, subject, data)
}

func (i impl) TimesheetApproved(ctx context.Context, rec dbmodels.Timesheet) bool {
	data := i.getData(rec)
	data.DecisionDate = decisionDate(rec.ApprovedAt)
	subject := fmt.Sprintf("Timesheet approved: %s - %s", data.PeriodStart, data.PeriodEnd)
	return i.send(ctx, rec, "approved", []string{rec.ContractorEmail()}, subject, data)
}

func (i impl) TimesheetRejected(ctx context.Context, rec dbmodels.Timesheet) bool {
	data := i.getData(rec)
	data.RejectionReason = rec.RejectionReason
	data.DecisionDate = decisionDate(rec.RejectedAt)
	subject := fmt.Sprintf("Timesheet rejected: %s - %s", data.PeriodStart, data.PeriodEnd)
	return i.send(ctx, rec, "rejected", []string{rec.ContractorEmail()}, subject, data)
}

func (i impl) send(ctx context.Context, rec dbmodels.Timesheet, name string, to []string, subject string, data templateData) bool {
	logger := log.
		WithField("timesheet_id", rec.ID).
		WithField("notification", name)
	to = nonEmpty(to)
	if len(to) == 0 {
		logger.Warn("уведомление не отправлено: не указан адрес получателя")
		return false
	}
	htmlBody, textBody, err := render(name, data)
	if err != nil {
		logger.WithError(err).Error("ошибка формирования уведомления")
		return false
	}
	msg := smtp.Message{
		To:      to,
		Cc:      excludeEmails(rec.AdditionalEmailList(), to),
		Subject: subject,
		HTML:    htmlBody,
		Text:    textBody,
	}
	if err = i.sender.SendEMail(ctx, msg); err != nil {
		logger.WithError(err).Error("ошибка отправки уведомления")
		return false
	}
	return true
}

func (i impl) getData(rec dbmodels.Timesheet) templateData {
	return templateData{
		SiteName:       i.siteName,
		ContractorName: rec.ContractorName(),
		SupervisorName: rec.SupervisorName,
		CompanyName:    rec.CompanyName,
		Department:     rec.Department,
		JobTitle:       rec.JobTitle,
		PeriodName:     periodName(rec.PeriodType),
		PeriodStart:    rec.PeriodStart.Format(models.DateLayout),
		PeriodEnd:      rec.PeriodEnd().Format(models.DateLayout),
		RateName:       string(rec.RateType),
		TotalText:      TotalText(rec),
		ApproverName:   rec.ApproverName,
		Comment:        rec.SupervisorComment,
	}
}

// decisionDate дата решения из записи табеля, текущая только если она не сохранена
func decisionDate(at *time.Time) string {
	if at == nil {
		return time.Now().Format("02 Jan 2006")
	}
	return at.Format("02 Jan 2006")
}

// TotalText итог табеля: часы для почасовой ставки, дни для поденной
func TotalText(rec dbmodels.Timesheet) string {
	switch rec.RateType {
	case models.RateTypeDaily:
		return fmt.Sprintf("%d day(s)", rec.TotalDays)
	default:
		return fmt.Sprintf("%.2f hour(s)", rec.TotalHours)
	}
}

func periodName(periodType models.PeriodType) string {
	switch periodType {
	case models.PeriodTypeMonthly:
		return "monthly"
	case models.PeriodTypeWeekly:
		return "weekly"
	}
	return string(periodType)
}

func render(name string, data templateData) (htmlBody, textBody string, err error) {
	htmlTpl, err := htmltemplate.ParseFS(templatesFS, "templates/"+name+".html")
	if err != nil {
		return "", "", errors.Wrapf(err, "шаблон %v.html", name)
	}
	buf := new(bytes.Buffer)
	if err = htmlTpl.Execute(buf, data); err != nil {
		return "", "", err
	}
	htmlBody = buf.String()

	textTpl, err := texttemplate.ParseFS(templatesFS, "templates/"+name+".txt")
	if err != nil {
		return "", "", errors.Wrapf(err, "шаблон %v.txt", name)
	}
	buf.Reset()
	if err = textTpl.Execute(buf, data); err != nil {
		return "", "", err
	}
	return htmlBody, buf.String(), nil
}

func nonEmpty(list []string) []string {
	result := make([]string, 0, len(list))
	for _, item := range list {
		if strings.TrimSpace(item) != "" {
			result = append(result, strings.TrimSpace(item))
		}
	}
	return result
}

func excludeEmails(list, exclude []string) []string {
	result := []string{}
	for _, item := range list {
		found := false
		for _, ex := range exclude {
			if strings.EqualFold(item, ex) {
				found = true
				break
			}
		}
		if !found {
			result = append(result, item)
		}
	}
	return result
}
