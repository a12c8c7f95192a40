package pdfexport

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"hr-timesheet-backend/models"
	dbmodels "hr-timesheet-backend/models/db"
)

func signatureDataURL(t *testing.T) string {
	img := image.NewRGBA(image.Rect(0, 0, 120, 40))
	for x := 10; x < 110; x++ {
		img.Set(x, 20, color.Black)
	}
	var buf bytes.Buffer
	require.Nil(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestRenderTimesheet(t *testing.T) {
	signedAt := time.Date(2025, 6, 9, 10, 0, 0, 0, time.UTC)
	rec := dbmodels.Timesheet{
		Contractor:          &dbmodels.TimesheetUser{Name: "Анна Петрова", Email: "anna@x.com"},
		PeriodStart:         time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		PeriodType:          models.PeriodTypeWeekly,
		RateType:            models.RateTypeHourly,
		TotalHours:          14,
		CompanyName:         "Acme",
		SupervisorName:      "Sam",
		SupervisorEmail:     "sup@x.com",
		Status:              models.TimesheetStatusApproved,
		ContractorSignature: signatureDataURL(t),
		ContractorSignedAt:  &signedAt,
		SupervisorSignature: signatureDataURL(t),
		SupervisorSignedAt:  &signedAt,
		ApprovedAt:          &signedAt,
		WorkDescription:     "Payroll migration",
		EntriesSnapshot: dbmodels.EntriesSnapshot{
			{Date: "2025-06-02", StartTime: "09:00", EndTime: "17:30", BreakHours: 0.5, HoursWorked: 8},
			{Date: "2025-06-03", HoursWorked: 6, Description: "Reports"},
		},
	}

	t.Run(`approved timesheet`, func(t *testing.T) {
		body, err := RenderTimesheet(TimesheetPdfData{Timesheet: rec, SiteName: "HR Services"})
		require.Nil(t, err)
		require.True(t, bytes.HasPrefix(body, []byte("%PDF-")))
	})

	t.Run(`rejected daily timesheet with broken signature`, func(t *testing.T) {
		rejected := rec
		rejected.Status = models.TimesheetStatusRejected
		rejected.RateType = models.RateTypeDaily
		rejected.TotalDays = 2
		rejected.RejectionReason = "Missing Fridays"
		rejected.ContractorSignature = "data:image/png;base64,broken"
		body, err := RenderTimesheet(TimesheetPdfData{Timesheet: rejected, FontDir: "/not/existing"})
		require.Nil(t, err)
		require.True(t, bytes.HasPrefix(body, []byte("%PDF-")))
	})
}
