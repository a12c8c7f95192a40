package pdfexport

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"hr-timesheet-backend/lib/signature"
	"hr-timesheet-backend/models"
	dbmodels "hr-timesheet-backend/models/db"
)

const (
	signatureWidthPx  = 360
	signatureHeightPx = 120
	signatureWidthMm  = 60
	signatureHeightMm = 20
)

type TimesheetPdfData struct {
	Timesheet   dbmodels.Timesheet
	SiteName    string
	FontDir     string
	GeneratedAt time.Time
}

// RenderTimesheet печатная форма табеля с подписями
func RenderTimesheet(data TimesheetPdfData) (pdfFile []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("RenderTimesheet panic recover: %v", r)
		}
	}()
	rec := data.Timesheet
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := setupFont(pdf, data.FontDir)
	pdf.SetTitle(tr("Timesheet "+rec.PeriodStart.Format(models.DateLayout)), false)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	if pdf.Error() != nil {
		return nil, pdf.Error()
	}

	pdf.SetFont("", "B", 16)
	pdf.CellFormat(0, 10, tr("TIMESHEET"), "", 1, "C", false, 0, "")
	pdf.SetFont("", "", 10)
	if data.SiteName != "" {
		pdf.CellFormat(0, 6, tr(data.SiteName), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	writeInfo(pdf, tr, rec)
	pdf.Ln(4)
	writeEntries(pdf, tr, rec)
	pdf.Ln(4)
	writeTotals(pdf, tr, rec)

	if rec.WorkDescription != "" {
		pdf.Ln(2)
		pdf.SetFont("", "B", 10)
		pdf.CellFormat(0, 6, tr("Work description"), "", 1, "L", false, 0, "")
		pdf.SetFont("", "", 10)
		pdf.MultiCell(0, 5, tr(rec.WorkDescription), "", "L", false)
	}
	pdf.Ln(6)

	err = writeSignatures(pdf, tr, rec)
	if err != nil {
		return nil, err
	}
	writeDecision(pdf, tr, rec)

	generatedAt := data.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}
	pdf.SetFont("", "I", 8)
	pdf.CellFormat(0, 5, tr("Generated "+generatedAt.Format("2006-01-02 15:04")), "", 1, "R", false, 0, "")

	buf := new(bytes.Buffer)
	err = pdf.Output(buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// setupFont UTF-8 шрифт из каталога, если он есть, иначе встроенный Helvetica
func setupFont(pdf *fpdf.Fpdf, fontDir string) func(string) string {
	if fontDir != "" {
		regular := filepath.Join(fontDir, "Arial.ttf")
		bold := filepath.Join(fontDir, "Arial Bold.ttf")
		italic := filepath.Join(fontDir, "Arial Italic.ttf")
		if fileExists(regular) && fileExists(bold) && fileExists(italic) {
			pdf.SetFontLocation(fontDir)
			pdf.AddUTF8Font("Arial", "", "Arial.ttf")
			pdf.AddUTF8Font("Arial", "B", "Arial Bold.ttf")
			pdf.AddUTF8Font("Arial", "I", "Arial Italic.ttf")
			pdf.SetFont("Arial", "", 10)
			return func(s string) string { return s }
		}
		log.WithField("font_dir", fontDir).Warn("шрифты для PDF не найдены, используется Helvetica")
	}
	pdf.SetFont("Helvetica", "", 10)
	return pdf.UnicodeTranslatorFromDescriptor("")
}

func writeInfo(pdf *fpdf.Fpdf, tr func(string) string, rec dbmodels.Timesheet) {
	project := ""
	if rec.Project != nil {
		project = rec.Project.Name
	}
	rows := [][2]string{
		{"Contractor", rec.ContractorName()},
		{"Email", rec.ContractorEmail()},
		{"Company", rec.CompanyName},
		{"Department", rec.Department},
		{"Job title", rec.JobTitle},
		{"Location", rec.Location},
		{"Project", project},
		{"Period", fmt.Sprintf("%s - %s (%s)", rec.PeriodStart.Format(models.DateLayout), rec.PeriodEnd().Format(models.DateLayout), rec.PeriodType)},
		{"Rate", string(rec.RateType)},
		{"Supervisor", fmt.Sprintf("%s <%s>", rec.SupervisorName, rec.SupervisorEmail)},
		{"Status", string(rec.Status)},
	}
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		pdf.SetFont("", "B", 10)
		pdf.CellFormat(40, 6, tr(row[0]), "", 0, "L", false, 0, "")
		pdf.SetFont("", "", 10)
		pdf.CellFormat(0, 6, tr(row[1]), "", 1, "L", false, 0, "")
	}
}

var entryHeaders = []string{"Date", "Start", "End", "Break, h", "Hours", "Description"}
var entryWidths = []float64{25, 16, 16, 20, 16, 97}

func writeEntries(pdf *fpdf.Fpdf, tr func(string) string, rec dbmodels.Timesheet) {
	pdf.SetFont("", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for idx, header := range entryHeaders {
		pdf.CellFormat(entryWidths[idx], 7, tr(header), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("", "", 9)
	for _, entry := range rec.EntryRows() {
		breakText := ""
		if entry.BreakHours > 0 {
			breakText = fmt.Sprintf("%.2f", entry.BreakHours)
		}
		values := []string{
			entry.Date,
			entry.StartTime,
			entry.EndTime,
			breakText,
			fmt.Sprintf("%.2f", entry.HoursWorked),
			truncate(entry.Description, 55),
		}
		for idx, value := range values {
			align := "C"
			if idx == len(values)-1 {
				align = "L"
			}
			pdf.CellFormat(entryWidths[idx], 6, tr(value), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func writeTotals(pdf *fpdf.Fpdf, tr func(string) string, rec dbmodels.Timesheet) {
	pdf.SetFont("", "B", 11)
	switch rec.RateType {
	case models.RateTypeDaily:
		pdf.CellFormat(0, 7, tr(fmt.Sprintf("Total days: %d", rec.TotalDays)), "", 1, "R", false, 0, "")
	default:
		pdf.CellFormat(0, 7, tr(fmt.Sprintf("Total hours: %.2f", rec.TotalHours)), "", 1, "R", false, 0, "")
	}
	if rec.Currency != "" {
		pdf.SetFont("", "", 9)
		pdf.CellFormat(0, 5, tr("Currency: "+rec.Currency), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("", "", 10)
}

func writeSignatures(pdf *fpdf.Fpdf, tr func(string) string, rec dbmodels.Timesheet) error {
	left, _, right, _ := pdf.GetMargins()
	pageW, _ := pdf.GetPageSize()
	colW := (pageW - left - right) / 2
	y := pdf.GetY()

	pdf.SetFont("", "B", 10)
	pdf.SetXY(left, y)
	pdf.CellFormat(colW, 6, tr("Contractor signature"), "", 0, "L", false, 0, "")
	pdf.CellFormat(colW, 6, tr("Supervisor signature"), "", 1, "L", false, 0, "")
	y = pdf.GetY()

	err := putSignature(pdf, "contractor_signature", rec.ContractorSignature, left, y)
	if err != nil {
		return err
	}
	// подпись руководителя печатается только для согласованного табеля
	if rec.Status == models.TimesheetStatusApproved {
		err = putSignature(pdf, "supervisor_signature", rec.SupervisorSignature, left+colW, y)
		if err != nil {
			return err
		}
	}
	pdf.SetY(y + signatureHeightMm + 2)
	pdf.SetFont("", "", 9)
	pdf.SetX(left)
	pdf.CellFormat(colW, 5, tr(signedText(rec.ContractorName(), rec.ContractorSignedAt)), "", 0, "L", false, 0, "")
	if rec.Status == models.TimesheetStatusApproved {
		name := rec.ApproverName
		if name == "" {
			name = rec.SupervisorName
		}
		pdf.CellFormat(colW, 5, tr(signedText(name, rec.SupervisorSignedAt)), "", 0, "L", false, 0, "")
	}
	pdf.Ln(8)
	return pdf.Error()
}

func writeDecision(pdf *fpdf.Fpdf, tr func(string) string, rec dbmodels.Timesheet) {
	pdf.SetFont("", "B", 10)
	switch rec.Status {
	case models.TimesheetStatusApproved:
		text := "Approved"
		if rec.ApprovedAt != nil {
			text += " on " + rec.ApprovedAt.Format("2006-01-02 15:04")
		}
		pdf.CellFormat(0, 6, tr(text), "", 1, "L", false, 0, "")
	case models.TimesheetStatusRejected:
		pdf.CellFormat(0, 6, tr("Rejected"), "", 1, "L", false, 0, "")
		pdf.SetFont("", "", 10)
		pdf.MultiCell(0, 5, tr("Reason: "+rec.RejectionReason), "", "L", false)
	case models.TimesheetStatusSubmitted:
		pdf.CellFormat(0, 6, tr("Awaiting supervisor approval"), "", 1, "L", false, 0, "")
	case models.TimesheetStatusDraft:
		pdf.CellFormat(0, 6, tr("Draft"), "", 1, "L", false, 0, "")
	}
	if rec.SupervisorComment != "" {
		pdf.SetFont("", "", 10)
		pdf.MultiCell(0, 5, tr("Comment: "+rec.SupervisorComment), "", "L", false)
	}
}

func putSignature(pdf *fpdf.Fpdf, name, dataURL string, x, y float64) error {
	if dataURL == "" {
		return nil
	}
	img, err := signature.Parse(dataURL, 0)
	if err != nil {
		// битая подпись пропускается
		log.WithError(err).WithField("signature", name).Warn("подпись не выведена в PDF")
		return nil
	}
	body, err := img.NormalizePNG(signatureWidthPx, signatureHeightPx)
	if err != nil {
		log.WithError(err).WithField("signature", name).Warn("подпись не выведена в PDF")
		return nil
	}
	options := fpdf.ImageOptions{
		ReadDpi:   false,
		ImageType: "PNG",
	}
	pdf.RegisterImageOptionsReader(name, options, bytes.NewReader(body))
	if pdf.Error() != nil {
		return pdf.Error()
	}
	pdf.ImageOptions(name, x, y, signatureWidthMm, signatureHeightMm, false, options, 0, "")
	return pdf.Error()
}

func signedText(name string, at *time.Time) string {
	if at == nil {
		return name
	}
	return fmt.Sprintf("%s, %s", name, at.Format("2006-01-02 15:04"))
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-3]) + "..."
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
