package xlsexport

import (
	"bytes"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"hr-timesheet-backend/models"
	dbmodels "hr-timesheet-backend/models/db"
)

type Provider interface {
	ExportTimesheetList(list []dbmodels.Timesheet) (*bytes.Buffer, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{}
}

type impl struct{}

var timesheetHeaders = []string{"Подрядчик", "Почта", "Начало периода", "Конец периода", "Период", "Ставка", "Часы", "Дни", "Статус", "Руководитель", "Отправлен", "Согласован", "Причина отклонения"}

func (i impl) ExportTimesheetList(list []dbmodels.Timesheet) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Error("ошибка закрытия файла")
		}
	}()
	sheet := "Sheet1"
	row := 0
	row, err := writeHeader(f, sheet, row, timesheetHeaders)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка формирования заголовка в xlsx")
	}
	if len(list) != 0 {
		_, err = writeTimesheetData(f, sheet, list, row)
		if err != nil {
			return nil, errors.Wrap(err, "ошибка формирования таблицы с данными в xlsx")
		}
	}
	if err = f.SetSheetName(sheet, "Табели"); err != nil {
		return nil, err
	}
	return f.WriteToBuffer()
}

func writeTimesheetData(f *excelize.File, sheet string, list []dbmodels.Timesheet, row int) (int, error) {
	if err := applyDataCellStyle(f, sheet, 1, row+1, len(timesheetHeaders), row+len(list)); err != nil {
		return row, err
	}
	for _, item := range list {
		row++
		values := []interface{}{
			item.ContractorName(),
			item.ContractorEmail(),
			item.PeriodStart.Format("02.01.2006"),
			item.PeriodEnd().Format("02.01.2006"),
			item.PeriodType.ToHuman(),
			item.RateType.ToHuman(),
			item.TotalHours,
			item.TotalDays,
			item.Status.ToHuman(),
			item.SupervisorName,
			formatDate(item.SubmittedAt),
			formatDate(item.ApprovedAt),
			rejectionReason(item),
		}
		for idx, value := range values {
			if err := writeColumn(f, sheet, idx+1, row, value); err != nil {
				return row, err
			}
		}
	}
	return row, nil
}

func rejectionReason(item dbmodels.Timesheet) string {
	if item.Status != models.TimesheetStatusRejected {
		return ""
	}
	return item.RejectionReason
}
