package timesheethandler

import (
	"math"
	"time"

	"hr-timesheet-backend/models"
	timesheetapimodels "hr-timesheet-backend/models/api/timesheet"
	dbmodels "hr-timesheet-backend/models/db"
)

const timeLayout = "15:04"

type totals struct {
	Hours float64
	Days  int
}

// buildEntries строки табеля с пересчитанными часами, все даты внутри периода
func buildEntries(data []timesheetapimodels.EntryData, periodStart time.Time, periodType models.PeriodType) ([]dbmodels.TimesheetEntry, error) {
	periodEnd := periodType.PeriodEnd(periodStart)
	result := make([]dbmodels.TimesheetEntry, 0, len(data))
	dates := map[string]bool{}
	for _, item := range data {
		date, err := time.Parse(models.DateLayout, item.Date)
		if err != nil {
			return nil, models.NewValidationErrorf("некорректная дата: %v", item.Date)
		}
		if date.Before(periodStart) || date.After(periodEnd) {
			return nil, models.NewValidationErrorf("дата %v вне отчетного периода %v - %v",
				item.Date, periodStart.Format(models.DateLayout), periodEnd.Format(models.DateLayout))
		}
		if dates[item.Date] {
			return nil, models.NewValidationErrorf("дата %v указана дважды", item.Date)
		}
		dates[item.Date] = true
		hours, err := EntryHours(item)
		if err != nil {
			return nil, err
		}
		result = append(result, dbmodels.TimesheetEntry{
			Date:         date,
			StartTime:    item.StartTime,
			EndTime:      item.EndTime,
			BreakHours:   item.BreakHours,
			HoursWorked:  hours,
			Description:  item.Description,
			Location:     item.Location,
		})
	}
	return result, nil
}

// EntryHours часы за день: по времени начала/окончания за вычетом перерыва, иначе указанные вручную
func EntryHours(item timesheetapimodels.EntryData) (float64, error) {
	if item.StartTime == "" || item.EndTime == "" {
		if item.HoursWorked < 0 {
			return 0, models.NewValidationErrorf("отрицательное количество часов за %v", item.Date)
		}
		return roundHours(item.HoursWorked), nil
	}
	start, err := time.Parse(timeLayout, item.StartTime)
	if err != nil {
		return 0, models.NewValidationErrorf("некорректное время начала: %v", item.StartTime)
	}
	end, err := time.Parse(timeLayout, item.EndTime)
	if err != nil {
		return 0, models.NewValidationErrorf("некорректное время окончания: %v", item.EndTime)
	}
	minutes := end.Sub(start).Minutes()
	if end.Before(start) {
		// смена через полночь
		minutes += 24 * 60
	}
	minutes -= item.BreakHours * 60
	if minutes < 0 {
		return 0, models.NewValidationErrorf("перерыв больше рабочего времени за %v", item.Date)
	}
	return roundHours(minutes / 60), nil
}

// calcTotals итоги табеля. Для поденной ставки каждая строка считается рабочим днем
func calcTotals(entries []dbmodels.TimesheetEntry, rateType models.RateType) totals {
	result := totals{}
	for _, entry := range entries {
		result.Hours += entry.HoursWorked
		if isWorkedDay(entry, rateType) {
			result.Days++
		}
	}
	result.Hours = roundHours(result.Hours)
	return result
}

func isWorkedDay(entry dbmodels.TimesheetEntry, rateType models.RateType) bool {
	switch rateType {
	case models.RateTypeDaily:
		return true
	case models.RateTypeHourly:
		return entry.HoursWorked > 0
	}
	return entry.HoursWorked > 0
}

func toSnapshot(entries []dbmodels.TimesheetEntry) dbmodels.EntriesSnapshot {
	result := make(dbmodels.EntriesSnapshot, 0, len(entries))
	for _, entry := range entries {
		result = append(result, entry.ToSnapshot())
	}
	return result
}

func roundHours(value float64) float64 {
	return math.Round(value*100) / 100
}
