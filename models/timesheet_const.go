package models

import (
	"time"

	"github.com/jinzhu/now"
)

type TimesheetStatus string

const (
	TimesheetStatusDraft     TimesheetStatus = "draft"
	TimesheetStatusSubmitted TimesheetStatus = "submitted"
	TimesheetStatusApproved  TimesheetStatus = "approved"
	TimesheetStatusRejected  TimesheetStatus = "rejected"
)

var timesheetStatusHumanName = map[TimesheetStatus]string{
	TimesheetStatusDraft:     "Черновик",
	TimesheetStatusSubmitted: "На согласовании",
	TimesheetStatusApproved:  "Согласован",
	TimesheetStatusRejected:  "Отклонен",
}

func (s TimesheetStatus) ToHuman() string {
	if human, exist := timesheetStatusHumanName[s]; exist {
		return human
	}
	return string(s)
}

func (s TimesheetStatus) IsValid() bool {
	_, ok := timesheetStatusHumanName[s]
	return ok
}

var timesheetTransitions = map[TimesheetStatus][]TimesheetStatus{
	TimesheetStatusDraft:     {TimesheetStatusSubmitted},
	TimesheetStatusSubmitted: {TimesheetStatusApproved, TimesheetStatusRejected},
	TimesheetStatusRejected:  {TimesheetStatusSubmitted},
	TimesheetStatusApproved:  {},
}

// CanTransit допустим ли переход из текущего статуса в указанный
func (s TimesheetStatus) CanTransit(to TimesheetStatus) bool {
	for _, allowed := range timesheetTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsMutable можно ли редактировать или удалять табель в текущем статусе
func (s TimesheetStatus) IsMutable() bool {
	switch s {
	case TimesheetStatusDraft, TimesheetStatusSubmitted, TimesheetStatusRejected:
		return true
	}
	return false
}

type PeriodType string

const (
	PeriodTypeWeekly  PeriodType = "weekly"
	PeriodTypeMonthly PeriodType = "monthly"
)

func (p PeriodType) IsValid() bool {
	switch p {
	case PeriodTypeWeekly, PeriodTypeMonthly:
		return true
	}
	return false
}

func (p PeriodType) ToHuman() string {
	switch p {
	case PeriodTypeWeekly:
		return "Неделя"
	case PeriodTypeMonthly:
		return "Месяц"
	}
	return string(p)
}

// PeriodEnd последний день периода, начинающегося с start (включительно)
func (p PeriodType) PeriodEnd(start time.Time) time.Time {
	start = DateOnly(start)
	switch p {
	case PeriodTypeWeekly:
		return start.AddDate(0, 0, 6)
	case PeriodTypeMonthly:
		return DateOnly(now.With(start).EndOfMonth())
	}
	return start
}

type RateType string

const (
	RateTypeHourly RateType = "hourly"
	RateTypeDaily  RateType = "daily"
)

func (r RateType) IsValid() bool {
	switch r {
	case RateTypeHourly, RateTypeDaily:
		return true
	}
	return false
}

func (r RateType) ToHuman() string {
	switch r {
	case RateTypeHourly:
		return "Почасовая"
	case RateTypeDaily:
		return "Поденная"
	}
	return string(r)
}

const DateLayout = "2006-01-02"

func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
