package ledger

import (
	"fmt"
	"time"

	"motoloans/models"
)

// PeriodUnit единица периода графика платежей
type PeriodUnit string

const (
	PeriodDay   PeriodUnit = "day"
	PeriodWeek  PeriodUnit = "week"
	PeriodMonth PeriodUnit = "month"
)

// Period описывает шаг графика: Every единиц Unit между платежами
type Period struct {
	Unit  PeriodUnit
	Every int
}

// Monthly возвращает ежемесячный период
func Monthly() Period {
	return Period{Unit: PeriodMonth, Every: 1}
}

// Validate проверяет корректность периода
func (p Period) Validate() error {
	switch p.Unit {
	case PeriodDay, PeriodWeek, PeriodMonth:
	default:
		return fmt.Errorf("unknown period unit %q", p.Unit)
	}
	if p.Every <= 0 {
		return fmt.Errorf("period count must be positive, got %d", p.Every)
	}
	return nil
}

// Add сдвигает дату на n периодов
func (p Period) Add(start time.Time, n int) time.Time {
	switch p.Unit {
	case PeriodDay:
		return start.AddDate(0, 0, n*p.Every)
	case PeriodWeek:
		return start.AddDate(0, 0, 7*n*p.Every)
	default:
		return addMonths(start, n*p.Every)
	}
}

func (p Period) String() string {
	return fmt.Sprintf("%d %s", p.Every, p.Unit)
}

// addMonths прибавляет месяцы, прижимая день к концу месяца (31.01 + 1 = 29.02)
func addMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	target := time.Date(year, month+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(target.Year(), target.Month(), t.Location()); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// LoanDay возвращает календарный день t в часовом поясе начала кредита.
// Все сравнения дат по кредиту выполняются по этому дню.
func LoanDay(loan *models.Loan, t time.Time) time.Time {
	return calendarDay(t, loan.StartDate.Location())
}

// calendarDay отбрасывает время суток в заданной зоне
func calendarDay(t time.Time, loc *time.Location) time.Time {
	year, month, day := t.In(loc).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}
