package domain

import (
	"time"

	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// DaySchedule расписание работы клуба на один день недели
type DaySchedule struct {
	IsOpen    bool
	OpenTime  *types.TimeString
	CloseTime *types.TimeString
}

// Covers возвращает true, если интервал [start, start+duration) целиком
// попадает в рабочие часы дня
func (d DaySchedule) Covers(start types.TimeString, durationMinutes int) bool {
	if !d.IsOpen || d.OpenTime == nil || d.CloseTime == nil {
		return false
	}
	end, err := start.AddMinutes(durationMinutes)
	if err != nil {
		return false
	}
	return !start.IsBefore(*d.OpenTime) && !end.IsAfter(*d.CloseTime)
}

// WeekSchedule расписание работы клуба по дням недели
type WeekSchedule struct {
	Monday    DaySchedule
	Tuesday   DaySchedule
	Wednesday DaySchedule
	Thursday  DaySchedule
	Friday    DaySchedule
	Saturday  DaySchedule
	Sunday    DaySchedule
}

// ForWeekday возвращает расписание на указанный день недели
func (w WeekSchedule) ForWeekday(day time.Weekday) DaySchedule {
	switch day {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	case time.Sunday:
		return w.Sunday
	default:
		return DaySchedule{IsOpen: false}
	}
}

// SelectedClub выбранный клуб в черновике бронирования
// Денормализованные атрибуты (название, рабочие часы) хранятся в черновике,
// чтобы валидация даты/времени не требовала повторных запросов к каталогу.
type SelectedClub struct {
	ID           int64
	Name         string
	City         string
	WorkingHours WeekSchedule
}

// SelectedCourt выбранный корт в черновике бронирования
// PriceCents - цена, рассчитанная для точной запрошенной длительности
type SelectedCourt struct {
	ID         int64
	Name       string
	CourtType  string
	PriceCents int64
}

// PaymentProvider выбранный способ оплаты
type PaymentProvider struct {
	ID   string
	Name string
}
