package clubservice

import (
	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// ClubSummary краткая информация о клубе (для шага выбора клуба)
type ClubSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
}

// DaySchedule расписание работы клуба на день недели
type DaySchedule struct {
	IsOpen    bool    `json:"is_open"`
	OpenTime  *string `json:"open_time,omitempty"`  // "07:00"
	CloseTime *string `json:"close_time,omitempty"` // "23:00"
}

// WorkingHours расписание работы клуба по дням недели
type WorkingHours struct {
	Monday    DaySchedule `json:"monday"`
	Tuesday   DaySchedule `json:"tuesday"`
	Wednesday DaySchedule `json:"wednesday"`
	Thursday  DaySchedule `json:"thursday"`
	Friday    DaySchedule `json:"friday"`
	Saturday  DaySchedule `json:"saturday"`
	Sunday    DaySchedule `json:"sunday"`
}

// Club полная информация о клубе (включая рабочие часы)
type Club struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	City         string       `json:"city"`
	WorkingHours WorkingHours `json:"working_hours"`
}

// Court корт клуба с тарифами
// SegmentPriceCents - тариф за час для запрошенного временного сегмента
// (если известен), DefaultPriceCents - базовый тариф за час.
type Court struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Type              string `json:"type"` // "indoor" / "outdoor"
	Format            string `json:"format"`
	DefaultPriceCents int64  `json:"default_price_cents"`
	SegmentPriceCents *int64 `json:"segment_price_cents,omitempty"`
}

// DurationOption альтернативная длительность в ответе сервиса
type DurationOption struct {
	DurationMinutes     int `json:"duration_minutes"`
	AvailableCourtCount int `json:"available_court_count"`
}

// TimeSlotOption альтернативное время начала в ответе сервиса
type TimeSlotOption struct {
	StartTime           string `json:"start_time"`
	AvailableCourtCount int    `json:"available_court_count"`
}

// Suggestions альтернативы при нулевой доступности
type Suggestions struct {
	AlternativeDurations []DurationOption `json:"alternative_durations"`
	AlternativeTimeSlots []TimeSlotOption `json:"alternative_time_slots"`
}

// AvailableCourtsResponse ответ на запрос доступных кортов
// При нулевом списке кортов сервис заполняет Suggestions.
type AvailableCourtsResponse struct {
	Courts      []Court      `json:"courts"`
	Suggestions *Suggestions `json:"suggestions,omitempty"`
}

// ErrorResponse модель ошибки от ClubService
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Коды ошибок ClubService
const (
	errCodeClubClosed = "club_closed"
)

// ToDomainSchedule конвертирует расписание в доменную модель
func (w WorkingHours) ToDomainSchedule() domain.WeekSchedule {
	return domain.WeekSchedule{
		Monday:    w.Monday.toDomain(),
		Tuesday:   w.Tuesday.toDomain(),
		Wednesday: w.Wednesday.toDomain(),
		Thursday:  w.Thursday.toDomain(),
		Friday:    w.Friday.toDomain(),
		Saturday:  w.Saturday.toDomain(),
		Sunday:    w.Sunday.toDomain(),
	}
}

func (d DaySchedule) toDomain() domain.DaySchedule {
	out := domain.DaySchedule{IsOpen: d.IsOpen}
	if d.OpenTime != nil {
		if ts, err := types.NewTimeStringFromString(*d.OpenTime); err == nil {
			out.OpenTime = &ts
		}
	}
	if d.CloseTime != nil {
		if ts, err := types.NewTimeStringFromString(*d.CloseTime); err == nil {
			out.CloseTime = &ts
		}
	}
	// Некорректное расписание трактуем как закрытый день
	if out.IsOpen && (out.OpenTime == nil || out.CloseTime == nil) {
		out.IsOpen = false
	}
	return out
}

// ToDomainSuggestions конвертирует альтернативы в доменную модель
// Варианты с некорректным временем начала отбрасываются.
func (s *Suggestions) ToDomainSuggestions() domain.SuggestionSet {
	out := domain.SuggestionSet{}
	if s == nil {
		return out
	}
	for _, d := range s.AlternativeDurations {
		out.AlternativeDurations = append(out.AlternativeDurations, domain.DurationOption{
			DurationMinutes:     d.DurationMinutes,
			AvailableCourtCount: d.AvailableCourtCount,
		})
	}
	for _, t := range s.AlternativeTimeSlots {
		ts, err := types.NewTimeStringFromString(t.StartTime)
		if err != nil {
			continue
		}
		out.AlternativeTimeSlots = append(out.AlternativeTimeSlots, domain.TimeSlotOption{
			StartTime:           ts,
			AvailableCourtCount: t.AvailableCourtCount,
		})
	}
	return out
}

// ToSelectedClub конвертирует клуб в доменную модель выбранного клуба
func (c *Club) ToSelectedClub() domain.SelectedClub {
	return domain.SelectedClub{
		ID:           c.ID,
		Name:         c.Name,
		City:         c.City,
		WorkingHours: c.WorkingHours.ToDomainSchedule(),
	}
}
