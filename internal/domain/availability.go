package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// CourtFormat формат корта
type CourtFormat string

const (
	FormatAny    CourtFormat = "any"
	FormatSingle CourtFormat = "single"
	FormatDouble CourtFormat = "double"
)

// IsValid возвращает true для известного формата корта
func (f CourtFormat) IsValid() bool {
	return f == FormatAny || f == FormatSingle || f == FormatDouble
}

// AvailabilityQuery ключ запроса доступности кортов
// Один и тот же ключ означает один и тот же сетевой запрос: повторный запрос
// с неизменным ключом подавляется, а ответ на устаревший ключ отбрасывается.
type AvailabilityQuery struct {
	ClubID          int64
	Date            time.Time
	StartTime       types.TimeString
	DurationMinutes int
	CourtFormat     CourtFormat
}

// IsComplete возвращает true, если все поля ключа заполнены
func (q AvailabilityQuery) IsComplete() bool {
	return q.ClubID > 0 &&
		!q.Date.IsZero() &&
		!q.StartTime.IsZero() &&
		q.DurationMinutes > 0
}

// Key возвращает каноническое строковое представление ключа
// Используется для сравнения ключей при подавлении дублей и отбрасывании
// устаревших ответов.
func (q AvailabilityQuery) Key() string {
	return fmt.Sprintf("%d|%s|%s|%d|%s",
		q.ClubID, q.Date.Format(DateFormat), q.StartTime, q.DurationMinutes, q.CourtFormat)
}

// CourtCandidate корт, доступный по запрошенному ключу
// PriceCents - цена за точную запрошенную длительность (не базовый тариф за час)
type CourtCandidate struct {
	CourtID    int64
	Name       string
	CourtType  string
	PriceCents int64
}

// AvailabilityState состояние запроса доступности в черновике
type AvailabilityState string

const (
	AvailabilityIdle    AvailabilityState = "idle"    // запрос не выполнялся
	AvailabilityLoading AvailabilityState = "loading" // запрос в полете
	AvailabilityReady   AvailabilityState = "ready"   // есть доступные корты
	AvailabilityEmpty   AvailabilityState = "empty"   // кортов нет, есть предложения
	AvailabilityError   AvailabilityState = "error"   // запрос завершился ошибкой
)

// AvailabilityFailure тип ошибки запроса доступности
type AvailabilityFailure string

const (
	// FailureClubClosed клуб закрыт в запрошенное окно - повтор без смены
	// параметров бесполезен
	FailureClubClosed AvailabilityFailure = "club_closed"

	// FailureTransient временная ошибка - тот же запрос можно повторить
	FailureTransient AvailabilityFailure = "transient"
)

// Retryable возвращает true, если запрос можно повторить без смены параметров
func (f AvailabilityFailure) Retryable() bool {
	return f == FailureTransient
}

// DurationOption альтернативная длительность с ненулевой доступностью
type DurationOption struct {
	DurationMinutes     int
	AvailableCourtCount int
}

// TimeSlotOption альтернативное время начала с ненулевой доступностью
type TimeSlotOption struct {
	StartTime           types.TimeString
	AvailableCourtCount int
}

// SuggestionSet предложения альтернатив при нулевой доступности
// Никогда не сохраняется - пересчитывается на каждый запрос доступности,
// вернувший ноль кортов.
type SuggestionSet struct {
	AlternativeDurations []DurationOption
	AlternativeTimeSlots []TimeSlotOption
}

// IsEmpty возвращает true, если предложений нет
func (s SuggestionSet) IsEmpty() bool {
	return len(s.AlternativeDurations) == 0 && len(s.AlternativeTimeSlots) == 0
}
