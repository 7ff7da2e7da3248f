package suggest

import (
	"sort"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// Kind вид предложенной альтернативы
type Kind string

const (
	KindDuration Kind = "duration"
	KindTimeSlot Kind = "time_slot"
)

// Rank нормализует предложения из ответа с нулевой доступностью
//
// Чистое преобразование: отбрасывает варианты с нулевой доступностью,
// сортирует длительности по возрастанию, времена начала - по времени.
func Rank(set domain.SuggestionSet) domain.SuggestionSet {
	out := domain.SuggestionSet{}

	for _, d := range set.AlternativeDurations {
		if d.AvailableCourtCount > 0 && d.DurationMinutes > 0 {
			out.AlternativeDurations = append(out.AlternativeDurations, d)
		}
	}
	sort.Slice(out.AlternativeDurations, func(i, j int) bool {
		return out.AlternativeDurations[i].DurationMinutes < out.AlternativeDurations[j].DurationMinutes
	})

	for _, t := range set.AlternativeTimeSlots {
		if t.AvailableCourtCount > 0 && !t.StartTime.IsZero() {
			out.AlternativeTimeSlots = append(out.AlternativeTimeSlots, t)
		}
	}
	sort.Slice(out.AlternativeTimeSlots, func(i, j int) bool {
		return out.AlternativeTimeSlots[i].StartTime.IsBefore(out.AlternativeTimeSlots[j].StartTime)
	})

	return out
}

// Preferred возвращает вид альтернатив, который следует показать игроку
//
// Альтернативные длительности предпочтительнее альтернативных времен начала
// (меньшее обязательство предлагается раньше другого времени): UI показывает
// ровно один непустой список, никогда оба сразу.
func Preferred(set domain.SuggestionSet) (Kind, bool) {
	if len(set.AlternativeDurations) > 0 {
		return KindDuration, true
	}
	if len(set.AlternativeTimeSlots) > 0 {
		return KindTimeSlot, true
	}
	return "", false
}

// ContainsDuration проверяет, что длительность есть среди предложений
func ContainsDuration(set domain.SuggestionSet, durationMinutes int) bool {
	for _, d := range set.AlternativeDurations {
		if d.DurationMinutes == durationMinutes {
			return true
		}
	}
	return false
}

// ContainsTimeSlot проверяет, что время начала есть среди предложений
func ContainsTimeSlot(set domain.SuggestionSet, start string) bool {
	for _, t := range set.AlternativeTimeSlots {
		if t.StartTime.String() == start {
			return true
		}
	}
	return false
}
