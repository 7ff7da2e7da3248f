package pricing

import "github.com/m04kA/SMC-CourtBookingService/internal/domain"

// Range диапазон цен по доступным кортам в минорных единицах (копейках)
type Range struct {
	MinCents int64
	MaxCents int64
}

// Estimate оценка стоимости слота
// Range присутствует только когда цены кандидатов различаются.
type Estimate struct {
	ValueCents int64
	Range      *Range
}

// EstimateCandidates вычисляет оценку стоимости по доступным кортам
//
// Диапазон [min, max] по кандидатам схлопывается при совпадающих ценах:
// Range опускается, цена детерминирована и равна ValueCents.
//
// Когда кортов нет, возвращает ok = false: вызывающая сторона обязана
// отличать "цена неизвестна, потому что бронировать нечего" от детерминированной
// цены - молчаливого отката к базовому тарифу здесь нет.
func EstimateCandidates(candidates []domain.CourtCandidate) (Estimate, bool) {
	if len(candidates) == 0 {
		return Estimate{}, false
	}

	var sum, min, max int64
	min = candidates[0].PriceCents
	max = candidates[0].PriceCents

	for _, c := range candidates {
		sum += c.PriceCents
		if c.PriceCents < min {
			min = c.PriceCents
		}
		if c.PriceCents > max {
			max = c.PriceCents
		}
	}

	est := Estimate{
		ValueCents: roundHalfUpDiv(sum, int64(len(candidates))),
	}
	if min != max {
		est.Range = &Range{MinCents: min, MaxCents: max}
	}
	return est, true
}

// ResolveForDuration вычисляет цену корта за точную длительность
//
// Если известен тариф сегмента - round(segmentPriceCents / 60 * duration),
// иначе round(defaultPriceCents / 60 * duration). Округление half-up на
// целых копейках.
func ResolveForDuration(segmentPriceCents *int64, defaultPriceCents int64, durationMinutes int) int64 {
	hourly := defaultPriceCents
	if segmentPriceCents != nil {
		hourly = *segmentPriceCents
	}
	return roundHalfUpDiv(hourly*int64(durationMinutes), 60)
}

// roundHalfUpDiv делит с округлением half-up (для неотрицательных значений)
func roundHalfUpDiv(numerator, denominator int64) int64 {
	return (numerator + denominator/2) / denominator
}
