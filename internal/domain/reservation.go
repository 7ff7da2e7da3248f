package domain

import "time"

// ReservationState состояние попытки резервирования корта
type ReservationState string

const (
	ReservationIdle      ReservationState = "idle"      // брони нет
	ReservationReserving ReservationState = "reserving" // запрос на создание в полете
	ReservationHeld      ReservationState = "held"      // бронь удерживается до expiresAt
	ReservationFailed    ReservationState = "failed"    // конфликт или ошибка создания
	ReservationExpired   ReservationState = "expired"   // время удержания истекло
	ReservationConsumed  ReservationState = "consumed"  // бронь использована успешным бронированием
)

// CanCreateHold возвращает true, если из этого состояния допустимо создание
// новой брони. Пока бронь удерживается, новая не создается.
func (s ReservationState) CanCreateHold() bool {
	return s == ReservationIdle || s == ReservationFailed || s == ReservationExpired
}

// IsTerminal возвращает true для конечного состояния попытки
func (s ReservationState) IsTerminal() bool {
	return s == ReservationConsumed
}

// ReservationHold серверная бронь корта с ограниченным временем жизни
// Клиент хранит только этот дескриптор; обратный отсчет выводится из
// ExpiresAt и не является источником истины - авторитетен ответ сервера.
type ReservationHold struct {
	ID        string
	CourtID   int64
	ExpiresAt time.Time
}

// RemainingSeconds возвращает остаток времени удержания в секундах
// remaining = max(0, floor((expiresAt - now) / 1s))
func (h ReservationHold) RemainingSeconds(now time.Time) int64 {
	remaining := h.ExpiresAt.Sub(now) / time.Second
	if remaining < 0 {
		return 0
	}
	return int64(remaining)
}

// IsExpired возвращает true, если время удержания истекло
func (h ReservationHold) IsExpired(now time.Time) bool {
	return !now.Before(h.ExpiresAt)
}
