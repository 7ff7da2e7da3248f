package bookingservice

import "time"

// CreateHoldRequest запрос на создание временной брони корта
type CreateHoldRequest struct {
	CourtID int64     `json:"court_id"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// Hold серверная бронь с ограниченным временем жизни
type Hold struct {
	ReservationID string    `json:"reservation_id"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// CreateBookingRequest запрос на создание финального бронирования
type CreateBookingRequest struct {
	CourtID           int64     `json:"court_id"`
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	PaymentProviderID string    `json:"payment_provider_id"`
}

// Booking созданное бронирование
type Booking struct {
	BookingID int64 `json:"booking_id"`
}

// ErrorResponse модель ошибки от BookingService
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
