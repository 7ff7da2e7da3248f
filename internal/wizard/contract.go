package wizard

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/integrations/bookingservice"
	"github.com/m04kA/SMC-CourtBookingService/internal/integrations/clubservice"
)

// AvailabilityClient интерфейс клиента каталога для запросов доступности кортов
type AvailabilityClient interface {
	GetAvailableCourts(ctx context.Context, query domain.AvailabilityQuery) (*clubservice.AvailableCourtsResponse, error)
}

// BookingClient интерфейс клиента сервиса бронирований
type BookingClient interface {
	CreateHold(ctx context.Context, req bookingservice.CreateHoldRequest) (*bookingservice.Hold, error)
	CreateBooking(ctx context.Context, req bookingservice.CreateBookingRequest) (*bookingservice.Booking, error)
	ReleaseHold(ctx context.Context, reservationID string) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Dispatcher интерфейс запуска асинхронных операций (для тестирования)
// Сетевые запросы доступности и создания брони выполняются вне блокировки
// сессии; их результаты возвращаются в контроллер отдельным событием.
type Dispatcher interface {
	Dispatch(fn func())
}

// GoDispatcher реальный диспетчер для production - запускает в горутине
type GoDispatcher struct{}

// Dispatch запускает функцию в отдельной горутине
func (d *GoDispatcher) Dispatch(fn func()) {
	go fn()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Recorder интерфейс бизнес-метрик мастера
type Recorder interface {
	RecordAvailabilityQuery(outcome string)
	RecordStaleAvailabilityDiscarded()
	RecordHoldCreated()
	RecordHoldExpired()
	RecordHoldConflict()
	RecordSubmissionConflict()
}

// NopRecorder заглушка метрик (используется при выключенных метриках и в тестах)
type NopRecorder struct{}

func (NopRecorder) RecordAvailabilityQuery(string) {}

func (NopRecorder) RecordStaleAvailabilityDiscarded() {}

func (NopRecorder) RecordHoldCreated() {}

func (NopRecorder) RecordHoldExpired() {}

func (NopRecorder) RecordHoldConflict() {}

func (NopRecorder) RecordSubmissionConflict() {}

// Completion данные подтвержденного бронирования
// Передаются в callback завершения ровно один раз.
type Completion struct {
	BookingID int64
	CourtID   int64
	Date      time.Time
	StartTime string
	EndTime   string
}
