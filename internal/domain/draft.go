package domain

import (
	"time"

	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// SubmissionState статус отправки финального бронирования
type SubmissionState string

const (
	SubmissionNone      SubmissionState = "none"      // бронирование не отправлялось
	SubmissionConflict  SubmissionState = "conflict"  // слот занят (409) - нужна новая бронь
	SubmissionFailed    SubmissionState = "failed"    // временная ошибка - можно повторить
	SubmissionCompleted SubmissionState = "completed" // бронирование подтверждено
)

// BookingDraft черновик одного прохода мастера быстрого бронирования
//
// Единственный изменяемый агрегат сессии. Всё изменение полей идет через
// именованные методы-переходы, которые поддерживают каскадную инвалидацию:
// смена более раннего поля очищает зависящие от него поздние поля
// (смена даты/времени сбрасывает выбранный корт, смена клуба - результаты
// доступности). Черновик отбрасывается при закрытии мастера независимо от
// стадии; идентификатор подтвержденного бронирования читается из последнего
// снапшота до закрытия.
type BookingDraft struct {
	Club            *SelectedClub
	Date            time.Time
	StartTime       types.TimeString
	DurationMinutes int
	CourtFormat     CourtFormat
	Court           *SelectedCourt
	PaymentProvider *PaymentProvider

	// Блок доступности (результаты текущего ключа запроса)
	AvailabilityState   AvailabilityState
	AvailabilityFailure *AvailabilityFailure
	Candidates          []CourtCandidate
	Suggestions         *SuggestionSet

	// Блок резервирования
	ReservationState ReservationState
	Hold             *ReservationHold

	// Блок отправки
	SubmissionState SubmissionState
	BookingID       *int64
}

// NewBookingDraft создает пустой черновик
func NewBookingDraft() BookingDraft {
	return BookingDraft{
		CourtFormat:       FormatAny,
		AvailabilityState: AvailabilityIdle,
		ReservationState:  ReservationIdle,
		SubmissionState:   SubmissionNone,
	}
}

// HasClub возвращает true, если клуб выбран
func (d *BookingDraft) HasClub() bool {
	return d.Club != nil
}

// HasDateTime возвращает true, если дата, время и длительность заданы
func (d *BookingDraft) HasDateTime() bool {
	return !d.Date.IsZero() && !d.StartTime.IsZero() && d.DurationMinutes > 0
}

// HasCourt возвращает true, если корт выбран
func (d *BookingDraft) HasCourt() bool {
	return d.Court != nil
}

// HasPaymentProvider возвращает true, если способ оплаты выбран
func (d *BookingDraft) HasPaymentProvider() bool {
	return d.PaymentProvider != nil
}

// Query возвращает текущий ключ запроса доступности
// ok = false, пока клуб или дата/время не выбраны.
func (d *BookingDraft) Query() (AvailabilityQuery, bool) {
	if !d.HasClub() || !d.HasDateTime() {
		return AvailabilityQuery{}, false
	}
	return AvailabilityQuery{
		ClubID:          d.Club.ID,
		Date:            d.Date,
		StartTime:       d.StartTime,
		DurationMinutes: d.DurationMinutes,
		CourtFormat:     d.CourtFormat,
	}, true
}

// SetClub применяет выбор клуба с каскадной инвалидацией
// Возвращает true, если выбор изменился (и зависимые поля были очищены).
func (d *BookingDraft) SetClub(club SelectedClub) bool {
	if d.Club != nil && d.Club.ID == club.ID {
		d.Club = &club // обновляем денормализованные атрибуты
		return false
	}
	d.Club = &club
	d.invalidateCourtSelection()
	return true
}

// SetDateTime применяет выбор даты/времени/длительности/формата с каскадом
func (d *BookingDraft) SetDateTime(date time.Time, start types.TimeString, durationMinutes int, format CourtFormat) bool {
	if !d.Date.IsZero() && d.Date.Equal(date) &&
		d.StartTime == start &&
		d.DurationMinutes == durationMinutes &&
		d.CourtFormat == format {
		return false
	}
	d.Date = date
	d.StartTime = start
	d.DurationMinutes = durationMinutes
	d.CourtFormat = format
	d.invalidateCourtSelection()
	return true
}

// SetCourt применяет выбор корта
func (d *BookingDraft) SetCourt(court SelectedCourt) bool {
	if d.Court != nil && d.Court.ID == court.ID {
		return false
	}
	d.Court = &court
	return true
}

// SetPaymentProvider применяет выбор способа оплаты
func (d *BookingDraft) SetPaymentProvider(provider PaymentProvider) {
	d.PaymentProvider = &provider
}

// ApplyDurationSuggestion принимает альтернативную длительность
// Атомарно: меняет единственное поле, сбрасывает выбранный корт и текущие
// предложения. Новый запрос доступности инициирует вызывающая сторона.
func (d *BookingDraft) ApplyDurationSuggestion(durationMinutes int) {
	d.DurationMinutes = durationMinutes
	d.invalidateCourtSelection()
}

// ApplyTimeSlotSuggestion принимает альтернативное время начала
func (d *BookingDraft) ApplyTimeSlotSuggestion(start types.TimeString) {
	d.StartTime = start
	d.invalidateCourtSelection()
}

// invalidateCourtSelection очищает поля, зависящие от клуба и даты/времени
func (d *BookingDraft) invalidateCourtSelection() {
	d.Court = nil
	d.ResetAvailability()
	if d.SubmissionState != SubmissionCompleted {
		d.SubmissionState = SubmissionNone
	}
}

// ResetAvailability сбрасывает блок доступности в исходное состояние
func (d *BookingDraft) ResetAvailability() {
	d.AvailabilityState = AvailabilityIdle
	d.AvailabilityFailure = nil
	d.Candidates = nil
	d.Suggestions = nil
}

// ClearSubmissionError очищает ошибку отправки (используется при retreat)
func (d *BookingDraft) ClearSubmissionError() {
	if d.SubmissionState == SubmissionConflict || d.SubmissionState == SubmissionFailed {
		d.SubmissionState = SubmissionNone
	}
}

// EndTime возвращает время окончания выбранного слота
func (d *BookingDraft) EndTime() (types.TimeString, error) {
	return d.StartTime.AddMinutes(d.DurationMinutes)
}
