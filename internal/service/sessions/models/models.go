package models

import (
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/wizard"
)

// Request модели

// CreateSessionRequest запрос на создание сессии мастера
// Все предвыборы опциональны: шаг, чей вход предвыбран, исключается из плана.
type CreateSessionRequest struct {
	UserID          int64   `json:"userId"`
	ClubID          *int64  `json:"clubId,omitempty"`
	CourtID         *int64  `json:"courtId,omitempty"`
	Date            *string `json:"date,omitempty"`      // "2026-08-23"
	StartTime       *string `json:"startTime,omitempty"` // "19:00"
	DurationMinutes *int    `json:"durationMinutes,omitempty"`
	CourtFormat     *string `json:"courtFormat,omitempty"`
}

// HasDateTime возвращает true, если дата/время/длительность предвыбраны целиком
func (r *CreateSessionRequest) HasDateTime() bool {
	return r.Date != nil && r.StartTime != nil && r.DurationMinutes != nil
}

// DateTimeSelection выбор даты/времени/длительности/формата
type DateTimeSelection struct {
	UserID          int64  `json:"userId"`
	Date            string `json:"date"`
	StartTime       string `json:"startTime"`
	DurationMinutes int    `json:"durationMinutes"`
	CourtFormat     string `json:"courtFormat,omitempty"`
}

// AcceptSuggestionRequest принятие предложенной альтернативы
type AcceptSuggestionRequest struct {
	UserID          int64  `json:"userId"`
	Kind            string `json:"kind"` // "duration" / "time_slot"
	DurationMinutes int    `json:"durationMinutes,omitempty"`
	StartTime       string `json:"startTime,omitempty"`
}

// Response модели

// ClubSummary клуб в списке для шага выбора клуба
type ClubSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
}

// ClubListResponse список клубов
type ClubListResponse struct {
	Clubs []ClubSummary `json:"clubs"`
}

// StepView шаг плана мастера
type StepView struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

// ClubView выбранный клуб
type ClubView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
}

// CourtView выбранный корт
type CourtView struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CourtType  string `json:"courtType"`
	PriceCents int64  `json:"priceCents"`
}

// CourtCandidateView корт, доступный по текущему ключу запроса
type CourtCandidateView struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CourtType  string `json:"courtType"`
	PriceCents int64  `json:"priceCents"`
}

// PaymentProviderView способ оплаты
type PaymentProviderView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DurationOptionView альтернативная длительность
type DurationOptionView struct {
	DurationMinutes     int `json:"durationMinutes"`
	AvailableCourtCount int `json:"availableCourtCount"`
}

// TimeSlotOptionView альтернативное время начала
type TimeSlotOptionView struct {
	StartTime           string `json:"startTime"`
	AvailableCourtCount int    `json:"availableCourtCount"`
}

// SuggestionsView предложения альтернатив при нулевой доступности
// Заполнен ровно один список - предпочтительного вида.
type SuggestionsView struct {
	Kind                 string               `json:"kind"`
	AlternativeDurations []DurationOptionView `json:"alternativeDurations,omitempty"`
	AlternativeTimeSlots []TimeSlotOptionView `json:"alternativeTimeSlots,omitempty"`
}

// PriceEstimateView оценка стоимости по доступным кортам
type PriceEstimateView struct {
	ValueCents int64  `json:"valueCents"`
	MinCents   *int64 `json:"minCents,omitempty"`
	MaxCents   *int64 `json:"maxCents,omitempty"`
}

// HoldView удерживаемая бронь с обратным отсчетом
type HoldView struct {
	ReservationID    string `json:"reservationId"`
	ExpiresAt        string `json:"expiresAt"` // RFC 3339
	RemainingSeconds int64  `json:"remainingSeconds"`
}

// DraftView черновик бронирования в ответе
type DraftView struct {
	Club            *ClubView            `json:"club,omitempty"`
	Date            string               `json:"date,omitempty"`
	StartTime       string               `json:"startTime,omitempty"`
	EndTime         string               `json:"endTime,omitempty"`
	DurationMinutes int                  `json:"durationMinutes,omitempty"`
	CourtFormat     string               `json:"courtFormat"`
	Court           *CourtView           `json:"court,omitempty"`
	PaymentProvider *PaymentProviderView `json:"paymentProvider,omitempty"`

	AvailabilityState   string               `json:"availabilityState"`
	AvailabilityFailure *string              `json:"availabilityFailure,omitempty"`
	AvailableCourts     []CourtCandidateView `json:"availableCourts,omitempty"`
	Suggestions         *SuggestionsView     `json:"suggestions,omitempty"`
	PriceEstimate       *PriceEstimateView   `json:"priceEstimate,omitempty"`

	ReservationState string    `json:"reservationState"`
	Hold             *HoldView `json:"hold,omitempty"`

	SubmissionState string `json:"submissionState"`
	BookingID       *int64 `json:"bookingId,omitempty"`
}

// SessionResponse состояние сессии мастера
// Та же модель сериализуется в снапшот для операционной видимости.
type SessionResponse struct {
	SessionID        string                `json:"sessionId"`
	Steps            []StepView            `json:"steps"`
	ActiveStep       string                `json:"activeStep"`
	StepIndex        int                   `json:"stepIndex"`
	Draft            DraftView             `json:"draft"`
	PaymentProviders []PaymentProviderView `json:"paymentProviders"`
	Completed        bool                  `json:"completed"`
}

// FromSnapshot конвертирует снапшот контроллера в response-модель
func FromSnapshot(snap wizard.Snapshot) *SessionResponse {
	resp := &SessionResponse{
		SessionID:  snap.SessionID,
		Steps:      make([]StepView, 0, len(snap.Steps)),
		ActiveStep: string(snap.ActiveStep),
		StepIndex:  snap.StepIndex,
		Draft:      fromDraftView(snap.Draft),
		Completed:  snap.Completed,
	}
	for _, step := range snap.Steps {
		resp.Steps = append(resp.Steps, StepView{
			ID:       string(step.ID),
			Label:    step.Label,
			Required: step.Required,
		})
	}
	for _, p := range domain.KnownPaymentProviders() {
		resp.PaymentProviders = append(resp.PaymentProviders, PaymentProviderView{ID: p.ID, Name: p.Name})
	}
	return resp
}

func fromDraftView(d wizard.DraftView) DraftView {
	view := DraftView{
		StartTime:         d.StartTime,
		EndTime:           d.EndTime,
		DurationMinutes:   d.DurationMinutes,
		CourtFormat:       string(d.CourtFormat),
		AvailabilityState: string(d.AvailabilityState),
		ReservationState:  string(d.ReservationState),
		SubmissionState:   string(d.SubmissionState),
		BookingID:         d.BookingID,
	}

	if !d.Date.IsZero() {
		view.Date = d.Date.Format(domain.DateFormat)
	}
	if d.Club != nil {
		view.Club = &ClubView{ID: d.Club.ID, Name: d.Club.Name, City: d.Club.City}
	}
	if d.Court != nil {
		view.Court = &CourtView{
			ID:         d.Court.ID,
			Name:       d.Court.Name,
			CourtType:  d.Court.CourtType,
			PriceCents: d.Court.PriceCents,
		}
	}
	if d.PaymentProvider != nil {
		view.PaymentProvider = &PaymentProviderView{ID: d.PaymentProvider.ID, Name: d.PaymentProvider.Name}
	}
	if d.AvailabilityFailure != nil {
		failure := string(*d.AvailabilityFailure)
		view.AvailabilityFailure = &failure
	}

	for _, cand := range d.Candidates {
		view.AvailableCourts = append(view.AvailableCourts, CourtCandidateView{
			ID:         cand.CourtID,
			Name:       cand.Name,
			CourtType:  cand.CourtType,
			PriceCents: cand.PriceCents,
		})
	}

	if d.Suggestions != nil {
		sv := &SuggestionsView{Kind: d.SuggestionKind}
		for _, opt := range d.Suggestions.AlternativeDurations {
			sv.AlternativeDurations = append(sv.AlternativeDurations, DurationOptionView{
				DurationMinutes:     opt.DurationMinutes,
				AvailableCourtCount: opt.AvailableCourtCount,
			})
		}
		for _, opt := range d.Suggestions.AlternativeTimeSlots {
			sv.AlternativeTimeSlots = append(sv.AlternativeTimeSlots, TimeSlotOptionView{
				StartTime:           opt.StartTime.String(),
				AvailableCourtCount: opt.AvailableCourtCount,
			})
		}
		view.Suggestions = sv
	}

	if d.PriceEstimate != nil {
		view.PriceEstimate = &PriceEstimateView{ValueCents: d.PriceEstimate.ValueCents}
		if d.PriceEstimate.Range != nil {
			min := d.PriceEstimate.Range.MinCents
			max := d.PriceEstimate.Range.MaxCents
			view.PriceEstimate.MinCents = &min
			view.PriceEstimate.MaxCents = &max
		}
	}

	if d.Hold != nil {
		view.Hold = &HoldView{
			ReservationID:    d.Hold.ReservationID,
			ExpiresAt:        d.Hold.ExpiresAt.Format(time.RFC3339),
			RemainingSeconds: d.Hold.RemainingSeconds,
		}
	}

	return view
}

// CompletionResponse результат успешной отправки бронирования
type CompletionResponse struct {
	BookingID int64  `json:"bookingId"`
	CourtID   int64  `json:"courtId"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}
