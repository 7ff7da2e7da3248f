package wizard

import (
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/pricing"
	"github.com/m04kA/SMC-CourtBookingService/internal/suggest"
)

// Snapshot неизменяемая проекция состояния сессии мастера
// Строится под блокировкой и безопасна для чтения после возврата.
type Snapshot struct {
	SessionID string
	UserID    int64

	Steps      []domain.StepDescriptor
	ActiveStep domain.StepID
	StepIndex  int

	Draft DraftView

	Completed bool
}

// DraftView проекция черновика бронирования
type DraftView struct {
	Club            *domain.SelectedClub
	Date            time.Time
	StartTime       string
	EndTime         string
	DurationMinutes int
	CourtFormat     domain.CourtFormat
	Court           *domain.SelectedCourt
	PaymentProvider *domain.PaymentProvider

	AvailabilityState   domain.AvailabilityState
	AvailabilityFailure *domain.AvailabilityFailure
	Candidates          []domain.CourtCandidate

	// Ровно один вид альтернатив показывается игроку
	SuggestionKind string
	Suggestions    *domain.SuggestionSet

	// Оценка стоимости по доступным кортам; nil, пока кортов нет
	PriceEstimate *pricing.Estimate

	ReservationState domain.ReservationState
	Hold             *HoldView

	SubmissionState domain.SubmissionState
	BookingID       *int64
}

// HoldView проекция удерживаемой брони с обратным отсчетом
type HoldView struct {
	ReservationID    string
	ExpiresAt        time.Time
	RemainingSeconds int64
}

// Snapshot возвращает снапшот текущего состояния сессии
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.timeProvider.Now()

	view := DraftView{
		Club:                c.draft.Club,
		Date:                c.draft.Date,
		DurationMinutes:     c.draft.DurationMinutes,
		CourtFormat:         c.draft.CourtFormat,
		Court:               c.draft.Court,
		PaymentProvider:     c.draft.PaymentProvider,
		AvailabilityState:   c.draft.AvailabilityState,
		AvailabilityFailure: c.draft.AvailabilityFailure,
		Candidates:          append([]domain.CourtCandidate(nil), c.draft.Candidates...),
		ReservationState:    c.draft.ReservationState,
		SubmissionState:     c.draft.SubmissionState,
		BookingID:           c.draft.BookingID,
	}

	if !c.draft.StartTime.IsZero() {
		view.StartTime = c.draft.StartTime.String()
		if end, err := c.draft.EndTime(); err == nil {
			view.EndTime = end.String()
		}
	}

	if c.draft.Suggestions != nil {
		set := *c.draft.Suggestions
		if kind, ok := suggest.Preferred(set); ok {
			view.SuggestionKind = string(kind)
			// Показываем только предпочтительный вид, второй скрываем
			if kind == suggest.KindDuration {
				set.AlternativeTimeSlots = nil
			} else {
				set.AlternativeDurations = nil
			}
			view.Suggestions = &set
		}
	}

	if est, ok := pricing.EstimateCandidates(c.draft.Candidates); ok {
		view.PriceEstimate = &est
	}

	if c.draft.Hold != nil && c.draft.ReservationState == domain.ReservationHeld {
		view.Hold = &HoldView{
			ReservationID:    c.draft.Hold.ID,
			ExpiresAt:        c.draft.Hold.ExpiresAt,
			RemainingSeconds: c.draft.Hold.RemainingSeconds(now),
		}
	}

	return Snapshot{
		SessionID:  c.sessionID,
		UserID:     c.userID,
		Steps:      append([]domain.StepDescriptor(nil), c.plan...),
		ActiveStep: c.activeStep(),
		StepIndex:  c.stepIdx,
		Draft:      view,
		Completed:  c.draft.SubmissionState == domain.SubmissionCompleted,
	}
}
