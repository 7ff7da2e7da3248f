package submit_booking

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/sessions"
	"github.com/m04kA/SMC-CourtBookingService/internal/wizard"
)

const (
	msgSessionNotFound  = "сессия мастера не найдена"
	msgAccessDenied     = "нет доступа к этой сессии"
	msgSubmitNotAllowed = "отправка доступна только на шаге оплаты"
	msgProviderRequired = "не выбран способ оплаты"
	msgNoActiveHold     = "нет активной брони корта"
	msgHoldExpired      = "время удержания корта истекло"
	msgBookingConflict  = "слот уже занят другим игроком"
	msgWizardCompleted  = "сессия уже завершена"
)

type Handler struct {
	service SessionService
	logger  Logger
}

func NewHandler(service SessionService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/wizard-sessions/{sessionId}/submit
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w)
		return
	}
	sessionID := mux.Vars(r)["sessionId"]

	result, err := h.service.Submit(r.Context(), sessionID, userID)
	if err != nil {
		switch {
		case errors.Is(err, sessions.ErrSessionNotFound):
			h.logger.Warn("POST /wizard-sessions/%s/submit - Session not found", sessionID)
			handlers.RespondNotFound(w, msgSessionNotFound)
		case errors.Is(err, sessions.ErrAccessDenied):
			h.logger.Warn("POST /wizard-sessions/%s/submit - Access denied for user_id=%d", sessionID, userID)
			handlers.RespondForbidden(w, msgAccessDenied)
		case errors.Is(err, wizard.ErrSubmitNotAllowed):
			h.logger.Warn("POST /wizard-sessions/%s/submit - Submit not allowed on current step", sessionID)
			handlers.RespondError(w, http.StatusConflict, msgSubmitNotAllowed)
		case errors.Is(err, wizard.ErrPaymentProviderRequired):
			h.logger.Warn("POST /wizard-sessions/%s/submit - Payment provider not selected", sessionID)
			handlers.RespondError(w, http.StatusConflict, msgProviderRequired)
		case errors.Is(err, wizard.ErrNoActiveHold):
			h.logger.Warn("POST /wizard-sessions/%s/submit - No active hold", sessionID)
			handlers.RespondError(w, http.StatusConflict, msgNoActiveHold)
		case errors.Is(err, wizard.ErrHoldExpired):
			h.logger.Warn("POST /wizard-sessions/%s/submit - Hold expired", sessionID)
			handlers.RespondError(w, http.StatusConflict, msgHoldExpired)
		case errors.Is(err, wizard.ErrBookingConflict):
			h.logger.Warn("POST /wizard-sessions/%s/submit - Booking conflict", sessionID)
			handlers.RespondError(w, http.StatusConflict, msgBookingConflict)
		case errors.Is(err, wizard.ErrWizardCompleted):
			h.logger.Warn("POST /wizard-sessions/%s/submit - Session already completed", sessionID)
			handlers.RespondError(w, http.StatusConflict, msgWizardCompleted)
		default:
			h.logger.Error("POST /wizard-sessions/%s/submit - Failed to submit booking: %v", sessionID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /wizard-sessions/%s/submit - Booking confirmed: booking_id=%d, user_id=%d",
		sessionID, result.BookingID, userID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
