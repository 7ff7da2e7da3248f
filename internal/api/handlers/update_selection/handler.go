package update_selection

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/sessions"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/sessions/models"
	"github.com/m04kA/SMC-CourtBookingService/internal/wizard"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgUnknownField         = "неизвестное поле выбора"
	msgSessionNotFound      = "сессия мастера не найдена"
	msgAccessDenied         = "нет доступа к этой сессии"
	msgClubNotFound         = "клуб не найден"
	msgProviderNotFound     = "способ оплаты не найден"
	msgDateInPast           = "дата бронирования в прошлом"
	msgInvalidDuration      = "некорректная длительность"
	msgOutsideBusinessHours = "выбранное время вне рабочих часов клуба"
	msgCourtNotAvailable    = "корт недоступен для выбранных параметров"
	msgWizardCompleted      = "сессия уже завершена"
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

// Handle PUT /api/v1/wizard-sessions/{sessionId}/selection/{field}
// Поле в пути определяет, какой выбор применяется: club, date-time, court
// или payment-provider.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w)
		return
	}

	vars := mux.Vars(r)
	sessionID := vars["sessionId"]
	field := vars["field"]

	result, err := h.dispatch(r, sessionID, userID, field)
	if err != nil {
		h.respondError(w, sessionID, userID, field, err)
		return
	}

	h.logger.Info("PUT /wizard-sessions/%s/selection/%s - Selection applied by user_id=%d", sessionID, field, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// errInvalidBody маркер некорректного тела запроса (до вызова сервиса)
var errInvalidBody = errors.New("invalid request body")

// errUnknownField маркер неизвестного поля выбора в пути
var errUnknownField = errors.New("unknown selection field")

// dispatch разбирает тело запроса и вызывает метод сервиса по полю выбора
func (h *Handler) dispatch(r *http.Request, sessionID string, userID int64, field string) (*models.SessionResponse, error) {
	switch field {
	case fieldClub:
		var req SelectClubRequest
		if err := handlers.DecodeJSON(r, &req); err != nil {
			return nil, errInvalidBody
		}
		return h.service.SelectClub(r.Context(), sessionID, userID, req.ClubID)

	case fieldDateTime:
		var req SetDateTimeRequest
		if err := handlers.DecodeJSON(r, &req); err != nil {
			return nil, errInvalidBody
		}
		return h.service.SetDateTime(r.Context(), sessionID, &models.DateTimeSelection{
			UserID:          userID,
			Date:            req.Date,
			StartTime:       req.StartTime,
			DurationMinutes: req.DurationMinutes,
			CourtFormat:     req.CourtFormat,
		})

	case fieldCourt:
		var req SelectCourtRequest
		if err := handlers.DecodeJSON(r, &req); err != nil {
			return nil, errInvalidBody
		}
		return h.service.SelectCourt(r.Context(), sessionID, userID, req.CourtID)

	case fieldPaymentProvider:
		var req SelectPaymentProviderRequest
		if err := handlers.DecodeJSON(r, &req); err != nil {
			return nil, errInvalidBody
		}
		return h.service.SelectPaymentProvider(r.Context(), sessionID, userID, req.ProviderID)

	default:
		return nil, errUnknownField
	}
}

// respondError конвертирует ошибку сервиса в HTTP-ответ
func (h *Handler) respondError(w http.ResponseWriter, sessionID string, userID int64, field string, err error) {
	switch {
	case errors.Is(err, errInvalidBody):
		h.logger.Warn("PUT /wizard-sessions/%s/selection/%s - Invalid request body", sessionID, field)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)

	case errors.Is(err, errUnknownField):
		h.logger.Warn("PUT /wizard-sessions/%s/selection/%s - Unknown selection field", sessionID, field)
		handlers.RespondNotFound(w, msgUnknownField)

	case errors.Is(err, sessions.ErrSessionNotFound):
		h.logger.Warn("PUT /wizard-sessions/%s/selection/%s - Session not found", sessionID, field)
		handlers.RespondNotFound(w, msgSessionNotFound)

	case errors.Is(err, sessions.ErrAccessDenied):
		h.logger.Warn("PUT /wizard-sessions/%s/selection/%s - Access denied for user_id=%d", sessionID, field, userID)
		handlers.RespondForbidden(w, msgAccessDenied)

	case errors.Is(err, sessions.ErrClubNotFound):
		h.logger.Warn("PUT /wizard-sessions/%s/selection/%s - Club not found", sessionID, field)
		handlers.RespondNotFound(w, msgClubNotFound)

	case errors.Is(err, sessions.ErrPaymentProviderNotFound):
		h.logger.Warn("PUT /wizard-sessions/%s/selection/%s - Payment provider not found", sessionID, field)
		handlers.RespondNotFound(w, msgProviderNotFound)

	case errors.Is(err, wizard.ErrDateInPast):
		h.logger.Warn("PUT /wizard-sessions/%s/selection/%s - Date in past", sessionID, field)
		handlers.RespondBadRequest(w, msgDateInPast)

	case errors.Is(err, wizard.ErrInvalidDuration):
		h.logger.Warn("PUT /wizard-sessions/%s/selection/%s - Invalid duration", sessionID, field)
		handlers.RespondBadRequest(w, msgInvalidDuration)

	case errors.Is(err, wizard.ErrOutsideBusinessHours):
		h.logger.Warn("PUT /wizard-sessions/%s/selection/%s - Outside business hours", sessionID, field)
		handlers.RespondError(w, http.StatusUnprocessableEntity, msgOutsideBusinessHours)

	case errors.Is(err, wizard.ErrCourtNotAvailable):
		h.logger.Warn("PUT /wizard-sessions/%s/selection/%s - Court not available", sessionID, field)
		handlers.RespondError(w, http.StatusUnprocessableEntity, msgCourtNotAvailable)

	case errors.Is(err, wizard.ErrWizardCompleted):
		h.logger.Warn("PUT /wizard-sessions/%s/selection/%s - Session already completed", sessionID, field)
		handlers.RespondError(w, http.StatusConflict, msgWizardCompleted)

	case errors.Is(err, sessions.ErrInvalidInput), errors.Is(err, wizard.ErrInvalidInput):
		h.logger.Warn("PUT /wizard-sessions/%s/selection/%s - Invalid input: %v", sessionID, field, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)

	default:
		h.logger.Error("PUT /wizard-sessions/%s/selection/%s - Failed to apply selection: %v", sessionID, field, err)
		handlers.RespondInternalError(w)
	}
}
