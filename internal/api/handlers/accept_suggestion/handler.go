package accept_suggestion

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
	msgSessionNotFound      = "сессия мастера не найдена"
	msgAccessDenied         = "нет доступа к этой сессии"
	msgSuggestionNotOffered = "такая альтернатива не предлагалась"
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

// Handle POST /api/v1/wizard-sessions/{sessionId}/suggestions/accept
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w)
		return
	}
	sessionID := mux.Vars(r)["sessionId"]

	var req AcceptSuggestionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /wizard-sessions/%s/suggestions/accept - Invalid request body: %v", sessionID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.AcceptSuggestion(r.Context(), sessionID, &models.AcceptSuggestionRequest{
		UserID:          userID,
		Kind:            req.Kind,
		DurationMinutes: req.DurationMinutes,
		StartTime:       req.StartTime,
	})
	if err != nil {
		switch {
		case errors.Is(err, sessions.ErrSessionNotFound):
			h.logger.Warn("POST /wizard-sessions/%s/suggestions/accept - Session not found", sessionID)
			handlers.RespondNotFound(w, msgSessionNotFound)
		case errors.Is(err, sessions.ErrAccessDenied):
			h.logger.Warn("POST /wizard-sessions/%s/suggestions/accept - Access denied for user_id=%d", sessionID, userID)
			handlers.RespondForbidden(w, msgAccessDenied)
		case errors.Is(err, wizard.ErrSuggestionNotOffered):
			h.logger.Warn("POST /wizard-sessions/%s/suggestions/accept - Suggestion not offered", sessionID)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgSuggestionNotOffered)
		case errors.Is(err, wizard.ErrWizardCompleted):
			h.logger.Warn("POST /wizard-sessions/%s/suggestions/accept - Session already completed", sessionID)
			handlers.RespondError(w, http.StatusConflict, msgWizardCompleted)
		case errors.Is(err, sessions.ErrInvalidInput), errors.Is(err, wizard.ErrInvalidInput):
			h.logger.Warn("POST /wizard-sessions/%s/suggestions/accept - Invalid input: %v", sessionID, err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)
		default:
			h.logger.Error("POST /wizard-sessions/%s/suggestions/accept - Failed to accept suggestion: %v", sessionID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /wizard-sessions/%s/suggestions/accept - Suggestion accepted by user_id=%d", sessionID, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
