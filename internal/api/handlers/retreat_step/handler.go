package retreat_step

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
	msgSessionNotFound = "сессия мастера не найдена"
	msgAccessDenied    = "нет доступа к этой сессии"
	msgWizardCompleted = "сессия уже завершена"
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

// Handle POST /api/v1/wizard-sessions/{sessionId}/retreat
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w)
		return
	}
	sessionID := mux.Vars(r)["sessionId"]

	result, err := h.service.Retreat(r.Context(), sessionID, userID)
	if err != nil {
		switch {
		case errors.Is(err, sessions.ErrSessionNotFound):
			h.logger.Warn("POST /wizard-sessions/%s/retreat - Session not found", sessionID)
			handlers.RespondNotFound(w, msgSessionNotFound)
		case errors.Is(err, sessions.ErrAccessDenied):
			h.logger.Warn("POST /wizard-sessions/%s/retreat - Access denied for user_id=%d", sessionID, userID)
			handlers.RespondForbidden(w, msgAccessDenied)
		case errors.Is(err, wizard.ErrWizardCompleted):
			h.logger.Warn("POST /wizard-sessions/%s/retreat - Session already completed", sessionID)
			handlers.RespondError(w, http.StatusConflict, msgWizardCompleted)
		default:
			h.logger.Error("POST /wizard-sessions/%s/retreat - Failed to retreat: %v", sessionID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /wizard-sessions/%s/retreat - Retreated to step %s by user_id=%d", sessionID, result.ActiveStep, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
