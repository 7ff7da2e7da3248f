package close_session

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/sessions"
)

const (
	msgSessionNotFound = "сессия мастера не найдена"
	msgAccessDenied    = "нет доступа к этой сессии"
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

// Handle DELETE /api/v1/wizard-sessions/{sessionId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w)
		return
	}
	sessionID := mux.Vars(r)["sessionId"]

	if err := h.service.Close(r.Context(), sessionID, userID); err != nil {
		switch {
		case errors.Is(err, sessions.ErrSessionNotFound):
			h.logger.Warn("DELETE /wizard-sessions/%s - Session not found", sessionID)
			handlers.RespondNotFound(w, msgSessionNotFound)
		case errors.Is(err, sessions.ErrAccessDenied):
			h.logger.Warn("DELETE /wizard-sessions/%s - Access denied for user_id=%d", sessionID, userID)
			handlers.RespondForbidden(w, msgAccessDenied)
		default:
			h.logger.Error("DELETE /wizard-sessions/%s - Failed to close session: %v", sessionID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /wizard-sessions/%s - Session closed by user_id=%d", sessionID, userID)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}
