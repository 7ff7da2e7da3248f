package get_session

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

// Handle GET /api/v1/wizard-sessions/{sessionId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w)
		return
	}
	sessionID := mux.Vars(r)["sessionId"]

	result, err := h.service.Get(r.Context(), sessionID, userID)
	if err != nil {
		switch {
		case errors.Is(err, sessions.ErrSessionNotFound):
			h.logger.Warn("GET /wizard-sessions/%s - Session not found", sessionID)
			handlers.RespondNotFound(w, msgSessionNotFound)
		case errors.Is(err, sessions.ErrAccessDenied):
			h.logger.Warn("GET /wizard-sessions/%s - Access denied for user_id=%d", sessionID, userID)
			handlers.RespondForbidden(w, msgAccessDenied)
		default:
			h.logger.Error("GET /wizard-sessions/%s - Failed to get session: %v", sessionID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
