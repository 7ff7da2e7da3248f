package start_session

import (
	"errors"
	"io"
	"net/http"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/sessions"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidPreselect   = "некорректные параметры предварительного выбора"
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

// Handle POST /api/v1/wizard-sessions
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w)
		return
	}

	// Пустое тело допустимо: сессия без предвыборов
	var req StartSessionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("POST /wizard-sessions - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Create(r.Context(), req.ToServiceRequest(userID))
	if err != nil {
		switch {
		case errors.Is(err, sessions.ErrInvalidInput):
			h.logger.Warn("POST /wizard-sessions - Invalid preselection: user_id=%d: %v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidPreselect)
		default:
			h.logger.Error("POST /wizard-sessions - Failed to start session: user_id=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /wizard-sessions - Session started: session_id=%s, user_id=%d", result.SessionID, userID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
