package retry_operation

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

// Цели повтора в пути запроса
const (
	targetAvailability = "availability"
	targetHold         = "hold"
)

const (
	msgUnknownTarget   = "неизвестная цель повтора"
	msgSessionNotFound = "сессия мастера не найдена"
	msgAccessDenied    = "нет доступа к этой сессии"
	msgRetryNotAllowed = "повтор недоступен на текущем шаге"
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

// errUnknownTarget маркер неизвестной цели повтора в пути
var errUnknownTarget = errors.New("unknown retry target")

// Handle POST /api/v1/wizard-sessions/{sessionId}/retry/{target}
// Цель в пути определяет, что повторяется: запрос доступности кортов
// (availability) или создание временной брони (hold).
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w)
		return
	}

	vars := mux.Vars(r)
	sessionID := vars["sessionId"]
	target := vars["target"]

	var result *models.SessionResponse
	var err error
	switch target {
	case targetAvailability:
		result, err = h.service.RetryAvailability(r.Context(), sessionID, userID)
	case targetHold:
		result, err = h.service.RetryHold(r.Context(), sessionID, userID)
	default:
		err = errUnknownTarget
	}

	if err != nil {
		h.respondError(w, sessionID, userID, target, err)
		return
	}

	h.logger.Info("POST /wizard-sessions/%s/retry/%s - Retry accepted for user_id=%d", sessionID, target, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// respondError конвертирует ошибку сервиса в HTTP-ответ
func (h *Handler) respondError(w http.ResponseWriter, sessionID string, userID int64, target string, err error) {
	switch {
	case errors.Is(err, errUnknownTarget):
		h.logger.Warn("POST /wizard-sessions/%s/retry/%s - Unknown retry target", sessionID, target)
		handlers.RespondNotFound(w, msgUnknownTarget)

	case errors.Is(err, sessions.ErrSessionNotFound):
		h.logger.Warn("POST /wizard-sessions/%s/retry/%s - Session not found", sessionID, target)
		handlers.RespondNotFound(w, msgSessionNotFound)

	case errors.Is(err, sessions.ErrAccessDenied):
		h.logger.Warn("POST /wizard-sessions/%s/retry/%s - Access denied for user_id=%d", sessionID, target, userID)
		handlers.RespondForbidden(w, msgAccessDenied)

	case errors.Is(err, wizard.ErrRetryNotAllowed):
		h.logger.Warn("POST /wizard-sessions/%s/retry/%s - Retry not allowed on current step", sessionID, target)
		handlers.RespondError(w, http.StatusConflict, msgRetryNotAllowed)

	case errors.Is(err, wizard.ErrWizardCompleted):
		h.logger.Warn("POST /wizard-sessions/%s/retry/%s - Session already completed", sessionID, target)
		handlers.RespondError(w, http.StatusConflict, msgWizardCompleted)

	default:
		h.logger.Error("POST /wizard-sessions/%s/retry/%s - Retry failed: %v", sessionID, target, err)
		handlers.RespondInternalError(w)
	}
}
