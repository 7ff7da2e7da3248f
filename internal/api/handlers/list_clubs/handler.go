package list_clubs

import (
	"net/http"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
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

// Handle GET /api/v1/clubs
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListClubs(r.Context())
	if err != nil {
		h.logger.Error("GET /clubs - Failed to list clubs: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /clubs - Listed %d clubs", len(result.Clubs))
	handlers.RespondJSON(w, http.StatusOK, result)
}
