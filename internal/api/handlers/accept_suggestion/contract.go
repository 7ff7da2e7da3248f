package accept_suggestion

import (
	"context"

	"github.com/m04kA/SMC-CourtBookingService/internal/service/sessions/models"
)

type SessionService interface {
	AcceptSuggestion(ctx context.Context, sessionID string, req *models.AcceptSuggestionRequest) (*models.SessionResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
