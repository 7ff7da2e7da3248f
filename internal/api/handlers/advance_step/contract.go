package advance_step

import (
	"context"

	"github.com/m04kA/SMC-CourtBookingService/internal/service/sessions/models"
)

type SessionService interface {
	Advance(ctx context.Context, sessionID string, userID int64) (*models.SessionResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
