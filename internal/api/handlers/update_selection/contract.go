package update_selection

import (
	"context"

	"github.com/m04kA/SMC-CourtBookingService/internal/service/sessions/models"
)

type SessionService interface {
	SelectClub(ctx context.Context, sessionID string, userID, clubID int64) (*models.SessionResponse, error)
	SetDateTime(ctx context.Context, sessionID string, req *models.DateTimeSelection) (*models.SessionResponse, error)
	SelectCourt(ctx context.Context, sessionID string, userID, courtID int64) (*models.SessionResponse, error)
	SelectPaymentProvider(ctx context.Context, sessionID string, userID int64, providerID string) (*models.SessionResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
