package list_clubs

import (
	"context"

	"github.com/m04kA/SMC-CourtBookingService/internal/service/sessions/models"
)

type SessionService interface {
	ListClubs(ctx context.Context) (*models.ClubListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
