package start_session

import "github.com/m04kA/SMC-CourtBookingService/internal/service/sessions/models"

// StartSessionRequest HTTP request model
// Все предвыборы опциональны; идентификатор пользователя берется из
// контекста аутентификации, а не из тела запроса.
type StartSessionRequest struct {
	ClubID          *int64  `json:"clubId,omitempty"`
	CourtID         *int64  `json:"courtId,omitempty"`
	Date            *string `json:"date,omitempty"`      // "2026-08-23"
	StartTime       *string `json:"startTime,omitempty"` // "19:00"
	DurationMinutes *int    `json:"durationMinutes,omitempty"`
	CourtFormat     *string `json:"courtFormat,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *StartSessionRequest) ToServiceRequest(userID int64) *models.CreateSessionRequest {
	return &models.CreateSessionRequest{
		UserID:          userID,
		ClubID:          r.ClubID,
		CourtID:         r.CourtID,
		Date:            r.Date,
		StartTime:       r.StartTime,
		DurationMinutes: r.DurationMinutes,
		CourtFormat:     r.CourtFormat,
	}
}
