package update_selection

// Поля выбора в пути запроса
const (
	fieldClub            = "club"
	fieldDateTime        = "date-time"
	fieldCourt           = "court"
	fieldPaymentProvider = "payment-provider"
)

// SelectClubRequest HTTP request model для выбора клуба
type SelectClubRequest struct {
	ClubID int64 `json:"clubId"`
}

// SetDateTimeRequest HTTP request model для выбора даты/времени
type SetDateTimeRequest struct {
	Date            string `json:"date"`      // "2026-08-23"
	StartTime       string `json:"startTime"` // "19:00"
	DurationMinutes int    `json:"durationMinutes"`
	CourtFormat     string `json:"courtFormat,omitempty"`
}

// SelectCourtRequest HTTP request model для выбора корта
type SelectCourtRequest struct {
	CourtID int64 `json:"courtId"`
}

// SelectPaymentProviderRequest HTTP request model для выбора способа оплаты
type SelectPaymentProviderRequest struct {
	ProviderID string `json:"providerId"`
}
