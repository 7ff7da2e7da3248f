package accept_suggestion

// AcceptSuggestionRequest HTTP request model
// Kind определяет, какое поле используется: durationMinutes для "duration",
// startTime для "time_slot".
type AcceptSuggestionRequest struct {
	Kind            string `json:"kind"`
	DurationMinutes int    `json:"durationMinutes,omitempty"`
	StartTime       string `json:"startTime,omitempty"`
}
