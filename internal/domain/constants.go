package domain

// MaxDurationMinutes максимальная длительность бронирования
const MaxDurationMinutes = 240

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// DefaultReservationTickSeconds период проверки истечения брони (1 Гц)
const DefaultReservationTickSeconds = 1
