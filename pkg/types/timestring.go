package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

// TimeString время в формате HH:MM (например, "10:00")
// Используется для хранения времени начала слота без привязки к дате.
// Допустимый диапазон - от "00:00" до "24:00" включительно
// ("24:00" используется как время закрытия в конце суток).
type TimeString string

const minutesPerDay = 24 * 60

var (
	// ErrInvalidTimeString возвращается при некорректном формате времени
	ErrInvalidTimeString = errors.New("invalid time string format, expected HH:MM")

	// ErrTimeOutOfRange возвращается, когда время выходит за пределы суток
	ErrTimeOutOfRange = errors.New("time is out of day range")
)

// NewTimeString создает TimeString из time.Time (отбрасывает дату и секунды)
func NewTimeString(t time.Time) TimeString {
	return TimeString(t.Format("15:04"))
}

// NewTimeStringFromString создает TimeString из строки с валидацией
func NewTimeStringFromString(s string) (TimeString, error) {
	ts := TimeString(s)
	if err := ts.Validate(); err != nil {
		return "", err
	}
	return ts, nil
}

// NewTimeStringFromMinutes создает TimeString из количества минут от начала суток
func NewTimeStringFromMinutes(minutes int) (TimeString, error) {
	if minutes < 0 || minutes > minutesPerDay {
		return "", ErrTimeOutOfRange
	}
	return TimeString(fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)), nil
}

// String возвращает строковое представление времени
func (t TimeString) String() string {
	return string(t)
}

// IsZero возвращает true, если время не задано
func (t TimeString) IsZero() bool {
	return t == ""
}

// Validate проверяет формат HH:MM и допустимый диапазон
func (t TimeString) Validate() error {
	_, err := t.Minutes()
	return err
}

// Minutes возвращает количество минут от начала суток
func (t TimeString) Minutes() (int, error) {
	if len(t) != 5 || t[2] != ':' {
		return 0, ErrInvalidTimeString
	}
	var h, m int
	if _, err := fmt.Sscanf(string(t), "%2d:%2d", &h, &m); err != nil {
		return 0, ErrInvalidTimeString
	}
	if m < 0 || m > 59 || h < 0 || h > 24 || (h == 24 && m != 0) {
		return 0, ErrTimeOutOfRange
	}
	return h*60 + m, nil
}

// AddMinutes возвращает время, сдвинутое на указанное количество минут
// Возвращает ошибку, если результат выходит за пределы суток
func (t TimeString) AddMinutes(minutes int) (TimeString, error) {
	total, err := t.Minutes()
	if err != nil {
		return "", err
	}
	return NewTimeStringFromMinutes(total + minutes)
}

// IsBefore возвращает true, если t строго раньше other
// Формат HH:MM с ведущими нулями допускает лексикографическое сравнение
func (t TimeString) IsBefore(other TimeString) bool {
	return string(t) < string(other)
}

// IsAfter возвращает true, если t строго позже other
func (t TimeString) IsAfter(other TimeString) bool {
	return string(t) > string(other)
}

// OnDate возвращает time.Time для указанной даты с этим временем
func (t TimeString) OnDate(date time.Time) (time.Time, error) {
	minutes, err := t.Minutes()
	if err != nil {
		return time.Time{}, err
	}
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return dayStart.Add(time.Duration(minutes) * time.Minute), nil
}

// Value реализует driver.Valuer для сохранения в БД
func (t TimeString) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return string(t), nil
}

// Scan реализует sql.Scanner для чтения из БД
func (t *TimeString) Scan(src interface{}) error {
	if src == nil {
		*t = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*t = TimeString(v)
	case []byte:
		*t = TimeString(v)
	case time.Time:
		*t = NewTimeString(v)
	default:
		return fmt.Errorf("cannot scan %T into TimeString", src)
	}
	// PostgreSQL может вернуть время с секундами ("10:00:00")
	if len(*t) > 5 {
		*t = (*t)[:5]
	}
	return t.Validate()
}
