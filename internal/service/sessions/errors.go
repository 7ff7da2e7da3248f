package sessions

import "errors"

var (
	// ErrSessionNotFound возвращается, когда сессия мастера не найдена
	ErrSessionNotFound = errors.New("wizard session not found")

	// ErrAccessDenied возвращается, когда сессия принадлежит другому пользователю
	ErrAccessDenied = errors.New("access denied")

	// ErrClubNotFound возвращается, когда клуб не найден в каталоге
	ErrClubNotFound = errors.New("club not found")

	// ErrCourtNotFound возвращается, когда корт не найден в каталоге
	ErrCourtNotFound = errors.New("court not found")

	// ErrPaymentProviderNotFound возвращается при неизвестном способе оплаты
	ErrPaymentProviderNotFound = errors.New("payment provider not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
