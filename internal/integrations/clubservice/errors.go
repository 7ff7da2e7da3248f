package clubservice

import "errors"

var (
	// ErrClubNotFound возвращается, когда клуб не найден
	ErrClubNotFound = errors.New("club not found")

	// ErrCourtNotFound возвращается, когда корт не найден
	ErrCourtNotFound = errors.New("court not found")

	// ErrClubClosed возвращается, когда клуб закрыт в запрошенное окно
	// Повтор запроса без смены параметров бесполезен.
	ErrClubClosed = errors.New("club is closed for the requested window")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("clubservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("clubservice client: invalid response")

	// ErrUnavailable возвращается при недоступности сервиса или сетевой ошибке
	// Запрос можно повторить без смены параметров.
	ErrUnavailable = errors.New("clubservice unavailable")
)
