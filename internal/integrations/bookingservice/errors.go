package bookingservice

import "errors"

var (
	// ErrSlotConflict возвращается, когда корт/слот уже занят (409)
	// При создании брони - слот заняли до удержания; при создании
	// бронирования - слот заняли между удержанием и отправкой.
	ErrSlotConflict = errors.New("court slot is already taken")

	// ErrReservationNotFound возвращается, когда бронь не найдена
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("bookingservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("bookingservice client: invalid response")

	// ErrUnavailable возвращается при недоступности сервиса или сетевой ошибке
	ErrUnavailable = errors.New("bookingservice unavailable")
)
