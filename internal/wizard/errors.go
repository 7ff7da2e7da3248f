package wizard

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("wizard: invalid input data")

	// ErrDateInPast возвращается, когда выбранная дата в прошлом
	ErrDateInPast = errors.New("wizard: date is in the past")

	// ErrInvalidDuration возвращается при некорректной длительности
	ErrInvalidDuration = errors.New("wizard: invalid duration")

	// ErrOutsideBusinessHours возвращается, когда слот не попадает в рабочие
	// часы выбранного клуба
	ErrOutsideBusinessHours = errors.New("wizard: slot is outside club business hours")

	// ErrCourtNotAvailable возвращается при выборе корта, которого нет среди
	// доступных по текущему ключу запроса
	ErrCourtNotAvailable = errors.New("wizard: court is not among available candidates")

	// ErrSuggestionNotOffered возвращается при принятии альтернативы,
	// которой нет в текущем наборе предложений
	ErrSuggestionNotOffered = errors.New("wizard: suggestion was not offered")

	// ErrStepIncomplete возвращается из advance, когда условие активного шага
	// не выполнено; текущий шаг при этом не меняется
	ErrStepIncomplete = errors.New("wizard: active step precondition is not met")

	// ErrSubmitNotAllowed возвращается из submit вне шага оплаты
	ErrSubmitNotAllowed = errors.New("wizard: submit is only allowed on the payment step")

	// ErrRetryNotAllowed возвращается из повтора брони вне шага оплаты
	ErrRetryNotAllowed = errors.New("wizard: hold retry is only allowed on the payment step")

	// ErrPaymentProviderRequired возвращается из submit без выбранного способа оплаты
	ErrPaymentProviderRequired = errors.New("wizard: payment provider is not selected")

	// ErrNoActiveHold возвращается из submit без удерживаемой брони
	ErrNoActiveHold = errors.New("wizard: no active reservation hold")

	// ErrHoldExpired возвращается из submit после истечения брони
	ErrHoldExpired = errors.New("wizard: reservation hold has expired")

	// ErrBookingConflict возвращается, когда слот заняли между удержанием и
	// отправкой; для этой брони ошибка неустранима - нужна новая бронь
	ErrBookingConflict = errors.New("wizard: booking slot conflict")

	// ErrWizardCompleted возвращается при попытке изменить завершенный мастер
	ErrWizardCompleted = errors.New("wizard: session is already completed")

	// ErrInternal возвращается при внутренних ошибках
	ErrInternal = errors.New("wizard: internal error")
)
