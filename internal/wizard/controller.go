package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/integrations/bookingservice"
	"github.com/m04kA/SMC-CourtBookingService/internal/suggest"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// Controller контроллер одной сессии мастера быстрого бронирования
//
// Единолично владеет черновиком бронирования на время жизни сессии и
// координирует план шагов, запросы доступности, резервирование и отправку.
// Все события сессии (ввод игрока, ответы сети, тики таймера) сериализуются
// мьютексом и выполняются до конца - параллельного изменения черновика нет.
type Controller struct {
	mu sync.Mutex

	sessionID string
	userID    int64

	plan    []domain.StepDescriptor
	stepIdx int
	draft   domain.BookingDraft

	// Ключ запроса доступности в полете; сравнивается при приходе ответа -
	// устаревшие ответы (ключ уже сменился) отбрасываются
	inFlightKey string
	// Последний успешно разрешенный ключ; повторный запрос с тем же ключом
	// подавляется
	resolvedKey string

	// Номер попытки резервирования; ответ на устаревшую попытку отбрасывается
	reservationAttempt int64
	tickerStop         chan struct{}
	tickInterval       time.Duration

	courts       AvailabilityClient
	bookings     BookingClient
	timeProvider TimeProvider
	dispatcher   Dispatcher
	recorder     Recorder
	logger       Logger

	// onComplete вызывается ровно один раз при подтверждении бронирования.
	// Callback не должен обращаться к контроллеру (вызывается под блокировкой).
	onComplete        func(Completion)
	completionEmitted bool

	closed bool
}

// Params параметры создания контроллера сессии
type Params struct {
	SessionID    string
	UserID       int64
	Plan         []domain.StepDescriptor
	Draft        domain.BookingDraft
	Courts       AvailabilityClient
	Bookings     BookingClient
	TimeProvider TimeProvider
	Dispatcher   Dispatcher
	Recorder     Recorder
	Logger       Logger
	TickInterval time.Duration
	OnComplete   func(Completion)
}

// NewController создает контроллер сессии мастера
// Если первый шаг плана - выбор корта (клуб и дата/время предвыбраны),
// сразу инициирует запрос доступности.
func NewController(p Params) *Controller {
	c := &Controller{
		sessionID:    p.SessionID,
		userID:       p.UserID,
		plan:         p.Plan,
		draft:        p.Draft,
		courts:       p.Courts,
		bookings:     p.Bookings,
		timeProvider: p.TimeProvider,
		dispatcher:   p.Dispatcher,
		recorder:     p.Recorder,
		logger:       p.Logger,
		tickInterval: p.TickInterval,
		onComplete:   p.OnComplete,
	}
	if c.timeProvider == nil {
		c.timeProvider = &RealTimeProvider{}
	}
	if c.dispatcher == nil {
		c.dispatcher = &GoDispatcher{}
	}
	if c.recorder == nil {
		c.recorder = NopRecorder{}
	}
	if c.tickInterval <= 0 {
		c.tickInterval = domain.DefaultReservationTickSeconds * time.Second
	}

	c.mu.Lock()
	c.maybeStartAvailability()
	c.mu.Unlock()

	return c
}

// SessionID возвращает идентификатор сессии
func (c *Controller) SessionID() string {
	return c.sessionID
}

// UserID возвращает владельца сессии
func (c *Controller) UserID() int64 {
	return c.userID
}

// activeStep возвращает активный шаг плана (вызывается под блокировкой)
func (c *Controller) activeStep() domain.StepID {
	return c.plan[c.stepIdx].ID
}

// SelectClub применяет выбор клуба
// Смена клуба каскадно сбрасывает выбранный корт, результаты доступности
// и активную бронь.
func (c *Controller) SelectClub(club domain.SelectedClub) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureMutable(); err != nil {
		return err
	}
	if club.ID <= 0 {
		return fmt.Errorf("%w: club id must be positive", ErrInvalidInput)
	}

	if c.draft.SetClub(club) {
		c.logger.Info("Wizard %s: club changed to id=%d, invalidating dependent selections", c.sessionID, club.ID)
		c.onSelectionInvalidated()
	}
	c.maybeStartAvailability()
	return nil
}

// SetDateTime применяет выбор даты, времени начала, длительности и формата корта
func (c *Controller) SetDateTime(date time.Time, start types.TimeString, durationMinutes int, format domain.CourtFormat) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureMutable(); err != nil {
		return err
	}
	if err := c.validateDateTime(date, start, durationMinutes, format); err != nil {
		return err
	}

	if c.draft.SetDateTime(date, start, durationMinutes, format) {
		c.logger.Info("Wizard %s: date/time changed to %s %s (%d min), invalidating dependent selections",
			c.sessionID, date.Format(domain.DateFormat), start, durationMinutes)
		c.onSelectionInvalidated()
	}
	c.maybeStartAvailability()
	return nil
}

// SelectCourt применяет выбор корта из доступных по текущему ключу запроса
func (c *Controller) SelectCourt(courtID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureMutable(); err != nil {
		return err
	}
	if courtID <= 0 {
		return fmt.Errorf("%w: court id must be positive", ErrInvalidInput)
	}

	candidate, found := c.findCandidate(courtID)
	if !found {
		return ErrCourtNotAvailable
	}

	if c.draft.SetCourt(domain.SelectedCourt{
		ID:         candidate.CourtID,
		Name:       candidate.Name,
		CourtType:  candidate.CourtType,
		PriceCents: candidate.PriceCents,
	}) {
		// Смена корта делает бронь на прежний корт бесполезной
		c.abandonHold("court changed")
	}
	return nil
}

// SelectPaymentProvider применяет выбор способа оплаты
func (c *Controller) SelectPaymentProvider(provider domain.PaymentProvider) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureMutable(); err != nil {
		return err
	}
	if provider.ID == "" {
		return fmt.Errorf("%w: payment provider id is required", ErrInvalidInput)
	}

	c.draft.SetPaymentProvider(provider)
	return nil
}

// AcceptSuggestion принимает предложенную альтернативу
//
// Атомарно: меняет единственное поле (длительность или время начала),
// сбрасывает выбранный корт и набор предложений, инициирует новый запрос
// доступности под новым ключом.
func (c *Controller) AcceptSuggestion(kind suggest.Kind, durationMinutes int, start types.TimeString) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureMutable(); err != nil {
		return err
	}
	if c.draft.Suggestions == nil {
		return ErrSuggestionNotOffered
	}

	switch kind {
	case suggest.KindDuration:
		if !suggest.ContainsDuration(*c.draft.Suggestions, durationMinutes) {
			return ErrSuggestionNotOffered
		}
		c.draft.ApplyDurationSuggestion(durationMinutes)
	case suggest.KindTimeSlot:
		if !suggest.ContainsTimeSlot(*c.draft.Suggestions, start.String()) {
			return ErrSuggestionNotOffered
		}
		c.draft.ApplyTimeSlotSuggestion(start)
	default:
		return fmt.Errorf("%w: unknown suggestion kind %q", ErrInvalidInput, kind)
	}

	c.onSelectionInvalidated()
	c.maybeStartAvailability()
	return nil
}

// Advance переводит мастер на следующий шаг плана
//
// Если условие активного шага не выполнено - состояние не меняется и
// возвращается ErrStepIncomplete (повторный вызов идемпотентен). Вход на
// шаг выбора корта лениво запускает запрос доступности, вход на шаг оплаты -
// создание брони.
func (c *Controller) Advance() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureMutable(); err != nil {
		return err
	}
	if c.stepIdx >= len(c.plan)-1 {
		return ErrStepIncomplete
	}
	if !c.stepPreconditionMet(c.activeStep()) {
		return ErrStepIncomplete
	}

	c.stepIdx++
	entered := c.activeStep()
	c.logger.Info("Wizard %s: advanced to step %s", c.sessionID, entered)

	switch entered {
	case domain.StepCourtSelection:
		c.maybeStartAvailability()
	case domain.StepPayment:
		c.ensureHold()
	}
	return nil
}

// Retreat возвращает мастер на предыдущий шаг плана
//
// Сбрасывает ошибку отправки. Удерживаемую бронь не отменяет: при возврате
// в рамках того же корта/слота обратный отсчет не перезапускается.
func (c *Controller) Retreat() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureMutable(); err != nil {
		return err
	}
	if c.stepIdx == 0 {
		return nil
	}

	c.stepIdx--
	c.draft.ClearSubmissionError()
	c.logger.Info("Wizard %s: retreated to step %s", c.sessionID, c.activeStep())
	return nil
}

// Submit отправляет финальное бронирование по удерживаемому корту/слоту
//
// Допустим только на шаге оплаты с активной бронью и выбранным способом
// оплаты. Состояние брони проверяется раньше способа оплаты: без живой
// брони выбирать оплату бессмысленно. Конфликт (409) - блокирующая ошибка
// для этой брони: шаг не меняется, бронь переходит в Failed, нужна новая.
func (c *Controller) Submit(ctx context.Context) (*Completion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrWizardCompleted
	}
	if c.draft.SubmissionState == domain.SubmissionCompleted {
		return nil, ErrWizardCompleted
	}
	if c.activeStep() != domain.StepPayment {
		return nil, ErrSubmitNotAllowed
	}

	switch c.draft.ReservationState {
	case domain.ReservationHeld:
		// Продолжаем
	case domain.ReservationExpired:
		return nil, ErrHoldExpired
	default:
		return nil, ErrNoActiveHold
	}

	// Отсчет не источник истины, но истекшую по часам бронь не отправляем
	now := c.timeProvider.Now()
	if c.draft.Hold.IsExpired(now) {
		c.expireHold()
		return nil, ErrHoldExpired
	}

	if !c.draft.HasPaymentProvider() {
		return nil, ErrPaymentProviderRequired
	}

	startAt, err := c.draft.StartTime.OnDate(c.draft.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to resolve slot start: %v", ErrInternal, err)
	}
	endAt := startAt.Add(time.Duration(c.draft.DurationMinutes) * time.Minute)

	booking, err := c.bookings.CreateBooking(ctx, bookingservice.CreateBookingRequest{
		CourtID:           c.draft.Court.ID,
		Start:             startAt,
		End:               endAt,
		PaymentProviderID: c.draft.PaymentProvider.ID,
	})
	if err != nil {
		if errors.Is(err, bookingservice.ErrSlotConflict) {
			// Слот заняли между удержанием и отправкой: ответ сервера
			// авторитетен, бронь считается потерянной
			c.logger.Warn("Wizard %s: submission conflict for court=%d", c.sessionID, c.draft.Court.ID)
			c.draft.SubmissionState = domain.SubmissionConflict
			c.draft.ReservationState = domain.ReservationFailed
			c.stopTicker()
			c.recorder.RecordSubmissionConflict()
			return nil, ErrBookingConflict
		}
		c.logger.Error("Wizard %s: submission failed: %v", c.sessionID, err)
		c.draft.SubmissionState = domain.SubmissionFailed
		return nil, fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
	}

	c.draft.SubmissionState = domain.SubmissionCompleted
	c.draft.BookingID = &booking.BookingID
	c.draft.ReservationState = domain.ReservationConsumed
	c.stopTicker()

	// Переходим на финальный шаг (всегда последний в плане)
	c.stepIdx = len(c.plan) - 1

	endTime, _ := c.draft.EndTime()
	completion := Completion{
		BookingID: booking.BookingID,
		CourtID:   c.draft.Court.ID,
		Date:      c.draft.Date,
		StartTime: c.draft.StartTime.String(),
		EndTime:   endTime.String(),
	}

	c.logger.Info("Wizard %s: booking confirmed, booking_id=%d", c.sessionID, booking.BookingID)

	if !c.completionEmitted && c.onComplete != nil {
		c.completionEmitted = true
		c.onComplete(completion)
	}

	return &completion, nil
}

// Close закрывает сессию мастера
// Черновик отбрасывается независимо от стадии; активная бронь освобождается
// best-effort вызовом.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.abandonHold("session closed")
	c.logger.Info("Wizard %s: session closed", c.sessionID)
}

// ensureMutable проверяет, что сессия допускает изменения
func (c *Controller) ensureMutable() error {
	if c.closed || c.draft.SubmissionState == domain.SubmissionCompleted {
		return ErrWizardCompleted
	}
	return nil
}

// onSelectionInvalidated сбрасывает состояние, зависящее от смененного поля
func (c *Controller) onSelectionInvalidated() {
	c.inFlightKey = ""
	c.resolvedKey = ""
	c.abandonHold("selection changed")
}

// stepPreconditionMet проверяет условие перехода с активного шага
func (c *Controller) stepPreconditionMet(step domain.StepID) bool {
	switch step {
	case domain.StepClubSelection:
		return c.draft.HasClub()
	case domain.StepDateTime:
		return c.draft.HasDateTime()
	case domain.StepCourtSelection:
		return c.draft.HasCourt()
	case domain.StepConfirmation:
		return true
	default:
		// Шаг оплаты завершается через submit, финальный шаг - конечный
		return false
	}
}

// findCandidate ищет корт среди доступных по текущему ключу
func (c *Controller) findCandidate(courtID int64) (domain.CourtCandidate, bool) {
	for _, cand := range c.draft.Candidates {
		if cand.CourtID == courtID {
			return cand, true
		}
	}
	return domain.CourtCandidate{}, false
}

// validateDateTime синхронная валидация даты/времени до сетевых вызовов
func (c *Controller) validateDateTime(date time.Time, start types.TimeString, durationMinutes int, format domain.CourtFormat) error {
	return ValidateDateTime(c.draft.Club, date, start, durationMinutes, format, c.timeProvider.Now())
}

// ValidateDateTime проверяет дату/время/длительность/формат по правилам мастера
// Теми же правилами валидируются предвыборы при старте сессии. Рабочие часы
// проверяются только при переданном клубе.
func ValidateDateTime(club *domain.SelectedClub, date time.Time, start types.TimeString, durationMinutes int, format domain.CourtFormat, now time.Time) error {
	if date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if err := start.Validate(); err != nil {
		return fmt.Errorf("%w: invalid start time: %v", ErrInvalidInput, err)
	}
	if durationMinutes <= 0 || durationMinutes > domain.MaxDurationMinutes {
		return fmt.Errorf("%w: duration must be in (0, %d] minutes", ErrInvalidDuration, domain.MaxDurationMinutes)
	}
	if !format.IsValid() {
		return fmt.Errorf("%w: unknown court format %q", ErrInvalidInput, format)
	}

	if isDateInPast(date, now) {
		return ErrDateInPast
	}

	if club != nil {
		day := club.WorkingHours.ForWeekday(date.Weekday())
		if !day.Covers(start, durationMinutes) {
			return ErrOutsideBusinessHours
		}
	}
	return nil
}

// isDateInPast проверяет, что дата раньше сегодняшнего дня
func isDateInPast(date, now time.Time) bool {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dateOnly.Before(nowOnly)
}
