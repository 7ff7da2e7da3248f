package wizard

import (
	"context"
	"errors"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/integrations/bookingservice"
)

// ensureHold инициирует создание временной брони при входе на шаг оплаты
// Если бронь уже удерживается или создается - повторная не создается.
// Вызывается под блокировкой.
func (c *Controller) ensureHold() {
	if !c.draft.ReservationState.CanCreateHold() {
		return
	}
	if !c.draft.HasCourt() || !c.draft.HasDateTime() {
		return
	}
	c.startHold()
}

// startHold отправляет запрос на создание брони вне блокировки сессии
//
// Номер попытки фиксируется на момент отправки; ответ со старым номером
// (выбор успел смениться) не применяется, а созданная им бронь освобождается.
func (c *Controller) startHold() {
	startAt, err := c.draft.StartTime.OnDate(c.draft.Date)
	if err != nil {
		c.logger.Error("Wizard %s: failed to resolve hold start: %v", c.sessionID, err)
		c.draft.ReservationState = domain.ReservationFailed
		return
	}
	endAt := startAt.Add(time.Duration(c.draft.DurationMinutes) * time.Minute)

	c.reservationAttempt++
	attempt := c.reservationAttempt
	courtID := c.draft.Court.ID

	c.draft.ReservationState = domain.ReservationReserving
	c.draft.Hold = nil

	c.logger.Info("Wizard %s: hold requested, court=%d, attempt=%d", c.sessionID, courtID, attempt)

	c.dispatcher.Dispatch(func() {
		hold, err := c.bookings.CreateHold(context.Background(), bookingservice.CreateHoldRequest{
			CourtID: courtID,
			Start:   startAt,
			End:     endAt,
		})
		c.applyHold(attempt, courtID, hold, err)
	})
}

// applyHold применяет ответ на запрос создания брони
//
// Ответ на устаревшую попытку (выбор сменился после отправки) отбрасывается;
// если бронь при этом была создана - она вежливо освобождается, чтобы не
// держать слот, который игроку уже не нужен.
func (c *Controller) applyHold(attempt int64, courtID int64, hold *bookingservice.Hold, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if attempt != c.reservationAttempt || c.closed {
		if hold != nil {
			c.releaseAsync(hold.ReservationID)
		}
		c.logger.Info("Wizard %s: stale hold response discarded, attempt=%d", c.sessionID, attempt)
		return
	}

	if err != nil {
		c.draft.ReservationState = domain.ReservationFailed
		if errors.Is(err, bookingservice.ErrSlotConflict) {
			// Слот заняли, пока игрок шел по шагам: нужна смена корта или слота
			c.recorder.RecordHoldConflict()
			c.logger.Warn("Wizard %s: hold conflict, court=%d", c.sessionID, courtID)
		} else {
			c.logger.Error("Wizard %s: hold creation failed, court=%d: %v", c.sessionID, courtID, err)
		}
		return
	}

	c.draft.ReservationState = domain.ReservationHeld
	c.draft.Hold = &domain.ReservationHold{
		ID:        hold.ReservationID,
		CourtID:   courtID,
		ExpiresAt: hold.ExpiresAt,
	}
	c.recorder.RecordHoldCreated()
	c.logger.Info("Wizard %s: hold created, reservation=%s, expires_at=%s",
		c.sessionID, hold.ReservationID, hold.ExpiresAt.Format(time.RFC3339))

	c.startTicker()
}

// RetryHold повторяет создание брони после неудачи
func (c *Controller) RetryHold() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureMutable(); err != nil {
		return err
	}
	if c.activeStep() != domain.StepPayment {
		return ErrRetryNotAllowed
	}
	c.ensureHold()
	return nil
}

// startTicker запускает секундный отсчет времени удержания
// Отсчет презентационный: истечение по тику одностороннее и идемпотентное,
// но источником истины остается ответ сервера при отправке.
func (c *Controller) startTicker() {
	c.stopTicker()

	stop := make(chan struct{})
	c.tickerStop = stop

	// Отсчет всегда живет в собственной горутине: это фоновый цикл,
	// а не разовая задача
	go func() {
		ticker := time.NewTicker(c.tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if c.onTick() {
					return
				}
			}
		}
	}()
}

// stopTicker останавливает отсчет времени удержания (вызывается под блокировкой)
func (c *Controller) stopTicker() {
	if c.tickerStop != nil {
		close(c.tickerStop)
		c.tickerStop = nil
	}
}

// onTick обрабатывает тик отсчета; возвращает true, когда отсчет больше не нужен
func (c *Controller) onTick() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.draft.ReservationState != domain.ReservationHeld || c.draft.Hold == nil {
		return true
	}
	if c.draft.Hold.IsExpired(c.timeProvider.Now()) {
		c.expireHold()
		return true
	}
	return false
}

// expireHold переводит удерживаемую бронь в истекшую (вызывается под блокировкой)
// Переход односторонний и идемпотентный: повторный вызов ничего не делает.
func (c *Controller) expireHold() {
	if c.draft.ReservationState != domain.ReservationHeld {
		return
	}
	c.draft.ReservationState = domain.ReservationExpired
	c.stopTicker()
	c.recorder.RecordHoldExpired()
	c.logger.Info("Wizard %s: hold expired, reservation=%s", c.sessionID, c.draft.Hold.ID)
}

// abandonHold отказывается от текущей попытки резервирования
//
// Вызывается при смене выбора и закрытии сессии. Инвалидирует номер попытки
// (ответ на запрос в полете будет отброшен), останавливает отсчет и
// best-effort освобождает серверную бронь.
func (c *Controller) abandonHold(reason string) {
	// Инвалидируем ответы на запросы в полете
	if c.draft.ReservationState == domain.ReservationReserving {
		c.reservationAttempt++
	}

	c.stopTicker()

	if c.draft.Hold != nil && c.draft.ReservationState == domain.ReservationHeld {
		c.logger.Info("Wizard %s: hold abandoned (%s), reservation=%s", c.sessionID, reason, c.draft.Hold.ID)
		c.releaseAsync(c.draft.Hold.ID)
	}

	c.draft.ReservationState = domain.ReservationIdle
	c.draft.Hold = nil
}

// releaseAsync освобождает серверную бронь best-effort вызовом
// Ошибка освобождения не влияет на сессию: бронь истечет сама.
func (c *Controller) releaseAsync(reservationID string) {
	c.dispatcher.Dispatch(func() {
		if err := c.bookings.ReleaseHold(context.Background(), reservationID); err != nil {
			c.logger.Warn("Wizard %s: failed to release hold %s: %v", c.sessionID, reservationID, err)
		}
	})
}
