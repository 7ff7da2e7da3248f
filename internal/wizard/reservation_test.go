package wizard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/integrations/bookingservice"
)

// reachPaymentStep доводит сессию до шага оплаты: корт выбран, запрос на
// создание брони поставлен в очередь
func reachPaymentStep(t *testing.T, env *testEnv) {
	t.Helper()

	env.dispatcher.Drain()
	require.NoError(t, env.controller.SelectCourt(1))
	require.NoError(t, env.controller.Advance()) // -> confirmation
	require.NoError(t, env.controller.Advance()) // -> payment
	require.Equal(t, domain.StepPayment, env.controller.Snapshot().ActiveStep)
}

func holdEnv(t *testing.T) *testEnv {
	t.Helper()

	courts := &fakeCourts{respond: twoCourtsResponse}
	bookings := &fakeBookings{}
	env := newCourtStepEnv(t, courts, bookings)

	bookings.holdResp = &bookingservice.Hold{
		ReservationID: "res-1",
		ExpiresAt:     env.clock.Now().Add(5 * time.Minute),
	}
	return env
}

func TestReservation_HoldCreatedOnPaymentStep(t *testing.T) {
	env := holdEnv(t)
	reachPaymentStep(t, env)

	// Бронь создается асинхронно при входе на шаг оплаты
	assert.Equal(t, domain.ReservationReserving, env.controller.Snapshot().Draft.ReservationState)

	env.dispatcher.Drain()

	snap := env.controller.Snapshot()
	assert.Equal(t, domain.ReservationHeld, snap.Draft.ReservationState)
	require.NotNil(t, snap.Draft.Hold)
	assert.Equal(t, "res-1", snap.Draft.Hold.ReservationID)
	assert.Equal(t, int64(300), snap.Draft.Hold.RemainingSeconds)
	assert.Equal(t, 1, env.recorder.holdsCreated)
}

func TestReservation_HoldExpiry(t *testing.T) {
	env := holdEnv(t)
	reachPaymentStep(t, env)
	env.dispatcher.Drain()

	// За секунду до истечения бронь еще жива
	env.clock.Advance(299 * time.Second)
	assert.False(t, env.controller.onTick())
	snap := env.controller.Snapshot()
	assert.Equal(t, domain.ReservationHeld, snap.Draft.ReservationState)
	assert.Equal(t, int64(1), snap.Draft.Hold.RemainingSeconds)

	// Ровно в момент истечения переход в Expired, односторонний и идемпотентный
	env.clock.Advance(time.Second)
	assert.True(t, env.controller.onTick())
	assert.True(t, env.controller.onTick())

	snap = env.controller.Snapshot()
	assert.Equal(t, domain.ReservationExpired, snap.Draft.ReservationState)
	assert.Equal(t, 1, env.recorder.holdsExpired)

	// Отправка после истечения отклоняется
	_, err := env.controller.Submit(context.Background())
	assert.ErrorIs(t, err, ErrHoldExpired)
}

func TestReservation_RetreatKeepsHold(t *testing.T) {
	env := holdEnv(t)
	reachPaymentStep(t, env)
	env.dispatcher.Drain()

	require.NoError(t, env.controller.Retreat())
	snap := env.controller.Snapshot()
	assert.Equal(t, domain.StepConfirmation, snap.ActiveStep)
	assert.Equal(t, domain.ReservationHeld, snap.Draft.ReservationState)
	assert.Empty(t, env.bookings.Released())

	// Возврат на шаг оплаты не пересоздает бронь
	require.NoError(t, env.controller.Advance())
	env.dispatcher.Drain()
	assert.Equal(t, 1, env.bookings.HoldCalls())
}

func TestReservation_SelectionChangeAbandonsHold(t *testing.T) {
	env := holdEnv(t)
	reachPaymentStep(t, env)
	env.dispatcher.Drain()

	date := time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)
	require.NoError(t, env.controller.SetDateTime(date, "20:00", 90, domain.FormatAny))
	env.dispatcher.Drain()

	snap := env.controller.Snapshot()
	assert.Equal(t, domain.ReservationIdle, snap.Draft.ReservationState)
	assert.Nil(t, snap.Draft.Hold)
	assert.Equal(t, []string{"res-1"}, env.bookings.Released())
}

func TestReservation_StaleHoldResponseReleased(t *testing.T) {
	env := holdEnv(t)
	reachPaymentStep(t, env)

	// Запрос на создание брони еще в очереди, игрок меняет время:
	// попытка инвалидируется до прихода ответа
	date := time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)
	require.NoError(t, env.controller.SetDateTime(date, "20:00", 90, domain.FormatAny))

	env.dispatcher.Drain()

	// Созданная устаревшей попыткой бронь вежливо освобождена
	snap := env.controller.Snapshot()
	assert.NotEqual(t, domain.ReservationHeld, snap.Draft.ReservationState)
	assert.Equal(t, []string{"res-1"}, env.bookings.Released())
	assert.Equal(t, 0, env.recorder.holdsCreated)
}

func TestReservation_HoldConflictThenRetry(t *testing.T) {
	env := holdEnv(t)
	env.bookings.holdErr = bookingservice.ErrSlotConflict
	reachPaymentStep(t, env)
	env.dispatcher.Drain()

	snap := env.controller.Snapshot()
	assert.Equal(t, domain.ReservationFailed, snap.Draft.ReservationState)
	assert.Equal(t, 1, env.recorder.holdConflicts)

	// Повтор после устранения конфликта
	env.bookings.mu.Lock()
	env.bookings.holdErr = nil
	env.bookings.mu.Unlock()

	require.NoError(t, env.controller.RetryHold())
	env.dispatcher.Drain()
	assert.Equal(t, domain.ReservationHeld, env.controller.Snapshot().Draft.ReservationState)
}

func TestReservation_RetryHoldOffPaymentStep(t *testing.T) {
	env := holdEnv(t)
	env.dispatcher.Drain()
	require.NoError(t, env.controller.SelectCourt(1))

	// Вне шага оплаты повтор брони отклоняется собственной ошибкой
	assert.ErrorIs(t, env.controller.RetryHold(), ErrRetryNotAllowed)
	assert.Equal(t, 0, env.bookings.HoldCalls())
}

func TestReservation_SubmitSuccess(t *testing.T) {
	env := holdEnv(t)
	env.bookings.bookingResp = &bookingservice.Booking{BookingID: 555}

	var completions []Completion
	env.controller.onComplete = func(c Completion) {
		completions = append(completions, c)
	}

	reachPaymentStep(t, env)
	env.dispatcher.Drain()

	provider, ok := domain.FindPaymentProvider(domain.PaymentProviderCard)
	require.True(t, ok)
	require.NoError(t, env.controller.SelectPaymentProvider(provider))

	completion, err := env.controller.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(555), completion.BookingID)
	assert.Equal(t, "19:00", completion.StartTime)
	assert.Equal(t, "20:30", completion.EndTime)

	snap := env.controller.Snapshot()
	assert.True(t, snap.Completed)
	assert.Equal(t, domain.StepFinal, snap.ActiveStep)
	assert.Equal(t, domain.ReservationConsumed, snap.Draft.ReservationState)
	require.NotNil(t, snap.Draft.BookingID)
	assert.Equal(t, int64(555), *snap.Draft.BookingID)

	// Callback вызывается ровно один раз, повторная отправка отклоняется
	require.Len(t, completions, 1)
	_, err = env.controller.Submit(context.Background())
	assert.ErrorIs(t, err, ErrWizardCompleted)
	assert.Len(t, completions, 1)
}

func TestReservation_SubmitConflict(t *testing.T) {
	env := holdEnv(t)
	env.bookings.bookingErr = bookingservice.ErrSlotConflict

	reachPaymentStep(t, env)
	env.dispatcher.Drain()

	provider, _ := domain.FindPaymentProvider(domain.PaymentProviderSBP)
	require.NoError(t, env.controller.SelectPaymentProvider(provider))

	_, err := env.controller.Submit(context.Background())
	assert.ErrorIs(t, err, ErrBookingConflict)

	// Конфликт: шаг не меняется, бронь потеряна, нужна новая
	snap := env.controller.Snapshot()
	assert.Equal(t, domain.StepPayment, snap.ActiveStep)
	assert.Equal(t, domain.SubmissionConflict, snap.Draft.SubmissionState)
	assert.Equal(t, domain.ReservationFailed, snap.Draft.ReservationState)
	assert.Equal(t, 1, env.recorder.submitConflicts)

	// Retreat очищает ошибку отправки
	require.NoError(t, env.controller.Retreat())
	assert.Equal(t, domain.SubmissionNone, env.controller.Snapshot().Draft.SubmissionState)
}

func TestReservation_SubmitPreconditions(t *testing.T) {
	env := holdEnv(t)
	env.dispatcher.Drain()
	require.NoError(t, env.controller.SelectCourt(1))

	// Вне шага оплаты
	_, err := env.controller.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitNotAllowed)

	require.NoError(t, env.controller.Advance()) // -> confirmation
	require.NoError(t, env.controller.Advance()) // -> payment

	// Бронь еще создается (очередь не разобрана); состояние брони
	// проверяется раньше способа оплаты
	_, err = env.controller.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNoActiveHold)

	env.dispatcher.Drain()

	// Бронь удерживается, способ оплаты не выбран
	_, err = env.controller.Submit(context.Background())
	assert.ErrorIs(t, err, ErrPaymentProviderRequired)
}
