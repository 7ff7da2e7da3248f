package wizard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/integrations/bookingservice"
	"github.com/m04kA/SMC-CourtBookingService/internal/integrations/clubservice"
	"github.com/m04kA/SMC-CourtBookingService/internal/planner"
	"github.com/m04kA/SMC-CourtBookingService/internal/suggest"
	"github.com/m04kA/SMC-CourtBookingService/pkg/ptr"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// Тестовые двойники

// queueDispatcher собирает асинхронные задачи в очередь; тест выполняет их
// явным вызовом Drain, получая детерминированный порядок событий
type queueDispatcher struct {
	mu    sync.Mutex
	tasks []func()
}

func (d *queueDispatcher) Dispatch(fn func()) {
	d.mu.Lock()
	d.tasks = append(d.tasks, fn)
	d.mu.Unlock()
}

func (d *queueDispatcher) Drain() {
	for {
		d.mu.Lock()
		if len(d.tasks) == 0 {
			d.mu.Unlock()
			return
		}
		fn := d.tasks[0]
		d.tasks = d.tasks[1:]
		d.mu.Unlock()
		fn()
	}
}

func (d *queueDispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tasks)
}

// fakeClock управляемый провайдер времени
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{}) {}
func (nopLogger) Error(string, ...interface{}) {}

// countingRecorder считает бизнес-события для проверок
type countingRecorder struct {
	mu              sync.Mutex
	queries         map[string]int
	staleDiscarded  int
	holdsCreated    int
	holdsExpired    int
	holdConflicts   int
	submitConflicts int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{queries: make(map[string]int)}
}

func (r *countingRecorder) RecordAvailabilityQuery(outcome string) {
	r.mu.Lock()
	r.queries[outcome]++
	r.mu.Unlock()
}
func (r *countingRecorder) RecordStaleAvailabilityDiscarded() {
	r.mu.Lock()
	r.staleDiscarded++
	r.mu.Unlock()
}
func (r *countingRecorder) RecordHoldCreated() {
	r.mu.Lock()
	r.holdsCreated++
	r.mu.Unlock()
}
func (r *countingRecorder) RecordHoldExpired() {
	r.mu.Lock()
	r.holdsExpired++
	r.mu.Unlock()
}
func (r *countingRecorder) RecordHoldConflict() {
	r.mu.Lock()
	r.holdConflicts++
	r.mu.Unlock()
}
func (r *countingRecorder) RecordSubmissionConflict() {
	r.mu.Lock()
	r.submitConflicts++
	r.mu.Unlock()
}

// fakeCourts подменяет клиент каталога
type fakeCourts struct {
	mu      sync.Mutex
	respond func(query domain.AvailabilityQuery) (*clubservice.AvailableCourtsResponse, error)
	calls   int
}

func (f *fakeCourts) GetAvailableCourts(_ context.Context, query domain.AvailabilityQuery) (*clubservice.AvailableCourtsResponse, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.respond(query)
}

func (f *fakeCourts) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeBookings подменяет клиент сервиса бронирований
type fakeBookings struct {
	mu          sync.Mutex
	holdResp    *bookingservice.Hold
	holdErr     error
	bookingResp *bookingservice.Booking
	bookingErr  error
	holdCalls   int
	released    []string
}

func (f *fakeBookings) CreateHold(_ context.Context, _ bookingservice.CreateHoldRequest) (*bookingservice.Hold, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.holdCalls++
	if f.holdErr != nil {
		return nil, f.holdErr
	}
	resp := *f.holdResp
	return &resp, nil
}

func (f *fakeBookings) CreateBooking(_ context.Context, _ bookingservice.CreateBookingRequest) (*bookingservice.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bookingErr != nil {
		return nil, f.bookingErr
	}
	return f.bookingResp, nil
}

func (f *fakeBookings) ReleaseHold(_ context.Context, reservationID string) error {
	f.mu.Lock()
	f.released = append(f.released, reservationID)
	f.mu.Unlock()
	return nil
}

func (f *fakeBookings) Released() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.released...)
}

func (f *fakeBookings) HoldCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.holdCalls
}

// Тестовые данные

func alwaysOpen() domain.DaySchedule {
	open := types.TimeString("07:00")
	closed := types.TimeString("23:00")
	return domain.DaySchedule{IsOpen: true, OpenTime: &open, CloseTime: &closed}
}

func testClub() domain.SelectedClub {
	day := alwaysOpen()
	return domain.SelectedClub{
		ID:   7,
		Name: "Padel Hall",
		City: "Москва",
		WorkingHours: domain.WeekSchedule{
			Monday: day, Tuesday: day, Wednesday: day, Thursday: day,
			Friday: day, Saturday: day, Sunday: day,
		},
	}
}

func twoCourtsResponse(domain.AvailabilityQuery) (*clubservice.AvailableCourtsResponse, error) {
	return &clubservice.AvailableCourtsResponse{
		Courts: []clubservice.Court{
			{ID: 1, Name: "Корт 1", Type: "indoor", DefaultPriceCents: 12000},
			{ID: 2, Name: "Корт 2", Type: "outdoor", DefaultPriceCents: 12000, SegmentPriceCents: ptr.Ptr(int64(15000))},
		},
	}, nil
}

type testEnv struct {
	controller *Controller
	dispatcher *queueDispatcher
	clock      *fakeClock
	courts     *fakeCourts
	bookings   *fakeBookings
	recorder   *countingRecorder
}

// newCourtStepEnv собирает контроллер с предвыбранными клубом и датой/временем:
// план начинается с шага выбора корта
func newCourtStepEnv(t *testing.T, courts *fakeCourts, bookings *fakeBookings) *testEnv {
	t.Helper()

	clock := &fakeClock{now: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)}
	dispatcher := &queueDispatcher{}
	recorder := newCountingRecorder()

	clubID := int64(7)
	date := time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)
	start := types.TimeString("19:00")

	draft := domain.NewBookingDraft()
	draft.SetClub(testClub())
	draft.SetDateTime(date, start, 90, domain.FormatAny)

	plan := planner.Plan(planner.Preselected{
		ClubID: &clubID,
		DateTime: &planner.PreselectedDateTime{
			Date:            date,
			StartTime:       start,
			DurationMinutes: 90,
		},
	})

	controller := NewController(Params{
		SessionID:    "test-session",
		UserID:       42,
		Plan:         plan,
		Draft:        draft,
		Courts:       courts,
		Bookings:     bookings,
		TimeProvider: clock,
		Dispatcher:   dispatcher,
		Recorder:     recorder,
		Logger:       nopLogger{},
	})

	return &testEnv{
		controller: controller,
		dispatcher: dispatcher,
		clock:      clock,
		courts:     courts,
		bookings:   bookings,
		recorder:   recorder,
	}
}

// Тесты

func TestController_AvailabilityStartsOnCourtStep(t *testing.T) {
	courts := &fakeCourts{respond: twoCourtsResponse}
	env := newCourtStepEnv(t, courts, &fakeBookings{})

	// Запрос уходит сразу: первый шаг плана - выбор корта, ключ полон
	snap := env.controller.Snapshot()
	assert.Equal(t, domain.AvailabilityLoading, snap.Draft.AvailabilityState)

	env.dispatcher.Drain()

	snap = env.controller.Snapshot()
	assert.Equal(t, domain.AvailabilityReady, snap.Draft.AvailabilityState)
	require.Len(t, snap.Draft.Candidates, 2)

	// Цена за точную длительность: 12000/час за 90 минут = 18000,
	// тариф сегмента 15000/час = 22500
	assert.Equal(t, int64(18000), snap.Draft.Candidates[0].PriceCents)
	assert.Equal(t, int64(22500), snap.Draft.Candidates[1].PriceCents)

	// Оценка стоимости по кандидатам с диапазоном
	require.NotNil(t, snap.Draft.PriceEstimate)
	require.NotNil(t, snap.Draft.PriceEstimate.Range)
	assert.Equal(t, int64(18000), snap.Draft.PriceEstimate.Range.MinCents)
	assert.Equal(t, int64(22500), snap.Draft.PriceEstimate.Range.MaxCents)
}

func TestController_DuplicateKeySuppressed(t *testing.T) {
	courts := &fakeCourts{respond: twoCourtsResponse}
	env := newCourtStepEnv(t, courts, &fakeBookings{})
	env.dispatcher.Drain()
	require.Equal(t, 1, courts.Calls())

	// Повтор того же выбора не порождает нового запроса
	date := time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)
	require.NoError(t, env.controller.SetDateTime(date, "19:00", 90, domain.FormatAny))
	env.dispatcher.Drain()

	assert.Equal(t, 1, courts.Calls())
}

func TestController_StaleAvailabilityDiscarded(t *testing.T) {
	courts := &fakeCourts{respond: twoCourtsResponse}
	env := newCourtStepEnv(t, courts, &fakeBookings{})

	// Ответ на первый ключ еще в очереди, игрок меняет время
	date := time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)
	require.NoError(t, env.controller.SetDateTime(date, "20:00", 90, domain.FormatAny))

	env.dispatcher.Drain()

	// Первый ответ отброшен как устаревший, второй применен
	assert.Equal(t, 1, env.recorder.staleDiscarded)
	snap := env.controller.Snapshot()
	assert.Equal(t, domain.AvailabilityReady, snap.Draft.AvailabilityState)
	assert.Equal(t, 2, courts.Calls())
}

func TestController_EmptyAvailabilityYieldsSuggestions(t *testing.T) {
	courts := &fakeCourts{respond: func(q domain.AvailabilityQuery) (*clubservice.AvailableCourtsResponse, error) {
		if q.DurationMinutes == 90 {
			return &clubservice.AvailableCourtsResponse{
				Suggestions: &clubservice.Suggestions{
					AlternativeDurations: []clubservice.DurationOption{
						{DurationMinutes: 120, AvailableCourtCount: 0},
						{DurationMinutes: 60, AvailableCourtCount: 3},
					},
					AlternativeTimeSlots: []clubservice.TimeSlotOption{
						{StartTime: "21:00", AvailableCourtCount: 1},
					},
				},
			}, nil
		}
		return twoCourtsResponse(q)
	}}
	env := newCourtStepEnv(t, courts, &fakeBookings{})
	env.dispatcher.Drain()

	snap := env.controller.Snapshot()
	assert.Equal(t, domain.AvailabilityEmpty, snap.Draft.AvailabilityState)
	require.NotNil(t, snap.Draft.Suggestions)

	// Показывается только предпочтительный вид: длительности, без нулевых
	assert.Equal(t, string(suggest.KindDuration), snap.Draft.SuggestionKind)
	require.Len(t, snap.Draft.Suggestions.AlternativeDurations, 1)
	assert.Equal(t, 60, snap.Draft.Suggestions.AlternativeDurations[0].DurationMinutes)
	assert.Empty(t, snap.Draft.Suggestions.AlternativeTimeSlots)

	// Принятие альтернативы меняет длительность и запускает новый запрос
	require.NoError(t, env.controller.AcceptSuggestion(suggest.KindDuration, 60, ""))
	env.dispatcher.Drain()

	snap = env.controller.Snapshot()
	assert.Equal(t, domain.AvailabilityReady, snap.Draft.AvailabilityState)
	assert.Equal(t, 60, snap.Draft.DurationMinutes)
	assert.Nil(t, snap.Draft.Suggestions)
}

func TestController_AcceptSuggestionNotOffered(t *testing.T) {
	courts := &fakeCourts{respond: twoCourtsResponse}
	env := newCourtStepEnv(t, courts, &fakeBookings{})
	env.dispatcher.Drain()

	// Предложений нет (доступность непустая)
	err := env.controller.AcceptSuggestion(suggest.KindDuration, 60, "")
	assert.ErrorIs(t, err, ErrSuggestionNotOffered)
}

func TestController_ClubClosedFailureNotRetryable(t *testing.T) {
	courts := &fakeCourts{respond: func(domain.AvailabilityQuery) (*clubservice.AvailableCourtsResponse, error) {
		return nil, clubservice.ErrClubClosed
	}}
	env := newCourtStepEnv(t, courts, &fakeBookings{})
	env.dispatcher.Drain()

	snap := env.controller.Snapshot()
	assert.Equal(t, domain.AvailabilityError, snap.Draft.AvailabilityState)
	require.NotNil(t, snap.Draft.AvailabilityFailure)
	assert.Equal(t, domain.FailureClubClosed, *snap.Draft.AvailabilityFailure)
	assert.False(t, snap.Draft.AvailabilityFailure.Retryable())

	// Повтор без смены параметров подавляется
	require.NoError(t, env.controller.RetryAvailability())
	env.dispatcher.Drain()
	assert.Equal(t, 1, courts.Calls())
}

func TestController_TransientFailureRetryable(t *testing.T) {
	failing := true
	courts := &fakeCourts{respond: func(q domain.AvailabilityQuery) (*clubservice.AvailableCourtsResponse, error) {
		if failing {
			return nil, clubservice.ErrUnavailable
		}
		return twoCourtsResponse(q)
	}}
	env := newCourtStepEnv(t, courts, &fakeBookings{})
	env.dispatcher.Drain()

	snap := env.controller.Snapshot()
	require.NotNil(t, snap.Draft.AvailabilityFailure)
	assert.Equal(t, domain.FailureTransient, *snap.Draft.AvailabilityFailure)

	failing = false
	require.NoError(t, env.controller.RetryAvailability())
	env.dispatcher.Drain()

	snap = env.controller.Snapshot()
	assert.Equal(t, domain.AvailabilityReady, snap.Draft.AvailabilityState)
}

func TestController_SelectCourtOutsideCandidates(t *testing.T) {
	courts := &fakeCourts{respond: twoCourtsResponse}
	env := newCourtStepEnv(t, courts, &fakeBookings{})
	env.dispatcher.Drain()

	err := env.controller.SelectCourt(99)
	assert.ErrorIs(t, err, ErrCourtNotAvailable)
}

func TestController_AdvanceBlockedUntilStepComplete(t *testing.T) {
	courts := &fakeCourts{respond: twoCourtsResponse}
	env := newCourtStepEnv(t, courts, &fakeBookings{})
	env.dispatcher.Drain()

	// Корт не выбран: advance не меняет состояние и идемпотентен
	before := env.controller.Snapshot()
	assert.ErrorIs(t, env.controller.Advance(), ErrStepIncomplete)
	assert.ErrorIs(t, env.controller.Advance(), ErrStepIncomplete)
	after := env.controller.Snapshot()
	assert.Equal(t, before.ActiveStep, after.ActiveStep)
	assert.Equal(t, before.StepIndex, after.StepIndex)

	require.NoError(t, env.controller.SelectCourt(1))
	require.NoError(t, env.controller.Advance())
	assert.Equal(t, domain.StepConfirmation, env.controller.Snapshot().ActiveStep)
}

func TestController_DateTimeValidation(t *testing.T) {
	courts := &fakeCourts{respond: twoCourtsResponse}
	env := newCourtStepEnv(t, courts, &fakeBookings{})
	env.dispatcher.Drain()

	date := time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)

	// Дата в прошлом (часы на 2026-08-20)
	past := time.Date(2026, 8, 19, 0, 0, 0, 0, time.UTC)
	assert.ErrorIs(t, env.controller.SetDateTime(past, "19:00", 90, domain.FormatAny), ErrDateInPast)

	// Длительность за пределами допустимой
	assert.ErrorIs(t, env.controller.SetDateTime(date, "19:00", 270, domain.FormatAny), ErrInvalidDuration)

	// Слот упирается в закрытие клуба (23:00)
	assert.ErrorIs(t, env.controller.SetDateTime(date, "22:30", 90, domain.FormatAny), ErrOutsideBusinessHours)

	// Ошибки не трогают состояние черновика
	snap := env.controller.Snapshot()
	assert.Equal(t, "19:00", snap.Draft.StartTime)
	assert.Equal(t, 90, snap.Draft.DurationMinutes)
}

func TestController_SelectionChangeCascades(t *testing.T) {
	courts := &fakeCourts{respond: twoCourtsResponse}
	env := newCourtStepEnv(t, courts, &fakeBookings{})
	env.dispatcher.Drain()
	require.NoError(t, env.controller.SelectCourt(1))

	// Смена времени сбрасывает корт и результаты доступности
	date := time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)
	require.NoError(t, env.controller.SetDateTime(date, "20:00", 90, domain.FormatAny))

	snap := env.controller.Snapshot()
	assert.Nil(t, snap.Draft.Court)
	assert.Equal(t, domain.AvailabilityLoading, snap.Draft.AvailabilityState)
}

func TestController_CloseRejectsFurtherMutations(t *testing.T) {
	courts := &fakeCourts{respond: twoCourtsResponse}
	env := newCourtStepEnv(t, courts, &fakeBookings{})
	env.dispatcher.Drain()

	env.controller.Close()

	err := env.controller.SelectCourt(1)
	assert.ErrorIs(t, err, ErrWizardCompleted)
}
