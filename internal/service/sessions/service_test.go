package sessions

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
	"github.com/m04kA/SMC-CourtBookingService/internal/service/sessions/models"
	"github.com/m04kA/SMC-CourtBookingService/pkg/ptr"
)

// Тестовые двойники

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

// queueDispatcher откладывает асинхронные задачи; тесты сервиса их не разбирают,
// чтобы проверять синхронное поведение операций
type queueDispatcher struct {
	mu    sync.Mutex
	tasks []func()
}

func (d *queueDispatcher) Dispatch(fn func()) {
	d.mu.Lock()
	d.tasks = append(d.tasks, fn)
	d.mu.Unlock()
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{}) {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeCatalog struct {
	clubs    []clubservice.ClubSummary
	clubErr  error
	courtErr error
	listErr  error
	availErr error
	avail    *clubservice.AvailableCourtsResponse
}

func (f *fakeCatalog) ListClubs(context.Context) ([]clubservice.ClubSummary, error) {
	return f.clubs, f.listErr
}

func (f *fakeCatalog) GetClub(_ context.Context, clubID int64) (*clubservice.Club, error) {
	if f.clubErr != nil {
		return nil, f.clubErr
	}
	return testClubModel(clubID), nil
}

func (f *fakeCatalog) GetClubWithGracefulDegradation(ctx context.Context, clubID int64) (*clubservice.Club, error) {
	return f.GetClub(ctx, clubID)
}

func (f *fakeCatalog) GetCourt(_ context.Context, _, courtID int64) (*clubservice.Court, error) {
	if f.courtErr != nil {
		return nil, f.courtErr
	}
	return &clubservice.Court{ID: courtID, Name: "Корт", Type: "indoor", DefaultPriceCents: 12000}, nil
}

func (f *fakeCatalog) GetAvailableCourts(context.Context, domain.AvailabilityQuery) (*clubservice.AvailableCourtsResponse, error) {
	if f.availErr != nil {
		return nil, f.availErr
	}
	return f.avail, nil
}

func testClubModel(clubID int64) *clubservice.Club {
	day := clubservice.DaySchedule{
		IsOpen:    true,
		OpenTime:  ptr.Ptr("07:00"),
		CloseTime: ptr.Ptr("23:00"),
	}
	return &clubservice.Club{
		ID:   clubID,
		Name: "Padel Hall",
		City: "Москва",
		WorkingHours: clubservice.WorkingHours{
			Monday: day, Tuesday: day, Wednesday: day, Thursday: day,
			Friday: day, Saturday: day, Sunday: day,
		},
	}
}

type fakeBookings struct{}

func (fakeBookings) CreateHold(context.Context, bookingservice.CreateHoldRequest) (*bookingservice.Hold, error) {
	return &bookingservice.Hold{ReservationID: "res-1", ExpiresAt: time.Now().Add(5 * time.Minute)}, nil
}

func (fakeBookings) CreateBooking(context.Context, bookingservice.CreateBookingRequest) (*bookingservice.Booking, error) {
	return &bookingservice.Booking{BookingID: 1}, nil
}

func (fakeBookings) ReleaseHold(context.Context, string) error {
	return nil
}

func newTestService(catalog *fakeCatalog) (*Service, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)}
	svc := NewService(catalog, fakeBookings{}, nopLogger{}, Options{
		TimeProvider: clock,
		Dispatcher:   &queueDispatcher{},
		SessionTTL:   30 * time.Minute,
	})
	return svc, clock
}

// Тесты

func TestCreate_NoPreselection(t *testing.T) {
	svc, _ := newTestService(&fakeCatalog{})

	resp, err := svc.Create(context.Background(), &models.CreateSessionRequest{UserID: 42})
	require.NoError(t, err)

	require.Len(t, resp.Steps, 6)
	assert.Equal(t, string(domain.StepClubSelection), resp.ActiveStep)
	assert.NotEmpty(t, resp.SessionID)
	assert.NotEmpty(t, resp.PaymentProviders)
}

func TestCreate_ClubAndDateTimePreselected(t *testing.T) {
	svc, _ := newTestService(&fakeCatalog{})

	resp, err := svc.Create(context.Background(), &models.CreateSessionRequest{
		UserID:          42,
		ClubID:          ptr.Ptr(int64(7)),
		Date:            ptr.Ptr("2026-08-22"),
		StartTime:       ptr.Ptr("19:00"),
		DurationMinutes: ptr.Ptr(90),
	})
	require.NoError(t, err)

	// Предвыбранные шаги исключены из плана
	require.Len(t, resp.Steps, 4)
	assert.Equal(t, string(domain.StepCourtSelection), resp.ActiveStep)
	require.NotNil(t, resp.Draft.Club)
	assert.Equal(t, int64(7), resp.Draft.Club.ID)
	assert.Equal(t, "19:00", resp.Draft.StartTime)
	assert.Equal(t, "20:30", resp.Draft.EndTime)
}

func TestCreate_PrefetchFailureRestoresStep(t *testing.T) {
	svc, _ := newTestService(&fakeCatalog{clubErr: clubservice.ErrUnavailable})

	resp, err := svc.Create(context.Background(), &models.CreateSessionRequest{
		UserID: 42,
		ClubID: ptr.Ptr(int64(7)),
	})
	require.NoError(t, err)

	// Каталог недоступен: шаг выбора клуба возвращается в план
	assert.Equal(t, string(domain.StepClubSelection), resp.ActiveStep)
	assert.Nil(t, resp.Draft.Club)
}

func TestCreate_StaleDateTimePreselectionRestoresStep(t *testing.T) {
	svc, _ := newTestService(&fakeCatalog{})

	// Дата в прошлом (часы на 2026-08-20): старт не отклоняется,
	// шаг даты/времени возвращается в план
	resp, err := svc.Create(context.Background(), &models.CreateSessionRequest{
		UserID:          42,
		ClubID:          ptr.Ptr(int64(7)),
		Date:            ptr.Ptr("2020-01-01"),
		StartTime:       ptr.Ptr("19:00"),
		DurationMinutes: ptr.Ptr(90),
	})
	require.NoError(t, err)
	require.Len(t, resp.Steps, 5)
	assert.Equal(t, string(domain.StepDateTime), resp.ActiveStep)
	assert.Empty(t, resp.Draft.StartTime)

	// Слот упирается в закрытие клуба (23:00)
	resp, err = svc.Create(context.Background(), &models.CreateSessionRequest{
		UserID:          42,
		ClubID:          ptr.Ptr(int64(7)),
		Date:            ptr.Ptr("2026-08-22"),
		StartTime:       ptr.Ptr("22:30"),
		DurationMinutes: ptr.Ptr(90),
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StepDateTime), resp.ActiveStep)
}

func TestCreate_InvalidPreselection(t *testing.T) {
	svc, _ := newTestService(&fakeCatalog{})

	_, err := svc.Create(context.Background(), &models.CreateSessionRequest{
		UserID:          42,
		ClubID:          ptr.Ptr(int64(7)),
		Date:            ptr.Ptr("22.08.2026"),
		StartTime:       ptr.Ptr("19:00"),
		DurationMinutes: ptr.Ptr(90),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGet_OwnershipAndNotFound(t *testing.T) {
	svc, _ := newTestService(&fakeCatalog{})

	resp, err := svc.Create(context.Background(), &models.CreateSessionRequest{UserID: 42})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), resp.SessionID, 42)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), resp.SessionID, 99)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.Get(context.Background(), "missing", 42)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSelectPaymentProvider_Unknown(t *testing.T) {
	svc, _ := newTestService(&fakeCatalog{})

	resp, err := svc.Create(context.Background(), &models.CreateSessionRequest{UserID: 42})
	require.NoError(t, err)

	_, err = svc.SelectPaymentProvider(context.Background(), resp.SessionID, 42, "bitcoin")
	assert.ErrorIs(t, err, ErrPaymentProviderNotFound)
}

func TestClose_RemovesSession(t *testing.T) {
	svc, _ := newTestService(&fakeCatalog{})

	resp, err := svc.Create(context.Background(), &models.CreateSessionRequest{UserID: 42})
	require.NoError(t, err)

	require.NoError(t, svc.Close(context.Background(), resp.SessionID, 42))

	_, err = svc.Get(context.Background(), resp.SessionID, 42)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSweep_ClosesAbandonedSessions(t *testing.T) {
	svc, clock := newTestService(&fakeCatalog{})

	resp, err := svc.Create(context.Background(), &models.CreateSessionRequest{UserID: 42})
	require.NoError(t, err)

	// Сессия моложе TTL переживает уборку
	clock.Advance(10 * time.Minute)
	svc.sweep()
	_, err = svc.Get(context.Background(), resp.SessionID, 42)
	require.NoError(t, err)

	// Get обновил lastAccess; ждем полный TTL от него
	clock.Advance(31 * time.Minute)
	svc.sweep()
	_, err = svc.Get(context.Background(), resp.SessionID, 42)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestListClubs(t *testing.T) {
	svc, _ := newTestService(&fakeCatalog{clubs: []clubservice.ClubSummary{
		{ID: 1, Name: "Padel Hall", City: "Москва"},
		{ID: 2, Name: "Smash Club", City: "Казань"},
	}})

	resp, err := svc.ListClubs(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Clubs, 2)
	assert.Equal(t, "Smash Club", resp.Clubs[1].Name)
}
