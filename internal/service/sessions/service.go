package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/wizardsession"
	clubClient "github.com/m04kA/SMC-CourtBookingService/internal/integrations/clubservice"
	"github.com/m04kA/SMC-CourtBookingService/internal/planner"
	"github.com/m04kA/SMC-CourtBookingService/internal/pricing"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/sessions/models"
	"github.com/m04kA/SMC-CourtBookingService/internal/suggest"
	"github.com/m04kA/SMC-CourtBookingService/internal/wizard"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// Service реестр живых сессий мастера быстрого бронирования
//
// Живое состояние сессий держится в памяти (контроллеры), снапшоты
// best-effort сохраняются в Postgres для операционной видимости. Сессии,
// к которым не обращались дольше TTL, закрываются фоновой уборкой.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*liveSession

	clubs     ClubServiceClient
	bookings  wizard.BookingClient
	snapshots SnapshotRepository // nil, когда персистентность выключена

	timeProvider wizard.TimeProvider
	dispatcher   wizard.Dispatcher
	metrics      Metrics
	logger       Logger

	sessionTTL   time.Duration
	tickInterval time.Duration
}

// liveSession живая сессия в реестре
type liveSession struct {
	controller *wizard.Controller
	lastAccess time.Time
}

// Options необязательные зависимости сервиса сессий
type Options struct {
	Snapshots    SnapshotRepository
	TimeProvider wizard.TimeProvider
	Dispatcher   wizard.Dispatcher
	Metrics      Metrics
	SessionTTL   time.Duration
	TickInterval time.Duration
}

// NewService создает новый экземпляр сервиса сессий
func NewService(clubs ClubServiceClient, bookings wizard.BookingClient, logger Logger, opts Options) *Service {
	s := &Service{
		sessions:     make(map[string]*liveSession),
		clubs:        clubs,
		bookings:     bookings,
		snapshots:    opts.Snapshots,
		timeProvider: opts.TimeProvider,
		dispatcher:   opts.Dispatcher,
		metrics:      opts.Metrics,
		logger:       logger,
		sessionTTL:   opts.SessionTTL,
		tickInterval: opts.TickInterval,
	}
	if s.timeProvider == nil {
		s.timeProvider = &wizard.RealTimeProvider{}
	}
	if s.dispatcher == nil {
		s.dispatcher = &wizard.GoDispatcher{}
	}
	if s.metrics == nil {
		s.metrics = NopMetrics{}
	}
	if s.sessionTTL <= 0 {
		s.sessionTTL = 30 * time.Minute
	}
	return s
}

// ListClubs возвращает список клубов для шага выбора клуба
func (s *Service) ListClubs(ctx context.Context) (*models.ClubListResponse, error) {
	clubs, err := s.clubs.ListClubs(ctx)
	if err != nil {
		s.logger.Error("ListClubs: catalog error: %v", err)
		return nil, fmt.Errorf("%w: ListClubs - catalog error: %v", ErrInternal, err)
	}

	resp := &models.ClubListResponse{Clubs: make([]models.ClubSummary, 0, len(clubs))}
	for _, club := range clubs {
		resp.Clubs = append(resp.Clubs, models.ClubSummary{ID: club.ID, Name: club.Name, City: club.City})
	}
	return resp, nil
}

// Create создает сессию мастера с опциональными предвыборами
//
// Предвыбор подтверждается префетчем из каталога best-effort: если каталог
// недоступен или сущность не найдена, соответствующий шаг возвращается в план
// и игрок проходит его вручную, а не получает отказ в старте.
func (s *Service) Create(ctx context.Context, req *models.CreateSessionRequest) (*models.SessionResponse, error) {
	s.logger.Info("Create: starting wizard session for user=%d", req.UserID)

	pre := planner.Preselected{}
	draft := domain.NewBookingDraft()

	if req.CourtFormat != nil {
		format := domain.CourtFormat(*req.CourtFormat)
		if !format.IsValid() {
			return nil, fmt.Errorf("%w: unknown court format %q", ErrInvalidInput, *req.CourtFormat)
		}
		draft.CourtFormat = format
	}

	if req.ClubID != nil {
		club, err := s.clubs.GetClubWithGracefulDegradation(ctx, *req.ClubID)
		if err != nil {
			s.logger.Warn("Create: club prefetch failed for user=%d, club step restored: %v", req.UserID, err)
		} else {
			pre.ClubID = req.ClubID
			draft.SetClub(club.ToSelectedClub())
		}
	}

	if req.HasDateTime() {
		date, start, err := parseDateTime(*req.Date, *req.StartTime)
		if err != nil {
			return nil, err
		}
		if *req.DurationMinutes <= 0 || *req.DurationMinutes > domain.MaxDurationMinutes {
			return nil, fmt.Errorf("%w: duration out of range", ErrInvalidInput)
		}
		// Семантически устаревший предвыбор (дата в прошлом, слот вне рабочих
		// часов клуба) не валит старт: шаг возвращается в план и проходится
		// заново, как при недоступном каталоге
		if err := wizard.ValidateDateTime(draft.Club, date, start, *req.DurationMinutes, draft.CourtFormat, s.timeProvider.Now()); err != nil {
			s.logger.Warn("Create: date/time preselection rejected for user=%d, date/time step restored: %v", req.UserID, err)
		} else {
			pre.DateTime = &planner.PreselectedDateTime{
				Date:            date,
				StartTime:       start,
				DurationMinutes: *req.DurationMinutes,
			}
			draft.SetDateTime(date, start, *req.DurationMinutes, draft.CourtFormat)
		}
	}

	// Предвыбор корта имеет смысл только при предвыбранных клубе и дате/времени
	if req.CourtID != nil && pre.ClubID != nil && pre.DateTime != nil {
		court, err := s.clubs.GetCourt(ctx, *pre.ClubID, *req.CourtID)
		if err != nil {
			s.logger.Warn("Create: court prefetch failed for user=%d, court step restored: %v", req.UserID, err)
		} else {
			pre.CourtID = req.CourtID
			draft.SetCourt(domain.SelectedCourt{
				ID:        court.ID,
				Name:      court.Name,
				CourtType: court.Type,
				PriceCents: pricing.ResolveForDuration(
					court.SegmentPriceCents, court.DefaultPriceCents, pre.DateTime.DurationMinutes),
			})
		}
	}

	sessionID := uuid.NewString()
	controller := wizard.NewController(wizard.Params{
		SessionID:    sessionID,
		UserID:       req.UserID,
		Plan:         planner.Plan(pre),
		Draft:        draft,
		Courts:       s.clubs,
		Bookings:     s.bookings,
		TimeProvider: s.timeProvider,
		Dispatcher:   s.dispatcher,
		Recorder:     s.metrics,
		Logger:       s.logger,
		TickInterval: s.tickInterval,
		OnComplete: func(wizard.Completion) {
			s.metrics.RecordSessionCompleted()
		},
	})

	s.mu.Lock()
	s.sessions[sessionID] = &liveSession{
		controller: controller,
		lastAccess: s.timeProvider.Now(),
	}
	s.mu.Unlock()

	s.metrics.RecordSessionStarted()
	s.logger.Info("Create: wizard session %s started for user=%d", sessionID, req.UserID)

	s.persistSnapshot(ctx, controller)
	return models.FromSnapshot(controller.Snapshot()), nil
}

// Get возвращает текущее состояние сессии
func (s *Service) Get(ctx context.Context, sessionID string, userID int64) (*models.SessionResponse, error) {
	controller, err := s.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}
	return models.FromSnapshot(controller.Snapshot()), nil
}

// SelectClub применяет выбор клуба
// Детали клуба (рабочие часы) дочитываются из каталога синхронно: без них
// невозможна валидация даты/времени.
func (s *Service) SelectClub(ctx context.Context, sessionID string, userID, clubID int64) (*models.SessionResponse, error) {
	controller, err := s.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}

	club, err := s.clubs.GetClub(ctx, clubID)
	if err != nil {
		if errors.Is(err, clubClient.ErrClubNotFound) {
			s.logger.Warn("SelectClub: club id=%d not found for session %s", clubID, sessionID)
			return nil, ErrClubNotFound
		}
		s.logger.Error("SelectClub: catalog error for session %s: %v", sessionID, err)
		return nil, fmt.Errorf("%w: SelectClub - catalog error: %v", ErrInternal, err)
	}

	if err := controller.SelectClub(club.ToSelectedClub()); err != nil {
		return nil, err
	}
	return s.respond(ctx, controller), nil
}

// SetDateTime применяет выбор даты/времени/длительности/формата
func (s *Service) SetDateTime(ctx context.Context, sessionID string, req *models.DateTimeSelection) (*models.SessionResponse, error) {
	controller, err := s.lookup(sessionID, req.UserID)
	if err != nil {
		return nil, err
	}

	date, start, err := parseDateTime(req.Date, req.StartTime)
	if err != nil {
		return nil, err
	}

	format := domain.FormatAny
	if req.CourtFormat != "" {
		format = domain.CourtFormat(req.CourtFormat)
	}

	if err := controller.SetDateTime(date, start, req.DurationMinutes, format); err != nil {
		return nil, err
	}
	return s.respond(ctx, controller), nil
}

// SelectCourt применяет выбор корта из доступных
func (s *Service) SelectCourt(ctx context.Context, sessionID string, userID, courtID int64) (*models.SessionResponse, error) {
	controller, err := s.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err := controller.SelectCourt(courtID); err != nil {
		return nil, err
	}
	return s.respond(ctx, controller), nil
}

// SelectPaymentProvider применяет выбор способа оплаты
func (s *Service) SelectPaymentProvider(ctx context.Context, sessionID string, userID int64, providerID string) (*models.SessionResponse, error) {
	controller, err := s.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}

	provider, ok := domain.FindPaymentProvider(providerID)
	if !ok {
		return nil, ErrPaymentProviderNotFound
	}

	if err := controller.SelectPaymentProvider(provider); err != nil {
		return nil, err
	}
	return s.respond(ctx, controller), nil
}

// AcceptSuggestion принимает предложенную альтернативу
func (s *Service) AcceptSuggestion(ctx context.Context, sessionID string, req *models.AcceptSuggestionRequest) (*models.SessionResponse, error) {
	controller, err := s.lookup(sessionID, req.UserID)
	if err != nil {
		return nil, err
	}

	var start types.TimeString
	if req.StartTime != "" {
		start, err = types.NewTimeStringFromString(req.StartTime)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid start time: %v", ErrInvalidInput, err)
		}
	}

	if err := controller.AcceptSuggestion(suggest.Kind(req.Kind), req.DurationMinutes, start); err != nil {
		return nil, err
	}
	return s.respond(ctx, controller), nil
}

// RetryAvailability повторяет запрос доступности после временной ошибки
func (s *Service) RetryAvailability(ctx context.Context, sessionID string, userID int64) (*models.SessionResponse, error) {
	controller, err := s.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err := controller.RetryAvailability(); err != nil {
		return nil, err
	}
	return s.respond(ctx, controller), nil
}

// RetryHold повторяет создание временной брони после неудачи или истечения
func (s *Service) RetryHold(ctx context.Context, sessionID string, userID int64) (*models.SessionResponse, error) {
	controller, err := s.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err := controller.RetryHold(); err != nil {
		return nil, err
	}
	return s.respond(ctx, controller), nil
}

// Advance переводит сессию на следующий шаг
func (s *Service) Advance(ctx context.Context, sessionID string, userID int64) (*models.SessionResponse, error) {
	controller, err := s.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err := controller.Advance(); err != nil {
		return nil, err
	}
	return s.respond(ctx, controller), nil
}

// Retreat возвращает сессию на предыдущий шаг
func (s *Service) Retreat(ctx context.Context, sessionID string, userID int64) (*models.SessionResponse, error) {
	controller, err := s.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err := controller.Retreat(); err != nil {
		return nil, err
	}
	return s.respond(ctx, controller), nil
}

// Submit отправляет финальное бронирование
func (s *Service) Submit(ctx context.Context, sessionID string, userID int64) (*models.CompletionResponse, error) {
	controller, err := s.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}

	completion, err := controller.Submit(ctx)
	if err != nil {
		// Снапшот фиксирует и неудачные отправки (conflict/failed)
		s.persistSnapshot(ctx, controller)
		return nil, err
	}

	s.persistSnapshot(ctx, controller)
	return &models.CompletionResponse{
		BookingID: completion.BookingID,
		CourtID:   completion.CourtID,
		Date:      completion.Date.Format(domain.DateFormat),
		StartTime: completion.StartTime,
		EndTime:   completion.EndTime,
	}, nil
}

// Close закрывает сессию и удаляет её из реестра
func (s *Service) Close(ctx context.Context, sessionID string, userID int64) error {
	controller, err := s.lookup(sessionID, userID)
	if err != nil {
		return err
	}

	completed := controller.Snapshot().Completed
	controller.Close()

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if s.snapshots != nil {
		if err := s.snapshots.Delete(ctx, sessionID); err != nil {
			s.logger.Warn("Close: failed to delete snapshot for session %s: %v", sessionID, err)
		}
	}

	if !completed {
		s.metrics.RecordSessionClosed()
	}
	s.logger.Info("Close: wizard session %s closed by user=%d", sessionID, userID)
	return nil
}

// RunSweeper запускает фоновую уборку брошенных сессий
// Блокирует вызывающую горутину до закрытия stop.
func (s *Service) RunSweeper(stop <-chan struct{}) {
	interval := s.sessionTTL / 10
	if interval < time.Minute {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep закрывает сессии, к которым не обращались дольше TTL
func (s *Service) sweep() {
	now := s.timeProvider.Now()

	s.mu.Lock()
	var expired []*liveSession
	for id, sess := range s.sessions {
		if now.Sub(sess.lastAccess) > s.sessionTTL {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		id := sess.controller.SessionID()
		completed := sess.controller.Snapshot().Completed
		sess.controller.Close()

		if s.snapshots != nil {
			if err := s.snapshots.Delete(context.Background(), id); err != nil {
				s.logger.Warn("sweep: failed to delete snapshot for session %s: %v", id, err)
			}
		}
		if !completed {
			s.metrics.RecordSessionClosed()
		}
		s.logger.Info("sweep: abandoned wizard session %s closed", id)
	}

	// Снапшоты сессий, потерянных при рестарте процесса, в реестре отсутствуют
	// и чистятся по updated_at
	if s.snapshots != nil {
		removed, err := s.snapshots.DeleteStale(context.Background(), now.Add(-s.sessionTTL))
		if err != nil {
			s.logger.Warn("sweep: failed to delete stale snapshots: %v", err)
		} else if removed > 0 {
			s.logger.Info("sweep: removed %d stale session snapshots", removed)
		}
	}
}

// lookup находит сессию и проверяет владение
func (s *Service) lookup(sessionID string, userID int64) (*wizard.Controller, error) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if ok {
		sess.lastAccess = s.timeProvider.Now()
	}
	s.mu.Unlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.controller.UserID() != userID {
		s.logger.Warn("lookup: access denied for user=%d to session %s", userID, sessionID)
		return nil, ErrAccessDenied
	}
	return sess.controller, nil
}

// respond сохраняет снапшот best-effort и строит response-модель
func (s *Service) respond(ctx context.Context, controller *wizard.Controller) *models.SessionResponse {
	s.persistSnapshot(ctx, controller)
	return models.FromSnapshot(controller.Snapshot())
}

// persistSnapshot сохраняет снапшот сессии best-effort
// Ошибка записи логируется и не влияет на ответ: живое состояние в памяти.
func (s *Service) persistSnapshot(ctx context.Context, controller *wizard.Controller) {
	if s.snapshots == nil {
		return
	}

	snap := controller.Snapshot()
	payload, err := json.Marshal(models.FromSnapshot(snap))
	if err != nil {
		s.logger.Error("persistSnapshot: failed to marshal snapshot for session %s: %v", snap.SessionID, err)
		return
	}

	record := wizardsession.SnapshotRecord{
		SessionID: snap.SessionID,
		UserID:    snap.UserID,
		Payload:   payload,
		UpdatedAt: s.timeProvider.Now(),
	}
	if err := s.snapshots.Upsert(ctx, record); err != nil {
		s.logger.Warn("persistSnapshot: failed to persist snapshot for session %s: %v", snap.SessionID, err)
	}
}

// parseDateTime разбирает дату и время начала из строк запроса
func parseDateTime(dateStr, startStr string) (time.Time, types.TimeString, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: invalid date: %v", ErrInvalidInput, err)
	}
	start, err := types.NewTimeStringFromString(startStr)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: invalid start time: %v", ErrInvalidInput, err)
	}
	return date, start, nil
}
