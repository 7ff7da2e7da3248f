package wizard

import (
	"context"
	"errors"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/integrations/clubservice"
	"github.com/m04kA/SMC-CourtBookingService/internal/pricing"
	"github.com/m04kA/SMC-CourtBookingService/internal/suggest"
	"github.com/m04kA/SMC-CourtBookingService/pkg/metrics"
)

// maybeStartAvailability инициирует запрос доступности при выполнении условий
//
// Запрос стартует только когда активен шаг выбора корта, ключ запроса полон
// и отличается и от последнего разрешенного ключа (дедупликация), и от ключа
// в полете (подавление дублей). Вызывается под блокировкой.
func (c *Controller) maybeStartAvailability() {
	if c.activeStep() != domain.StepCourtSelection {
		return
	}

	query, ok := c.draft.Query()
	if !ok || !query.IsComplete() {
		return
	}

	key := query.Key()
	if key == c.resolvedKey || key == c.inFlightKey {
		return
	}

	c.startAvailabilityQuery(query, key)
}

// startAvailabilityQuery отправляет запрос доступности вне блокировки сессии
func (c *Controller) startAvailabilityQuery(query domain.AvailabilityQuery, key string) {
	c.inFlightKey = key
	c.draft.AvailabilityState = domain.AvailabilityLoading
	c.draft.AvailabilityFailure = nil
	c.draft.Candidates = nil
	c.draft.Suggestions = nil

	c.logger.Info("Wizard %s: availability query started, key=%s", c.sessionID, key)

	c.dispatcher.Dispatch(func() {
		resp, err := c.courts.GetAvailableCourts(context.Background(), query)
		c.applyAvailability(key, query.DurationMinutes, resp, err)
	})
}

// applyAvailability применяет ответ на запрос доступности
//
// Выполняется как отдельное событие под блокировкой сессии. Ответ на ключ,
// который черновик уже не запрашивает, отбрасывается без побочных эффектов.
func (c *Controller) applyAvailability(key string, durationMinutes int, resp *clubservice.AvailableCourtsResponse, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	current, ok := c.draft.Query()
	if !ok || current.Key() != key {
		c.logger.Info("Wizard %s: stale availability response discarded, key=%s", c.sessionID, key)
		c.recorder.RecordStaleAvailabilityDiscarded()
		return
	}
	if c.inFlightKey == key {
		c.inFlightKey = ""
	}

	if err != nil {
		c.draft.AvailabilityState = domain.AvailabilityError
		failure := domain.FailureTransient
		outcome := metrics.OutcomeTransient
		if errors.Is(err, clubservice.ErrClubClosed) {
			failure = domain.FailureClubClosed
			outcome = metrics.OutcomeClubClosed
		}
		c.draft.AvailabilityFailure = &failure
		c.recorder.RecordAvailabilityQuery(outcome)
		c.logger.Warn("Wizard %s: availability query failed, key=%s: %v", c.sessionID, key, err)
		return
	}

	candidates := make([]domain.CourtCandidate, 0, len(resp.Courts))
	for _, court := range resp.Courts {
		candidates = append(candidates, domain.CourtCandidate{
			CourtID:    court.ID,
			Name:       court.Name,
			CourtType:  court.Type,
			PriceCents: pricing.ResolveForDuration(court.SegmentPriceCents, court.DefaultPriceCents, durationMinutes),
		})
	}

	if len(candidates) == 0 {
		ranked := suggest.Rank(resp.Suggestions.ToDomainSuggestions())
		c.draft.AvailabilityState = domain.AvailabilityEmpty
		c.draft.Candidates = nil
		c.draft.Suggestions = &ranked
		c.resolvedKey = key
		c.recorder.RecordAvailabilityQuery(metrics.OutcomeEmpty)
		c.logger.Info("Wizard %s: availability resolved empty, key=%s, durations=%d, slots=%d",
			c.sessionID, key, len(ranked.AlternativeDurations), len(ranked.AlternativeTimeSlots))
		return
	}

	c.draft.AvailabilityState = domain.AvailabilityReady
	c.draft.Candidates = candidates
	c.draft.Suggestions = nil
	c.resolvedKey = key
	c.recorder.RecordAvailabilityQuery(metrics.OutcomeOK)
	c.logger.Info("Wizard %s: availability resolved, key=%s, courts=%d", c.sessionID, key, len(candidates))
}

// RetryAvailability повторяет запрос доступности после временной ошибки
// Для неустранимой ошибки (клуб закрыт) повтор бесполезен и не выполняется.
func (c *Controller) RetryAvailability() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureMutable(); err != nil {
		return err
	}
	if c.draft.AvailabilityState != domain.AvailabilityError {
		return nil
	}
	if c.draft.AvailabilityFailure != nil && !c.draft.AvailabilityFailure.Retryable() {
		return nil
	}

	query, ok := c.draft.Query()
	if !ok || !query.IsComplete() {
		return nil
	}

	key := query.Key()
	if key == c.inFlightKey {
		return nil
	}
	c.startAvailabilityQuery(query, key)
	return nil
}
