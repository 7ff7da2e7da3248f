package sessions

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/wizardsession"
	"github.com/m04kA/SMC-CourtBookingService/internal/integrations/clubservice"
	"github.com/m04kA/SMC-CourtBookingService/internal/wizard"
)

// ClubServiceClient интерфейс клиента каталога клубов
type ClubServiceClient interface {
	wizard.AvailabilityClient
	ListClubs(ctx context.Context) ([]clubservice.ClubSummary, error)
	GetClub(ctx context.Context, clubID int64) (*clubservice.Club, error)
	GetClubWithGracefulDegradation(ctx context.Context, clubID int64) (*clubservice.Club, error)
	GetCourt(ctx context.Context, clubID, courtID int64) (*clubservice.Court, error)
}

// SnapshotRepository интерфейс репозитория снапшотов сессий
type SnapshotRepository interface {
	Upsert(ctx context.Context, record wizardsession.SnapshotRecord) error
	Delete(ctx context.Context, sessionID string) error
	DeleteStale(ctx context.Context, olderThan time.Time) (int64, error)
}

// Metrics интерфейс метрик сервиса сессий
type Metrics interface {
	wizard.Recorder
	RecordSessionStarted()
	RecordSessionCompleted()
	RecordSessionClosed()
}

// NopMetrics заглушка метрик (используется при выключенных метриках и в тестах)
type NopMetrics struct {
	wizard.NopRecorder
}

func (NopMetrics) RecordSessionStarted() {}
func (NopMetrics) RecordSessionCompleted() {}
func (NopMetrics) RecordSessionClosed() {}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
