package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	acceptSuggestionHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/accept_suggestion"
	advanceStepHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/advance_step"
	closeSessionHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/close_session"
	getSessionHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/get_session"
	listClubsHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/list_clubs"
	retreatStepHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/retreat_step"
	retryOperationHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/retry_operation"
	startSessionHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/start_session"
	submitBookingHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/submit_booking"
	updateSelectionHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/update_selection"
	"github.com/m04kA/SMC-CourtBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBookingService/internal/config"
	"github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/wizardsession"
	bookingClient "github.com/m04kA/SMC-CourtBookingService/internal/integrations/bookingservice"
	clubClient "github.com/m04kA/SMC-CourtBookingService/internal/integrations/clubservice"
	sessionsService "github.com/m04kA/SMC-CourtBookingService/internal/service/sessions"
	"github.com/m04kA/SMC-CourtBookingService/pkg/logger"
	"github.com/m04kA/SMC-CourtBookingService/pkg/metrics"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-CourtBookingService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Инициализируем интеграционных клиентов
	clubs := clubClient.NewClient(
		cfg.ClubService.URL,
		time.Duration(cfg.ClubService.Timeout)*time.Second,
		log,
	)
	bookings := bookingClient.NewClient(
		cfg.BookingService.URL,
		time.Duration(cfg.BookingService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (ClubService=%s timeout=%ds, BookingService=%s timeout=%ds)",
		cfg.ClubService.URL, cfg.ClubService.Timeout, cfg.BookingService.URL, cfg.BookingService.Timeout)

	// Подключаемся к базе данных (только при включенных снапшотах сессий)
	var snapshotRepo sessionsService.SnapshotRepository
	if cfg.Wizard.SnapshotsEnabled {
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			log.Fatal("Failed to connect to database: %v", err)
		}
		defer db.Close()

		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

		if err := db.Ping(); err != nil {
			log.Fatal("Failed to ping database: %v", err)
		}
		log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

		snapshotRepo = wizardsession.NewRepository(db)
	} else {
		log.Info("Session snapshots disabled, running in-memory only")
	}

	// Инициализируем сервис сессий мастера
	opts := sessionsService.Options{
		Snapshots:    snapshotRepo,
		SessionTTL:   time.Duration(cfg.Wizard.SessionTTLMinutes) * time.Minute,
		TickInterval: time.Duration(cfg.Wizard.ReservationTickSeconds) * time.Second,
	}
	if cfg.Metrics.Enabled {
		opts.Metrics = metricsCollector
	}
	sessionSvc := sessionsService.NewService(clubs, bookings, log, opts)

	// Запускаем фоновую уборку брошенных сессий
	sweeperStop := make(chan struct{})
	go sessionSvc.RunSweeper(sweeperStop)
	log.Info("Session sweeper started (ttl=%dm)", cfg.Wizard.SessionTTLMinutes)

	// Инициализируем handlers
	listClubs := listClubsHandler.NewHandler(sessionSvc, log)
	startSession := startSessionHandler.NewHandler(sessionSvc, log)
	getSession := getSessionHandler.NewHandler(sessionSvc, log)
	closeSession := closeSessionHandler.NewHandler(sessionSvc, log)
	updateSelection := updateSelectionHandler.NewHandler(sessionSvc, log)
	acceptSuggestion := acceptSuggestionHandler.NewHandler(sessionSvc, log)
	advanceStep := advanceStepHandler.NewHandler(sessionSvc, log)
	retreatStep := retreatStepHandler.NewHandler(sessionSvc, log)
	retryOperation := retryOperationHandler.NewHandler(sessionSvc, log)
	submitBooking := submitBookingHandler.NewHandler(sessionSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// Все операции мастера требуют X-User-ID header
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Каталог ---
	protected.HandleFunc("/clubs", listClubs.Handle).Methods(http.MethodGet)

	// --- Сессии мастера быстрого бронирования ---
	protected.HandleFunc("/wizard-sessions", startSession.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/wizard-sessions/{sessionId}", getSession.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/wizard-sessions/{sessionId}", closeSession.Handle).Methods(http.MethodDelete)

	// Применение выбора (клуб, дата/время, корт, способ оплаты)
	protected.HandleFunc("/wizard-sessions/{sessionId}/selection/{field}",
		updateSelection.Handle).Methods(http.MethodPut)

	// Принятие предложенной альтернативы
	protected.HandleFunc("/wizard-sessions/{sessionId}/suggestions/accept",
		acceptSuggestion.Handle).Methods(http.MethodPost)

	// Повтор неудачного запроса доступности или создания брони
	protected.HandleFunc("/wizard-sessions/{sessionId}/retry/{target}",
		retryOperation.Handle).Methods(http.MethodPost)

	// Навигация по шагам и отправка
	protected.HandleFunc("/wizard-sessions/{sessionId}/advance", advanceStep.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/wizard-sessions/{sessionId}/retreat", retreatStep.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/wizard-sessions/{sessionId}/submit", submitBooking.Handle).Methods(http.MethodPost)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	close(sweeperStop)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
