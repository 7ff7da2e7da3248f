package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config конфигурация сервиса, загружаемая из TOML-файла
type Config struct {
	Server         ServerConfig      `toml:"server"`
	Logs           LogsConfig        `toml:"logs"`
	Metrics        MetricsConfig     `toml:"metrics"`
	Database       DatabaseConfig    `toml:"database"`
	ClubService    IntegrationConfig `toml:"club_service"`
	BookingService IntegrationConfig `toml:"booking_service"`
	Wizard         WizardConfig      `toml:"wizard"`
}

// ServerConfig настройки HTTP-сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки Prometheus-метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN возвращает строку подключения к PostgreSQL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// IntegrationConfig настройки клиента внешнего сервиса
type IntegrationConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// WizardConfig настройки движка быстрого бронирования
type WizardConfig struct {
	ReservationTickSeconds int  `toml:"reservation_tick_seconds"` // период проверки истечения брони
	SessionTTLMinutes      int  `toml:"session_ttl_minutes"`      // время жизни неактивной сессии
	SnapshotsEnabled       bool `toml:"snapshots_enabled"`        // сохранять ли снапшоты сессий в БД
}

// Load загружает конфигурацию из TOML-файла
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.ServiceName == "" {
		cfg.Metrics.ServiceName = "court-booking-service"
	}
	if cfg.ClubService.Timeout == 0 {
		cfg.ClubService.Timeout = 5
	}
	if cfg.BookingService.Timeout == 0 {
		cfg.BookingService.Timeout = 5
	}
	if cfg.Wizard.ReservationTickSeconds == 0 {
		cfg.Wizard.ReservationTickSeconds = 1
	}
	if cfg.Wizard.SessionTTLMinutes == 0 {
		cfg.Wizard.SessionTTLMinutes = 30
	}
}

func validate(cfg *Config) error {
	if cfg.ClubService.URL == "" {
		return fmt.Errorf("club_service.url is required")
	}
	if cfg.BookingService.URL == "" {
		return fmt.Errorf("booking_service.url is required")
	}
	if cfg.Wizard.SnapshotsEnabled && cfg.Database.Host == "" {
		return fmt.Errorf("database.host is required when wizard.snapshots_enabled is set")
	}
	return nil
}
