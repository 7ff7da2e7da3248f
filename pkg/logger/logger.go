package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger логгер сервиса с уровнями и ротацией файла
// Пишет одновременно в stdout и в файл (с ротацией через lumberjack).
type Logger struct {
	zl *zap.SugaredLogger
}

// New создает логгер, пишущий в указанный файл с заданным уровнем
// Допустимые уровни: debug, info, warn, error
func New(file string, level string) (*Logger, error) {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info", "":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("unknown log level: %s", level)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoder := zapcore.NewConsoleEncoder(encoderCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), zapLevel),
	}

	if file != "" {
		rotated := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    100, // мегабайты
			MaxBackups: 5,
			MaxAge:     30, // дни
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rotated), zapLevel))
	}

	zl := zap.New(zapcore.NewTee(cores...))
	return &Logger{zl: zl.Sugar()}, nil
}

// Debug логирует сообщение с уровнем DEBUG
func (l *Logger) Debug(format string, v ...interface{}) {
	l.zl.Debugf(format, v...)
}

// Info логирует сообщение с уровнем INFO
func (l *Logger) Info(format string, v ...interface{}) {
	l.zl.Infof(format, v...)
}

// Warn логирует сообщение с уровнем WARN
func (l *Logger) Warn(format string, v ...interface{}) {
	l.zl.Warnf(format, v...)
}

// Error логирует сообщение с уровнем ERROR
func (l *Logger) Error(format string, v ...interface{}) {
	l.zl.Errorf(format, v...)
}

// Fatal логирует сообщение с уровнем FATAL и завершает процесс
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.zl.Fatalf(format, v...)
}

// Close сбрасывает буферы логгера
func (l *Logger) Close() {
	_ = l.zl.Sync()
}
