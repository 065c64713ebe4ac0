package utils

import (
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logger.go - настройка логирования
//
// Назначение:
// Инициализация и настройка структурированного логирования на базе zap.
//
// Функции:
// - InitLogger: создать и настроить logger
//   * Выбор формата (json, text)
//   * Уровни: DEBUG, INFO, WARN, ERROR, FATAL
//   * Вывод в файл или stderr
// - Глобальный логгер: InitGlobalLogger / SetGlobalLogger / L
// - Конструкторы полей для доменных сущностей (entry_id, slp_address, category...)

// LogConfig настройки логгера
type LogConfig struct {
	Level       string // debug, info, warn, error, fatal
	Format      string // json, text
	Output      string // путь к файлу, пусто = stderr
	Development bool
}

// Logger обертка над zap.Logger с sugared-версией для форматированных сообщений
type Logger struct {
	*zap.Logger
	sugar *zap.SugaredLogger
}

var (
	globalLogger *Logger
	globalMu     sync.RWMutex
)

// InitLogger создает новый логгер по конфигурации.
// Если файл вывода открыть не удалось - пишет в stderr.
func InitLogger(cfg LogConfig) *Logger {
	level := parseLevel(cfg.Level)

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if strings.ToLower(cfg.Format) == "text" {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	writer := zapcore.Lock(os.Stderr)
	if cfg.Output != "" {
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			writer = zapcore.Lock(f)
		}
	}

	core := zapcore.NewCore(encoder, writer, level)

	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg.Development {
		opts = append(opts, zap.Development())
	}

	l := zap.New(core, opts...)
	return &Logger{Logger: l, sugar: l.Sugar()}
}

// parseLevel переводит строку в уровень zap, по умолчанию info
func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// InitGlobalLogger создает логгер и делает его глобальным
func InitGlobalLogger(cfg LogConfig) *Logger {
	l := InitLogger(cfg)
	SetGlobalLogger(l)
	return l
}

// SetGlobalLogger устанавливает глобальный логгер
func SetGlobalLogger(l *Logger) {
	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()
}

// GetGlobalLogger возвращает глобальный логгер, создавая логгер по умолчанию при необходимости
func GetGlobalLogger() *Logger {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()
	if l != nil {
		return l
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = InitLogger(LogConfig{})
	}
	return globalLogger
}

// L короткий алиас для GetGlobalLogger
func L() *Logger {
	return GetGlobalLogger()
}

// With возвращает дочерний логгер с дополнительными полями
func (l *Logger) With(fields ...zap.Field) *Logger {
	child := l.Logger.With(fields...)
	return &Logger{Logger: child, sugar: child.Sugar()}
}

// WithComponent добавляет имя компонента
func (l *Logger) WithComponent(name string) *Logger {
	return l.With(Component(name))
}

// WithAddress добавляет SLP адрес
func (l *Logger) WithAddress(address string) *Logger {
	return l.With(Address(address))
}

// WithCategory добавляет категорию записи
func (l *Logger) WithCategory(category string) *Logger {
	return l.With(Category(category))
}

// WithRequestID добавляет идентификатор запроса
func (l *Logger) WithRequestID(id string) *Logger {
	return l.With(RequestID(id))
}

// Sugar возвращает sugared-логгер
func (l *Logger) Sugar() *zap.SugaredLogger {
	return l.sugar
}

// ============ Глобальные функции логирования ============

func Debug(msg string, fields ...zap.Field) { L().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field) { L().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field) { L().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { L().Error(msg, fields...) }

func Debugf(template string, args ...interface{}) { L().sugar.Debugf(template, args...) }
func Infof(template string, args ...interface{}) { L().sugar.Infof(template, args...) }
func Warnf(template string, args ...interface{}) { L().sugar.Warnf(template, args...) }
func Errorf(template string, args ...interface{}) { L().sugar.Errorf(template, args...) }

// ============ Конструкторы доменных полей ============

func EntryID(id string) zap.Field { return zap.String("entry_id", id) }
func Address(addr string) zap.Field { return zap.String("slp_address", addr) }
func Category(category string) zap.Field { return zap.String("category", category) }
func Balance(balance float64) zap.Field { return zap.Float64("balance", balance) }
func Merit(merit float64) zap.Field { return zap.Float64("merit", merit) }
func Hash(hash string) zap.Field { return zap.String("hash", hash) }
func Count(n int) zap.Field { return zap.Int("count", n) }
func Status(code int) zap.Field { return zap.Int("status", code) }
func RequestID(id string) zap.Field { return zap.String("request_id", id) }
func Component(name string) zap.Field { return zap.String("component", name) }
func Latency(d time.Duration) zap.Field { return zap.Float64("latency_ms", float64(d.Microseconds())/1000) }
func Endpoint(endpoint string) zap.Field { return zap.String("endpoint", endpoint) }

// Переэкспорт базовых конструкторов zap, чтобы пакеты не импортировали zap напрямую

func String(key, val string) zap.Field { return zap.String(key, val) }
func Int(key string, val int) zap.Field { return zap.Int(key, val) }
func Int64(key string, val int64) zap.Field { return zap.Int64(key, val) }
func Float64(key string, val float64) zap.Field { return zap.Float64(key, val) }
func Bool(key string, val bool) zap.Field { return zap.Bool(key, val) }
func Err(err error) zap.Field { return zap.Error(err) }
func Any(key string, val interface{}) zap.Field { return zap.Any(key, val) }
