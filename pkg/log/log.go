// Package log provides structured logging for the singlecell packages,
// backed by github.com/rs/zerolog.
//
// Two surfaces are exposed. The Logger / LoggerProvider pair is what the
// scoring operations consume: slog-style key/value variadics behind a small
// interface, so tests can substitute a recording logger. The package-level
// helpers (SetupLogger, GetLogger, LogError) give applications direct access
// to the underlying zerolog logger.
//
// Logging is best-effort throughout: no scoring computation is ever aborted
// because a log write failed.
package log

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Structured field keys used across the scoring packages.
const (
	ComponentKey  = "component"
	OperationKey  = "operation"
	CellsKey      = "n_cells"
	GenesKey      = "n_genes"
	ScoreNameKey  = "score_name"
	DurationMsKey = "duration_ms"
)

// Operation values for OperationKey.
const (
	OperationScore    = "score"
	OperationClassify = "classify"
)

// Logger is the minimal structured logging interface consumed by the
// scoring operations. Keys and values alternate in keysAndValues.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	With(keysAndValues ...interface{}) Logger
}

// LoggerProvider hands out named loggers.
type LoggerProvider interface {
	GetLoggerWithName(name string) Logger
}

var (
	mu         sync.RWMutex
	baseLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			With().Timestamp().Logger().Level(zerolog.InfoLevel)
)

// SetupLogger configures the package-level logger with the given level
// ("debug", "info", "warn", "error"; anything else means info).
func SetupLogger(level string) {
	mu.Lock()
	defer mu.Unlock()
	baseLogger = baseLogger.Level(ToLogLevel(level))
}

// GetLogger returns the package-level zerolog logger.
func GetLogger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return baseLogger
}

// GetLoggerWithName returns a named Logger from the default provider.
func GetLoggerWithName(name string) Logger {
	return &zerologLogger{logger: GetLogger().With().Str("logger", name).Logger()}
}

// LogError logs err at error level with the message msg.
func LogError(err error, msg string) {
	logger := GetLogger()
	logger.Error().Err(err).Msg(msg)
}

// ToLogLevel converts a level name to a zerolog level.
func ToLogLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewZerologProvider creates a LoggerProvider emitting to stderr at the
// given level.
func NewZerologProvider(level zerolog.Level) LoggerProvider {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(level)
	return &zerologProvider{logger: logger}
}

type zerologProvider struct {
	logger zerolog.Logger
}

func (p *zerologProvider) GetLoggerWithName(name string) Logger {
	return &zerologLogger{logger: p.logger.With().Str("logger", name).Logger()}
}

type zerologLogger struct {
	logger zerolog.Logger
}

func (l *zerologLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.emit(l.logger.Debug(), msg, keysAndValues)
}

func (l *zerologLogger) Info(msg string, keysAndValues ...interface{}) {
	l.emit(l.logger.Info(), msg, keysAndValues)
}

func (l *zerologLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.emit(l.logger.Warn(), msg, keysAndValues)
}

func (l *zerologLogger) Error(msg string, keysAndValues ...interface{}) {
	l.emit(l.logger.Error(), msg, keysAndValues)
}

func (l *zerologLogger) With(keysAndValues ...interface{}) Logger {
	ctx := l.logger.With()
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, keysAndValues[i+1])
	}
	return &zerologLogger{logger: ctx.Logger()}
}

func (l *zerologLogger) emit(event *zerolog.Event, msg string, keysAndValues []interface{}) {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		event = event.Interface(key, keysAndValues[i+1])
	}
	event.Msg(msg)
}
