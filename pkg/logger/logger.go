package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is the interface used throughout the scraper for structured logging.
type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	Fatal(msg string)

	DebugWithFields(msg string, fields map[string]interface{})
	InfoWithFields(msg string, fields map[string]interface{})
	WarnWithFields(msg string, fields map[string]interface{})
	ErrorWithFields(msg string, fields map[string]interface{})

	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	// GetZerolog exposes the underlying zerolog.Logger for advanced use.
	GetZerolog() *zerolog.Logger
}

// Config controls logger construction.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string
	// Pretty enables human-readable console output instead of JSON.
	Pretty bool
	// LogFile, when set, duplicates output to the given file path.
	LogFile string
}

type zerologAdapter struct {
	zl zerolog.Logger
}

// New creates a Logger from the given config.
func New(cfg Config) (Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var writers []io.Writer
	if cfg.Pretty {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	} else {
		writers = append(writers, os.Stdout)
	}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, f)
	}

	var out io.Writer
	if len(writers) == 1 {
		out = writers[0]
	} else {
		out = zerolog.MultiLevelWriter(writers...)
	}

	zl := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("app", "xscraper").
		Logger()

	return &zerologAdapter{zl: zl}, nil
}

func (l *zerologAdapter) Debug(msg string) { l.zl.Debug().Msg(msg) }
func (l *zerologAdapter) Info(msg string)  { l.zl.Info().Msg(msg) }
func (l *zerologAdapter) Warn(msg string)  { l.zl.Warn().Msg(msg) }
func (l *zerologAdapter) Error(msg string) { l.zl.Error().Msg(msg) }
func (l *zerologAdapter) Fatal(msg string) { l.zl.Fatal().Msg(msg) }

func (l *zerologAdapter) DebugWithFields(msg string, fields map[string]interface{}) {
	applyFields(l.zl.Debug(), fields).Msg(msg)
}

func (l *zerologAdapter) InfoWithFields(msg string, fields map[string]interface{}) {
	applyFields(l.zl.Info(), fields).Msg(msg)
}

func (l *zerologAdapter) WarnWithFields(msg string, fields map[string]interface{}) {
	applyFields(l.zl.Warn(), fields).Msg(msg)
}

func (l *zerologAdapter) ErrorWithFields(msg string, fields map[string]interface{}) {
	applyFields(l.zl.Error(), fields).Msg(msg)
}

func (l *zerologAdapter) WithField(key string, value interface{}) Logger {
	return &zerologAdapter{zl: applyField(l.zl.With(), key, value).Logger()}
}

func (l *zerologAdapter) WithFields(fields map[string]interface{}) Logger {
	ctx := l.zl.With()
	for key, value := range fields {
		ctx = applyField(ctx, key, value)
	}
	return &zerologAdapter{zl: ctx.Logger()}
}

func (l *zerologAdapter) WithError(err error) Logger {
	return &zerologAdapter{zl: l.zl.With().Err(err).Logger()}
}

func (l *zerologAdapter) GetZerolog() *zerolog.Logger {
	return &l.zl
}

func applyFields(event *zerolog.Event, fields map[string]interface{}) *zerolog.Event {
	for key, value := range fields {
		switch v := value.(type) {
		case string:
			event = event.Str(key, v)
		case int:
			event = event.Int(key, v)
		case int64:
			event = event.Int64(key, v)
		case float64:
			event = event.Float64(key, v)
		case bool:
			event = event.Bool(key, v)
		case []string:
			event = event.Strs(key, v)
		case time.Duration:
			event = event.Dur(key, v)
		case error:
			event = event.AnErr(key, v)
		default:
			event = event.Interface(key, v)
		}
	}
	return event
}

func applyField(ctx zerolog.Context, key string, value interface{}) zerolog.Context {
	switch v := value.(type) {
	case string:
		return ctx.Str(key, v)
	case int:
		return ctx.Int(key, v)
	case int64:
		return ctx.Int64(key, v)
	case float64:
		return ctx.Float64(key, v)
	case bool:
		return ctx.Bool(key, v)
	case []string:
		return ctx.Strs(key, v)
	case time.Duration:
		return ctx.Dur(key, v)
	case error:
		return ctx.AnErr(key, v)
	default:
		return ctx.Interface(key, v)
	}
}

var defaultLogger Logger

// Initialize sets up the package-level logger. Call once at startup.
func Initialize(cfg Config) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	defaultLogger = l
	log.Logger = *l.GetZerolog()
	return nil
}

// GetLogger returns the package-level logger, creating an info-level
// console logger if Initialize was never called.
func GetLogger() Logger {
	if defaultLogger == nil {
		l, _ := New(Config{Level: "info", Pretty: true})
		defaultLogger = l
	}
	return defaultLogger
}

// Debug logs a debug message using the package-level logger.
func Debug(msg string) { GetLogger().Debug(msg) }

// Info logs an info message using the package-level logger.
func Info(msg string) { GetLogger().Info(msg) }

// Warn logs a warning message using the package-level logger.
func Warn(msg string) { GetLogger().Warn(msg) }

// Error logs an error message using the package-level logger.
func Error(msg string) { GetLogger().Error(msg) }

// WithField returns a package-level logger with an extra field attached.
func WithField(key string, value interface{}) Logger {
	return GetLogger().WithField(key, value)
}

// WithFields returns a package-level logger with extra fields attached.
func WithFields(fields map[string]interface{}) Logger {
	return GetLogger().WithFields(fields)
}

// WithError returns a package-level logger with an error attached.
func WithError(err error) Logger {
	return GetLogger().WithError(err)
}
