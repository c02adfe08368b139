/*
Package logger wraps zerolog so every component of the protocol library logs the
same way. A Logger can write to any number of console writers and, optionally, to a
rotating log file. Sub-loggers carry a "component" field so output from the adapter,
its telemetry and the probe CLI can be told apart.
*/
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Level = zerolog.Level

const (
	TraceLevel    Level = zerolog.TraceLevel
	DebugLevel    Level = zerolog.DebugLevel
	InfoLevel     Level = zerolog.InfoLevel
	ErrorLevel    Level = zerolog.ErrorLevel
	DisabledLevel Level = zerolog.Disabled

	defaultLogLevel = zerolog.DebugLevel

	// rotation settings for the log file
	maxLogFileSizeMB  = 50
	maxLogFileBackups = 3
	maxLogFileAgeDays = 28
)

type Config struct {
	ConsoleWriters []io.Writer
	FilePath       string
	LogLevel       Level
}

type Logger struct {
	logger zerolog.Logger
	config Config
}

func New(config *Config) (*Logger, error) {
	if config == nil {
		return nil, fmt.Errorf("logger config cannot be nil")
	}

	var writers []io.Writer
	for _, w := range config.ConsoleWriters {
		writers = append(writers, zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339})
	}

	if config.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(config.FilePath), os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create log directory for %s: %w", config.FilePath, err)
		}

		writers = append(writers, &lumberjack.Logger{
			Filename:   config.FilePath,
			MaxSize:    maxLogFileSizeMB,
			MaxBackups: maxLogFileBackups,
			MaxAge:     maxLogFileAgeDays,
		})
	}

	if len(writers) == 0 {
		return nil, fmt.Errorf("logger needs at least one console writer or a file path")
	}

	// the zero value of zerolog.Level is DebugLevel, so an unset level already means debug
	level := config.LogLevel

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &Logger{
		logger: zl,
		config: *config,
	}, nil
}

// ToLogLevel converts a user supplied string into a log level, falling back to debug
func ToLogLevel(level string) Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return TraceLevel
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "error":
		return ErrorLevel
	case "disabled":
		return DisabledLevel
	default:
		return defaultLogLevel
	}
}

func (l *Logger) GetComponentLogger(component string) *Logger {
	return &Logger{
		logger: l.logger.With().Str("component", component).Logger(),
		config: l.config,
	}
}

func (l *Logger) Tracef(format string, a ...interface{}) {
	l.logger.Trace().Msgf(format, a...)
}

func (l *Logger) Debugf(format string, a ...interface{}) {
	l.logger.Debug().Msgf(format, a...)
}

func (l *Logger) Info(msg string) {
	l.logger.Info().Msg(msg)
}

func (l *Logger) Infof(format string, a ...interface{}) {
	l.logger.Info().Msgf(format, a...)
}

func (l *Logger) Errorf(format string, a ...interface{}) {
	l.logger.Error().Msgf(format, a...)
}
