package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel names a log level in configuration.
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
	FatalLevel LogLevel = "fatal"
)

var levels = map[LogLevel]zerolog.Level{
	DebugLevel: zerolog.DebugLevel,
	InfoLevel:  zerolog.InfoLevel,
	WarnLevel:  zerolog.WarnLevel,
	ErrorLevel: zerolog.ErrorLevel,
	FatalLevel: zerolog.FatalLevel,
}

// Config controls the process-wide logger.
type Config struct {
	Level  LogLevel
	Pretty bool      // Human-readable console output instead of JSON
	Output io.Writer // Defaults to os.Stdout
}

var defaultLogger zerolog.Logger

// Configure installs the process-wide logger. It also replaces zerolog's
// global log.Logger so packages logging through it stay consistent. Unknown
// levels fall back to info.
func Configure(config Config) {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	zerolog.TimeFieldFormat = time.RFC3339

	level, ok := levels[config.Level]
	if !ok {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var writer io.Writer = config.Output
	if config.Pretty {
		writer = zerolog.ConsoleWriter{
			Out:        config.Output,
			TimeFormat: time.RFC3339,
		}
	}

	defaultLogger = zerolog.New(writer).With().Timestamp().Logger()
	log.Logger = defaultLogger
}

// Leveled accessors over the configured logger.

func Debug() *zerolog.Event {
	return defaultLogger.Debug()
}

func Info() *zerolog.Event {
	return defaultLogger.Info()
}

func Warn() *zerolog.Event {
	return defaultLogger.Warn()
}

func Error() *zerolog.Event {
	return defaultLogger.Error()
}

// Fatal logs and then exits via zerolog's fatal handling.
func Fatal() *zerolog.Event {
	return defaultLogger.Fatal()
}

func init() {
	// Sane default until Configure runs with the loaded config.
	Configure(Config{Level: InfoLevel, Pretty: true})
}
