package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance.
var Logger zerolog.Logger

// Level represents a log severity threshold.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config holds logging configuration.
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

// Init initializes the global logger.
func Init(cfg Config) {
	var level zerolog.Level
	switch cfg.Level {
	case DebugLevel:
		level = zerolog.DebugLevel
	case InfoLevel:
		level = zerolog.InfoLevel
	case WarnLevel:
		level = zerolog.WarnLevel
	case ErrorLevel:
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	if cfg.JSONOutput {
		Logger = zerolog.New(output).With().Timestamp().Logger()
	} else {
		Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
}

// WithComponent creates a child logger with a component field.
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// WithIterationID creates a child logger scoped to one exploration
// iteration.
func WithIterationID(iteration int) zerolog.Logger {
	return Logger.With().Int("iteration", iteration).Logger()
}

// WithOperationID creates a child logger scoped to one operation id.
func WithOperationID(operationID int) zerolog.Logger {
	return Logger.With().Int("operation_id", operationID).Logger()
}

// WithScenario creates a child logger scoped to one bundled scenario name.
func WithScenario(name string) zerolog.Logger {
	return Logger.With().Str("scenario", name).Logger()
}

// Info logs msg at info level on the global logger.
func Info(msg string) { Logger.Info().Msg(msg) }

// Debug logs msg at debug level on the global logger.
func Debug(msg string) { Logger.Debug().Msg(msg) }

// Warn logs msg at warn level on the global logger.
func Warn(msg string) { Logger.Warn().Msg(msg) }

// Error logs msg at error level on the global logger.
func Error(msg string) { Logger.Error().Msg(msg) }

// Errorf logs err with a formatted message at error level.
func Errorf(format string, err error) { Logger.Error().Err(err).Msg(format) }

// Fatal logs msg at fatal level and exits the process.
func Fatal(msg string) { Logger.Fatal().Msg(msg) }
