package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

type LogLevel int

const (
	LogLevelInfo LogLevel = iota
	LogLevelWarning
	LogLevelError
)

const logFileName = "app.log"

var (
	l            zerolog.Logger
	currentLevel = LogLevelInfo
)

func init() {
	l = zerolog.New(consoleWriter(os.Stdout)).With().Timestamp().Logger()
}

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02 15:04:05", NoColor: true}
}

// Init routes log output to stdout and to app.log inside dir, creating the
// directory if needed. With an empty dir only stdout is used.
func Init(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(filepath.Join(dir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	out := zerolog.MultiLevelWriter(consoleWriter(os.Stdout), file)
	l = zerolog.New(out).With().Timestamp().Logger()
	return nil
}

// SetLevel sets the minimum log level to display.
func SetLevel(level LogLevel) {
	currentLevel = level
}

// SetOutput redirects all log output to w.
func SetOutput(w io.Writer) {
	l = zerolog.New(w).With().Timestamp().Logger()
}

// Info logs an informational message
func Info(format string, v ...interface{}) {
	if currentLevel <= LogLevelInfo {
		l.Info().Msgf(format, v...)
	}
}

// InfoTagged logs an informational message with tags
func InfoTagged(tags []string, format string, v ...interface{}) {
	if currentLevel <= LogLevelInfo {
		l.Info().Msgf(tagPrefix(tags)+format, v...)
	}
}

// Warning logs a warning message
func Warning(format string, v ...interface{}) {
	if currentLevel <= LogLevelWarning {
		l.Warn().Msgf(format, v...)
	}
}

// WarningTagged logs a warning message with tags
func WarningTagged(tags []string, format string, v ...interface{}) {
	if currentLevel <= LogLevelWarning {
		l.Warn().Msgf(tagPrefix(tags)+format, v...)
	}
}

// Error logs an error message
func Error(format string, v ...interface{}) {
	if currentLevel <= LogLevelError {
		l.Error().Msgf(format, v...)
	}
}

// ErrorTagged logs an error message with tags
func ErrorTagged(tags []string, format string, v ...interface{}) {
	if currentLevel <= LogLevelError {
		l.Error().Msgf(tagPrefix(tags)+format, v...)
	}
}

// DryRun logs a dry run action
func DryRun(format string, v ...interface{}) {
	l.Info().Msgf("[DRY RUN] "+format, v...)
}

// DryRunTagged logs a dry run action with tags
func DryRunTagged(tags []string, format string, v ...interface{}) {
	l.Info().Msgf("[DRY RUN] "+tagPrefix(tags)+format, v...)
}

func tagPrefix(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return fmt.Sprintf("[%s] ", strings.Join(tags, "]["))
}
