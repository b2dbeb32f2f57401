package logger

import (
	"io"

	"github.com/ideamans/go-l10n"
	"github.com/sirupsen/logrus"

	"github.com/user/av1rtc/pkg/ports"
)

// LogrusLogger writes structured records through logrus. Messages are
// translated like ConsoleLogger; the component becomes a field.
type LogrusLogger struct {
	entry *logrus.Entry
	level ports.LogLevel
}

// NewLogrus creates a logger writing to out. With json set, records are
// emitted as JSON lines; otherwise logrus' text format is used.
func NewLogrus(out io.Writer, level ports.LogLevel, json bool) *LogrusLogger {
	l := logrus.New()
	l.SetOutput(out)
	if json {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}
	l.SetLevel(toLogrusLevel(level))
	return &LogrusLogger{entry: logrus.NewEntry(l), level: level}
}

func toLogrusLevel(level ports.LogLevel) logrus.Level {
	switch level {
	case ports.LevelDebug:
		return logrus.DebugLevel
	case ports.LevelInfo:
		return logrus.InfoLevel
	case ports.LevelWarn:
		return logrus.WarnLevel
	case ports.LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.PanicLevel
	}
}

// Debug logs a debug message.
func (l *LogrusLogger) Debug(msg string, args ...interface{}) {
	l.entry.Debug(l10n.F(msg, args...))
}

// Info logs an informational message.
func (l *LogrusLogger) Info(msg string, args ...interface{}) {
	l.entry.Info(l10n.F(msg, args...))
}

// Warn logs a warning message.
func (l *LogrusLogger) Warn(msg string, args ...interface{}) {
	l.entry.Warn(l10n.F(msg, args...))
}

// Error logs an error message.
func (l *LogrusLogger) Error(msg string, args ...interface{}) {
	l.entry.Error(l10n.F(msg, args...))
}

// WithComponent returns a logger that tags every record with component.
func (l *LogrusLogger) WithComponent(component string) ports.Logger {
	return &LogrusLogger{
		entry: l.entry.WithField("component", component),
		level: l.level,
	}
}

var _ ports.Logger = (*LogrusLogger)(nil)
