package ports

import (
	"fmt"
	"strings"
)

// LogLevel orders log messages by severity. LevelQuiet is above every
// real level, so a logger set to it prints nothing.
type LogLevel int

const (
	// LevelDebug covers per-frame and per-call details inside components.
	LevelDebug LogLevel = iota
	// LevelInfo covers session and pipeline progress.
	LevelInfo
	// LevelWarn covers best-effort failures such as a rejected control.
	LevelWarn
	// LevelError covers failures that abort a command.
	LevelError
	LevelQuiet
)

var levelNames = [...]string{"debug", "info", "warn", "error", "quiet"}

func (l LogLevel) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "unknown"
	}
	return levelNames[l]
}

// Allows reports whether a logger configured at l emits messages at msg.
func (l LogLevel) Allows(msg LogLevel) bool {
	return msg >= l && msg < LevelQuiet
}

// ParseLogLevel maps a level name to a LogLevel. "warning" is accepted as
// an alias of "warn"; anything unrecognized yields LevelInfo.
func ParseLogLevel(s string) LogLevel {
	level, err := LookupLogLevel(s)
	if err != nil {
		return LevelInfo
	}
	return level
}

// LookupLogLevel is ParseLogLevel with an error for unknown names.
func LookupLogLevel(s string) (LogLevel, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "warning" {
		name = "warn"
	}
	for i, n := range levelNames {
		if n == name {
			return LogLevel(i), nil
		}
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger is the logging port shared by every component. msg is an English
// format string that adapters translate before formatting with args.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that tags messages with component,
	// for example "av1.encoder" or "stage.capture".
	WithComponent(component string) Logger
}
