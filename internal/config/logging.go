package config

import (
	"log/slog"

	"git.home.luguber.info/inful/specbuilder/internal/foundation/normalization"
)

// LogLevel is the minimum level written by the logger.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevels = normalization.New(LogLevelInfo, map[LogLevel][]string{
	LogLevelDebug: {"trace"},
	LogLevelInfo:  nil,
	LogLevelWarn:  {"warning"},
	LogLevelError: {"err"},
})

var slogLevels = map[LogLevel]slog.Level{
	LogLevelDebug: slog.LevelDebug,
	LogLevelWarn:  slog.LevelWarn,
	LogLevelError: slog.LevelError,
}

// NormalizeLogLevel maps raw input to a LogLevel; unknown values become info.
func NormalizeLogLevel(raw string) LogLevel { return logLevels.Or(raw) }

// SlogLevel converts the level for slog.HandlerOptions.
func (l LogLevel) SlogLevel() slog.Level {
	if lvl, ok := slogLevels[l]; ok {
		return lvl
	}
	return slog.LevelInfo
}

// LogFormat selects the slog handler: text for terminals, json for log shippers.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormats = normalization.New(LogFormatText, map[LogFormat][]string{
	LogFormatJSON: nil,
	LogFormatText: {"console", "logfmt"},
})

// NormalizeLogFormat maps raw input to a LogFormat; unknown values become text.
func NormalizeLogFormat(raw string) LogFormat { return logFormats.Or(raw) }
