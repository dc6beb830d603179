package logging

import (
	"log/slog"
	"strings"
)

// LevelFromString parses level names such as "debug", "WARN" or "info+2".
// Nil or unknown names fall back to INFO.
func LevelFromString(str *string) slog.Level {
	if str == nil {
		return slog.LevelInfo
	}
	s := strings.TrimSpace(*str)
	if strings.EqualFold(s, "warning") {
		return slog.LevelWarn
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
