package supervisor

import (
	"context"
	"log/slog"
)

func (s *Supervisor) info(msg string, attrs ...slog.Attr) {
	s.logattrs(slog.LevelInfo, msg, attrs...)
}

func (s *Supervisor) debug(msg string, attrs ...slog.Attr) {
	s.logattrs(slog.LevelDebug, msg, attrs...)
}

func (s *Supervisor) logerr(msg string, attrs ...slog.Attr) {
	s.logattrs(slog.LevelError, msg, attrs...)
}

func (s *Supervisor) logattrs(level slog.Level, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(context.Background(), level, msg, attrs...)
}
