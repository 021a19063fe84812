package spim

import (
	"context"
	"log/slog"
)

func (e *Engine) info(msg string, attrs ...slog.Attr) {
	e.logattrs(slog.LevelInfo, msg, attrs...)
}

func (e *Engine) debug(msg string, attrs ...slog.Attr) {
	e.logattrs(slog.LevelDebug, msg, attrs...)
}

func (e *Engine) logerr(msg string, attrs ...slog.Attr) {
	e.logattrs(slog.LevelError, msg, attrs...)
}

func (e *Engine) logattrs(level slog.Level, msg string, attrs ...slog.Attr) {
	if e.logger == nil {
		return
	}
	e.logger.LogAttrs(context.Background(), level, msg, attrs...)
}
