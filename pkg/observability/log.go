package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level, errors at warn.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to l.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{logger: l}
}

func (h *LogHooks) OnReadStart(_ context.Context, source string) {
	h.logger.Debug("read start", "source", source)
}

func (h *LogHooks) OnReadComplete(_ context.Context, source string, n int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("read failed", "source", source, "err", err)
		return
	}
	h.logger.Debug("read done", "source", source, "items", n, "elapsed", d)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, n int) {
	h.logger.Debug("layout start", "items", n)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, rows, issues int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("layout failed", "err", err)
		return
	}
	h.logger.Debug("layout done", "rows", rows, "issues", issues, "elapsed", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("render failed", "formats", formats, "err", err)
		return
	}
	h.logger.Debug("render done", "formats", formats, "elapsed", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnTransition(_ context.Context, id, event, from, to string, err error) {
	if err != nil {
		h.logger.Warn("transition rejected", "item", id, "event", event, "from", from, "err", err)
		return
	}
	h.logger.Debug("transition", "item", id, "event", event, "from", from, "to", to)
}

func (h *LogHooks) OnReset(_ context.Context, session string) {
	h.logger.Debug("modes reset", "session", session)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {
	h.logger.Debug("request", "method", method, "route", route)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Info("response", "method", method, "route", route, "status", status, "elapsed", d)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ ModeHooks     = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
