package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level, except retries
// which are logged at info.
type LogHooks struct {
	log *log.Logger
}

// NewLogHooks returns hooks logging to l.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{log: l}
}

// Register installs h for every hook category.
func (h *LogHooks) Register() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
	SetServerHooks(h)
}

func (h *LogHooks) OnAnalyseStart(_ context.Context, conversations int) {
	h.log.Debug("analyse start", "conversations", conversations)
}

func (h *LogHooks) OnAnalyseComplete(_ context.Context, clusters int, cached bool, d time.Duration, err error) {
	if err != nil {
		h.log.Debug("analyse failed", "took", d, "err", err)
		return
	}
	h.log.Debug("analyse done", "clusters", clusters, "cached", cached, "took", d)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, clusters int) {
	h.log.Debug("layout start", "clusters", clusters)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, levels, excluded int, d time.Duration) {
	h.log.Debug("layout done", "levels", levels, "excluded", excluded, "took", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.log.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.log.Debug("render done", "formats", formats, "took", d, "err", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.log.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.log.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.log.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.log.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.log.Debug("http response", "method", method, "path", path, "status", status, "took", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.log.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}

func (h *LogHooks) OnRetry(_ context.Context, attempt int, wait time.Duration, err error) {
	h.log.Info("retrying", "attempt", attempt, "wait", wait, "err", err)
}

func (h *LogHooks) OnServe(_ context.Context, method, route string, status int, d time.Duration) {
	h.log.Debug("served", "method", method, "route", route, "status", status, "took", d)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
	_ ServerHooks   = (*LogHooks)(nil)
)
