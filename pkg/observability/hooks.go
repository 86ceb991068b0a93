// Package observability lets libraries emit events without knowing who
// listens.
//
// Every category starts out with a no-op implementation. Binaries swap in
// real ones at startup:
//
//	observability.NewLogHooks(logger).Register()
//
// and library code emits through the accessor for its category:
//
//	observability.Pipeline().OnAnalyseStart(ctx, len(convs))
//	observability.Server().OnServe(ctx, r.Method, route, status, took)
//
// Swapping is lock-free; readers always see a complete set of hooks.
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// PipelineHooks receives events from the analyse, layout and render stages.
type PipelineHooks interface {
	OnAnalyseStart(ctx context.Context, conversations int)
	OnAnalyseComplete(ctx context.Context, clusters int, cached bool, duration time.Duration, err error)

	OnLayoutStart(ctx context.Context, clusters int)
	OnLayoutComplete(ctx context.Context, levels, excluded int, duration time.Duration)

	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives cache lookups and writes, tagged by key type
// ("analysis", "artifact", ...).
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from outgoing calls to the analysis service.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError records a transport failure (no response).
	OnError(ctx context.Context, method, host, path string, err error)
	// OnRetry fires before the client sleeps ahead of attempt number attempt.
	OnRetry(ctx context.Context, attempt int, wait time.Duration, err error)
}

// ServerHooks receives one event per request handled by the API server.
// route is the matched pattern, not the raw path.
type ServerHooks interface {
	OnServe(ctx context.Context, method, route string, status int, duration time.Duration)
}

// Noop implements every hook interface and does nothing.
type Noop struct{}

func (Noop) OnAnalyseStart(context.Context, int)                                    {}
func (Noop) OnAnalyseComplete(context.Context, int, bool, time.Duration, error)     {}
func (Noop) OnLayoutStart(context.Context, int)                                     {}
func (Noop) OnLayoutComplete(context.Context, int, int, time.Duration)              {}
func (Noop) OnRenderStart(context.Context, []string)                                {}
func (Noop) OnRenderComplete(context.Context, []string, time.Duration, error)       {}
func (Noop) OnCacheHit(context.Context, string)                                     {}
func (Noop) OnCacheMiss(context.Context, string)                                    {}
func (Noop) OnCacheSet(context.Context, string, int)                                {}
func (Noop) OnRequest(context.Context, string, string, string)                      {}
func (Noop) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (Noop) OnError(context.Context, string, string, string, error)                 {}
func (Noop) OnRetry(context.Context, int, time.Duration, error)                     {}
func (Noop) OnServe(context.Context, string, string, int, time.Duration)            {}

// registry is replaced wholesale on every Set call.
type registry struct {
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
	server   ServerHooks
}

var current atomic.Pointer[registry]

func init() { Reset() }

func load() *registry { return current.Load() }

// update copies the live registry, applies fn and publishes the copy.
func update(fn func(r *registry)) {
	for {
		old := current.Load()
		next := *old
		fn(&next)
		if current.CompareAndSwap(old, &next) {
			return
		}
	}
}

// SetPipelineHooks registers pipeline hooks. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		update(func(r *registry) { r.pipeline = h })
	}
}

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(r *registry) { r.cache = h })
	}
}

// SetHTTPHooks registers outgoing HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(r *registry) { r.http = h })
	}
}

// SetServerHooks registers API server hooks. Nil is ignored.
func SetServerHooks(h ServerHooks) {
	if h != nil {
		update(func(r *registry) { r.server = h })
	}
}

func Pipeline() PipelineHooks { return load().pipeline }
func Cache() CacheHooks       { return load().cache }
func HTTP() HTTPHooks         { return load().http }
func Server() ServerHooks     { return load().server }

// Reset restores all hooks to Noop.
func Reset() {
	current.Store(&registry{pipeline: Noop{}, cache: Noop{}, http: Noop{}, server: Noop{}})
}
