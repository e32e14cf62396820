// Package classifier provides bounded-latency access to a pre-trained
// multi-label toxicity model. The model is expensive to load, so a
// single shared load is performed lazily on first use; every caller
// waits under its own timeout and degrades to "no signal" instead of
// failing the request.
package classifier

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"trust-lab/errors"
)

const (
	// DefaultRequestTimeout bounds how long a request handler waits for
	// the model, loading included.
	DefaultRequestTimeout = 15 * time.Second
	// DefaultWarmupTimeout is only used by the out-of-band pre-warming
	// call, which may sit through the whole cold start.
	DefaultWarmupTimeout = 60 * time.Second
)

type gatewayState int

const (
	stateUninitialized gatewayState = iota
	stateLoading
	stateReady
	stateFailed
)

func (s gatewayState) String() string {
	switch s {
	case stateLoading:
		return "loading"
	case stateReady:
		return "ready"
	case stateFailed:
		return "failed"
	default:
		return "uninitialized"
	}
}

// LoaderFunc produces a ready model. Injected so tests can induce slow
// or failing loads.
type LoaderFunc func() (*Model, error)

type Config struct {
	// WeightsPath locates the multilingual weights export (primary).
	WeightsPath    string
	RequestTimeout time.Duration
	WarmupTimeout  time.Duration
	// Primary and Fallback override the default loaders when set.
	Primary  LoaderFunc
	Fallback LoaderFunc
}

// Gateway is the classifier singleton. Construct one per process and
// inject it; it must never be ambient global state.
type Gateway struct {
	log            *slog.Logger
	requestTimeout time.Duration
	warmupTimeout  time.Duration
	primary        LoaderFunc
	fallback       LoaderFunc

	mu    sync.Mutex
	state gatewayState
	model *Model
	done  chan struct{}
}

func NewGateway(cfg Config, log *slog.Logger) *Gateway {
	g := &Gateway{
		log:            log,
		requestTimeout: cfg.RequestTimeout,
		warmupTimeout:  cfg.WarmupTimeout,
		primary:        cfg.Primary,
		fallback:       cfg.Fallback,
	}
	if g.requestTimeout <= 0 {
		g.requestTimeout = DefaultRequestTimeout
	}
	if g.warmupTimeout <= 0 {
		g.warmupTimeout = DefaultWarmupTimeout
	}
	if g.primary == nil {
		path := cfg.WeightsPath
		g.primary = func() (*Model, error) { return LoadModelFile(path) }
	}
	if g.fallback == nil {
		g.fallback = func() (*Model, error) { return FallbackModel(), nil }
	}
	return g
}

// Classify scores text against every label. It returns nil on any
// failure or timeout; it never returns an error, because the decision
// pipeline must keep working without a classifier signal.
func (g *Gateway) Classify(ctx context.Context, text string) []LabelScore {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	model, err := g.instance(ctx, g.requestTimeout)
	if err != nil {
		g.log.Warn("classifier unavailable, degrading to no signal", "component", "classifier", "reason", err)
		return nil
	}
	return model.Predict(text).List()
}

// WarmUp pays the cold-start cost before user traffic arrives. Returns
// whether the model became ready within the warm-up budget; on false
// the load keeps running in the background.
func (g *Gateway) WarmUp(ctx context.Context) bool {
	model, err := g.instance(ctx, g.warmupTimeout)
	if err != nil {
		g.log.Warn("classifier warm-up incomplete", "component", "classifier", "reason", err)
		return false
	}
	g.log.Info("classifier ready", "model", model.Name())
	return true
}

// State reports the lifecycle phase for health checks and stats.
func (g *Gateway) State() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.String()
}

// instance hands out the shared model, starting the one-time load if
// nobody has yet. A caller whose budget elapses gets a timeout error
// while the shared load continues for everyone else.
func (g *Gateway) instance(ctx context.Context, budget time.Duration) (*Model, error) {
	g.mu.Lock()
	switch g.state {
	case stateReady:
		model := g.model
		g.mu.Unlock()
		return model, nil
	case stateFailed:
		g.mu.Unlock()
		return nil, errors.ErrClassifierFailed
	case stateUninitialized:
		g.state = stateLoading
		g.done = make(chan struct{})
		go g.load()
	}
	done := g.done
	g.mu.Unlock()

	waitCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	select {
	case <-done:
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.state == stateReady {
			return g.model, nil
		}
		return nil, errors.ErrClassifierFailed
	case <-waitCtx.Done():
		return nil, errors.ErrClassifierTimeout
	}
}

// load runs once per process, off any request goroutine, so that no
// caller cancellation can abort it.
func (g *Gateway) load() {
	started := time.Now()
	model, err := g.primary()
	if err != nil {
		g.log.Warn("primary model failed, trying fallback", "component", "classifier", "error", err)
		model, err = g.fallback()
	}

	g.mu.Lock()
	if err != nil {
		// Permanent: do not retry within the process lifetime.
		g.state = stateFailed
		g.log.Error("classifier load failed permanently", "component", "classifier", "error", err)
	} else {
		g.state = stateReady
		g.model = model
		g.log.Info("classifier model loaded",
			"model", model.Name(),
			"elapsed", time.Since(started).Round(time.Millisecond))
	}
	close(g.done)
	g.mu.Unlock()
}
