package core

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry tracks which plugin keys have been registered with the host.
//
// A Registry is owned by the host and passed explicitly to whatever
// registers against it; there is no process-wide instance.
type Registry struct {
	mu         sync.RWMutex
	registered map[string]*Registrar
	published  map[string]any
	handlers   map[string]MethodHandler
	collectors []prometheus.Collector

	registrations *prometheus.CounterVec
	registeredN   prometheus.GaugeFunc
	invocations   *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := &Registry{
		registered: make(map[string]*Registrar),
		published:  make(map[string]any),
		handlers:   make(map[string]MethodHandler),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dfuhost_plugin_registrations_total",
			Help: "Keys marked registered, by key",
		}, []string{"key"}),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dfuhost_method_calls_total",
			Help: "Method channel invocations by channel and result",
		}, []string{"channel", "result"}),
	}
	r.registeredN = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "dfuhost_registered_plugins",
		Help: "Number of keys currently registered",
	}, func() float64 {
		r.mu.RLock()
		defer r.mu.RUnlock()
		return float64(len(r.registered))
	})
	return r
}

// HasPlugin reports whether key has been registered.
func (r *Registry) HasPlugin(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.registered[key]
	return ok
}

// RegistrarFor returns a handle scoped to key and marks key registered.
// Asking again for the same key returns the same handle.
func (r *Registry) RegistrarFor(key string) *Registrar {
	r.mu.Lock()
	defer r.mu.Unlock()

	if reg, ok := r.registered[key]; ok {
		return reg
	}
	reg := &Registrar{key: key, registry: r}
	r.registered[key] = reg
	r.registrations.WithLabelValues(key).Inc()
	return reg
}

// ValuePublishedByPlugin returns the value a plugin published through its registrar.
func (r *Registry) ValuePublishedByPlugin(key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.published[key]
	return v, ok
}

// Keys lists registered keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.registered))
	for key := range r.registered {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Channels lists channels that have a handler attached, sorted.
func (r *Registry) Channels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	channels := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		channels = append(channels, name)
	}
	sort.Strings(channels)
	return channels
}

// Invoke dispatches a method call to the handler attached to channel.
func (r *Registry) Invoke(ctx context.Context, channel, method string, args map[string]any) (any, error) {
	r.mu.RLock()
	handler, ok := r.handlers[channel]
	r.mu.RUnlock()

	if !ok {
		r.invocations.WithLabelValues(channel, "no_handler").Inc()
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, channel)
	}

	result, err := handler(ctx, MethodCall{Method: method, Arguments: args})
	if err != nil {
		r.invocations.WithLabelValues(channel, "error").Inc()
		return nil, err
	}
	r.invocations.WithLabelValues(channel, "ok").Inc()
	return result, nil
}

// Collectors returns the registry's own collectors followed by those plugins added.
func (r *Registry) Collectors() []prometheus.Collector {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []prometheus.Collector{r.registrations, r.registeredN, r.invocations}
	return append(out, r.collectors...)
}

// Registrar is a capability handle scoped to a single registered key.
type Registrar struct {
	key      string
	registry *Registry
}

func (g *Registrar) Key() string {
	return g.key
}

// Publish makes value available to the host via ValuePublishedByPlugin.
func (g *Registrar) Publish(value any) {
	g.registry.mu.Lock()
	defer g.registry.mu.Unlock()
	g.registry.published[g.key] = value
}

// SetMethodHandler attaches handler to channel, replacing any earlier one.
// A nil handler detaches the channel.
func (g *Registrar) SetMethodHandler(channel string, handler MethodHandler) {
	g.registry.mu.Lock()
	defer g.registry.mu.Unlock()
	if handler == nil {
		delete(g.registry.handlers, channel)
		return
	}
	g.registry.handlers[channel] = handler
}

// AddCollector exposes a plugin collector on the host metrics registry.
func (g *Registrar) AddCollector(c prometheus.Collector) {
	g.registry.mu.Lock()
	defer g.registry.mu.Unlock()
	g.registry.collectors = append(g.registry.collectors, c)
}
