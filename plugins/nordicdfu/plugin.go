package nordicdfu

import (
	"sync/atomic"

	"github.com/joshp123/dfuhost/internal/config"
	"github.com/joshp123/dfuhost/internal/core"
)

const (
	PluginID      = "com.timeyaa.flutternordicdfu.FlutterNordicDfuPlugin"
	MethodChannel = "com.timeyaa.flutter_nordic_dfu/method"
)

// Plugin exposes Nordic Secure DFU firmware updates over a method channel.
type Plugin struct {
	updater Updater
	metrics *metrics
	busy    atomic.Bool
}

// NewPlugin constructs the plugin from config. It reports false when disabled.
func NewPlugin(cfg *config.NordicDFUConfig) (core.Plugin, bool) {
	if cfg != nil && cfg.Enabled != nil && !*cfg.Enabled {
		return nil, false
	}
	return New(nil), true
}

// New returns a plugin driving updater. A nil updater reports ErrUnavailable
// for every update.
func New(updater Updater) *Plugin {
	if updater == nil {
		updater = unavailableUpdater{}
	}
	return &Plugin{updater: updater, metrics: newMetrics()}
}

func (p *Plugin) ID() string {
	return PluginID
}

func (p *Plugin) Manifest() core.Manifest {
	return core.Manifest{
		PluginID:    PluginID,
		DisplayName: "Nordic DFU",
		Version:     "0.6.1",
		Channels:    []string{MethodChannel},
	}
}

// Health is degraded while no Bluetooth updater is wired in.
func (p *Plugin) Health() core.HealthStatus {
	if _, ok := p.updater.(unavailableUpdater); ok {
		return core.HealthDegraded
	}
	return core.HealthHealthy
}

func (p *Plugin) HealthMessage() string {
	if _, ok := p.updater.(unavailableUpdater); ok {
		return ErrUnavailable.Error()
	}
	return ""
}

func (p *Plugin) RegisterWith(r *core.Registrar) error {
	r.SetMethodHandler(MethodChannel, p.handle)
	for _, c := range p.metrics.collectors() {
		r.AddCollector(c)
	}
	r.Publish(p)
	return nil
}
