package core

import "github.com/prometheus/client_golang/prometheus"

// MetricsRegistry builds a registry from the host registry and plugin collectors.
func MetricsRegistry(reg *Registry) *prometheus.Registry {
	registry := prometheus.NewRegistry()

	for _, collector := range reg.Collectors() {
		registry.MustRegister(collector)
	}

	return registry
}
