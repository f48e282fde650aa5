package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joshp123/dfuhost/internal/observability"
)

// MetricsHandler exposes the Prometheus registry, logging gather errors.
func MetricsHandler(registry *prometheus.Registry, logger *observability.Logger) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		ErrorLog:      zapErrorLog{logger},
		ErrorHandling: promhttp.ContinueOnError,
	})
}

type zapErrorLog struct {
	logger *observability.Logger
}

func (z zapErrorLog) Println(v ...any) {
	z.logger.Error(v...)
}
