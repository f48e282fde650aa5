package server

import (
	"encoding/json"
	"net/http"

	"github.com/joshp123/dfuhost/internal/core"
)

// HealthHandler reports ok once the registrant key is present in reg.
func HealthHandler(reg *core.Registry, registrantKey string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if !reg.HasPlugin(registrantKey) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("registering"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

// PluginsHandler serves registered keys and attached channels as JSON.
func PluginsHandler(reg *core.Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		body := struct {
			Keys     []string `json:"keys"`
			Channels []string `json:"channels"`
		}{Keys: reg.Keys(), Channels: reg.Channels()}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(body)
	})
}
