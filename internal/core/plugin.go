package core

import (
	"context"
	"errors"
)

var (
	// ErrNoHandler is returned when no plugin attached a handler to a channel.
	ErrNoHandler = errors.New("no handler for channel")
	// ErrNotImplemented is returned by handlers for methods they do not know.
	ErrNotImplemented = errors.New("method not implemented")
)

// HealthStatus represents plugin health states for registry reporting.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "HEALTHY"
	HealthDegraded HealthStatus = "DEGRADED"
	HealthError    HealthStatus = "ERROR"
)

// Manifest describes a plugin for discovery and registry metadata.
type Manifest struct {
	PluginID    string
	DisplayName string
	Version     string
	Channels    []string
}

// Plugin is the compile-time contract for all host plugins.
//
// ID is the fully-qualified identifier the host scopes the plugin's
// registrar to. RegisterWith is called at most once per registry.
type Plugin interface {
	ID() string
	Manifest() Manifest
	RegisterWith(*Registrar) error
	Health() HealthStatus
	HealthMessage() string
}

// MethodCall is a single invocation delivered over a method channel.
type MethodCall struct {
	Method    string
	Arguments map[string]any
}

// MethodHandler answers calls on a channel a plugin attached during registration.
type MethodHandler func(ctx context.Context, call MethodCall) (any, error)
