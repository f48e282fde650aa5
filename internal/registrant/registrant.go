// Package registrant registers the compiled-in plugins with a host registry.
package registrant

import (
	"errors"
	"reflect"

	"github.com/joshp123/dfuhost/internal/core"
)

// ErrNilRegistry is returned when RegisterWith is given no registry.
var ErrNilRegistry = errors.New("registrant: registry is nil")

// Generated registers its plugins with a registry at most once.
type Generated struct {
	plugins []core.Plugin
}

func New(plugins ...core.Plugin) Generated {
	return Generated{plugins: plugins}
}

// Key is the idempotency key: the registrant's fully-qualified type name.
func (g Generated) Key() string {
	t := reflect.TypeOf(g)
	return t.PkgPath() + "." + t.Name()
}

// RegisterWith hands each plugin a registrar scoped to its ID, unless this
// registrant already ran against reg. Plugin errors are returned as-is; the
// idempotency key stays registered when a plugin fails.
func (g Generated) RegisterWith(reg *core.Registry) error {
	if reg == nil {
		return ErrNilRegistry
	}
	if g.alreadyRegisteredWith(reg) {
		return nil
	}
	for _, plugin := range g.plugins {
		if err := plugin.RegisterWith(reg.RegistrarFor(plugin.ID())); err != nil {
			return err
		}
	}
	return nil
}

func (g Generated) alreadyRegisteredWith(reg *core.Registry) bool {
	key := g.Key()
	if reg.HasPlugin(key) {
		return true
	}
	reg.RegistrarFor(key)
	return false
}
