package plugins

import (
	"fmt"

	"github.com/joshp123/dfuhost/internal/config"
	"github.com/joshp123/dfuhost/internal/core"
)

// Factory builds a plugin instance from the loaded config. It reports false
// when config disables the plugin.
type Factory func(*config.Config) (core.Plugin, bool)

type entry struct {
	id      string
	factory Factory
}

var compiled []entry

// Register adds a compiled-in plugin factory under the plugin's ID.
// Registering the same ID twice panics.
func Register(id string, factory Factory) {
	for _, e := range compiled {
		if e.id == id {
			panic(fmt.Sprintf("plugin %q already registered", id))
		}
	}
	compiled = append(compiled, entry{id: id, factory: factory})
}

// Compiled builds the plugins enabled by cfg and lists the IDs it skipped.
func Compiled(cfg *config.Config) (active []core.Plugin, disabled []string) {
	if cfg == nil {
		return nil, nil
	}
	active = make([]core.Plugin, 0, len(compiled))
	for _, e := range compiled {
		plugin, ok := e.factory(cfg)
		if !ok {
			disabled = append(disabled, e.id)
			continue
		}
		active = append(active, plugin)
	}
	return active, disabled
}
