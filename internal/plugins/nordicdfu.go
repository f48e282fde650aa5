//go:build !dfuhost_no_nordicdfu

package plugins

import (
	"github.com/joshp123/dfuhost/internal/config"
	"github.com/joshp123/dfuhost/internal/core"
	"github.com/joshp123/dfuhost/plugins/nordicdfu"
)

func init() {
	Register(nordicdfu.PluginID, func(cfg *config.Config) (core.Plugin, bool) {
		return nordicdfu.NewPlugin(cfg.NordicDFU)
	})
}
