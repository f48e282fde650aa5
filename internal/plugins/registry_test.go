//go:build !dfuhost_no_nordicdfu

package plugins

import (
	"context"
	"errors"
	"testing"

	"github.com/joshp123/dfuhost/internal/config"
	"github.com/joshp123/dfuhost/internal/core"
	"github.com/joshp123/dfuhost/internal/registrant"
	"github.com/joshp123/dfuhost/plugins/nordicdfu"
)

func TestCompiledIncludesNordicDFU(t *testing.T) {
	active, disabled := Compiled(config.Default())
	if len(active) != 1 || active[0].ID() != nordicdfu.PluginID {
		t.Fatalf("unexpected compiled plugins: %v", active)
	}
	if len(disabled) != 0 {
		t.Fatalf("unexpected disabled plugins: %v", disabled)
	}
	if err := core.ValidatePlugins(active); err != nil {
		t.Fatalf("compiled plugins invalid: %v", err)
	}
}

func TestCompiledReportsDisabled(t *testing.T) {
	cfg := config.Default()
	off := false
	cfg.NordicDFU = &config.NordicDFUConfig{Enabled: &off}

	active, disabled := Compiled(cfg)
	if len(active) != 0 {
		t.Fatalf("expected no plugins, got %v", active)
	}
	if len(disabled) != 1 || disabled[0] != nordicdfu.PluginID {
		t.Fatalf("expected nordic dfu reported disabled, got %v", disabled)
	}

	if active, disabled := Compiled(nil); active != nil || disabled != nil {
		t.Fatalf("expected nothing for nil config, got %v %v", active, disabled)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate registration")
		}
	}()
	Register(nordicdfu.PluginID, func(*config.Config) (core.Plugin, bool) { return nil, false })
}

func TestGeneratedRegistrantRegistersNordicDFU(t *testing.T) {
	active, _ := Compiled(config.Default())
	generated := registrant.New(active...)
	reg := core.NewRegistry()

	if err := generated.RegisterWith(reg); err != nil {
		t.Fatalf("RegisterWith error: %v", err)
	}
	if err := generated.RegisterWith(reg); err != nil {
		t.Fatalf("second RegisterWith error: %v", err)
	}

	keys := reg.Keys()
	if len(keys) != 2 || keys[0] != nordicdfu.PluginID || keys[1] != generated.Key() {
		t.Fatalf("unexpected keys: %v", keys)
	}
	channels := reg.Channels()
	if len(channels) != 1 || channels[0] != nordicdfu.MethodChannel {
		t.Fatalf("unexpected channels: %v", channels)
	}
	if _, ok := reg.ValuePublishedByPlugin(nordicdfu.PluginID); !ok {
		t.Fatalf("expected nordic dfu to publish a value")
	}

	_, err := reg.Invoke(context.Background(), nordicdfu.MethodChannel, "startDfu", map[string]any{
		"address":  "AA:BB:CC:DD:EE:FF",
		"filePath": "/tmp/app.zip",
	})
	if !errors.Is(err, nordicdfu.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable from the default updater, got %v", err)
	}
}
