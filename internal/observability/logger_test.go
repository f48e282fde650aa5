package observability

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLoggerLevels(t *testing.T) {
	cases := []struct {
		level   string
		enabled zapcore.Level
		muted   zapcore.Level
	}{
		{"debug", zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"INFO", zapcore.InfoLevel, zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel, zapcore.InfoLevel},
		{"error", zapcore.ErrorLevel, zapcore.WarnLevel},
	}
	for _, tc := range cases {
		logger, err := NewLogger(tc.level)
		if err != nil {
			t.Fatalf("%s: NewLogger error: %v", tc.level, err)
		}
		core := logger.Desugar().Core()
		if !core.Enabled(tc.enabled) {
			t.Fatalf("%s: expected %s enabled", tc.level, tc.enabled)
		}
		if core.Enabled(tc.muted) {
			t.Fatalf("%s: expected %s muted", tc.level, tc.muted)
		}
	}
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	if _, err := NewLogger("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	if logger.Desugar().Core().Enabled(zapcore.ErrorLevel) {
		t.Fatalf("nop logger must not enable any level")
	}
	logger.Infow("discarded", "key", "value")
}
