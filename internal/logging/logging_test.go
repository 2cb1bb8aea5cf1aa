package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name    string
		dev     bool
		verbose bool
		debug   bool
	}{
		{name: "production", debug: false},
		{name: "production verbose", verbose: true, debug: true},
		{name: "dev", dev: true, debug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.dev, tt.verbose)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			defer logger.Sync()

			if got := logger.Core().Enabled(zapcore.DebugLevel); got != tt.debug {
				t.Errorf("debug enabled = %v, want %v", got, tt.debug)
			}
		})
	}
}
