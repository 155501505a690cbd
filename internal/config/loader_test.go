package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	cfg, err := Parse(DefaultYAML())
	if err != nil {
		t.Fatalf("Parse(embedded) failed: %v", err)
	}

	if cfg != DefaultConfig() {
		t.Errorf("embedded YAML and DefaultConfig() disagree:\n yaml: %+v\n code: %+v", cfg, DefaultConfig())
	}
}

func TestParseDurations(t *testing.T) {
	cfg, err := Parse([]byte("simulation:\n  stabilizer_duration: 3500ms\n  pulse_duration: 0.5s\n"))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	if cfg.Simulation.StabilizerDuration != 3500*time.Millisecond {
		t.Errorf("StabilizerDuration = %v, expected 3.5s", cfg.Simulation.StabilizerDuration)
	}
	if cfg.Simulation.PulseDuration != 500*time.Millisecond {
		t.Errorf("PulseDuration = %v, expected 500ms", cfg.Simulation.PulseDuration)
	}
}

func TestParsePartialKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("host:\n  tick_rate: 120\n"))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	if cfg.Host.TickRate != 120 {
		t.Errorf("TickRate = %d, expected 120", cfg.Host.TickRate)
	}
	if cfg.Simulation != DefaultSimConfig() {
		t.Errorf("untouched simulation section should keep defaults, got %+v", cfg.Simulation)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"zero tick rate", "host:\n  tick_rate: 0\n", "tick_rate"},
		{"damping above one", "simulation:\n  stabilizer_damping: 1.5\n", "stabilizer_damping"},
		{"negative tilt", "simulation:\n  tilt_step: -20\n", "tilt_step"},
		{"broadcast faster than ticks", "host:\n  broadcast_rate: 90\n", "broadcast_rate"},
		{"malformed yaml", "host: [", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if err == nil {
				t.Fatal("Parse() should fail")
			}
			if tc.want != "" && !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q should mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("viewport:\n  width: 430\n  height: 932\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Viewport.W != 430 || cfg.Viewport.H != 932 {
		t.Errorf("Viewport = %+v, expected 430x932", cfg.Viewport)
	}
}

func TestLoadMissingCustomPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() with a missing custom path should fail")
	}
}

func TestRuntimeConfigNormalizesViewport(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Viewport.W = 200

	rc := cfg.RuntimeConfig(100, 30)
	if rc.Viewport.W != 375 {
		t.Errorf("Viewport.W = %v, expected floor 375", rc.Viewport.W)
	}
	if rc.ScreenW != 100 || rc.ScreenH != 30 || rc.TickRate != 60 {
		t.Errorf("unexpected runtime config %+v", rc)
	}
}
