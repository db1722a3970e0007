package grove

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("title: demo\n"))
	if err != nil {
		t.Fatal(err)
	}
	def := DefaultConfig()
	if cfg.Title != "demo" {
		t.Errorf("Title = %q", cfg.Title)
	}
	if cfg.Width != def.Width || cfg.Height != def.Height || cfg.TimeStep != def.TimeStep {
		t.Errorf("unset fields lost their defaults: %+v", cfg)
	}
}

func TestParseConfigFields(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
title: Instances
width: 1280
height: 720
vsync: false
sampleCount: 4
clearColor: {r: 0.1, g: 0.2, b: 0.3, a: 1}
timeStep: 10ms
debug: true
inspectAddr: localhost:6060
testScript: script.yaml
screenshotDir: shots
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 1280 || cfg.Height != 720 || cfg.VSync || cfg.SampleCount != 4 {
		t.Errorf("window fields = %+v", cfg)
	}
	if cfg.TimeStep != 10*time.Millisecond {
		t.Errorf("TimeStep = %v", cfg.TimeStep)
	}
	if cfg.ClearColor.Color() != (Color{0.1, 0.2, 0.3, 1}) {
		t.Errorf("ClearColor = %v", cfg.ClearColor)
	}
	if cfg.InspectAddr != "localhost:6060" || cfg.TestScript != "script.yaml" || cfg.ScreenDir != "shots" {
		t.Errorf("paths = %+v", cfg)
	}
}

func TestParseConfigInvalid(t *testing.T) {
	tests := []struct {
		yaml string
		want string
	}{
		{"width: 0", "window size"},
		{"height: -1", "window size"},
		{"timeStep: 0s", "time step"},
		{"sampleCount: 2", "sample count"},
		{"width: [", "parse config"},
	}
	for _, tt := range tests {
		_, err := ParseConfig([]byte(tt.yaml))
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%q: err = %v, want containing %q", tt.yaml, err, tt.want)
		}
	}
}

func TestConfigApply(t *testing.T) {
	s, _, _ := testScene()
	cfg := DefaultConfig()
	cfg.ClearColor = ConfigColor{1, 0, 0, 1}
	cfg.TimeStep = 20 * time.Millisecond
	cfg.Debug = true
	cfg.Apply(s)
	defer s.SetDebugMode(false)

	if s.ClearColor != (Color{1, 0, 0, 1}) || s.TimeStep != 20*time.Millisecond || !s.Debug() {
		t.Errorf("scene = %v %v %v", s.ClearColor, s.TimeStep, s.Debug())
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grove.yaml")
	if err := os.WriteFile(path, []byte("width: 320\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 320 {
		t.Errorf("Width = %d", cfg.Width)
	}
	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestWatchConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grove.yaml")
	if err := os.WriteFile(path, []byte("width: 320\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := WatchConfig(ctx, path)
	if err != nil {
		t.Fatal(err)
	}

	// An invalid write is skipped; the next valid one is delivered.
	if err := os.WriteFile(path, []byte("width: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("width: 640\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	timeout := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-ch:
			if cfg.Width == 640 {
				cancel()
				for range ch {
				}
				return
			}
		case <-timeout:
			t.Fatal("no reload received")
		}
	}
}

func TestWatchConfigMissingDir(t *testing.T) {
	_, err := WatchConfig(context.Background(), filepath.Join(t.TempDir(), "nope", "grove.yaml"))
	if err == nil {
		t.Error("expected error watching a missing directory")
	}
}
