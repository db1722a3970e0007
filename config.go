package grove

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// RunConfig configures a window and the frame loop driving a scene.
//
//	title: Instances
//	width: 1280
//	height: 720
//	resizable: true
//	vsync: true
//	clearColor: {r: 0.1, g: 0.1, b: 0.12, a: 1}
//	timeStep: 16ms
//	debug: false
//	inspectAddr: localhost:6060
type RunConfig struct {
	Title       string        `yaml:"title"`
	Width       int           `yaml:"width"`
	Height      int           `yaml:"height"`
	Fullscreen  bool          `yaml:"fullscreen"`
	Resizable   bool          `yaml:"resizable"`
	VSync       bool          `yaml:"vsync"`
	SampleCount int           `yaml:"sampleCount"`
	ClearColor  ConfigColor   `yaml:"clearColor"`
	TimeStep    time.Duration `yaml:"timeStep"`
	Debug       bool          `yaml:"debug"`
	InspectAddr string        `yaml:"inspectAddr"`
	TestScript  string        `yaml:"testScript"`
	ScreenDir   string        `yaml:"screenshotDir"`
}

// ConfigColor is the YAML form of a Color.
type ConfigColor struct {
	R float32 `yaml:"r"`
	G float32 `yaml:"g"`
	B float32 `yaml:"b"`
	A float32 `yaml:"a"`
}

// Color converts to a Color.
func (c ConfigColor) Color() Color {
	return Color{c.R, c.G, c.B, c.A}
}

// DefaultConfig returns the configuration used for unset fields.
func DefaultConfig() RunConfig {
	return RunConfig{
		Title:       "grove",
		Width:       800,
		Height:      600,
		Resizable:   true,
		VSync:       true,
		SampleCount: 1,
		ClearColor:  ConfigColor{0, 0, 0, 1},
		TimeStep:    DefaultTimeStep,
		ScreenDir:   "screenshots",
	}
}

// ParseConfig decodes YAML on top of DefaultConfig and validates the result.
func ParseConfig(data []byte) (RunConfig, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, errors.Wrap(err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return RunConfig{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses the YAML file at path.
func LoadConfig(path string) (RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, errors.Wrapf(err, "read config %s", path)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return RunConfig{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c RunConfig) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return errors.Errorf("config: window size %dx%d must be positive", c.Width, c.Height)
	case c.TimeStep <= 0:
		return errors.Errorf("config: time step %v must be positive", c.TimeStep)
	case c.SampleCount != 1 && c.SampleCount != 4:
		return errors.Errorf("config: sample count %d must be 1 or 4", c.SampleCount)
	}
	return nil
}

// Apply copies the scene-level settings onto s.
func (c RunConfig) Apply(s *Scene) {
	s.ClearColor = c.ClearColor.Color()
	s.TimeStep = c.TimeStep
	s.SetDebugMode(c.Debug)
}

// WatchConfig reloads the file at path whenever it is written and sends the
// parsed result on the returned channel. Invalid files are logged and
// skipped. The channel is closed when ctx is done. Receive from it on the
// frame thread and Apply the result there.
func WatchConfig(ctx context.Context, path string) (<-chan RunConfig, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "watch config")
	}
	// Editors often replace the file, so watch the directory.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "watch config dir %s", dir)
	}

	out := make(chan RunConfig, 1)
	target := filepath.Clean(path)
	go func() {
		defer close(out)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				cfg, err := LoadConfig(path)
				if err != nil {
					logger.Warn("config reload failed", "path", path, "err", err)
					continue
				}
				select {
				case out <- cfg:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watch error", "path", path, "err", err)
			}
		}
	}()
	return out, nil
}
