package grove

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// testStep is one line of a script.
type testStep struct {
	Action string  `yaml:"action"`
	Label  string  `yaml:"label,omitempty"`
	Key    string  `yaml:"key,omitempty"`
	X      float32 `yaml:"x,omitempty"`
	Y      float32 `yaml:"y,omitempty"`
	FromX  float32 `yaml:"fromX,omitempty"`
	FromY  float32 `yaml:"fromY,omitempty"`
	ToX    float32 `yaml:"toX,omitempty"`
	ToY    float32 `yaml:"toY,omitempty"`
	Width  int     `yaml:"width,omitempty"`
	Height int     `yaml:"height,omitempty"`
	Frames int     `yaml:"frames,omitempty"`

	key Key
}

// testScript is the top-level YAML structure for a test script.
type testScript struct {
	Steps []testStep `yaml:"steps"`
}

var knownActions = map[string]bool{
	"screenshot": true, "key": true, "click": true, "drag": true,
	"move": true, "wheel": true, "resize": true, "wait": true,
}

// TestRunner sequences injected input events and screenshots across frames
// for automated testing. Attach to a Scene via SetTestRunner.
//
//	steps:
//	  - action: key
//	    key: space
//	  - action: drag
//	    fromX: 10
//	    fromY: 10
//	    toX: 200
//	    toY: 10
//	    frames: 10
//	  - action: wait
//	    frames: 30
//	  - action: screenshot
//	    label: after-drag
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a YAML test script and returns a TestRunner ready
// to be attached to a Scene via SetTestRunner.
func LoadTestScript(data []byte) (*TestRunner, error) {
	var script testScript
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, errors.Wrap(err, "parse test script")
	}
	if len(script.Steps) == 0 {
		return nil, errors.New("parse test script: no steps")
	}
	for i := range script.Steps {
		st := &script.Steps[i]
		if !knownActions[st.Action] {
			return nil, errors.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
		if st.Action == "key" {
			k, ok := ParseKey(st.Key)
			if !ok {
				return nil, errors.Errorf("parse test script: step %d: unknown key %q", i, st.Key)
			}
			st.key = k
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// LoadTestScriptFile reads and parses the test script at path.
func LoadTestScriptFile(path string) (*TestRunner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read test script %s", path)
	}
	r, err := LoadTestScript(data)
	if err != nil {
		return nil, errors.Wrapf(err, "test script %s", path)
	}
	return r, nil
}

// SetTestRunner makes the scene drive runner. Its step method
// is called at the start of every Scene.Update.
func (s *Scene) SetTestRunner(runner *TestRunner) {
	s.testRunner = runner
}

// Done reports whether the script has run to completion.
func (r *TestRunner) Done() bool {
	return r.done
}

// step runs once per Scene.Update, before injected events are dispatched.
func (r *TestRunner) step(s *Scene) {
	if r.done {
		return
	}
	// Queued input from the previous step must be delivered first.
	if len(s.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		if !s.Screenshot(st.Label) {
			logger.Warn("screenshot unsupported by frame target", "label", st.Label)
		}
	case "key":
		s.InjectKeyPress(st.key)
	case "click":
		s.InjectClick(st.X, st.Y)
	case "drag":
		s.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "move":
		s.InjectMouseMove(st.X, st.Y)
	case "wheel":
		s.InjectMouseWheel(st.X, st.Y)
	case "resize":
		s.InjectResize(st.Width, st.Height)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(s.injectQueue) == 0 {
		r.done = true
	}
}
