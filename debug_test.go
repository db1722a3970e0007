package grove

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

// captureLog routes grove's logger into a buffer for the rest of the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { SetLogger(nil) })
	return &buf
}

func TestDebugMode_TreeDepthWarning(t *testing.T) {
	buf := captureLog(t)
	s, _, _ := testScene()
	s.SetDebugMode(true)
	defer s.SetDebugMode(false)

	// Build a chain deeper than debugMaxTreeDepth (32).
	var current Object = s
	for i := 0; i < debugMaxTreeDepth+5; i++ {
		current = CreateChild(current, newTestObject(fmt.Sprintf("depth_%d", i)))
	}
	if err := s.Render(step); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(buf.String(), "tree too deep") {
		t.Errorf("expected tree depth warning, got: %q", buf.String())
	}
}

func TestDebugMode_ChildCountWarning(t *testing.T) {
	buf := captureLog(t)
	s, _, _ := testScene()
	s.SetDebugMode(true)
	defer s.SetDebugMode(false)

	parent := CreateChild(s, newTestObject("many_children"))
	for i := 0; i < debugMaxChildCount+1; i++ {
		parent.AddChild(newTestObject(fmt.Sprintf("c_%d", i)))
	}

	out := buf.String()
	if !strings.Contains(out, "too many children") || !strings.Contains(out, "many_children") {
		t.Errorf("expected child count warning, got: %q", out)
	}
}

func TestReleaseMode_NoWarnings(t *testing.T) {
	buf := captureLog(t)
	s, _, _ := testScene()

	parent := CreateChild(s, newTestObject("many_children"))
	for i := 0; i < debugMaxChildCount+1; i++ {
		parent.AddChild(newTestObject(fmt.Sprintf("c_%d", i)))
	}
	if err := s.Render(step); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("release mode logged: %q", buf.String())
	}
}

func TestDebugMode_FrameLog(t *testing.T) {
	buf := captureLog(t)
	s, d, _ := testScene()
	s.SetDebugMode(true)
	defer s.SetDebugMode(false)

	mesh, _ := NewMesh(d, "tri", triangle())
	CreateChild(s, NewRenderable(s, mesh, newFakeMaterial(s.Device())))
	if err := s.Render(step); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, field := range []string{"msg=frame", "draws=1", "instances=1", "writes=2"} {
		if !strings.Contains(out, field) {
			t.Errorf("frame log missing %q: %q", field, out)
		}
	}
}

func TestSetLoggerNilRestoresDefault(t *testing.T) {
	SetLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	SetLogger(nil)
	if Logger() == nil {
		t.Error("Logger() is nil after restoring the default")
	}
}
