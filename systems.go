package grove

import (
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Posed is implemented by entities that carry a Transform.
type Posed interface {
	Pose() *Transform
}

// Spin is a physics system rotating an entity about Axis at Speed radians
// per second.
type Spin[T Posed] struct {
	Axis  mgl32.Vec3
	Speed float32
}

// Update rotates by Speed * dt.
func (s Spin[T]) Update(e T, dt time.Duration) error {
	e.Pose().Rotate(s.Axis, s.Speed*float32(dt.Seconds()))
	return nil
}

// TweenProperty selects the transform component a Tween drives.
type TweenProperty uint8

const (
	TweenPosition TweenProperty = iota // drive the translation
	TweenScale                         // drive the per-axis scale
)

// Tween is a physics system animating position or scale between two values
// with a gween easing function.
type Tween[T Posed] struct {
	// Loop restarts the tween from the beginning once it completes.
	Loop bool

	prop   TweenProperty
	tweens [3]*gween.Tween
	done   [3]bool
}

// NewTween animates prop from from to to over duration seconds. A nil easeFn
// is linear.
func NewTween[T Posed](prop TweenProperty, from, to mgl32.Vec3, duration float32, easeFn ease.TweenFunc) *Tween[T] {
	if easeFn == nil {
		easeFn = ease.Linear
	}
	tw := &Tween[T]{prop: prop}
	for i := range 3 {
		tw.tweens[i] = gween.New(from[i], to[i], duration, easeFn)
	}
	return tw
}

// Done reports whether a non-looping tween has finished.
func (tw *Tween[T]) Done() bool {
	return tw.done[0] && tw.done[1] && tw.done[2]
}

// Update advances the tween by dt and writes the value to the entity.
func (tw *Tween[T]) Update(e T, dt time.Duration) error {
	if tw.Done() {
		return nil
	}
	secs := float32(dt.Seconds())
	var v mgl32.Vec3
	for i, g := range tw.tweens {
		v[i], tw.done[i] = g.Update(secs)
	}

	p := e.Pose()
	switch tw.prop {
	case TweenScale:
		p.SetScale(v)
	default:
		p.SetPosition(v)
	}

	if tw.Loop && tw.Done() {
		for i, g := range tw.tweens {
			g.Reset()
			tw.done[i] = false
		}
	}
	return nil
}

// KeyBindings is a controls system mapping key presses to actions. An action
// returning true consumes the event.
type KeyBindings[T any] struct {
	BaseControls[T]
	bindings map[Key]func(e T) bool
}

// NewKeyBindings returns an empty binding table.
func NewKeyBindings[T any]() *KeyBindings[T] {
	return &KeyBindings[T]{bindings: make(map[Key]func(T) bool)}
}

// Bind maps key to fn, replacing any previous binding.
func (k *KeyBindings[T]) Bind(key Key, fn func(e T) bool) *KeyBindings[T] {
	k.bindings[key] = fn
	return k
}

// OnKey runs the action bound to a pressed key.
func (k *KeyBindings[T]) OnKey(e T, ev KeyEvent) bool {
	if ev.Action != ActionPress {
		return false
	}
	fn, ok := k.bindings[ev.Key]
	if !ok {
		return false
	}
	return fn(e)
}

// OrbitControls is a controls system orbiting the scene camera around
// Target. Dragging with the left button rotates; the wheel zooms.
type OrbitControls struct {
	BaseControls[*Scene]

	Target      mgl32.Vec3
	Distance    float32
	MinDistance float32
	MaxDistance float32
	// Sensitivity is radians of rotation per pixel dragged.
	Sensitivity float32
	// ZoomSpeed is the fraction of the distance covered per wheel step.
	ZoomSpeed float32

	yaw, pitch float32
	dragging   bool
}

// NewOrbitControls returns controls orbiting target at distance.
func NewOrbitControls(target mgl32.Vec3, distance float32) *OrbitControls {
	return &OrbitControls{
		Target:      target,
		Distance:    distance,
		MinDistance: 0.5,
		MaxDistance: 500,
		Sensitivity: 0.01,
		ZoomSpeed:   0.1,
	}
}

// Angles returns the current yaw and pitch in radians.
func (o *OrbitControls) Angles() (yaw, pitch float32) {
	return o.yaw, o.pitch
}

// Apply places the scene camera on the orbit and points it at Target.
func (o *OrbitControls) Apply(s *Scene) {
	cp := math32.Cos(o.pitch)
	offset := mgl32.Vec3{
		cp * math32.Sin(o.yaw),
		math32.Sin(o.pitch),
		cp * math32.Cos(o.yaw),
	}.Mul(o.Distance)
	cam := s.Camera()
	cam.SetPosition(o.Target.Add(offset))
	cam.LookAt(o.Target, mgl32.Vec3{0, 1, 0})
}

func (o *OrbitControls) OnMouseButton(s *Scene, ev MouseButtonEvent) bool {
	if ev.Button != MouseButtonLeft {
		return false
	}
	o.dragging = ev.Action == ActionPress
	return true
}

func (o *OrbitControls) OnMouseMove(s *Scene, ev MouseMoveEvent) bool {
	if !o.dragging {
		return false
	}
	const limit = math32.Pi/2 - 0.01
	o.yaw -= ev.XRel * o.Sensitivity
	o.pitch = mgl32.Clamp(o.pitch+ev.YRel*o.Sensitivity, -limit, limit)
	o.Apply(s)
	return true
}

func (o *OrbitControls) OnMouseWheel(s *Scene, ev MouseWheelEvent) bool {
	if ev.Y == 0 {
		return false
	}
	o.Distance = mgl32.Clamp(o.Distance*(1-ev.Y*o.ZoomSpeed), o.MinDistance, o.MaxDistance)
	o.Apply(s)
	return true
}
