package grove

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Projection selects the camera's projection model.
type Projection uint8

const (
	ProjectionPerspective  Projection = iota // pinhole perspective (default)
	ProjectionOrthographic                   // parallel projection
)

// Default perspective parameters.
const (
	DefaultFOV    = 45  // vertical field of view in degrees
	DefaultAspect = 1   // width / height
	DefaultNear   = 0.1 // near clip plane
	DefaultFar    = 100 // far clip plane
)

// moveAnim holds active move-to tweens for the camera position.
type moveAnim struct {
	tweens [3]*gween.Tween
	done   [3]bool
}

// Camera is a transform with a projection. Its view matrix is the inverse of
// its transform; ViewProjectionMatrix returns projection * view.
type Camera struct {
	Transform

	projection Projection
	fov        float32
	aspect     float32
	near, far  float32

	left, right, bottom, top float32

	proj      mgl32.Mat4
	projDirty bool

	move *moveAnim
}

// NewCamera returns a perspective camera at the origin looking down -Z with
// the default field of view, aspect ratio and clip planes.
func NewCamera() *Camera {
	return &Camera{
		Transform: NewTransform(),
		fov:       DefaultFOV,
		aspect:    DefaultAspect,
		near:      DefaultNear,
		far:       DefaultFar,
		projDirty: true,
	}
}

// SetPerspective switches to a perspective projection. fov is the vertical
// field of view in degrees.
func (c *Camera) SetPerspective(fov, aspect, near, far float32) {
	c.projection = ProjectionPerspective
	c.fov, c.aspect, c.near, c.far = fov, aspect, near, far
	c.projDirty = true
}

// SetOrthographic switches to an orthographic projection of the given box.
func (c *Camera) SetOrthographic(left, right, bottom, top, near, far float32) {
	c.projection = ProjectionOrthographic
	c.left, c.right, c.bottom, c.top = left, right, bottom, top
	c.near, c.far = near, far
	c.projDirty = true
}

// Projection returns the active projection model.
func (c *Camera) Projection() Projection { return c.projection }

// FOV returns the vertical field of view in degrees.
func (c *Camera) FOV() float32 { return c.fov }

// AspectRatio returns width / height.
func (c *Camera) AspectRatio() float32 { return c.aspect }

// Near returns the near clip distance.
func (c *Camera) Near() float32 { return c.near }

// Far returns the far clip distance.
func (c *Camera) Far() float32 { return c.far }

// SetFOV sets the vertical field of view in degrees.
func (c *Camera) SetFOV(fov float32) {
	c.fov = fov
	c.projDirty = true
}

// SetAspectRatio sets width / height. Orthographic bounds are not changed.
func (c *Camera) SetAspectRatio(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.aspect = aspect
	c.projDirty = true
}

// SetClipPlanes sets the near and far clip distances.
func (c *Camera) SetClipPlanes(near, far float32) {
	c.near, c.far = near, far
	c.projDirty = true
}

// ProjectionMatrix returns the projection matrix (OpenGL clip conventions).
func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	if c.projDirty {
		if c.projection == ProjectionOrthographic {
			c.proj = mgl32.Ortho(c.left, c.right, c.bottom, c.top, c.near, c.far)
		} else {
			c.proj = mgl32.Perspective(mgl32.DegToRad(c.fov), c.aspect, c.near, c.far)
		}
		c.projDirty = false
	}
	return c.proj
}

// ViewProjectionMatrix returns projection * view.
func (c *Camera) ViewProjectionMatrix() mgl32.Mat4 {
	return c.ProjectionMatrix().Mul4(c.ViewMatrix())
}

// LookAt turns the camera towards target.
func (c *Camera) LookAt(target, up mgl32.Vec3) {
	c.FaceTowards(target, up)
}

// MoveTo animates the camera position to target over duration seconds.
// Starting a new move replaces any move in progress.
func (c *Camera) MoveTo(target mgl32.Vec3, duration float32, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.Linear
	}
	p := c.Position()
	c.move = &moveAnim{}
	for i := range 3 {
		c.move.tweens[i] = gween.New(p[i], target[i], duration, easeFn)
	}
}

// Moving reports whether a MoveTo animation is in progress.
func (c *Camera) Moving() bool {
	return c.move != nil
}

// update advances the move animation. Called from Scene.Update.
func (c *Camera) update(dt time.Duration) {
	if c.move == nil {
		return
	}
	secs := float32(dt.Seconds())
	p := c.Position()
	for i, tw := range c.move.tweens {
		if c.move.done[i] {
			continue
		}
		p[i], c.move.done[i] = tw.Update(secs)
	}
	c.SetPosition(p)
	if c.move.done[0] && c.move.done[1] && c.move.done[2] {
		c.move = nil
	}
}
