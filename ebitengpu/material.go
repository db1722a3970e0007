package ebitengpu

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/phanxgames/grove"
	"github.com/pkg/errors"
)

// Bindings used by FlatColorMaterial in addition to the reserved ones.
const (
	BindingColor     = 2 // vec4 RGBA
	BindingLightDir  = 3 // vec4, xyz towards the light
	BindingInstances = 4 // storage buffer of instance matrices
)

// DefaultLightDirection points up, right and towards the viewer.
var DefaultLightDirection = mgl32.Vec3{0.5, 1, 0.75}

// FlatColorMaterial shades every face with one color and a directional
// Lambert term. It works for both single and instanced draws; without an
// instance buffer every instance uses the identity matrix.
type FlatColorMaterial struct {
	*grove.Uniforms
}

// NewFlatColorMaterial allocates the material's uniforms on device and
// writes the color and the default light direction.
func NewFlatColorMaterial(device grove.Device, c grove.Color) (*FlatColorMaterial, error) {
	u, err := grove.NewUniforms(device, "flat", grove.StandardSlots(
		grove.UniformSlot{Binding: BindingColor, Size: grove.Vec4Size, Stage: grove.StageFragment, Label: "color"},
		grove.UniformSlot{Binding: BindingLightDir, Size: grove.Vec4Size, Stage: grove.StageFragment, Label: "light"},
	))
	if err != nil {
		return nil, err
	}
	m := &FlatColorMaterial{Uniforms: u}
	if err := m.SetColor(c); err != nil {
		return nil, err
	}
	if err := m.SetLightDirection(DefaultLightDirection); err != nil {
		return nil, err
	}
	return m, nil
}

// SetColor replaces the face color.
func (m *FlatColorMaterial) SetColor(c grove.Color) error {
	return m.UpdateUniform(BindingColor, grove.Vec4Bytes(c.Vec4()))
}

// Color returns the face color.
func (m *FlatColorMaterial) Color() grove.Color {
	f := grove.Float32s(m.Value(BindingColor))
	return grove.Color{R: f[0], G: f[1], B: f[2], A: f[3]}
}

// SetLightDirection sets the direction towards the light. It is normalized.
func (m *FlatColorMaterial) SetLightDirection(dir mgl32.Vec3) error {
	if dir.Len() == 0 {
		return errors.New("ebitengpu: zero light direction")
	}
	d := dir.Normalize()
	return m.UpdateUniform(BindingLightDir, grove.Vec4Bytes([4]float32{d[0], d[1], d[2], 0}))
}

// LightDirection returns the normalized direction towards the light.
func (m *FlatColorMaterial) LightDirection() mgl32.Vec3 {
	f := grove.Float32s(m.Value(BindingLightDir))
	return mgl32.Vec3{f[0], f[1], f[2]}
}

// Bind makes m the material of the following draws on pass.
func (m *FlatColorMaterial) Bind(pass grove.RenderPass) error {
	p, ok := pass.(*RenderPass)
	if !ok {
		return errors.Errorf("ebitengpu: cannot bind to %T", pass)
	}
	p.material = m
	return nil
}
