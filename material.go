package grove

import (
	"fmt"

	"github.com/pkg/errors"
)

// Reserved uniform bindings. Every material used with a renderable must
// declare both.
const (
	BindingMVP          = 0 // model-view-projection, mat4
	BindingNormalMatrix = 1 // normal matrix, three padded vec4 columns
)

// ShaderStage is a bitmask of the stages a uniform is visible to.
type ShaderStage uint8

const (
	StageVertex   ShaderStage = 1 << iota // vertex shader
	StageFragment                         // fragment shader
)

// UniformSlot declares one uniform block of a material.
type UniformSlot struct {
	Binding int
	Size    int
	Stage   ShaderStage
	Label   string
}

// Material owns the uniform blocks and pipeline state a mesh is drawn with.
// Pipeline construction is left to the backend.
type Material interface {
	Slots() []UniformSlot
	UpdateUniform(binding int, data []byte) error
	UpdateInstanceBuffer(buf Buffer, size int) error
	Bind(pass RenderPass) error
}

// StandardSlots returns the two reserved slots followed by extra.
func StandardSlots(extra ...UniformSlot) []UniformSlot {
	slots := []UniformSlot{
		{Binding: BindingMVP, Size: Mat4Size, Stage: StageVertex, Label: "mvp"},
		{Binding: BindingNormalMatrix, Size: NormalMatrixSize, Stage: StageVertex, Label: "normal"},
	}
	return append(slots, extra...)
}

// Uniforms is the uniform bookkeeping shared by material implementations:
// one GPU buffer per declared slot, the last bytes written to each, and the
// currently bound instance storage buffer. Backends embed it and add Bind.
type Uniforms struct {
	device   Device
	slots    []UniformSlot
	buffers  []Buffer
	values   [][]byte
	instance Buffer
	instSize int
	instGen  uint64
}

// NewUniforms allocates a uniform buffer for every slot.
func NewUniforms(device Device, label string, slots []UniformSlot) (*Uniforms, error) {
	u := &Uniforms{
		device:  device,
		slots:   slots,
		buffers: make([]Buffer, len(slots)),
		values:  make([][]byte, len(slots)),
	}
	for i, s := range slots {
		buf, err := device.CreateBuffer(fmt.Sprintf("%s.%s", label, s.Label), s.Size,
			BufferUsageUniform|BufferUsageCopyDst)
		if err != nil {
			u.Release()
			return nil, errors.Wrapf(err, "create uniform %d of %q", s.Binding, label)
		}
		u.buffers[i] = buf
		u.values[i] = make([]byte, s.Size)
	}
	return u, nil
}

// Slots returns the declared uniform slots.
func (u *Uniforms) Slots() []UniformSlot {
	return u.slots
}

func (u *Uniforms) slot(binding int) int {
	for i, s := range u.slots {
		if s.Binding == binding {
			return i
		}
	}
	return -1
}

// UpdateUniform writes data to the buffer for binding. data must be exactly
// the declared size.
func (u *Uniforms) UpdateUniform(binding int, data []byte) error {
	i := u.slot(binding)
	if i < 0 {
		return errors.Wrapf(ErrUnknownBinding, "binding %d", binding)
	}
	if len(data) != u.slots[i].Size {
		return errors.Wrapf(ErrUniformSize, "binding %d: got %d bytes, want %d",
			binding, len(data), u.slots[i].Size)
	}
	copy(u.values[i], data)
	if err := u.device.WriteBuffer(u.buffers[i], 0, data); err != nil {
		return errors.Wrapf(err, "write uniform %d", binding)
	}
	return nil
}

// Value returns the last bytes written to binding, or nil if it is not declared.
func (u *Uniforms) Value(binding int) []byte {
	if i := u.slot(binding); i >= 0 {
		return u.values[i]
	}
	return nil
}

// Buffer returns the GPU buffer backing binding, or nil if it is not declared.
func (u *Uniforms) Buffer(binding int) Buffer {
	if i := u.slot(binding); i >= 0 {
		return u.buffers[i]
	}
	return nil
}

// UpdateInstanceBuffer records the storage buffer instance matrices are read from.
func (u *Uniforms) UpdateInstanceBuffer(buf Buffer, size int) error {
	if buf == u.instance && size == u.instSize {
		return nil
	}
	u.instance = buf
	u.instSize = size
	u.instGen++
	return nil
}

// InstanceBuffer returns the bound instance storage buffer and its size.
func (u *Uniforms) InstanceBuffer() (Buffer, int) {
	return u.instance, u.instSize
}

// InstanceGeneration changes every time a different instance buffer is
// bound. Backends compare it to decide when to rebuild bind groups.
func (u *Uniforms) InstanceGeneration() uint64 {
	return u.instGen
}

// Release frees every uniform buffer.
func (u *Uniforms) Release() {
	for i, b := range u.buffers {
		if b != nil {
			b.Release()
			u.buffers[i] = nil
		}
	}
}
