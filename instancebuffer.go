package grove

import (
	"slices"

	"github.com/kamstrup/intmap"
	"github.com/pkg/errors"
)

// InstanceUpdate pairs an instance index with its new transform.
type InstanceUpdate struct {
	Index     int
	Transform Transform
}

// InstanceBuffer keeps per-instance transforms on the CPU and mirrors their
// combined matrices into a GPU storage buffer, one 64-byte matrix per slot.
//
// Capacity is fixed when the buffer is allocated. Len reports how many
// leading slots are active and drawn; indices at or beyond Len are rejected.
type InstanceBuffer struct {
	device     Device
	label      string
	buf        Buffer
	transforms []Transform
	count      int

	pending *intmap.Map[int, int]
	batch   []InstanceUpdate
	scratch []byte
}

// NewInstanceBuffer allocates a buffer sized exactly for instances and
// uploads all of them in one write.
func NewInstanceBuffer(device Device, label string, instances []Transform) (*InstanceBuffer, error) {
	if len(instances) == 0 {
		return nil, errors.Wrapf(ErrNoInstances, "instance buffer %q", label)
	}
	b, err := NewInstanceBufferCapacity(device, label, len(instances))
	if err != nil {
		return nil, err
	}
	if err := b.SetInstances(instances); err != nil {
		b.Release()
		return nil, err
	}
	return b, nil
}

// NewInstanceBufferCapacity allocates room for capacity instances with none
// active.
func NewInstanceBufferCapacity(device Device, label string, capacity int) (*InstanceBuffer, error) {
	if capacity <= 0 {
		return nil, errors.Wrapf(ErrNoInstances, "instance buffer %q: capacity %d", label, capacity)
	}
	buf, err := device.CreateBuffer(label, capacity*Mat4Size, BufferUsageStorage|BufferUsageCopyDst)
	if err != nil {
		return nil, errors.Wrapf(err, "create instance buffer %q", label)
	}
	transforms := make([]Transform, capacity)
	for i := range transforms {
		transforms[i] = NewTransform()
	}
	return &InstanceBuffer{
		device:     device,
		label:      label,
		buf:        buf,
		transforms: transforms,
		pending:    intmap.New[int, int](64),
	}, nil
}

// Len returns the number of active instances.
func (b *InstanceBuffer) Len() int {
	return b.count
}

// Cap returns the number of instance slots the GPU buffer was allocated with.
func (b *InstanceBuffer) Cap() int {
	return len(b.transforms)
}

// Size returns the GPU buffer size in bytes.
func (b *InstanceBuffer) Size() int {
	return len(b.transforms) * Mat4Size
}

// Buffer returns the GPU buffer handle, for binding to a material.
func (b *InstanceBuffer) Buffer() Buffer {
	return b.buf
}

// Transform returns the transform of instance i.
func (b *InstanceBuffer) Transform(i int) (Transform, error) {
	if i < 0 || i >= b.count {
		return Transform{}, errors.Wrapf(ErrOutOfBounds, "instance %d of %d", i, b.count)
	}
	return b.transforms[i], nil
}

// Transforms returns the active transforms. The returned slice MUST NOT be
// mutated; use UpdateTransform so the GPU copy stays in sync.
func (b *InstanceBuffer) Transforms() []Transform {
	return b.transforms[:b.count]
}

// UpdateTransform replaces instance i and writes its matrix to offset i*64.
func (b *InstanceBuffer) UpdateTransform(i int, t Transform) error {
	if i < 0 || i >= b.count {
		return errors.Wrapf(ErrOutOfBounds, "update instance %d of %d", i, b.count)
	}
	b.scratch = AppendMat4(b.scratch[:0], t.Matrix())
	if err := b.device.WriteBuffer(b.buf, i*Mat4Size, b.scratch); err != nil {
		return errors.Wrapf(err, "write instance %d", i)
	}
	b.transforms[i] = t
	return nil
}

// UpdateTransforms applies a batch of updates. Every index is validated
// before anything changes. When an index repeats, the last update wins.
// Updates to adjacent slots are merged so that each contiguous run costs a
// single buffer write.
func (b *InstanceBuffer) UpdateTransforms(updates []InstanceUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	for _, u := range updates {
		if u.Index < 0 || u.Index >= b.count {
			return errors.Wrapf(ErrOutOfBounds, "update instance %d of %d", u.Index, b.count)
		}
	}

	b.pending.Clear()
	b.batch = b.batch[:0]
	for _, u := range updates {
		if pos, ok := b.pending.Get(u.Index); ok {
			b.batch[pos] = u
			continue
		}
		b.pending.Put(u.Index, len(b.batch))
		b.batch = append(b.batch, u)
	}
	slices.SortFunc(b.batch, func(x, y InstanceUpdate) int { return x.Index - y.Index })

	// Encode every run up front. The CPU copy changes only for runs the
	// device accepted.
	b.scratch = b.scratch[:0]
	for _, u := range b.batch {
		b.scratch = AppendMat4(b.scratch, u.Transform.Matrix())
	}
	for start := 0; start < len(b.batch); {
		end := start + 1
		for end < len(b.batch) && b.batch[end].Index == b.batch[end-1].Index+1 {
			end++
		}
		if err := b.writeRun(b.batch[start:end], b.scratch[start*Mat4Size:end*Mat4Size]); err != nil {
			return err
		}
		start = end
	}
	return nil
}

// writeRun uploads the encoded matrices of a run of consecutive updates in
// one write, then stores the run.
func (b *InstanceBuffer) writeRun(run []InstanceUpdate, data []byte) error {
	first := run[0].Index
	if err := b.device.WriteBuffer(b.buf, first*Mat4Size, data); err != nil {
		return errors.Wrapf(err, "write instances %d..%d", first, run[len(run)-1].Index)
	}
	for _, u := range run {
		b.transforms[u.Index] = u.Transform
	}
	return nil
}

// SetInstances replaces all active instances and uploads them in one write.
// Fails with ErrCapacityExceeded, changing nothing, when instances does not
// fit the capacity the buffer was allocated with.
func (b *InstanceBuffer) SetInstances(instances []Transform) error {
	if len(instances) > len(b.transforms) {
		return errors.Wrapf(ErrCapacityExceeded, "%d instances into %q sized for %d",
			len(instances), b.label, len(b.transforms))
	}
	if len(instances) > 0 {
		b.scratch = b.scratch[:0]
		for _, t := range instances {
			b.scratch = AppendMat4(b.scratch, t.Matrix())
		}
		if err := b.device.WriteBuffer(b.buf, 0, b.scratch); err != nil {
			return errors.Wrapf(err, "write instances of %q", b.label)
		}
	}
	copy(b.transforms, instances)
	b.count = len(instances)
	return nil
}

// Clear deactivates every instance without touching the GPU buffer.
func (b *InstanceBuffer) Clear() {
	b.count = 0
}

// Release frees the GPU buffer. The InstanceBuffer must not be used after.
func (b *InstanceBuffer) Release() {
	if b.buf != nil {
		b.buf.Release()
		b.buf = nil
	}
}
