// Package ebitengpu runs grove scenes on Ebitengine. Buffers live in CPU
// memory and draw calls are rasterized in software through
// ebiten.Image.DrawTriangles32, so scenes render anywhere Ebitengine does,
// including headless test environments.
package ebitengpu

import (
	"github.com/phanxgames/grove"
	"github.com/pkg/errors"
)

// Buffer is a CPU-resident grove.Buffer.
type Buffer struct {
	label    string
	usage    grove.BufferUsage
	data     []byte
	released bool
}

// Size returns the buffer size in bytes.
func (b *Buffer) Size() int { return len(b.data) }

// Label returns the label the buffer was created with.
func (b *Buffer) Label() string { return b.label }

// Usage returns the usage flags the buffer was created with.
func (b *Buffer) Usage() grove.BufferUsage { return b.usage }

// Bytes returns the buffer contents. The slice MUST NOT be mutated.
func (b *Buffer) Bytes() []byte { return b.data }

// Release marks the buffer unusable and frees its storage.
func (b *Buffer) Release() {
	b.released = true
	b.data = nil
}

// Device allocates CPU buffers and counts the writes made to them.
type Device struct {
	// Writes and BytesWritten accumulate over the device's lifetime.
	Writes       int
	BytesWritten int
}

// NewDevice returns an empty device.
func NewDevice() *Device {
	return &Device{}
}

// CreateBuffer allocates a zeroed buffer of size bytes.
func (d *Device) CreateBuffer(label string, size int, usage grove.BufferUsage) (grove.Buffer, error) {
	if size <= 0 {
		return nil, errors.Errorf("ebitengpu: buffer %q: size %d must be positive", label, size)
	}
	return &Buffer{label: label, usage: usage, data: make([]byte, size)}, nil
}

// WriteBuffer copies data into buf at offset.
func (d *Device) WriteBuffer(buf grove.Buffer, offset int, data []byte) error {
	b, ok := buf.(*Buffer)
	if !ok {
		return errors.Errorf("ebitengpu: foreign buffer %T", buf)
	}
	if b.released {
		return errors.Errorf("ebitengpu: write to released buffer %q", b.label)
	}
	if offset < 0 || offset+len(data) > len(b.data) {
		return errors.Errorf("ebitengpu: write [%d, %d) outside buffer %q of %d bytes",
			offset, offset+len(data), b.label, len(b.data))
	}
	copy(b.data[offset:], data)
	d.Writes++
	d.BytesWritten += len(data)
	return nil
}
