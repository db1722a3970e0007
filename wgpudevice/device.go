// Package wgpudevice runs grove scenes on WebGPU through wgpu-native. It
// provides the grove.Device, grove.FrameTarget and grove.Material
// implementations plus a GLFW window that feeds input to a scene.
package wgpudevice

import (
	"log/slog"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/phanxgames/grove"
	"github.com/pkg/errors"
)

// logger follows grove.SetLogger.
func logger() *slog.Logger { return grove.Logger().With("pkg", "wgpudevice") }

// copyAlignment is the granularity of queue buffer writes.
const copyAlignment = 4

// Buffer wraps a wgpu buffer.
type Buffer struct {
	buf  *wgpu.Buffer
	size int
}

// Size returns the requested size in bytes.
func (b *Buffer) Size() int { return b.size }

// Raw returns the underlying wgpu buffer.
func (b *Buffer) Raw() *wgpu.Buffer { return b.buf }

// Release frees the GPU buffer.
func (b *Buffer) Release() {
	if b.buf != nil {
		b.buf.Release()
		b.buf = nil
	}
}

// Device is a grove.Device backed by a wgpu device and its queue.
type Device struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
}

// NewDevice requests an adapter compatible with surface (which may be nil
// for offscreen use) and a device on it.
func NewDevice(instance *wgpu.Instance, surface *wgpu.Surface) (*Device, error) {
	runtime.LockOSThread()
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
	})
	if err != nil {
		return nil, errors.Wrap(err, "request adapter")
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "grove"})
	if err != nil {
		adapter.Release()
		return nil, errors.Wrap(err, "request device")
	}
	return &Device{
		instance: instance,
		adapter:  adapter,
		device:   device,
		queue:    device.GetQueue(),
	}, nil
}

// Raw returns the underlying wgpu device.
func (d *Device) Raw() *wgpu.Device { return d.device }

// Adapter returns the adapter the device was requested from.
func (d *Device) Adapter() *wgpu.Adapter { return d.adapter }

// Queue returns the device queue.
func (d *Device) Queue() *wgpu.Queue { return d.queue }

// usageFlags maps grove usage flags onto wgpu ones.
func usageFlags(u grove.BufferUsage) wgpu.BufferUsage {
	var out wgpu.BufferUsage
	if u&grove.BufferUsageVertex != 0 {
		out |= wgpu.BufferUsageVertex
	}
	if u&grove.BufferUsageIndex != 0 {
		out |= wgpu.BufferUsageIndex
	}
	if u&grove.BufferUsageUniform != 0 {
		out |= wgpu.BufferUsageUniform
	}
	if u&grove.BufferUsageStorage != 0 {
		out |= wgpu.BufferUsageStorage
	}
	if u&grove.BufferUsageCopyDst != 0 {
		out |= wgpu.BufferUsageCopyDst
	}
	return out
}

// alignUp rounds n up to a multiple of copyAlignment.
func alignUp(n int) int {
	return (n + copyAlignment - 1) &^ (copyAlignment - 1)
}

// CreateBuffer allocates a GPU buffer. The allocation is rounded up to the
// copy alignment; Size reports the requested size.
func (d *Device) CreateBuffer(label string, size int, usage grove.BufferUsage) (grove.Buffer, error) {
	if size <= 0 {
		return nil, errors.Errorf("wgpudevice: buffer %q: size %d must be positive", label, size)
	}
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(alignUp(size)),
		Usage: usageFlags(usage),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create buffer %q", label)
	}
	return &Buffer{buf: buf, size: size}, nil
}

// WriteBuffer queues a write of data into buf at offset. Both must be
// multiples of four bytes.
func (d *Device) WriteBuffer(buf grove.Buffer, offset int, data []byte) error {
	b, ok := buf.(*Buffer)
	if !ok {
		return errors.Errorf("wgpudevice: foreign buffer %T", buf)
	}
	if b.buf == nil {
		return errors.New("wgpudevice: write to released buffer")
	}
	if offset%copyAlignment != 0 || len(data)%copyAlignment != 0 {
		return errors.Errorf("wgpudevice: write at %d of %d bytes is not %d-byte aligned",
			offset, len(data), copyAlignment)
	}
	if offset < 0 || offset+len(data) > b.size {
		return errors.Errorf("wgpudevice: write [%d, %d) outside buffer of %d bytes",
			offset, offset+len(data), b.size)
	}
	return d.queue.WriteBuffer(b.buf, uint64(offset), data)
}

// Release frees the device and adapter.
func (d *Device) Release() {
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
}
