package grove

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// --- Test doubles shared by the package tests ---

type fakeBuffer struct {
	label    string
	size     int
	data     []byte
	released bool
}

func (b *fakeBuffer) Size() int { return b.size }
func (b *fakeBuffer) Release()  { b.released = true }

type bufferWrite struct {
	buf    *fakeBuffer
	offset int
	size   int
}

// fakeDevice keeps buffer contents in memory and records every write.
type fakeDevice struct {
	buffers   []*fakeBuffer
	writes    []bufferWrite
	failAfter int // CreateBuffer fails once this many buffers exist; 0 never fails
	writeErr  error
}

func (d *fakeDevice) CreateBuffer(label string, size int, _ BufferUsage) (Buffer, error) {
	if d.failAfter > 0 && len(d.buffers) >= d.failAfter {
		return nil, errors.Errorf("out of memory for %q", label)
	}
	b := &fakeBuffer{label: label, size: size, data: make([]byte, size)}
	d.buffers = append(d.buffers, b)
	return b, nil
}

func (d *fakeDevice) WriteBuffer(buf Buffer, offset int, data []byte) error {
	b, ok := buf.(*fakeBuffer)
	if !ok {
		return errors.New("foreign buffer")
	}
	if d.writeErr != nil {
		return d.writeErr
	}
	if offset < 0 || offset+len(data) > b.size {
		return errors.Errorf("write %d bytes at %d into %d", len(data), offset, b.size)
	}
	copy(b.data[offset:], data)
	d.writes = append(d.writes, bufferWrite{buf: b, offset: offset, size: len(data)})
	return nil
}

func (d *fakeDevice) resetWrites() {
	d.writes = d.writes[:0]
}

// fakePass records the commands it receives as strings.
type fakePass struct {
	calls []string
}

func (p *fakePass) SetTopology(t Topology) {
	p.calls = append(p.calls, fmt.Sprintf("topology %d", t))
}

func (p *fakePass) SetVertexBuffer(slot int, buf Buffer) {
	p.calls = append(p.calls, fmt.Sprintf("vertex %d %s", slot, buf.(*fakeBuffer).label))
}

func (p *fakePass) SetIndexBuffer(buf Buffer) {
	p.calls = append(p.calls, "index "+buf.(*fakeBuffer).label)
}

func (p *fakePass) Draw(vertexCount, instanceCount int) {
	p.calls = append(p.calls, fmt.Sprintf("draw %d %d", vertexCount, instanceCount))
}

func (p *fakePass) DrawIndexed(indexCount, instanceCount int) {
	p.calls = append(p.calls, fmt.Sprintf("drawIndexed %d %d", indexCount, instanceCount))
}

// fakeTarget hands out one fakePass per frame.
type fakeTarget struct {
	pass     *fakePass
	clears   []Color
	ended    int
	shots    []string
	beginErr error
}

func (t *fakeTarget) BeginFrame(clear Color) (RenderPass, error) {
	if t.beginErr != nil {
		return nil, t.beginErr
	}
	t.clears = append(t.clears, clear)
	t.pass = &fakePass{}
	return t.pass, nil
}

func (t *fakeTarget) EndFrame() error {
	t.ended++
	return nil
}

func (t *fakeTarget) Screenshot(label string) {
	t.shots = append(t.shots, label)
}

// fakeMaterial is a Uniforms with a recording Bind. bound holds the
// instance buffer seen by each Bind.
type fakeMaterial struct {
	*Uniforms
	bindErr error
	bound   []Buffer
}

func newFakeMaterial(d Device) *fakeMaterial {
	u, err := NewUniforms(d, "fake", StandardSlots())
	if err != nil {
		panic(err)
	}
	return &fakeMaterial{Uniforms: u}
}

func (m *fakeMaterial) Bind(pass RenderPass) error {
	if m.bindErr != nil {
		return m.bindErr
	}
	buf, _ := m.InstanceBuffer()
	m.bound = append(m.bound, buf)
	if p, ok := pass.(*fakePass); ok {
		p.calls = append(p.calls, "material")
	}
	return nil
}

// triangle is one counter-clockwise triangle facing +Z.
func triangle() MeshData {
	return MeshData{Vertices: []Vertex{
		{Position: [3]float32{0, 0, 0}},
		{Position: [3]float32{1, 0, 0}},
		{Position: [3]float32{0, 1, 0}},
	}}
}

// testScene returns a scene rendering into a fake target.
func testScene() (*Scene, *fakeDevice, *fakeTarget) {
	d := &fakeDevice{}
	t := &fakeTarget{}
	return NewScene(d, t), d, t
}

const step = time.Second / 60
