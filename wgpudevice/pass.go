package wgpudevice

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/phanxgames/grove"
)

// RenderPass wraps the render pass encoder of one frame.
type RenderPass struct {
	enc      *wgpu.RenderPassEncoder
	surface  *Surface
	topology grove.Topology
}

// Encoder returns the underlying encoder.
func (p *RenderPass) Encoder() *wgpu.RenderPassEncoder { return p.enc }

// SetTopology records the topology materials pick their pipeline by.
func (p *RenderPass) SetTopology(t grove.Topology) { p.topology = t }

// SetVertexBuffer binds buf to slot.
func (p *RenderPass) SetVertexBuffer(slot int, buf grove.Buffer) {
	if b, ok := buf.(*Buffer); ok && b.buf != nil {
		p.enc.SetVertexBuffer(uint32(slot), b.buf, 0, wgpu.WholeSize)
	}
}

// SetIndexBuffer binds a uint32 index buffer.
func (p *RenderPass) SetIndexBuffer(buf grove.Buffer) {
	if b, ok := buf.(*Buffer); ok && b.buf != nil {
		p.enc.SetIndexBuffer(b.buf, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	}
}

// Draw draws vertexCount vertices for each instance.
func (p *RenderPass) Draw(vertexCount, instanceCount int) {
	p.enc.Draw(uint32(vertexCount), uint32(instanceCount), 0, 0)
}

// DrawIndexed draws indexCount indices for each instance.
func (p *RenderPass) DrawIndexed(indexCount, instanceCount int) {
	p.enc.DrawIndexed(uint32(indexCount), uint32(instanceCount), 0, 0, 0)
}
