package ebitengpu

import (
	"image/color"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/grove"
)

// ambient is the light every face receives regardless of orientation.
const ambient = 0.2

// whiteImage is the source texture for solid triangles. Sampling its
// center pixel avoids edge bleeding.
var whiteImage = func() *ebiten.Image {
	img := ebiten.NewImage(3, 3)
	img.Fill(color.White)
	return img
}()

// triangle is a projected, shaded triangle waiting to be depth sorted.
type triangle struct {
	pts   [3]mgl32.Vec2
	depth float32
	color [4]float32
}

// RenderPass rasterizes grove draw calls onto an ebiten image. Triangles of
// a draw call are sorted back to front before submission; separate draw
// calls are composited in order.
type RenderPass struct {
	target   *ebiten.Image
	material *FlatColorMaterial
	vertices *Buffer
	indices  *Buffer
	topology grove.Topology

	// DrawCalls and Triangles count the work submitted this frame.
	DrawCalls int
	Triangles int

	tris  []triangle
	verts []ebiten.Vertex
	idx   []uint32
}

func (p *RenderPass) reset(target *ebiten.Image) {
	p.target = target
	p.material = nil
	p.vertices = nil
	p.indices = nil
	p.topology = grove.TopologyTriangleList
	p.DrawCalls = 0
	p.Triangles = 0
}

// SetTopology sets the topology of the following draws. Line lists are
// accepted but not rasterized.
func (p *RenderPass) SetTopology(t grove.Topology) {
	p.topology = t
}

// SetVertexBuffer binds the vertex buffer. Only slot 0 is used.
func (p *RenderPass) SetVertexBuffer(slot int, buf grove.Buffer) {
	if slot != 0 {
		return
	}
	p.vertices, _ = buf.(*Buffer)
}

// SetIndexBuffer binds a uint32 index buffer.
func (p *RenderPass) SetIndexBuffer(buf grove.Buffer) {
	p.indices, _ = buf.(*Buffer)
}

// Draw draws vertexCount sequential vertices per instance.
func (p *RenderPass) Draw(vertexCount, instanceCount int) {
	if p.vertices == nil {
		return
	}
	idx := make([]uint32, vertexCount)
	for i := range idx {
		idx[i] = uint32(i)
	}
	p.draw(idx, instanceCount)
}

// DrawIndexed draws indexCount indices from the bound index buffer per instance.
func (p *RenderPass) DrawIndexed(indexCount, instanceCount int) {
	if p.vertices == nil || p.indices == nil {
		return
	}
	idx := grove.DecodeIndices(p.indices.Bytes())
	p.draw(idx[:min(indexCount, len(idx))], instanceCount)
}

// instanceMatrix returns the matrix of instance i from the material's
// instance buffer, or the identity when none is bound.
func (p *RenderPass) instanceMatrix(i int) mgl32.Mat4 {
	buf, _ := p.material.InstanceBuffer()
	b, ok := buf.(*Buffer)
	if !ok || (i+1)*grove.Mat4Size > b.Size() {
		return mgl32.Ident4()
	}
	return grove.Mat4FromBytes(b.Bytes()[i*grove.Mat4Size:])
}

func normalMatrix(b []byte) mgl32.Mat3 {
	f := grove.Float32s(b)
	return mgl32.Mat3{f[0], f[1], f[2], f[4], f[5], f[6], f[8], f[9], f[10]}
}

func (p *RenderPass) draw(indices []uint32, instanceCount int) {
	if p.material == nil || p.target == nil || p.topology != grove.TopologyTriangleList {
		return
	}
	verts := grove.DecodeVertices(p.vertices.Bytes())
	mvp := grove.Mat4FromBytes(p.material.Value(grove.BindingMVP))
	nm := normalMatrix(p.material.Value(grove.BindingNormalMatrix))
	base := p.material.Color()
	light := p.material.LightDirection()

	bounds := p.target.Bounds()
	w, h := float32(bounds.Dx()), float32(bounds.Dy())

	p.tris = p.tris[:0]
	for inst := range instanceCount {
		im := p.instanceMatrix(inst)
		m := mvp.Mul4(im)
		n := nm.Mul3(im.Mat3().Inv().Transpose())

	tri:
		for t := 0; t+2 < len(indices); t += 3 {
			var tr triangle
			var normal mgl32.Vec3
			for k := range 3 {
				vi := int(indices[t+k])
				if vi >= len(verts) {
					continue tri
				}
				v := verts[vi]
				clip := m.Mul4x1(v.Position.Vec4(1))
				if clip.W() <= 0 {
					continue tri
				}
				ndc := clip.Vec3().Mul(1 / clip.W())
				tr.pts[k] = mgl32.Vec2{(ndc.X() + 1) / 2 * w, (1 - ndc.Y()) / 2 * h}
				tr.depth += ndc.Z() / 3
				normal = normal.Add(v.Normal)
			}
			shade := float32(1)
			if normal.Len() > 0 {
				wn := n.Mul3x1(normal)
				if wn.Len() > 0 {
					shade = ambient + (1-ambient)*max(0, wn.Normalize().Dot(light))
				}
			}
			tr.color = [4]float32{base.R * shade, base.G * shade, base.B * shade, base.A}
			p.tris = append(p.tris, tr)
		}
	}
	if len(p.tris) == 0 {
		return
	}

	slices.SortStableFunc(p.tris, func(a, b triangle) int {
		switch {
		case a.depth > b.depth:
			return -1
		case a.depth < b.depth:
			return 1
		}
		return 0
	})

	p.verts = p.verts[:0]
	p.idx = p.idx[:0]
	for _, tr := range p.tris {
		first := uint32(len(p.verts))
		for _, pt := range tr.pts {
			p.verts = append(p.verts, ebiten.Vertex{
				DstX: pt.X(), DstY: pt.Y(),
				SrcX: 1, SrcY: 1,
				ColorR: tr.color[0] * tr.color[3],
				ColorG: tr.color[1] * tr.color[3],
				ColorB: tr.color[2] * tr.color[3],
				ColorA: tr.color[3],
			})
		}
		p.idx = append(p.idx, first, first+1, first+2)
	}
	p.target.DrawTriangles32(p.verts, p.idx, whiteImage, &ebiten.DrawTrianglesOptions{AntiAlias: true})
	p.DrawCalls++
	p.Triangles += len(p.tris)
}
