package grove

import (
	"encoding/binary"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Topology selects how vertices are assembled into primitives.
type Topology uint8

const (
	TopologyTriangleList Topology = iota // every three vertices form a triangle
	TopologyLineList                     // every two vertices form a line
)

// Vertex is the layout every mesh uses: position then normal.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
}

// VertexSize is the byte stride of one Vertex.
const VertexSize = 24

// MeshData is mesh geometry on the CPU. Indices are optional.
type MeshData struct {
	Vertices []Vertex
	Indices  []uint32
	Topology Topology
}

// VertexBytes encodes the vertices little-endian.
func (d *MeshData) VertexBytes() []byte {
	b := make([]byte, len(d.Vertices)*VertexSize)
	for i, v := range d.Vertices {
		putFloats(b[i*VertexSize:], v.Position[0], v.Position[1], v.Position[2],
			v.Normal[0], v.Normal[1], v.Normal[2])
	}
	return b
}

// IndexBytes encodes the indices as little-endian uint32.
func (d *MeshData) IndexBytes() []byte {
	b := make([]byte, len(d.Indices)*4)
	for i, idx := range d.Indices {
		binary.LittleEndian.PutUint32(b[i*4:], idx)
	}
	return b
}

// ComputeNormals replaces every vertex normal with the normalized sum of
// the face normals of the triangles using it. Only triangle lists are
// affected.
func (d *MeshData) ComputeNormals() {
	if d.Topology != TopologyTriangleList {
		return
	}
	for i := range d.Vertices {
		d.Vertices[i].Normal = mgl32.Vec3{}
	}
	tri := func(a, b, c uint32) {
		pa, pb, pc := d.Vertices[a].Position, d.Vertices[b].Position, d.Vertices[c].Position
		n := pb.Sub(pa).Cross(pc.Sub(pa))
		d.Vertices[a].Normal = d.Vertices[a].Normal.Add(n)
		d.Vertices[b].Normal = d.Vertices[b].Normal.Add(n)
		d.Vertices[c].Normal = d.Vertices[c].Normal.Add(n)
	}
	if len(d.Indices) > 0 {
		for i := 0; i+2 < len(d.Indices); i += 3 {
			tri(d.Indices[i], d.Indices[i+1], d.Indices[i+2])
		}
	} else {
		for i := 0; i+2 < len(d.Vertices); i += 3 {
			tri(uint32(i), uint32(i+1), uint32(i+2))
		}
	}
	for i := range d.Vertices {
		if d.Vertices[i].Normal.Len() > degenerateEpsilon {
			d.Vertices[i].Normal = d.Vertices[i].Normal.Normalize()
		}
	}
}

// DecodeVertices is the inverse of MeshData.VertexBytes.
func DecodeVertices(b []byte) []Vertex {
	fs := Float32s(b)
	out := make([]Vertex, len(fs)/6)
	for i := range out {
		f := fs[i*6:]
		out[i] = Vertex{
			Position: mgl32.Vec3{f[0], f[1], f[2]},
			Normal:   mgl32.Vec3{f[3], f[4], f[5]},
		}
	}
	return out
}

// DecodeIndices is the inverse of MeshData.IndexBytes.
func DecodeIndices(b []byte) []uint32 {
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return out
}

// Mesh is GPU-resident geometry that can bind itself with a material.
type Mesh interface {
	VertexCount() int
	IndexCount() int
	Indexed() bool
	Topology() Topology
	VertexBuffer() Buffer
	IndexBuffer() Buffer
	Bind(m Material, pass RenderPass) error
}

// GPUMesh uploads MeshData once and keeps the buffer handles.
type GPUMesh struct {
	vertices Buffer
	indices  Buffer
	nverts   int
	nindices int
	topology Topology
}

// NewMesh uploads data to device.
func NewMesh(device Device, label string, data MeshData) (*GPUMesh, error) {
	if len(data.Vertices) == 0 {
		return nil, errors.Errorf("grove: mesh %q has no vertices", label)
	}
	m := &GPUMesh{
		nverts:   len(data.Vertices),
		nindices: len(data.Indices),
		topology: data.Topology,
	}

	vb := data.VertexBytes()
	buf, err := device.CreateBuffer(label+".vertices", len(vb), BufferUsageVertex|BufferUsageCopyDst)
	if err != nil {
		return nil, errors.Wrapf(err, "create vertex buffer of %q", label)
	}
	m.vertices = buf
	if err := device.WriteBuffer(buf, 0, vb); err != nil {
		m.Release()
		return nil, errors.Wrapf(err, "upload vertices of %q", label)
	}

	if m.nindices == 0 {
		return m, nil
	}
	ib := data.IndexBytes()
	buf, err = device.CreateBuffer(label+".indices", len(ib), BufferUsageIndex|BufferUsageCopyDst)
	if err != nil {
		m.Release()
		return nil, errors.Wrapf(err, "create index buffer of %q", label)
	}
	m.indices = buf
	if err := device.WriteBuffer(buf, 0, ib); err != nil {
		m.Release()
		return nil, errors.Wrapf(err, "upload indices of %q", label)
	}
	return m, nil
}

func (m *GPUMesh) VertexCount() int     { return m.nverts }
func (m *GPUMesh) IndexCount() int      { return m.nindices }
func (m *GPUMesh) Indexed() bool        { return m.nindices > 0 }
func (m *GPUMesh) Topology() Topology   { return m.topology }
func (m *GPUMesh) VertexBuffer() Buffer { return m.vertices }
func (m *GPUMesh) IndexBuffer() Buffer  { return m.indices }

// Bind sets the topology on passes that take it, binds mat and then the
// mesh's vertex and index buffers.
func (m *GPUMesh) Bind(mat Material, pass RenderPass) error {
	if ts, ok := pass.(TopologySetter); ok {
		ts.SetTopology(m.topology)
	}
	if err := mat.Bind(pass); err != nil {
		return err
	}
	pass.SetVertexBuffer(0, m.vertices)
	if m.indices != nil {
		pass.SetIndexBuffer(m.indices)
	}
	return nil
}

// Release frees the GPU buffers.
func (m *GPUMesh) Release() {
	if m.vertices != nil {
		m.vertices.Release()
		m.vertices = nil
	}
	if m.indices != nil {
		m.indices.Release()
		m.indices = nil
	}
}

// TopologySetter is implemented by passes whose primitive topology is set
// per draw rather than baked into the material's pipeline.
type TopologySetter interface {
	SetTopology(t Topology)
}

// drawMesh issues the draw call matching the mesh's indexing.
func drawMesh(pass RenderPass, mesh Mesh, instances int) {
	if mesh.Indexed() {
		pass.DrawIndexed(mesh.IndexCount(), instances)
	} else {
		pass.Draw(mesh.VertexCount(), instances)
	}
}
