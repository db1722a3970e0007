package grove

import "github.com/go-gl/mathgl/mgl32"

// --- Box ---

type boxFace struct {
	normal, a, b mgl32.Vec3 // a x b == normal
}

var boxFaces = [6]boxFace{
	{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}},
	{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}},
	{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
	{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}},
}

// Box returns an axis-aligned box centered on the origin with flat-shaded
// faces wound counter-clockwise seen from outside. 24 vertices, 36 indices.
// Box(mgl32.Vec3{1, 1, 1}) is a suitable Text link or node mesh.
func Box(size mgl32.Vec3) MeshData {
	half := size.Mul(0.5)
	d := MeshData{
		Vertices: make([]Vertex, 0, 24),
		Indices:  make([]uint32, 0, 36),
	}
	for _, f := range boxFaces {
		base := uint32(len(d.Vertices))
		for _, c := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			p := f.normal.Add(f.a.Mul(c[0])).Add(f.b.Mul(c[1]))
			d.Vertices = append(d.Vertices, Vertex{
				Position: mgl32.Vec3{p[0] * half[0], p[1] * half[1], p[2] * half[2]},
				Normal:   f.normal,
			})
		}
		d.Indices = append(d.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return d
}

// --- Polygon ---

// Polygon returns a convex polygon in the XY plane facing +Z. Uses fan
// triangulation with points[0] as the hub: N vertices, 3*(N-2) indices.
// Fewer than three points give empty data.
func Polygon(points []mgl32.Vec2) MeshData {
	n := len(points)
	if n < 3 {
		return MeshData{}
	}
	d := MeshData{
		Vertices: make([]Vertex, n),
		Indices:  make([]uint32, 0, (n-2)*3),
	}
	for i, p := range points {
		d.Vertices[i] = Vertex{Position: mgl32.Vec3{p[0], p[1], 0}, Normal: mgl32.Vec3{0, 0, 1}}
	}
	for i := 0; i < n-2; i++ {
		d.Indices = append(d.Indices, 0, uint32(i+1), uint32(i+2))
	}
	return d
}

// --- Lines ---

// Polyline returns a line list joining consecutive points. Normals are zero.
func Polyline(points []mgl32.Vec3) MeshData {
	d := MeshData{Topology: TopologyLineList}
	if len(points) < 2 {
		return d
	}
	d.Vertices = make([]Vertex, len(points))
	for i, p := range points {
		d.Vertices[i].Position = p
	}
	d.Indices = make([]uint32, 0, 2*(len(points)-1))
	for i := 1; i < len(points); i++ {
		d.Indices = append(d.Indices, uint32(i-1), uint32(i))
	}
	return d
}
