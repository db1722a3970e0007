package grove

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// faceNormal returns the normal implied by the winding of triangle i.
func faceNormal(d MeshData, i int) mgl32.Vec3 {
	a := d.Vertices[d.Indices[i*3]].Position
	b := d.Vertices[d.Indices[i*3+1]].Position
	c := d.Vertices[d.Indices[i*3+2]].Position
	return b.Sub(a).Cross(c.Sub(a)).Normalize()
}

func TestBox(t *testing.T) {
	d := Box(mgl32.Vec3{2, 4, 6})
	if len(d.Vertices) != 24 || len(d.Indices) != 36 {
		t.Fatalf("vertices/indices = %d/%d, want 24/36", len(d.Vertices), len(d.Indices))
	}
	if d.Topology != TopologyTriangleList {
		t.Errorf("topology = %d", d.Topology)
	}
	for _, v := range d.Vertices {
		p := v.Position
		if math32.Abs(p[0]) != 1 || math32.Abs(p[1]) != 2 || math32.Abs(p[2]) != 3 {
			t.Fatalf("corner %v not on the box", p)
		}
	}
	for i := range 12 {
		n := faceNormal(d, i)
		want := d.Vertices[d.Indices[i*3]].Normal
		if !n.ApproxEqualThreshold(want, epsilon) {
			t.Errorf("triangle %d winds towards %v, normal is %v", i, n, want)
		}
	}
}

func TestPolygon(t *testing.T) {
	pts := []mgl32.Vec2{{0, 0}, {1, 0}, {1.5, 1}, {0.5, 2}, {-0.5, 1}}
	d := Polygon(pts)
	if len(d.Vertices) != 5 || len(d.Indices) != 9 {
		t.Fatalf("vertices/indices = %d/%d, want 5/9", len(d.Vertices), len(d.Indices))
	}
	for i := range 3 {
		if d.Indices[i*3] != 0 {
			t.Errorf("triangle %d does not start at the hub", i)
		}
		if n := faceNormal(d, i); !n.ApproxEqualThreshold(mgl32.Vec3{0, 0, 1}, epsilon) {
			t.Errorf("triangle %d faces %v", i, n)
		}
	}

	if d := Polygon(pts[:2]); len(d.Vertices) != 0 || len(d.Indices) != 0 {
		t.Error("two points should give an empty polygon")
	}
}

func TestPolyline(t *testing.T) {
	d := Polyline([]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}})
	if d.Topology != TopologyLineList {
		t.Errorf("topology = %d", d.Topology)
	}
	want := []uint32{0, 1, 1, 2}
	if len(d.Indices) != len(want) {
		t.Fatalf("indices = %v, want %v", d.Indices, want)
	}
	for i := range want {
		if d.Indices[i] != want[i] {
			t.Fatalf("indices = %v, want %v", d.Indices, want)
		}
	}
	if d := Polyline([]mgl32.Vec3{{1, 2, 3}}); d.Vertices != nil {
		t.Error("single point should give no lines")
	}
}

func TestBoxUploads(t *testing.T) {
	d := &fakeDevice{}
	m, err := NewMesh(d, "cube", Box(mgl32.Vec3{1, 1, 1}))
	if err != nil {
		t.Fatal(err)
	}
	if !m.Indexed() || m.IndexCount() != 36 || m.VertexCount() != 24 {
		t.Errorf("mesh = %d vertices, %d indices", m.VertexCount(), m.IndexCount())
	}
}
