// Package gltfmesh loads glTF 2.0 meshes into grove.
//
// Every primitive becomes one grove.MeshData holding positions, normals and
// uint32 indices. Primitives without normals get smooth normals computed
// from their triangles. Only triangle and line list primitives are read.
package gltfmesh

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/phanxgames/grove"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// logger follows grove.SetLogger.
func logger() *slog.Logger { return grove.Logger().With("pkg", "gltfmesh") }

// Mesh is the decoded form of one glTF mesh.
type Mesh struct {
	Name       string
	Primitives []grove.MeshData
}

// Load opens the .gltf or .glb file at path and decodes its meshes.
func Load(path string) ([]Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	meshes, err := Decode(doc)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return meshes, nil
}

// Decode reads every mesh of doc. Unsupported primitives are skipped with
// a warning.
func Decode(doc *gltf.Document) ([]Mesh, error) {
	out := make([]Mesh, 0, len(doc.Meshes))
	for mi, m := range doc.Meshes {
		mesh := Mesh{Name: m.Name}
		for pi, p := range m.Primitives {
			data, ok, err := decodePrimitive(doc, p)
			if err != nil {
				return nil, errors.Wrapf(err, "mesh %d %q primitive %d", mi, m.Name, pi)
			}
			if !ok {
				logger().Warn("skipping primitive", "mesh", m.Name, "primitive", pi, "mode", p.Mode)
				continue
			}
			mesh.Primitives = append(mesh.Primitives, data)
		}
		out = append(out, mesh)
	}
	return out, nil
}

func topology(mode gltf.PrimitiveMode) (grove.Topology, bool) {
	switch mode {
	case gltf.PrimitiveTriangles:
		return grove.TopologyTriangleList, true
	case gltf.PrimitiveLines:
		return grove.TopologyLineList, true
	}
	return 0, false
}

func decodePrimitive(doc *gltf.Document, p *gltf.Primitive) (grove.MeshData, bool, error) {
	topo, ok := topology(p.Mode)
	if !ok {
		return grove.MeshData{}, false, nil
	}
	posIdx, ok := p.Attributes[gltf.POSITION]
	if !ok {
		return grove.MeshData{}, false, errors.New("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return grove.MeshData{}, false, errors.Wrap(err, "read positions")
	}

	var normals [][3]float32
	if nIdx, ok := p.Attributes[gltf.NORMAL]; ok {
		normals, err = modeler.ReadNormal(doc, doc.Accessors[nIdx], nil)
		if err != nil {
			return grove.MeshData{}, false, errors.Wrap(err, "read normals")
		}
		if len(normals) != len(positions) {
			return grove.MeshData{}, false, errors.Errorf("%d normals for %d positions", len(normals), len(positions))
		}
	}

	data := grove.MeshData{
		Vertices: make([]grove.Vertex, len(positions)),
		Topology: topo,
	}
	for i, pos := range positions {
		data.Vertices[i].Position = mgl32.Vec3(pos)
		if normals != nil {
			data.Vertices[i].Normal = mgl32.Vec3(normals[i])
		}
	}

	if p.Indices != nil {
		data.Indices, err = modeler.ReadIndices(doc, doc.Accessors[*p.Indices], nil)
		if err != nil {
			return grove.MeshData{}, false, errors.Wrap(err, "read indices")
		}
		for _, idx := range data.Indices {
			if int(idx) >= len(positions) {
				return grove.MeshData{}, false, errors.Errorf("index %d out of %d vertices", idx, len(positions))
			}
		}
	}

	if normals == nil {
		data.ComputeNormals()
	}
	return data, true, nil
}

// Upload creates a GPU mesh for every primitive of meshes, in order.
func Upload(device grove.Device, meshes []Mesh) ([][]*grove.GPUMesh, error) {
	out := make([][]*grove.GPUMesh, len(meshes))
	for i, m := range meshes {
		for j, p := range m.Primitives {
			gm, err := grove.NewMesh(device, m.Name, p)
			if err != nil {
				releaseAll(out)
				return nil, errors.Wrapf(err, "upload mesh %d primitive %d", i, j)
			}
			out[i] = append(out[i], gm)
		}
	}
	return out, nil
}

func releaseAll(meshes [][]*grove.GPUMesh) {
	for _, ms := range meshes {
		for _, m := range ms {
			m.Release()
		}
	}
}
