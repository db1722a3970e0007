package gltfmesh

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/phanxgames/grove"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
)

// maxNodeDepth bounds node recursion in malformed documents.
const maxNodeDepth = 64

// nodeTransform converts a glTF node's matrix or TRS into a Transform.
// Missing components take their glTF defaults.
func nodeTransform(n *gltf.Node) grove.Transform {
	var zero [16]float64
	if n.Matrix != zero && n.Matrix != identity64 {
		var m mgl32.Mat4
		for i, v := range n.Matrix {
			m[i] = float32(v)
		}
		return grove.TransformFromMatrix(m)
	}

	t := grove.NewTransform()
	t.SetPosition(mgl32.Vec3{float32(n.Translation[0]), float32(n.Translation[1]), float32(n.Translation[2])})
	if n.Rotation != [4]float64{} {
		q := mgl32.Quat{
			W: float32(n.Rotation[3]),
			V: mgl32.Vec3{float32(n.Rotation[0]), float32(n.Rotation[1]), float32(n.Rotation[2])},
		}
		t.SetRotationMatrix(q.Normalize().Mat4())
	}
	if n.Scale != [3]float64{} {
		t.SetScale(mgl32.Vec3{float32(n.Scale[0]), float32(n.Scale[1]), float32(n.Scale[2])})
	}
	return t
}

var identity64 = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// BuildScene instantiates the default scene of doc as a tree of renderables
// under one group. meshes is the result of Upload for the same document;
// every primitive is drawn with mat.
func BuildScene(ctx grove.RenderContext, doc *gltf.Document, meshes [][]*grove.GPUMesh, mat grove.Material) (*grove.CompositeRenderable, error) {
	root := grove.NewCompositeRenderable()
	root.Name = "gltf"
	if len(doc.Scenes) == 0 {
		return root, nil
	}
	si := 0
	if doc.Scene != nil {
		si = int(*doc.Scene)
	}
	if si >= len(doc.Scenes) {
		return nil, errors.Errorf("default scene %d of %d", si, len(doc.Scenes))
	}

	var build func(parent grove.Object, idx uint32, depth int) error
	build = func(parent grove.Object, idx uint32, depth int) error {
		if depth > maxNodeDepth {
			return errors.Errorf("node %d nested deeper than %d", idx, maxNodeDepth)
		}
		if int(idx) >= len(doc.Nodes) {
			return errors.Errorf("node %d of %d", idx, len(doc.Nodes))
		}
		n := doc.Nodes[idx]
		group := grove.NewCompositeRenderable()
		group.Name = n.Name
		group.Transform = nodeTransform(n)
		parent.Base().AddChild(group)

		if n.Mesh != nil {
			mi := int(*n.Mesh)
			if mi >= len(meshes) {
				return errors.Errorf("node %q: mesh %d of %d", n.Name, mi, len(meshes))
			}
			for _, m := range meshes[mi] {
				group.AddChild(grove.NewRenderable(ctx, m, mat))
			}
		}
		for _, c := range n.Children {
			if err := build(group, c, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	for _, idx := range doc.Scenes[si].Nodes {
		if err := build(root, idx, 0); err != nil {
			root.Dispose()
			return nil, err
		}
	}
	return root, nil
}
