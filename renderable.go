package grove

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// RenderContext is what renderables need from the scene while drawing.
// Scene implements it.
type RenderContext interface {
	Device() Device
	ViewProjectionMatrix() mgl32.Mat4
	DrawMesh(mesh Mesh, mat Material, instances int) error
}

// ParentedRenderer is implemented by renderables that accept an inherited
// transform from a group above them.
type ParentedRenderer interface {
	RenderWithParent(dt time.Duration, parent mgl32.Mat4) error
}

// renderChildren renders n's children, handing parent to those that accept it.
func renderChildren(n *Node, dt time.Duration, parent mgl32.Mat4) error {
	for _, c := range n.children {
		var err error
		if pr, ok := c.(ParentedRenderer); ok {
			err = pr.RenderWithParent(dt, parent)
		} else {
			err = c.Render(dt)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// drawModel pushes the MVP and normal matrix for model and issues the draw.
func drawModel(ctx RenderContext, mesh Mesh, mat Material, model mgl32.Mat4, instances int) error {
	mvp := ctx.ViewProjectionMatrix().Mul4(model)
	if err := mat.UpdateUniform(BindingMVP, Mat4Bytes(mvp)); err != nil {
		return err
	}
	normal := model.Mat3().Inv().Transpose()
	if err := mat.UpdateUniform(BindingNormalMatrix, NormalMatrixBytes(normal)); err != nil {
		return err
	}
	return ctx.DrawMesh(mesh, mat, instances)
}

// Renderable draws one mesh with one material at its transform.
type Renderable struct {
	Entity[*Renderable]
	Transform

	scene    RenderContext
	mesh     Mesh
	material Material
}

// NewRenderable creates a renderable. Any argument may be nil; drawing is
// skipped until all are present.
func NewRenderable(scene RenderContext, mesh Mesh, mat Material) *Renderable {
	r := &Renderable{
		Transform: NewTransform(),
		scene:     scene,
		mesh:      mesh,
		material:  mat,
	}
	r.Bind(r)
	return r
}

func (r *Renderable) Mesh() Mesh             { return r.mesh }
func (r *Renderable) Material() Material     { return r.material }
func (r *Renderable) SetMesh(m Mesh)         { r.mesh = m }
func (r *Renderable) SetMaterial(m Material) { r.material = m }

// Pose returns the renderable's transform.
func (r *Renderable) Pose() *Transform { return &r.Transform }

// Render draws at the renderable's own transform.
func (r *Renderable) Render(dt time.Duration) error {
	return r.RenderWithParent(dt, mgl32.Ident4())
}

// RenderWithParent runs the render systems, draws at parent * local and
// renders the children with that combined transform.
func (r *Renderable) RenderWithParent(dt time.Duration, parent mgl32.Mat4) error {
	if err := r.RenderSystems(dt); err != nil {
		return err
	}
	model := parent.Mul4(r.Matrix())
	if !r.Disabled() && r.scene != nil && r.mesh != nil && r.material != nil {
		if err := drawModel(r.scene, r.mesh, r.material, model, 1); err != nil {
			return err
		}
	}
	return renderChildren(&r.Node, dt, model)
}

// InstancedRenderable draws one mesh many times in a single draw call. Each
// instance's matrix lives in an InstanceBuffer; the renderable's own
// transform is applied on top of all of them.
type InstancedRenderable struct {
	Entity[*InstancedRenderable]
	Transform

	scene     RenderContext
	mesh      Mesh
	material  Material
	instances *InstanceBuffer
}

// NewInstancedRenderable creates an instanced renderable with no instances.
// The instance buffer is allocated by the first SetInstances call and sized
// to fit exactly.
func NewInstancedRenderable(scene RenderContext, mesh Mesh, mat Material) *InstancedRenderable {
	r := &InstancedRenderable{
		Transform: NewTransform(),
		scene:     scene,
		mesh:      mesh,
		material:  mat,
	}
	r.Bind(r)
	r.OnDispose(r.release)
	return r
}

// NewInstancedRenderableCapacity creates an instanced renderable whose
// instance buffer is allocated up front with room for capacity instances.
func NewInstancedRenderableCapacity(scene RenderContext, mesh Mesh, mat Material, capacity int) (*InstancedRenderable, error) {
	if scene == nil {
		return nil, errors.New("grove: instanced renderable has no scene")
	}
	r := NewInstancedRenderable(scene, mesh, mat)
	buf, err := NewInstanceBufferCapacity(scene.Device(), "instances", capacity)
	if err != nil {
		return nil, err
	}
	if err := r.attach(buf); err != nil {
		buf.Release()
		return nil, err
	}
	return r, nil
}

func (r *InstancedRenderable) release() {
	if r.instances != nil {
		r.instances.Release()
		r.instances = nil
	}
}

func (r *InstancedRenderable) attach(buf *InstanceBuffer) error {
	r.instances = buf
	if r.material == nil {
		return nil
	}
	return r.material.UpdateInstanceBuffer(buf.Buffer(), buf.Size())
}

func (r *InstancedRenderable) Mesh() Mesh         { return r.mesh }
func (r *InstancedRenderable) Material() Material { return r.material }
func (r *InstancedRenderable) SetMesh(m Mesh)     { r.mesh = m }

// Pose returns the group transform applied to every instance.
func (r *InstancedRenderable) Pose() *Transform { return &r.Transform }

// SetMaterial replaces the material and binds the instance buffer to it.
func (r *InstancedRenderable) SetMaterial(m Material) error {
	r.material = m
	if m == nil || r.instances == nil {
		return nil
	}
	return m.UpdateInstanceBuffer(r.instances.Buffer(), r.instances.Size())
}

// InstanceBuffer returns the instance buffer, or nil before any instances
// were assigned.
func (r *InstancedRenderable) InstanceBuffer() *InstanceBuffer {
	return r.instances
}

// SetInstances replaces every instance. The first call allocates the
// instance buffer; later calls must fit within its capacity.
func (r *InstancedRenderable) SetInstances(instances []Transform) error {
	if r.instances != nil {
		return r.instances.SetInstances(instances)
	}
	if r.scene == nil {
		return errors.New("grove: instanced renderable has no scene")
	}
	buf, err := NewInstanceBuffer(r.scene.Device(), "instances", instances)
	if err != nil {
		return err
	}
	if err := r.attach(buf); err != nil {
		buf.Release()
		r.instances = nil
		return err
	}
	return nil
}

// UpdateInstance replaces instance i.
func (r *InstancedRenderable) UpdateInstance(i int, t Transform) error {
	if r.instances == nil {
		return errors.Wrapf(ErrNoInstances, "update instance %d", i)
	}
	return r.instances.UpdateTransform(i, t)
}

// UpdateInstances applies a batch of instance updates.
func (r *InstancedRenderable) UpdateInstances(updates []InstanceUpdate) error {
	if r.instances == nil {
		if len(updates) == 0 {
			return nil
		}
		return errors.Wrap(ErrNoInstances, "update instances")
	}
	return r.instances.UpdateTransforms(updates)
}

// Instance returns instance i.
func (r *InstancedRenderable) Instance(i int) (Transform, error) {
	if r.instances == nil {
		return Transform{}, errors.Wrapf(ErrNoInstances, "instance %d", i)
	}
	return r.instances.Transform(i)
}

// Instances returns the active instance transforms. The slice MUST NOT be mutated.
func (r *InstancedRenderable) Instances() []Transform {
	if r.instances == nil {
		return nil
	}
	return r.instances.Transforms()
}

// InstanceCount returns the number of active instances.
func (r *InstancedRenderable) InstanceCount() int {
	if r.instances == nil {
		return 0
	}
	return r.instances.Len()
}

// ClearInstances deactivates every instance. Capacity is kept.
func (r *InstancedRenderable) ClearInstances() {
	if r.instances != nil {
		r.instances.Clear()
	}
}

// Render draws every instance at its own transform.
func (r *InstancedRenderable) Render(dt time.Duration) error {
	return r.RenderWithParent(dt, mgl32.Ident4())
}

// RenderWithParent runs the render systems and, when the scene, mesh,
// material and at least one instance are present, issues one instanced draw
// with MVP = view-projection * parent * local.
func (r *InstancedRenderable) RenderWithParent(dt time.Duration, parent mgl32.Mat4) error {
	if err := r.RenderSystems(dt); err != nil {
		return err
	}
	model := parent.Mul4(r.Matrix())
	if !r.Disabled() && r.scene != nil && r.mesh != nil && r.material != nil &&
		r.instances != nil && r.instances.Len() > 0 {
		// A shared material may hold another renderable's instances.
		if err := r.material.UpdateInstanceBuffer(r.instances.Buffer(), r.instances.Size()); err != nil {
			return err
		}
		if err := drawModel(r.scene, r.mesh, r.material, model, r.instances.Len()); err != nil {
			return err
		}
	}
	return renderChildren(&r.Node, dt, model)
}

// CompositeRenderable groups renderables under a shared transform. It draws
// nothing itself.
type CompositeRenderable struct {
	Entity[*CompositeRenderable]
	Transform
}

// NewCompositeRenderable creates an empty group.
func NewCompositeRenderable() *CompositeRenderable {
	c := &CompositeRenderable{Transform: NewTransform()}
	c.Bind(c)
	return c
}

// Pose returns the group transform.
func (c *CompositeRenderable) Pose() *Transform { return &c.Transform }

// Render renders the children under the group transform.
func (c *CompositeRenderable) Render(dt time.Duration) error {
	return c.RenderWithParent(dt, mgl32.Ident4())
}

// RenderWithParent runs the render systems and renders the children with
// parent * local.
func (c *CompositeRenderable) RenderWithParent(dt time.Duration, parent mgl32.Mat4) error {
	if err := c.RenderSystems(dt); err != nil {
		return err
	}
	return renderChildren(&c.Node, dt, parent.Mul4(c.Matrix()))
}
