package grove

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// uploadedMVP returns the MVP last written to mat.
func uploadedMVP(mat *fakeMaterial) mgl32.Mat4 {
	return Mat4FromBytes(mat.Value(BindingMVP))
}

func TestRenderableDrawsWithMVP(t *testing.T) {
	s, d, target := testScene()
	mesh, _ := NewMesh(d, "tri", triangle())
	mat := newFakeMaterial(d)
	r := CreateChild(s, NewRenderable(s, mesh, mat))
	r.SetPosition(mgl32.Vec3{0, 0, -5})

	if err := s.Render(step); err != nil {
		t.Fatal(err)
	}
	want := s.ViewProjectionMatrix().Mul4(mgl32.Translate3D(0, 0, -5))
	assertMat4(t, "MVP", uploadedMVP(mat), want)

	calls := target.pass.calls
	if len(calls) == 0 || calls[len(calls)-1] != "draw 3 1" {
		t.Errorf("calls = %v, want a final draw of 3 vertices", calls)
	}
	if st := s.Stats(); st.DrawCalls != 1 || st.Instances != 1 {
		t.Errorf("stats = %+v", st)
	}
}

func TestRenderableSkipsMissingParts(t *testing.T) {
	s, d, target := testScene()
	mesh, _ := NewMesh(d, "tri", triangle())
	CreateChild(s, NewRenderable(s, mesh, nil))
	CreateChild(s, NewRenderable(s, nil, newFakeMaterial(d)))
	CreateChild(s, NewRenderable(nil, mesh, newFakeMaterial(d)))

	if err := s.Render(step); err != nil {
		t.Fatal(err)
	}
	if len(target.pass.calls) != 0 {
		t.Errorf("incomplete renderables drew: %v", target.pass.calls)
	}
}

func TestDisabledRenderableStillRendersChildren(t *testing.T) {
	s, d, _ := testScene()
	mesh, _ := NewMesh(d, "tri", triangle())
	parent := CreateChild(s, NewRenderable(s, mesh, newFakeMaterial(d)))
	CreateChild(parent, NewRenderable(s, mesh, newFakeMaterial(d)))
	parent.SetDisabled(true)

	if err := s.Render(step); err != nil {
		t.Fatal(err)
	}
	if st := s.Stats(); st.DrawCalls != 1 {
		t.Errorf("DrawCalls = %d, want 1 (child only)", st.DrawCalls)
	}
}

func TestCompositeAppliesParentTransform(t *testing.T) {
	s, d, _ := testScene()
	mesh, _ := NewMesh(d, "tri", triangle())
	mat := newFakeMaterial(d)

	group := CreateChild(s, NewCompositeRenderable())
	group.SetPosition(mgl32.Vec3{1, 0, 0})
	group.SetUniformScale(2)
	child := CreateChild(group, NewRenderable(s, mesh, mat))
	child.SetPosition(mgl32.Vec3{0, 1, 0})

	if err := s.Render(step); err != nil {
		t.Fatal(err)
	}
	model := group.Matrix().Mul4(child.Matrix())
	assertMat4(t, "MVP", uploadedMVP(mat), s.ViewProjectionMatrix().Mul4(model))

	normal := Float32s(mat.Value(BindingNormalMatrix))
	// Uniform scale 2 gives an inverse-transpose of 0.5 on the diagonal.
	if normal[0] < 0.499 || normal[0] > 0.501 {
		t.Errorf("normal matrix [0] = %v, want 0.5", normal[0])
	}
}

func TestInstancedRenderableDrawsOnce(t *testing.T) {
	s, d, target := testScene()
	mesh, _ := NewMesh(d, "tri", triangle())
	mat := newFakeMaterial(d)
	r := CreateChild(s, NewInstancedRenderable(s, mesh, mat))

	// Nothing to draw before instances exist.
	if err := s.Render(step); err != nil {
		t.Fatal(err)
	}
	if len(target.pass.calls) != 0 {
		t.Error("drew without instances")
	}

	if err := r.SetInstances(transformsAt(0, 1, 2, 3)); err != nil {
		t.Fatal(err)
	}
	buf, size := mat.InstanceBuffer()
	if buf != r.InstanceBuffer().Buffer() || size != 4*Mat4Size {
		t.Error("instance buffer not bound to the material")
	}

	if err := s.Render(step); err != nil {
		t.Fatal(err)
	}
	calls := target.pass.calls
	if calls[len(calls)-1] != "draw 3 4" {
		t.Errorf("calls = %v, want one draw of 4 instances", calls)
	}
	if st := s.Stats(); st.DrawCalls != 1 || st.Instances != 4 {
		t.Errorf("stats = %+v", st)
	}
}

func TestInstancedSharedMaterial(t *testing.T) {
	s, d, _ := testScene()
	mesh, _ := NewMesh(d, "tri", triangle())
	mat := newFakeMaterial(d)
	a := CreateChild(s, NewInstancedRenderable(s, mesh, mat))
	b := CreateChild(s, NewInstancedRenderable(s, mesh, mat))
	if err := a.SetInstances(transformsAt(0, 1)); err != nil {
		t.Fatal(err)
	}
	if err := b.SetInstances(transformsAt(2, 3, 4)); err != nil {
		t.Fatal(err)
	}

	if err := s.Render(step); err != nil {
		t.Fatal(err)
	}
	if len(mat.bound) != 2 {
		t.Fatalf("binds = %d, want 2", len(mat.bound))
	}
	if mat.bound[0] != a.InstanceBuffer().Buffer() {
		t.Error("first draw did not read a's instances")
	}
	if mat.bound[1] != b.InstanceBuffer().Buffer() {
		t.Error("second draw did not read b's instances")
	}
}

func TestInstancedRenderableUpdates(t *testing.T) {
	s, d, _ := testScene()
	r := NewInstancedRenderable(s, nil, nil)

	if err := r.UpdateInstance(0, NewTransform()); !errors.Is(err, ErrNoInstances) {
		t.Errorf("UpdateInstance before SetInstances err = %v", err)
	}
	if _, err := r.Instance(0); !errors.Is(err, ErrNoInstances) {
		t.Errorf("Instance before SetInstances err = %v", err)
	}
	if err := r.UpdateInstances(nil); err != nil {
		t.Errorf("empty UpdateInstances: %v", err)
	}
	if r.InstanceCount() != 0 || r.Instances() != nil {
		t.Error("expected no instances")
	}

	if err := r.SetInstances(transformsAt(0, 0, 0)); err != nil {
		t.Fatal(err)
	}
	d.resetWrites()
	err := r.UpdateInstances([]InstanceUpdate{
		{Index: 0, Transform: TransformFromPosition(mgl32.Vec3{1, 0, 0})},
		{Index: 1, Transform: TransformFromPosition(mgl32.Vec3{2, 0, 0})},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(d.writes) != 1 {
		t.Errorf("writes = %d, want 1", len(d.writes))
	}
	tr, _ := r.Instance(1)
	assertVec(t, "Instance(1)", tr.Position(), mgl32.Vec3{2, 0, 0})

	// The buffer is sized exactly by the first SetInstances.
	if err := r.SetInstances(transformsAt(0, 0, 0, 0)); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("growing err = %v, want ErrCapacityExceeded", err)
	}

	r.ClearInstances()
	if r.InstanceCount() != 0 {
		t.Error("ClearInstances kept instances active")
	}
}

func TestInstancedRenderableCapacity(t *testing.T) {
	s, _, _ := testScene()
	r, err := NewInstancedRenderableCapacity(s, nil, nil, 10)
	if err != nil {
		t.Fatal(err)
	}
	if r.InstanceBuffer().Cap() != 10 || r.InstanceCount() != 0 {
		t.Errorf("Cap/Count = %d/%d", r.InstanceBuffer().Cap(), r.InstanceCount())
	}
	if err := r.SetInstances(transformsAt(1, 2, 3)); err != nil {
		t.Fatal(err)
	}

	if _, err := NewInstancedRenderableCapacity(nil, nil, nil, 10); err == nil {
		t.Error("expected error without a scene")
	}

	buf := r.InstanceBuffer().Buffer().(*fakeBuffer)
	s.AddChild(r)
	s.RemoveChild(r)
	if !buf.released {
		t.Error("disposing the renderable leaked its instance buffer")
	}
}

func TestInstancedSetMaterialRebinds(t *testing.T) {
	s, d, _ := testScene()
	r := NewInstancedRenderable(s, nil, nil)
	if err := r.SetInstances(transformsAt(0)); err != nil {
		t.Fatal(err)
	}
	mat := newFakeMaterial(d)
	if err := r.SetMaterial(mat); err != nil {
		t.Fatal(err)
	}
	if buf, _ := mat.InstanceBuffer(); buf != r.InstanceBuffer().Buffer() {
		t.Error("SetMaterial did not bind the instance buffer")
	}
	if r.Material() != Material(mat) {
		t.Error("Material() mismatch")
	}
}

func TestRenderErrorPropagates(t *testing.T) {
	s, d, target := testScene()
	mesh, _ := NewMesh(d, "tri", triangle())
	mat := newFakeMaterial(d)
	mat.bindErr = errors.New("pipeline")
	CreateChild(s, NewRenderable(s, mesh, mat))

	if err := s.Render(step); err == nil {
		t.Error("expected bind error")
	}
	if target.ended != 1 {
		t.Error("frame not ended after a render error")
	}
}
