package grove

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const epsilon = 1e-5

func assertVec(t *testing.T, name string, got, want mgl32.Vec3) {
	t.Helper()
	if !got.ApproxEqualThreshold(want, epsilon) {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertMat4(t *testing.T, name string, got, want mgl32.Mat4) {
	t.Helper()
	if !got.ApproxEqualThreshold(want, epsilon) {
		t.Errorf("%s =\n%v\nwant\n%v", name, got, want)
	}
}

// --- Construction ---

func TestZeroTransformIsIdentity(t *testing.T) {
	var tr Transform
	assertMat4(t, "Matrix", tr.Matrix(), mgl32.Ident4())
	assertVec(t, "Scale", tr.Scale(), mgl32.Vec3{1, 1, 1})
}

func TestNewTransformIsIdentity(t *testing.T) {
	tr := NewTransform()
	assertMat4(t, "Matrix", tr.Matrix(), mgl32.Ident4())
	assertVec(t, "Position", tr.Position(), mgl32.Vec3{})
}

func TestTransformFromPosition(t *testing.T) {
	tr := TransformFromPosition(mgl32.Vec3{1, 2, 3})
	assertMat4(t, "Matrix", tr.Matrix(), mgl32.Translate3D(1, 2, 3))
}

func TestTransformFromMatrix(t *testing.T) {
	src := NewTransform()
	src.SetPosition(mgl32.Vec3{4, 5, 6})
	src.SetRotation(mgl32.Vec3{0, 1, 0}, mgl32.DegToRad(30))
	src.SetScale(mgl32.Vec3{2, 3, 4})

	tr := TransformFromMatrix(src.Matrix())
	assertVec(t, "Position", tr.Position(), mgl32.Vec3{4, 5, 6})
	assertVec(t, "Scale", tr.Scale(), mgl32.Vec3{2, 3, 4})
	assertMat4(t, "RotationMatrix", tr.RotationMatrix(), src.RotationMatrix())
	assertMat4(t, "Matrix", tr.Matrix(), src.Matrix())
}

// --- Composition ---

func TestMatrixIsTRS(t *testing.T) {
	tr := NewTransform()
	tr.SetPosition(mgl32.Vec3{1, 0, 0})
	tr.SetRotation(mgl32.Vec3{0, 0, 1}, mgl32.DegToRad(90))
	tr.SetScale(mgl32.Vec3{2, 2, 2})

	// (1,0,0) scaled to (2,0,0), rotated to (0,2,0), translated to (1,2,0).
	assertVec(t, "Apply", tr.Apply(mgl32.Vec3{1, 0, 0}), mgl32.Vec3{1, 2, 0})

	want := tr.TranslationMatrix().Mul4(tr.RotationMatrix()).Mul4(tr.ScaleMatrix())
	assertMat4(t, "Matrix", tr.Matrix(), want)
}

func TestScaleRotateTranslate(t *testing.T) {
	tr := NewTransform()
	tr.SetScale(mgl32.Vec3{2, 1, 1})
	tr.Rotate(mgl32.Vec3{0, 0, 1}, mgl32.DegToRad(90))
	tr.Translate(mgl32.Vec3{1, 0, 0})

	assertVec(t, "Position", tr.Position(), mgl32.Vec3{1, 0, 0})
	assertVec(t, "Scale", tr.Scale(), mgl32.Vec3{2, 1, 1})
	// (1,0,0) scaled to (2,0,0), rotated to (0,2,0), translated to (1,2,0).
	assertVec(t, "Apply", tr.Apply(mgl32.Vec3{1, 0, 0}), mgl32.Vec3{1, 2, 0})
}

func TestOrientation(t *testing.T) {
	tr := NewTransform()
	if q := tr.Orientation(); !q.ApproxEqualThreshold(mgl32.QuatIdent(), epsilon) {
		t.Errorf("identity orientation = %v", q)
	}

	tr.SetScale(mgl32.Vec3{3, 3, 3})
	tr.SetRotation(mgl32.Vec3{0, 1, 0}, mgl32.DegToRad(90))
	want := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	if q := tr.Orientation(); !q.OrientationEqualThreshold(want, epsilon) {
		t.Errorf("Orientation = %v, want %v", q, want)
	}

	// Decomposition strips the scale from the columns.
	back := TransformFromMatrix(tr.Matrix())
	if q := back.Orientation(); !q.OrientationEqualThreshold(want, 1e-4) {
		t.Errorf("decomposed orientation = %v, want %v", q, want)
	}
}

func TestTranslateAccumulates(t *testing.T) {
	tr := NewTransform()
	tr.Translate(mgl32.Vec3{1, 0, 0})
	tr.Translate(mgl32.Vec3{0, 2, 0})
	assertVec(t, "Position", tr.Position(), mgl32.Vec3{1, 2, 0})
}

func TestRotateComposes(t *testing.T) {
	a := NewTransform()
	a.Rotate(mgl32.Vec3{0, 1, 0}, mgl32.DegToRad(45))
	a.Rotate(mgl32.Vec3{0, 1, 0}, mgl32.DegToRad(45))

	b := NewTransform()
	b.SetRotation(mgl32.Vec3{0, 1, 0}, mgl32.DegToRad(90))
	assertMat4(t, "RotationMatrix", a.RotationMatrix(), b.RotationMatrix())
}

func TestRotateZeroAxisIgnored(t *testing.T) {
	tr := NewTransform()
	tr.SetRotation(mgl32.Vec3{1, 0, 0}, 1)
	before := tr.RotationMatrix()
	tr.Rotate(mgl32.Vec3{}, 2)
	assertMat4(t, "RotationMatrix", tr.RotationMatrix(), before)
}

func TestSetRotationZeroAxisResets(t *testing.T) {
	tr := NewTransform()
	tr.SetRotation(mgl32.Vec3{1, 0, 0}, 1)
	tr.SetRotation(mgl32.Vec3{}, 1)
	assertMat4(t, "RotationMatrix", tr.RotationMatrix(), mgl32.Ident4())
}

func TestSetRotationNormalizesAxis(t *testing.T) {
	a := NewTransform()
	a.SetRotation(mgl32.Vec3{0, 10, 0}, 1)
	b := NewTransform()
	b.SetRotation(mgl32.Vec3{0, 1, 0}, 1)
	assertMat4(t, "RotationMatrix", a.RotationMatrix(), b.RotationMatrix())
}

func TestUniformScale(t *testing.T) {
	tr := NewTransform()
	tr.SetUniformScale(3)
	assertVec(t, "Scale", tr.Scale(), mgl32.Vec3{3, 3, 3})
}

func TestMatrixCacheInvalidated(t *testing.T) {
	tr := NewTransform()
	_ = tr.Matrix()
	tr.SetPosition(mgl32.Vec3{0, 0, 5})
	assertMat4(t, "Matrix", tr.Matrix(), mgl32.Translate3D(0, 0, 5))
}

func TestCopiesAreIndependent(t *testing.T) {
	a := NewTransform()
	b := a
	b.SetPosition(mgl32.Vec3{1, 1, 1})
	assertVec(t, "a.Position", a.Position(), mgl32.Vec3{})
	assertMat4(t, "a.Matrix", a.Matrix(), mgl32.Ident4())
}

// --- Orientation ---

func TestDirectionVectors(t *testing.T) {
	tr := NewTransform()
	assertVec(t, "Forward", tr.Forward(), mgl32.Vec3{0, 0, -1})
	assertVec(t, "Right", tr.Right(), mgl32.Vec3{1, 0, 0})
	assertVec(t, "Up", tr.Up(), mgl32.Vec3{0, 1, 0})

	tr.SetRotation(mgl32.Vec3{0, 1, 0}, mgl32.DegToRad(90))
	assertVec(t, "Forward after yaw", tr.Forward(), mgl32.Vec3{-1, 0, 0})
}

func TestFaceTowards(t *testing.T) {
	tr := TransformFromPosition(mgl32.Vec3{0, 0, 5})
	tr.SetScale(mgl32.Vec3{2, 2, 2})
	tr.FaceTowards(mgl32.Vec3{5, 0, 5}, mgl32.Vec3{0, 1, 0})

	assertVec(t, "Forward", tr.Forward(), mgl32.Vec3{1, 0, 0})
	assertVec(t, "Up", tr.Up(), mgl32.Vec3{0, 1, 0})
	assertVec(t, "Position kept", tr.Position(), mgl32.Vec3{0, 0, 5})
	assertVec(t, "Scale kept", tr.Scale(), mgl32.Vec3{2, 2, 2})
}

func TestFaceTowardsDegenerate(t *testing.T) {
	tr := NewTransform()
	tr.SetRotation(mgl32.Vec3{1, 0, 0}, 0.3)
	before := tr.RotationMatrix()

	// Target at the position.
	tr.FaceTowards(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	assertMat4(t, "same point", tr.RotationMatrix(), before)

	// Up parallel to the view direction.
	tr.FaceTowards(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{0, 1, 0})
	assertMat4(t, "parallel up", tr.RotationMatrix(), before)
}

// --- Derived matrices ---

func TestNormalMatrixNonUniformScale(t *testing.T) {
	tr := NewTransform()
	tr.SetScale(mgl32.Vec3{2, 1, 1})
	nm := tr.NormalMatrix()
	want := mgl32.Mat3{0.5, 0, 0, 0, 1, 0, 0, 0, 1}
	if !nm.ApproxEqualThreshold(want, epsilon) {
		t.Errorf("NormalMatrix = %v, want %v", nm, want)
	}
}

func TestViewMatrixInvertsMatrix(t *testing.T) {
	tr := TransformFromPosition(mgl32.Vec3{1, 2, 3})
	tr.SetRotation(mgl32.Vec3{1, 1, 0}, 0.7)
	assertMat4(t, "Matrix*View", tr.Matrix().Mul4(tr.ViewMatrix()), mgl32.Ident4())
}
