package grove

import "github.com/go-gl/mathgl/mgl32"

// degenerateEpsilon is the length below which axes and look-at vectors are
// treated as zero.
const degenerateEpsilon = 1e-6

// Transform is a decomposed affine transform kept as separate translation,
// rotation and scale factors. The combined matrix is always T * R * S and is
// recomputed lazily after any factor changes.
//
// The zero value is the identity transform. Transform is a value type and may
// be copied freely; copies do not share state.
type Transform struct {
	translation mgl32.Vec3
	rotation    mgl32.Mat4
	scale       mgl32.Vec3

	combined mgl32.Mat4
	dirty    bool
	ready    bool
}

// NewTransform returns an identity transform.
func NewTransform() Transform {
	var t Transform
	t.init()
	return t
}

// TransformFromPosition returns an identity transform moved to p.
func TransformFromPosition(p mgl32.Vec3) Transform {
	t := NewTransform()
	t.SetPosition(p)
	return t
}

// TransformFromMatrix decomposes an affine matrix into translation, rotation
// and scale. Scale is taken from the column norms of the upper 3x3 block and
// rotation from the normalized columns. Matrices carrying skew cannot be
// represented exactly and decompose lossily.
func TransformFromMatrix(m mgl32.Mat4) Transform {
	t := NewTransform()
	t.translation = m.Col(3).Vec3()

	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	t.scale = mgl32.Vec3{sx, sy, sz}

	r := mgl32.Ident4()
	for col, s := range [3]float32{sx, sy, sz} {
		c := m.Col(col).Vec3()
		if s > degenerateEpsilon {
			c = c.Mul(1 / s)
		}
		r.SetCol(col, c.Vec4(0))
	}
	t.rotation = r
	t.dirty = true
	return t
}

func (t *Transform) init() {
	if t.ready {
		return
	}
	t.rotation = mgl32.Ident4()
	t.scale = mgl32.Vec3{1, 1, 1}
	t.combined = mgl32.Ident4()
	t.ready = true
}

// Position returns the translation component.
func (t *Transform) Position() mgl32.Vec3 {
	return t.translation
}

// SetPosition replaces the translation component.
func (t *Transform) SetPosition(p mgl32.Vec3) {
	t.init()
	t.translation = p
	t.dirty = true
}

// Translate adds offset to the translation component.
func (t *Transform) Translate(offset mgl32.Vec3) {
	t.init()
	t.translation = t.translation.Add(offset)
	t.dirty = true
}

// Rotate post-multiplies the current rotation by a rotation of angle radians
// about axis, so successive calls compose. A zero-length axis is ignored.
func (t *Transform) Rotate(axis mgl32.Vec3, angle float32) {
	t.init()
	if axis.Len() < degenerateEpsilon {
		return
	}
	t.rotation = t.rotation.Mul4(mgl32.HomogRotate3D(angle, axis.Normalize()))
	t.dirty = true
}

// SetRotation replaces the rotation with a rotation of angle radians about
// axis. A zero-length axis resets the rotation to identity.
func (t *Transform) SetRotation(axis mgl32.Vec3, angle float32) {
	t.init()
	if axis.Len() < degenerateEpsilon {
		t.rotation = mgl32.Ident4()
	} else {
		t.rotation = mgl32.HomogRotate3D(angle, axis.Normalize())
	}
	t.dirty = true
}

// SetRotationMatrix replaces the rotation factor. m should be orthonormal.
func (t *Transform) SetRotationMatrix(m mgl32.Mat4) {
	t.init()
	t.rotation = m
	t.dirty = true
}

// Scale returns the per-axis scale factors.
func (t *Transform) Scale() mgl32.Vec3 {
	t.init()
	return t.scale
}

// SetScale replaces the per-axis scale factors.
func (t *Transform) SetScale(s mgl32.Vec3) {
	t.init()
	t.scale = s
	t.dirty = true
}

// SetUniformScale sets the same scale factor on all three axes.
func (t *Transform) SetUniformScale(s float32) {
	t.SetScale(mgl32.Vec3{s, s, s})
}

// FaceTowards orients the transform so that its forward vector (-Z) points at
// target, keeping position and scale. When target coincides with the position
// or up is parallel to the viewing direction the rotation is left unchanged.
func (t *Transform) FaceTowards(target, up mgl32.Vec3) {
	t.init()
	dir := t.translation.Sub(target)
	if dir.Len() < degenerateEpsilon {
		return
	}
	z := dir.Normalize()
	x := up.Cross(z)
	if x.Len() < degenerateEpsilon {
		return
	}
	x = x.Normalize()
	y := z.Cross(x)

	r := mgl32.Ident4()
	r.SetCol(0, x.Vec4(0))
	r.SetCol(1, y.Vec4(0))
	r.SetCol(2, z.Vec4(0))
	t.rotation = r
	t.dirty = true
}

// Orientation returns the rotation factor as a unit quaternion.
func (t *Transform) Orientation() mgl32.Quat {
	t.init()
	return mgl32.Mat4ToQuat(t.rotation).Normalize()
}

// Forward returns the direction the transform faces (negative Z of the rotation).
func (t *Transform) Forward() mgl32.Vec3 {
	t.init()
	return t.rotation.Col(2).Vec3().Mul(-1)
}

// Right returns the X axis of the rotation.
func (t *Transform) Right() mgl32.Vec3 {
	t.init()
	return t.rotation.Col(0).Vec3()
}

// Up returns the Y axis of the rotation.
func (t *Transform) Up() mgl32.Vec3 {
	t.init()
	return t.rotation.Col(1).Vec3()
}

// TranslationMatrix returns the translation factor as a matrix.
func (t *Transform) TranslationMatrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.translation[0], t.translation[1], t.translation[2])
}

// RotationMatrix returns the rotation factor.
func (t *Transform) RotationMatrix() mgl32.Mat4 {
	t.init()
	return t.rotation
}

// ScaleMatrix returns the scale factor as a matrix.
func (t *Transform) ScaleMatrix() mgl32.Mat4 {
	t.init()
	return mgl32.Scale3D(t.scale[0], t.scale[1], t.scale[2])
}

// Matrix returns the combined transform T * R * S.
func (t *Transform) Matrix() mgl32.Mat4 {
	t.init()
	if t.dirty {
		t.combined = t.TranslationMatrix().Mul4(t.rotation).Mul4(t.ScaleMatrix())
		t.dirty = false
	}
	return t.combined
}

// NormalMatrix returns the inverse-transpose of the rotation-scale block,
// used to transform normals. A zero scale yields the zero matrix.
func (t *Transform) NormalMatrix() mgl32.Mat3 {
	t.init()
	rs := t.rotation.Mul4(t.ScaleMatrix()).Mat3()
	return rs.Inv().Transpose()
}

// ViewMatrix returns the inverse of the combined matrix, used when the
// transform describes a camera.
func (t *Transform) ViewMatrix() mgl32.Mat4 {
	return t.Matrix().Inv()
}

// Apply returns p transformed by the combined matrix.
func (t *Transform) Apply(p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.TransformCoordinate(p, t.Matrix())
}
