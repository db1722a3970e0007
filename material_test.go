package grove

import (
	"testing"

	"github.com/pkg/errors"
)

func TestStandardSlots(t *testing.T) {
	slots := StandardSlots(UniformSlot{Binding: 2, Size: Vec4Size, Stage: StageFragment, Label: "color"})
	if len(slots) != 3 {
		t.Fatalf("len = %d, want 3", len(slots))
	}
	if slots[0].Binding != BindingMVP || slots[0].Size != Mat4Size {
		t.Errorf("slot 0 = %+v", slots[0])
	}
	if slots[1].Binding != BindingNormalMatrix || slots[1].Size != NormalMatrixSize {
		t.Errorf("slot 1 = %+v", slots[1])
	}
	if slots[2].Label != "color" {
		t.Errorf("slot 2 = %+v", slots[2])
	}
}

func TestNewUniformsAllocatesPerSlot(t *testing.T) {
	d := &fakeDevice{}
	u, err := NewUniforms(d, "mat", StandardSlots())
	if err != nil {
		t.Fatal(err)
	}
	if len(d.buffers) != 2 {
		t.Fatalf("buffers = %d, want 2", len(d.buffers))
	}
	if d.buffers[0].label != "mat.mvp" || d.buffers[0].size != Mat4Size {
		t.Errorf("buffer 0 = %q %d", d.buffers[0].label, d.buffers[0].size)
	}
	if u.Buffer(BindingNormalMatrix) != Buffer(d.buffers[1]) {
		t.Error("Buffer(1) is not the second allocation")
	}
	if u.Buffer(7) != nil || u.Value(7) != nil {
		t.Error("undeclared binding should return nil")
	}

	u.Release()
	if !d.buffers[0].released || !d.buffers[1].released {
		t.Error("Release left buffers allocated")
	}
}

func TestNewUniformsReleasesOnFailure(t *testing.T) {
	d := &fakeDevice{failAfter: 1}
	if _, err := NewUniforms(d, "mat", StandardSlots()); err == nil {
		t.Fatal("expected error")
	}
	if !d.buffers[0].released {
		t.Error("first uniform buffer leaked")
	}
}

func TestUpdateUniform(t *testing.T) {
	d := &fakeDevice{}
	u, _ := NewUniforms(d, "mat", StandardSlots())
	d.resetWrites()

	data := make([]byte, Mat4Size)
	data[0] = 42
	if err := u.UpdateUniform(BindingMVP, data); err != nil {
		t.Fatal(err)
	}
	if u.Value(BindingMVP)[0] != 42 {
		t.Error("Value does not reflect the last write")
	}
	if len(d.writes) != 1 || d.writes[0].buf != d.buffers[0] {
		t.Errorf("writes = %+v", d.writes)
	}

	// The stored copy is independent of the caller's slice.
	data[0] = 7
	if u.Value(BindingMVP)[0] != 42 {
		t.Error("Value aliases the caller's slice")
	}
}

func TestUpdateUniformErrors(t *testing.T) {
	d := &fakeDevice{}
	u, _ := NewUniforms(d, "mat", StandardSlots())
	d.resetWrites()

	if err := u.UpdateUniform(9, make([]byte, 16)); !errors.Is(err, ErrUnknownBinding) {
		t.Errorf("unknown binding err = %v", err)
	}
	if err := u.UpdateUniform(BindingMVP, make([]byte, 16)); !errors.Is(err, ErrUniformSize) {
		t.Errorf("short data err = %v", err)
	}
	if len(d.writes) != 0 {
		t.Error("rejected uniform updates reached the device")
	}
}

func TestUpdateInstanceBufferGeneration(t *testing.T) {
	d := &fakeDevice{}
	u, _ := NewUniforms(d, "mat", StandardSlots())
	buf, _ := d.CreateBuffer("inst", 128, BufferUsageStorage)

	if u.InstanceGeneration() != 0 {
		t.Errorf("initial generation = %d", u.InstanceGeneration())
	}
	if err := u.UpdateInstanceBuffer(buf, 128); err != nil {
		t.Fatal(err)
	}
	if err := u.UpdateInstanceBuffer(buf, 128); err != nil {
		t.Fatal(err)
	}
	if u.InstanceGeneration() != 1 {
		t.Errorf("rebinding the same buffer bumped the generation to %d", u.InstanceGeneration())
	}
	got, size := u.InstanceBuffer()
	if got != buf || size != 128 {
		t.Errorf("InstanceBuffer = %v, %d", got, size)
	}
	if err := u.UpdateInstanceBuffer(buf, 64); err != nil {
		t.Fatal(err)
	}
	if u.InstanceGeneration() != 2 {
		t.Errorf("generation = %d, want 2", u.InstanceGeneration())
	}
}
