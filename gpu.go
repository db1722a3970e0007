package grove

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// BufferUsage describes how a GPU buffer will be bound. Values combine with
// bitwise OR and mirror the WebGPU usage flags.
type BufferUsage uint32

const (
	BufferUsageVertex  BufferUsage = 1 << iota // vertex attribute data
	BufferUsageIndex                           // index data
	BufferUsageUniform                         // uniform block
	BufferUsageStorage                         // read-only storage (instance matrices)
	BufferUsageCopyDst                         // target of WriteBuffer
)

// Buffer is an opaque GPU buffer handle owned by a Device.
type Buffer interface {
	Size() int
	Release()
}

// Device is the GPU capability grove needs: allocate buffers and write
// bytes into them. Writes are queued in submission order.
type Device interface {
	CreateBuffer(label string, size int, usage BufferUsage) (Buffer, error)
	WriteBuffer(buf Buffer, offset int, data []byte) error
}

// RenderPass records draw commands for the current frame. Pipeline and
// bind group state is set by Material.Bind.
type RenderPass interface {
	SetVertexBuffer(slot int, buf Buffer)
	SetIndexBuffer(buf Buffer)
	Draw(vertexCount, instanceCount int)
	DrawIndexed(indexCount, instanceCount int)
}

// FrameTarget hands out one RenderPass per frame, cleared to the given
// color, and presents it on EndFrame.
type FrameTarget interface {
	BeginFrame(clear Color) (RenderPass, error)
	EndFrame() error
}

// Screenshotter is implemented by frame targets that can capture the
// presented frame.
type Screenshotter interface {
	Screenshot(label string)
}

const (
	// Mat4Size is the byte size of one column-major float32 4x4 matrix.
	Mat4Size = 64

	// NormalMatrixSize is the byte size of a 3x3 matrix with each column
	// padded to a vec4, as uniform layout rules require.
	NormalMatrixSize = 48

	// Vec4Size is the byte size of four float32 values.
	Vec4Size = 16
)

// putFloats writes fs little-endian into dst.
func putFloats(dst []byte, fs ...float32) {
	for i, f := range fs {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
	}
}

// Float32s decodes little-endian float32 values from b.
func Float32s(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

// AppendMat4 appends m in column-major order.
func AppendMat4(dst []byte, m mgl32.Mat4) []byte {
	n := len(dst)
	dst = append(dst, make([]byte, Mat4Size)...)
	putFloats(dst[n:], m[:]...)
	return dst
}

// Mat4Bytes returns m in column-major order.
func Mat4Bytes(m mgl32.Mat4) []byte {
	return AppendMat4(make([]byte, 0, Mat4Size), m)
}

// NormalMatrixBytes returns m as three vec4 columns with zero padding.
func NormalMatrixBytes(m mgl32.Mat3) []byte {
	b := make([]byte, NormalMatrixSize)
	putFloats(b,
		m[0], m[1], m[2], 0,
		m[3], m[4], m[5], 0,
		m[6], m[7], m[8], 0,
	)
	return b
}

// Vec4Bytes returns four packed floats.
func Vec4Bytes(v [4]float32) []byte {
	b := make([]byte, Vec4Size)
	putFloats(b, v[:]...)
	return b
}

// Mat4FromBytes decodes a column-major matrix written by AppendMat4.
func Mat4FromBytes(b []byte) mgl32.Mat4 {
	var m mgl32.Mat4
	copy(m[:], Float32s(b[:Mat4Size]))
	return m
}
