package wgpudevice

import (
	_ "embed"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/phanxgames/grove"
	"github.com/pkg/errors"
)

//go:embed flat.wgsl
var flatShader string

// Bindings of the flat color shader in addition to the reserved ones.
const (
	BindingColor     = 2
	BindingLightDir  = 3
	BindingInstances = 4
)

// MaterialOptions describes a WGSL material. The shader reads uniforms from
// group 0 at the slot bindings and instance matrices from a read-only
// storage array at InstanceBinding.
type MaterialOptions struct {
	Label           string
	Source          string
	VertexEntry     string
	FragmentEntry   string
	Slots           []grove.UniformSlot
	InstanceBinding int
	// Blend enables alpha blending.
	Blend bool
}

// Material is a grove.Material compiling its WGSL into one pipeline per
// topology. The bind group is rebuilt whenever a different instance buffer
// is bound.
type Material struct {
	*grove.Uniforms

	device  *Device
	surface *Surface
	opts    MaterialOptions

	module         *wgpu.ShaderModule
	layout         *wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
	pipelines      map[grove.Topology]*wgpu.RenderPipeline

	bindGroup *wgpu.BindGroup
	bindGen   uint64
	identity  grove.Buffer
}

// NewMaterial compiles opts.Source and allocates the uniforms.
func NewMaterial(device *Device, surface *Surface, opts MaterialOptions) (*Material, error) {
	if opts.VertexEntry == "" {
		opts.VertexEntry = "vs_main"
	}
	if opts.FragmentEntry == "" {
		opts.FragmentEntry = "fs_main"
	}
	for _, s := range opts.Slots {
		if s.Binding == opts.InstanceBinding {
			return nil, errors.Errorf("wgpudevice: material %q: instance binding %d collides with a uniform",
				opts.Label, opts.InstanceBinding)
		}
	}

	u, err := grove.NewUniforms(device, opts.Label, opts.Slots)
	if err != nil {
		return nil, err
	}
	m := &Material{
		Uniforms:  u,
		device:    device,
		surface:   surface,
		opts:      opts,
		pipelines: make(map[grove.Topology]*wgpu.RenderPipeline),
	}

	// Draws without an instance buffer read a single identity matrix.
	m.identity, err = device.CreateBuffer(opts.Label+".identity", grove.Mat4Size,
		grove.BufferUsageStorage|grove.BufferUsageCopyDst)
	if err != nil {
		m.Release()
		return nil, err
	}
	if err := device.WriteBuffer(m.identity, 0, grove.Mat4Bytes(mgl32.Ident4())); err != nil {
		m.Release()
		return nil, err
	}

	m.module, err = device.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          opts.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: opts.Source},
	})
	if err != nil {
		m.Release()
		return nil, errors.Wrapf(err, "compile shader of %q", opts.Label)
	}

	m.layout, err = device.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   opts.Label,
		Entries: layoutEntries(opts.Slots, opts.InstanceBinding),
	})
	if err != nil {
		m.Release()
		return nil, errors.Wrapf(err, "bind group layout of %q", opts.Label)
	}
	m.pipelineLayout, err = device.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            opts.Label,
		BindGroupLayouts: []*wgpu.BindGroupLayout{m.layout},
	})
	if err != nil {
		m.Release()
		return nil, errors.Wrapf(err, "pipeline layout of %q", opts.Label)
	}
	return m, nil
}

// NewFlatColorMaterial returns the built-in material shading faces with one
// color and a directional light.
func NewFlatColorMaterial(device *Device, surface *Surface, c grove.Color) (*Material, error) {
	m, err := NewMaterial(device, surface, MaterialOptions{
		Label:  "flat",
		Source: flatShader,
		Slots: grove.StandardSlots(
			grove.UniformSlot{Binding: BindingColor, Size: grove.Vec4Size, Stage: grove.StageFragment, Label: "color"},
			grove.UniformSlot{Binding: BindingLightDir, Size: grove.Vec4Size, Stage: grove.StageFragment, Label: "light"},
		),
		InstanceBinding: BindingInstances,
		Blend:           c.A < 1,
	})
	if err != nil {
		return nil, err
	}
	if err := m.UpdateUniform(BindingColor, grove.Vec4Bytes(c.Vec4())); err != nil {
		return nil, err
	}
	l := mgl32.Vec3{0.5, 1, 0.75}.Normalize()
	if err := m.UpdateUniform(BindingLightDir, grove.Vec4Bytes([4]float32{l[0], l[1], l[2], 0})); err != nil {
		return nil, err
	}
	return m, nil
}

func stageFlags(s grove.ShaderStage) wgpu.ShaderStage {
	var out wgpu.ShaderStage
	if s&grove.StageVertex != 0 {
		out |= wgpu.ShaderStageVertex
	}
	if s&grove.StageFragment != 0 {
		out |= wgpu.ShaderStageFragment
	}
	return out
}

func primitiveTopology(t grove.Topology) wgpu.PrimitiveTopology {
	if t == grove.TopologyLineList {
		return wgpu.PrimitiveTopologyLineList
	}
	return wgpu.PrimitiveTopologyTriangleList
}

func layoutEntries(slots []grove.UniformSlot, instanceBinding int) []wgpu.BindGroupLayoutEntry {
	entries := make([]wgpu.BindGroupLayoutEntry, 0, len(slots)+1)
	for _, s := range slots {
		entries = append(entries, wgpu.BindGroupLayoutEntry{
			Binding:    uint32(s.Binding),
			Visibility: stageFlags(s.Stage),
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: uint64(s.Size),
			},
		})
	}
	return append(entries, wgpu.BindGroupLayoutEntry{
		Binding:    uint32(instanceBinding),
		Visibility: wgpu.ShaderStageVertex,
		Buffer: wgpu.BufferBindingLayout{
			Type:           wgpu.BufferBindingTypeReadOnlyStorage,
			MinBindingSize: grove.Mat4Size,
		},
	})
}

// vertexLayout matches grove.Vertex: position then normal.
var vertexLayout = wgpu.VertexBufferLayout{
	ArrayStride: grove.VertexSize,
	StepMode:    wgpu.VertexStepModeVertex,
	Attributes: []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
	},
}

func (m *Material) pipeline(t grove.Topology) (*wgpu.RenderPipeline, error) {
	if p, ok := m.pipelines[t]; ok {
		return p, nil
	}
	target := wgpu.ColorTargetState{
		Format:    m.surface.Format(),
		WriteMask: wgpu.ColorWriteMaskAll,
	}
	if m.opts.Blend {
		target.Blend = &wgpu.BlendStateAlphaBlending
	}
	p, err := m.device.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  m.opts.Label,
		Layout: m.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     m.module,
			EntryPoint: m.opts.VertexEntry,
			Buffers:    []wgpu.VertexBufferLayout{vertexLayout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     m.module,
			EntryPoint: m.opts.FragmentEntry,
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  primitiveTopology(t),
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: m.surface.SampleCount(),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create pipeline of %q", m.opts.Label)
	}
	m.pipelines[t] = p
	return p, nil
}

func (m *Material) rebuildBindGroup() error {
	entries := make([]wgpu.BindGroupEntry, 0, len(m.Slots())+1)
	for _, s := range m.Slots() {
		b := m.Buffer(s.Binding).(*Buffer)
		entries = append(entries, wgpu.BindGroupEntry{
			Binding: uint32(s.Binding),
			Buffer:  b.buf,
			Size:    wgpu.WholeSize,
		})
	}
	inst, _ := m.InstanceBuffer()
	if inst == nil {
		inst = m.identity
	}
	ib, ok := inst.(*Buffer)
	if !ok {
		return errors.Errorf("wgpudevice: foreign instance buffer %T", inst)
	}
	entries = append(entries, wgpu.BindGroupEntry{
		Binding: uint32(m.opts.InstanceBinding),
		Buffer:  ib.buf,
		Size:    wgpu.WholeSize,
	})

	bg, err := m.device.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   m.opts.Label,
		Layout:  m.layout,
		Entries: entries,
	})
	if err != nil {
		return errors.Wrapf(err, "create bind group of %q", m.opts.Label)
	}
	if m.bindGroup != nil {
		m.bindGroup.Release()
	}
	m.bindGroup = bg
	m.bindGen = m.InstanceGeneration()
	return nil
}

// Bind sets the pipeline for the pass topology and the material's bind group.
func (m *Material) Bind(pass grove.RenderPass) error {
	p, ok := pass.(*RenderPass)
	if !ok {
		return errors.Errorf("wgpudevice: cannot bind to %T", pass)
	}
	pipeline, err := m.pipeline(p.topology)
	if err != nil {
		return err
	}
	if m.bindGroup == nil || m.bindGen != m.InstanceGeneration() {
		if err := m.rebuildBindGroup(); err != nil {
			return err
		}
	}
	p.enc.SetPipeline(pipeline)
	p.enc.SetBindGroup(0, m.bindGroup, nil)
	return nil
}

// Release frees the pipelines, bind group and uniform buffers.
func (m *Material) Release() {
	for t, p := range m.pipelines {
		p.Release()
		delete(m.pipelines, t)
	}
	if m.bindGroup != nil {
		m.bindGroup.Release()
		m.bindGroup = nil
	}
	if m.pipelineLayout != nil {
		m.pipelineLayout.Release()
		m.pipelineLayout = nil
	}
	if m.layout != nil {
		m.layout.Release()
		m.layout = nil
	}
	if m.module != nil {
		m.module.Release()
		m.module = nil
	}
	if m.identity != nil {
		m.identity.Release()
		m.identity = nil
	}
	m.Uniforms.Release()
}
