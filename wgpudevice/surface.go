package wgpudevice

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/phanxgames/grove"
	"github.com/pkg/errors"
)

// depthFormat is the format of the surface depth attachment.
const depthFormat = wgpu.TextureFormatDepth24Plus

// Surface is a grove.FrameTarget presenting to a window surface. It owns the
// depth buffer and, with multisampling, the color buffer resolved into the
// swapchain image.
type Surface struct {
	device      *Device
	surface     *wgpu.Surface
	format      wgpu.TextureFormat
	alphaMode   wgpu.CompositeAlphaMode
	presentMode wgpu.PresentMode
	sampleCount uint32

	width, height int
	depth         *wgpu.Texture
	depthView     *wgpu.TextureView
	msaa          *wgpu.Texture
	msaaView      *wgpu.TextureView

	frame   *wgpu.Texture
	view    *wgpu.TextureView
	encoder *wgpu.CommandEncoder
	pass    RenderPass
}

// NewSurface configures surface for device at width x height. sampleCount
// is 1 or 4.
func NewSurface(device *Device, surface *wgpu.Surface, width, height, sampleCount int, vsync bool) (*Surface, error) {
	if sampleCount != 1 && sampleCount != 4 {
		return nil, errors.Errorf("wgpudevice: sample count %d must be 1 or 4", sampleCount)
	}
	caps := surface.GetCapabilities(device.adapter)
	if len(caps.Formats) == 0 {
		return nil, errors.New("wgpudevice: surface reports no formats")
	}
	s := &Surface{
		device:      device,
		surface:     surface,
		format:      caps.Formats[0],
		alphaMode:   caps.AlphaModes[0],
		presentMode: presentMode(vsync),
		sampleCount: uint32(sampleCount),
	}
	if err := s.Resize(width, height); err != nil {
		return nil, err
	}
	return s, nil
}

func presentMode(vsync bool) wgpu.PresentMode {
	if vsync {
		return wgpu.PresentModeFifo
	}
	return wgpu.PresentModeImmediate
}

// Format returns the swapchain color format.
func (s *Surface) Format() wgpu.TextureFormat { return s.format }

// SampleCount returns the multisample count of the color and depth buffers.
func (s *Surface) SampleCount() uint32 { return s.sampleCount }

// Size returns the configured size in pixels.
func (s *Surface) Size() (width, height int) { return s.width, s.height }

// Resize reconfigures the swapchain and recreates the attachments.
// Zero sizes, as reported for minimized windows, are ignored.
func (s *Surface) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	s.width, s.height = width, height
	s.surface.Configure(s.device.adapter, s.device.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      s.format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: s.presentMode,
		AlphaMode:   s.alphaMode,
	})
	s.releaseAttachments()

	var err error
	s.depth, s.depthView, err = s.attachment("depth", depthFormat)
	if err != nil {
		return err
	}
	if s.sampleCount > 1 {
		s.msaa, s.msaaView, err = s.attachment("msaa", s.format)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Surface) attachment(label string, format wgpu.TextureFormat) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := s.device.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(s.width),
			Height:             uint32(s.height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   s.sampleCount,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "create %s texture", label)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, errors.Wrapf(err, "create %s view", label)
	}
	return tex, view, nil
}

func (s *Surface) releaseAttachments() {
	for _, v := range []*wgpu.TextureView{s.depthView, s.msaaView} {
		if v != nil {
			v.Release()
		}
	}
	for _, t := range []*wgpu.Texture{s.depth, s.msaa} {
		if t != nil {
			t.Release()
		}
	}
	s.depth, s.depthView, s.msaa, s.msaaView = nil, nil, nil, nil
}

// BeginFrame acquires the next swapchain image and begins a render pass
// clearing it to clear.
func (s *Surface) BeginFrame(clear grove.Color) (grove.RenderPass, error) {
	if s.frame != nil {
		return nil, errors.New("wgpudevice: previous frame not presented")
	}
	frame, err := s.surface.GetCurrentTexture()
	if err != nil {
		return nil, errors.Wrap(err, "acquire surface texture")
	}
	view, err := frame.CreateView(nil)
	if err != nil {
		frame.Release()
		return nil, errors.Wrap(err, "create surface view")
	}
	encoder, err := s.device.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		frame.Release()
		return nil, errors.Wrap(err, "create command encoder")
	}

	color := wgpu.RenderPassColorAttachment{
		View:       view,
		LoadOp:     wgpu.LoadOpClear,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: wgpu.Color{R: float64(clear.R), G: float64(clear.G), B: float64(clear.B), A: float64(clear.A)},
	}
	if s.msaaView != nil {
		color.View = s.msaaView
		color.ResolveTarget = view
		color.StoreOp = wgpu.StoreOpDiscard
	}
	enc := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{color},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            s.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1,
		},
	})

	s.frame, s.view, s.encoder = frame, view, encoder
	s.pass = RenderPass{enc: enc, surface: s}
	return &s.pass, nil
}

// EndFrame ends the pass, submits the commands and presents the image.
func (s *Surface) EndFrame() error {
	if s.frame == nil {
		return nil
	}
	defer s.releaseFrame()

	s.pass.enc.End()
	s.pass.enc.Release()
	cmd, err := s.encoder.Finish(nil)
	if err != nil {
		return errors.Wrap(err, "finish commands")
	}
	s.device.queue.Submit(cmd)
	cmd.Release()
	s.surface.Present()
	return nil
}

func (s *Surface) releaseFrame() {
	s.pass = RenderPass{}
	if s.encoder != nil {
		s.encoder.Release()
		s.encoder = nil
	}
	if s.view != nil {
		s.view.Release()
		s.view = nil
	}
	if s.frame != nil {
		s.frame.Release()
		s.frame = nil
	}
}

// Release frees the attachments and the surface.
func (s *Surface) Release() {
	s.releaseFrame()
	s.releaseAttachments()
	if s.surface != nil {
		s.surface.Release()
		s.surface = nil
	}
}
