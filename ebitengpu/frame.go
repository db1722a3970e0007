package ebitengpu

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/grove"
	"github.com/pkg/errors"
)

func logger() *slog.Logger { return grove.Logger().With("pkg", "ebitengpu") }

// Target is a grove.FrameTarget drawing into the ebiten screen image handed
// to Game.Draw. It also captures labeled screenshots of finished frames.
type Target struct {
	// ScreenshotDir is where screenshot PNGs are written.
	ScreenshotDir string

	screen      *ebiten.Image
	pass        RenderPass
	screenshots []string
}

// NewTarget returns a target writing screenshots to dir.
func NewTarget(dir string) *Target {
	return &Target{
		ScreenshotDir: dir,
	}
}

// SetScreen sets the image the next frame is drawn into.
func (t *Target) SetScreen(screen *ebiten.Image) {
	t.screen = screen
}

// Pass returns the render pass of the current or last frame.
func (t *Target) Pass() *RenderPass {
	return &t.pass
}

// BeginFrame clears the screen to clear and returns the pass drawing into it.
func (t *Target) BeginFrame(clear grove.Color) (grove.RenderPass, error) {
	if t.screen == nil {
		return nil, errors.New("ebitengpu: no screen image")
	}
	t.screen.Fill(toRGBA(clear))
	t.pass.reset(t.screen)
	return &t.pass, nil
}

// EndFrame flushes pending screenshots.
func (t *Target) EndFrame() error {
	t.flushScreenshots()
	t.pass.target = nil
	return nil
}

// Screenshot queues a labeled screenshot of the next finished frame. The PNG
// is written to ScreenshotDir with a timestamped file name.
func (t *Target) Screenshot(label string) {
	t.screenshots = append(t.screenshots, label)
}

// PendingScreenshots returns the number of queued screenshots.
func (t *Target) PendingScreenshots() int {
	return len(t.screenshots)
}

func toRGBA(c grove.Color) color.RGBA {
	a := min(max(c.A, 0), 1)
	premul := func(v float32) uint8 {
		return uint8(min(max(v, 0), 1)*a*255 + 0.5)
	}
	return color.RGBA{premul(c.R), premul(c.G), premul(c.B), uint8(a*255 + 0.5)}
}

func (t *Target) flushScreenshots() {
	if len(t.screenshots) == 0 || t.screen == nil {
		return
	}
	defer func() { t.screenshots = t.screenshots[:0] }()

	if err := os.MkdirAll(t.ScreenshotDir, 0o755); err != nil {
		logger().Error("screenshot mkdir failed", "dir", t.ScreenshotDir, "err", err)
		return
	}

	bounds := t.screen.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, 4*w*h)
	t.screen.ReadPixels(pixels)
	img := unpremultiply(pixels, w, h)

	stamp := time.Now().Format("20060102_150405")
	for _, label := range t.screenshots {
		path := filepath.Join(t.ScreenshotDir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
		if err := writePNG(path, img); err != nil {
			logger().Error("screenshot failed", "err", err)
			continue
		}
		logger().Info("screenshot", "path", path)
	}
}

// unpremultiply converts premultiplied RGBA pixels to straight-alpha NRGBA.
func unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(pixels) && i+3 < len(img.Pix); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return errors.Wrapf(err, "encode %s", path)
	}
	return f.Close()
}

// sanitizeLabel replaces characters unsafe in file names with underscores
// and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
