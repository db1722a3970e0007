package ebitengpu

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/grove"
)

// fpsInterval is how often the counter text is refreshed.
const fpsInterval = 500 * time.Millisecond

// FPSCounter is a physics system that rewrites a Text entity with the
// current FPS and TPS every half second.
type FPSCounter struct {
	elapsed time.Duration

	// sample is replaced in tests.
	sample func() (fps, tps float64)
}

// NewFPSCounter returns a counter reading ebiten's frame and tick rates.
func NewFPSCounter() *FPSCounter {
	return &FPSCounter{sample: func() (float64, float64) {
		return ebiten.ActualFPS(), ebiten.ActualTPS()
	}}
}

// Update accumulates dt and refreshes the text once fpsInterval has passed.
func (c *FPSCounter) Update(t *grove.Text, dt time.Duration) error {
	c.elapsed += dt
	if c.elapsed < fpsInterval {
		return nil
	}
	c.elapsed = 0
	fps, tps := c.sample()
	return t.SetText(fmt.Sprintf("FPS %.1f\nTPS %.1f", fps, tps))
}
