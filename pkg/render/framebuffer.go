package render

import (
	"image"
	"image/color"
	"math"

	"github.com/brindlefx/lumentrace/pkg/core"
)

// Framebuffer is the persistent per-pixel state a Driver accumulates samples
// into across ticks: the running stats plus a per-pixel RNG state, matching
// the spec's "accum + rng_state" framebuffer layout so a pixel's sequence is
// stable across ticks regardless of which backend rendered it.
type Framebuffer struct {
	Width, Height int
	Pixels        []PixelStats
	RNG           []core.State
}

// NewFramebuffer allocates a framebuffer and seeds every pixel's RNG state
// from its coordinates, matching the teacher's per-tile deterministic seed
// idiom (NewTile seeds from `id+42`) but per-pixel since the spec's tracer
// carries RNG state per pixel rather than per tile.
func NewFramebuffer(width, height int) *Framebuffer {
	fb := &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]PixelStats, width*height),
		RNG:    make([]core.State, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			fb.RNG[idx] = core.NewState(uint32(idx)*9781 + 1)
		}
	}
	return fb
}

func (fb *Framebuffer) index(x, y int) int { return y*fb.Width + x }

// Reset clears every pixel's accumulated stats and reseeds its RNG, used when
// the driver detects a dirty config (e.g. the camera or scene changed) and
// must discard everything accumulated under the old configuration.
func (fb *Framebuffer) Reset() {
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			idx := fb.index(x, y)
			fb.Pixels[idx] = PixelStats{}
			fb.RNG[idx] = core.NewState(uint32(idx)*9781 + 1)
		}
	}
}

// Snapshot copies the current averaged color of every pixel into an RGBA
// image suitable for publishing to a viewer, gamma-correcting as it goes.
func (fb *Framebuffer) Snapshot() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			c := fb.Pixels[fb.index(x, y)].Color().Clamp(0, math.Inf(1)).GammaCorrect(2.2).Clamp(0, 1)
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(c.X*255 + 0.5),
				G: uint8(c.Y*255 + 0.5),
				B: uint8(c.Z*255 + 0.5),
				A: 255,
			})
		}
	}
	return img
}
