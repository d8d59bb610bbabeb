package render

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
)

// Denoiser post-processes a noisy progressive snapshot into a cleaner one.
// The spec leaves denoising as an optional pass (§4.H step 4); no learned
// denoiser ships here, so BlurDenoiser stands in behind this interface.
type Denoiser interface {
	Denoise(img *image.RGBA) *image.RGBA
}

// BlurDenoiser approximates a denoiser with a Gaussian blur, the cheapest
// stand-in that still demonstrates the Driver's optional post-process slot.
type BlurDenoiser struct {
	Radius float64
}

// NewBlurDenoiser returns a BlurDenoiser with a reasonable default radius.
func NewBlurDenoiser() BlurDenoiser {
	return BlurDenoiser{Radius: 1.0}
}

// Denoise runs a Gaussian blur over img and returns the result.
func (d BlurDenoiser) Denoise(img *image.RGBA) *image.RGBA {
	radius := d.Radius
	if radius <= 0 {
		radius = 1.0
	}
	return blur.Gaussian(img, radius)
}
