// Package adapters collects the interfaces at the boundary between the
// core tracer and the outside world: saving a rendered frame, tone-mapping
// it, and denoising it. The scene-loading interface (SceneLoader) lives in
// pkg/scene, not here. Concrete implementations live alongside these
// interfaces or in their own sibling packages (pkg/render for the
// denoiser); this package exists so
// callers can depend on the interface without pulling in every concrete
// backend.
package adapters

import (
	"image"
	"io"

	"github.com/brindlefx/lumentrace/pkg/core"
)

// ImageSaver writes a rendered frame to an io.Writer in whatever format the
// implementation encodes.
type ImageSaver interface {
	Save(w io.Writer, img image.Image) error
}

// ToneMapper maps an HDR linear radiance value to a displayable [0,1] color,
// the step the framebuffer's gamma-correct-and-clamp snapshot currently does
// inline; implementations let a caller swap in a filmic or ACES curve
// without touching pkg/render.
type ToneMapper interface {
	Map(radiance core.Vec3) core.Vec3
}

// Denoiser matches pkg/render.Denoiser's shape, redeclared here so other
// packages can depend on the adapter boundary without importing pkg/render.
type Denoiser interface {
	Denoise(img *image.RGBA) *image.RGBA
}
