// Package texture implements the material atlas: a single packed image that
// every per-channel material rectangle (base color, roughness, metallic,
// normal, emissive) samples into, plus the equirectangular environment map
// used by the skybox.
package texture

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/brindlefx/lumentrace/pkg/core"
)

// Atlas is a packed RGBA image sampled in normalized [0,1] UV space.
type Atlas struct {
	img    *image.RGBA64
	Width  int
	Height int
}

// NewAtlas allocates an empty atlas of the given size.
func NewAtlas(width, height int) *Atlas {
	return &Atlas{img: image.NewRGBA64(image.Rect(0, 0, width, height)), Width: width, Height: height}
}

// Blit copies src into the atlas at the given rectangle, resampling with
// x/image/draw's bilinear scaler so differently-sized source textures pack
// cleanly into their allotted atlas rectangle.
func (a *Atlas) Blit(src image.Image, dstRect image.Rectangle) {
	xdraw.BiLinear.Scale(a.img, dstRect, src, src.Bounds(), draw.Over, nil)
}

// Sample bilinearly samples the atlas at normalized UV coordinates, wrapping
// outside [0,1].
func (a *Atlas) Sample(u, v float64) core.Vec3 {
	u = wrap01(u)
	v = wrap01(v)

	fx := u*float64(a.Width) - 0.5
	fy := v*float64(a.Height) - 0.5
	x0, y0 := int(floor(fx)), int(floor(fy))
	tx, ty := fx-floor(fx), fy-floor(fy)

	c00 := a.texel(x0, y0)
	c10 := a.texel(x0+1, y0)
	c01 := a.texel(x0, y0+1)
	c11 := a.texel(x0+1, y0+1)

	top := core.LerpVec3(c00, c10, tx)
	bottom := core.LerpVec3(c01, c11, tx)
	return core.LerpVec3(top, bottom, ty)
}

func (a *Atlas) texel(x, y int) core.Vec3 {
	x = wrapInt(x, a.Width)
	y = wrapInt(y, a.Height)
	r, g, b, _ := a.img.At(x, y).RGBA()
	const max = float64(0xffff)
	return core.NewVec3(float64(r)/max, float64(g)/max, float64(b)/max)
}

func wrap01(x float64) float64 {
	x = x - floor(x)
	if x < 0 {
		x += 1
	}
	return x
}

func wrapInt(x, n int) int {
	x %= n
	if x < 0 {
		x += n
	}
	return x
}

func floor(x float64) float64 {
	i := int(x)
	if x < 0 && float64(i) != x {
		i--
	}
	return float64(i)
}
